package leave

import (
	"context"
	"strings"
	"time"

	"elms/internal/platform/logger"
)

const (
	upcomingHolidayLimit = 5
	recentRequestLimit   = 5
)

// Listener is told about committed lifecycle changes.
type Listener interface {
	LeaveSubmitted(ctx context.Context, req Request)
	LeaveDecided(ctx context.Context, req Request)
}

// RolloverListener is an optional Listener extension for holders of data
// derived from balances. It is only called when a rollover created rows.
type RolloverListener interface {
	BalancesRolledOver(ctx context.Context, summary RolloverSummary)
}

type Recorder interface {
	LeaveOutcome(operation, outcome string)
}

type Service struct {
	Store     StoreAPI
	Lifecycle *Lifecycle
	Rollover  RolloverStore
	Listeners []Listener
	Metrics   Recorder
	Now       func() time.Time
}

func NewService(store *Store) *Service {
	return &Service{
		Store:     store,
		Lifecycle: NewLifecycle(store),
		Rollover:  store,
		Now:       time.Now,
	}
}

func (s *Service) AddListener(l Listener) {
	if l != nil {
		s.Listeners = append(s.Listeners, l)
	}
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (Request, error) {
	req, err := s.Lifecycle.Submit(ctx, in)
	s.record("submit", err)
	if err != nil {
		return Request{}, err
	}
	logger.FromContext(ctx).Sugar().Infow("leave request submitted", "request_id", req.ID, "user_id", req.UserID, "days", req.DurationDays)
	for _, l := range s.Listeners {
		l.LeaveSubmitted(ctx, req)
	}
	return req, nil
}

func (s *Service) Decide(ctx context.Context, in DecideInput) (Request, error) {
	in.Decision = strings.ToLower(strings.TrimSpace(in.Decision))
	req, err := s.Lifecycle.Decide(ctx, in)
	s.record("decide", err)
	if err != nil {
		return Request{}, err
	}
	logger.FromContext(ctx).Sugar().Infow("leave request decided", "request_id", req.ID, "status", req.Status)
	for _, l := range s.Listeners {
		l.LeaveDecided(ctx, req)
	}
	return req, nil
}

func (s *Service) record(operation string, err error) {
	if s.Metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = errorCode(err)
	}
	s.Metrics.LeaveOutcome(operation, outcome)
}

func (s *Service) ListTypes(ctx context.Context) ([]LeaveType, error) {
	return s.Store.ListTypes(ctx)
}

func (s *Service) CreateType(ctx context.Context, payload LeaveType) (LeaveType, error) {
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" || payload.AllowedDays < 0 {
		return LeaveType{}, ErrInvalidLeaveType
	}
	return s.Store.CreateType(ctx, payload)
}

func (s *Service) ListHolidays(ctx context.Context) ([]Holiday, error) {
	return s.Store.ListHolidays(ctx)
}

func (s *Service) UpcomingHolidays(ctx context.Context) ([]Holiday, error) {
	return s.Store.UpcomingHolidays(ctx, DateOnly(s.Now()), upcomingHolidayLimit)
}

func (s *Service) CreateHoliday(ctx context.Context, name string, date time.Time) (Holiday, error) {
	return s.Store.CreateHoliday(ctx, strings.TrimSpace(name), DateOnly(date))
}

// Balances lists the user's balances for year, defaulting to the current one.
func (s *Service) Balances(ctx context.Context, userID string, year int) ([]Balance, error) {
	if year <= 0 {
		year = s.Now().Year()
	}
	return s.Store.ListBalances(ctx, userID, year)
}

func (s *Service) PendingDays(ctx context.Context, userID string) (int, error) {
	return s.Store.PendingDays(ctx, userID)
}

func (s *Service) History(ctx context.Context, userID string) ([]RequestView, error) {
	return s.Store.History(ctx, userID)
}

func (s *Service) ListPending(ctx context.Context) ([]RequestView, error) {
	return s.Store.ListPending(ctx)
}

func (s *Service) ListAll(ctx context.Context, limit, offset int) (RequestListResult, error) {
	return s.Store.ListAll(ctx, limit, offset)
}

func (s *Service) Recent(ctx context.Context) ([]RequestView, error) {
	return s.Store.Recent(ctx, recentRequestLimit)
}

func (s *Service) GetRequest(ctx context.Context, requestID string) (RequestView, error) {
	return s.Store.GetRequest(ctx, requestID)
}

func (s *Service) RunRollover(ctx context.Context) (RolloverSummary, error) {
	summary, err := ApplyRollover(ctx, s.Rollover, s.Now())
	if err != nil || summary.BalancesCreated == 0 {
		return summary, err
	}
	for _, l := range s.Listeners {
		if rl, ok := l.(RolloverListener); ok {
			rl.BalancesRolledOver(ctx, summary)
		}
	}
	return summary, nil
}

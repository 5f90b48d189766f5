package scoring

import (
	"context"
	"time"

	"elms/internal/domain/leave"
	"elms/internal/platform/logger"
)

// Cache keeps computed reports per user.
type Cache interface {
	GetReport(ctx context.Context, userID string) (Report, bool, error)
	SetReport(ctx context.Context, userID string, report Report) error
	DeleteReport(ctx context.Context, userID string) error
	DeleteAllReports(ctx context.Context) (int, error)
}

type Recorder interface {
	ScoreComputed(cached bool)
}

type Service struct {
	Source  Source
	Cache   Cache
	Metrics Recorder
	Now     func() time.Time
}

func NewService(source Source, cache Cache) *Service {
	return &Service{Source: source, Cache: cache, Now: time.Now}
}

// Score returns the user's report. The debug block is kept only when asked for.
func (s *Service) Score(ctx context.Context, userID string, debug bool) (Report, error) {
	report, hit := s.cached(ctx, userID)
	if !hit {
		facts, err := s.Source.Facts(ctx, userID)
		if err != nil {
			return Report{}, err
		}
		report = Compute(Input{
			Requests:     facts.Requests,
			BalanceTotal: facts.BalanceTotal,
			JoinedAt:     facts.JoinedAt,
			AsOf:         s.Now(),
		})
		report.UserID = userID
		if s.Cache != nil {
			if err := s.Cache.SetReport(ctx, userID, report); err != nil {
				logger.S().Warnw("score cache write failed", "user_id", userID, "err", err)
			}
		}
	}
	if s.Metrics != nil {
		s.Metrics.ScoreComputed(hit)
	}
	if !debug {
		report.Debug = nil
	}
	return report, nil
}

func (s *Service) cached(ctx context.Context, userID string) (Report, bool) {
	if s.Cache == nil {
		return Report{}, false
	}
	report, ok, err := s.Cache.GetReport(ctx, userID)
	if err != nil {
		logger.S().Warnw("score cache read failed", "user_id", userID, "err", err)
		return Report{}, false
	}
	return report, ok
}

func (s *Service) Invalidate(ctx context.Context, userID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.DeleteReport(ctx, userID); err != nil {
		logger.S().Warnw("score cache invalidation failed", "user_id", userID, "err", err)
	}
}

func (s *Service) LeaveSubmitted(ctx context.Context, req leave.Request) {
	s.Invalidate(ctx, req.UserID)
}

func (s *Service) LeaveDecided(ctx context.Context, req leave.Request) {
	s.Invalidate(ctx, req.UserID)
}

// BalancesRolledOver drops every cached report, since new balance rows change
// the usage component for everyone.
func (s *Service) BalancesRolledOver(ctx context.Context, summary leave.RolloverSummary) {
	if s.Cache == nil {
		return
	}
	n, err := s.Cache.DeleteAllReports(ctx)
	if err != nil {
		logger.S().Warnw("score cache flush failed", "year", summary.Year, "err", err)
		return
	}
	logger.S().Infow("score cache flushed after rollover", "year", summary.Year, "reports", n)
}

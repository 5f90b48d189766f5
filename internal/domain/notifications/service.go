package notifications

import (
	"context"
	"fmt"

	"elms/internal/domain/apperr"
	"elms/internal/domain/leave"
	"elms/internal/platform/logger"
)

var ErrNotificationNotFound = apperr.NotFound("notification_not_found", "notification not found")

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store        StoreAPI
	Mailer       Mailer
	EmailEnabled bool
	From         string
}

func New(store StoreAPI, mailer Mailer) *Service {
	return &Service{store: store, Mailer: mailer, From: "no-reply@example.com"}
}

// Create stores an in-app notification and mails it when email is enabled.
// Mail failures are logged, never returned.
func (s *Service) Create(ctx context.Context, userID, ntype, title, body string) error {
	if err := s.store.CreateNotification(ctx, userID, ntype, title, body); err != nil {
		return err
	}
	if s.Mailer == nil || !s.EmailEnabled {
		return nil
	}

	email, err := s.store.UserEmail(ctx, userID)
	if err != nil {
		logger.S().Warnw("notification email lookup failed", "user_id", userID, "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.From, email, title, body); err != nil {
		logger.S().Warnw("notification email send failed", "user_id", userID, "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, int, error) {
	items, err := s.store.ListNotifications(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountNotifications(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	ok, err := s.store.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// LeaveSubmitted tells the requester's department manager about a new request.
func (s *Service) LeaveSubmitted(ctx context.Context, req leave.Request) {
	managerID, err := s.store.DepartmentManagerID(ctx, req.UserID)
	if err != nil {
		logger.S().Warnw("manager lookup failed", "request_id", req.ID, "err", err)
		return
	}
	if managerID == "" || managerID == req.UserID {
		return
	}
	body := fmt.Sprintf("A leave request for %s to %s (%d days) is waiting for a decision.",
		req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"), req.DurationDays)
	if err := s.Create(ctx, managerID, TypeLeaveSubmitted, "Leave request submitted", body); err != nil {
		logger.S().Warnw("submit notification failed", "request_id", req.ID, "err", err)
	}
}

// LeaveDecided tells the requester about the decision.
func (s *Service) LeaveDecided(ctx context.Context, req leave.Request) {
	ntype, title := TypeLeaveApproved, "Leave request approved"
	body := fmt.Sprintf("Your leave from %s to %s was approved.", req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"))
	if req.Status == leave.StatusRejected {
		ntype, title = TypeLeaveRejected, "Leave request rejected"
		body = fmt.Sprintf("Your leave from %s to %s was rejected: %s", req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"), req.RejectionReason)
	}
	if err := s.Create(ctx, req.UserID, ntype, title, body); err != nil {
		logger.S().Warnw("decision notification failed", "request_id", req.ID, "err", err)
	}
}

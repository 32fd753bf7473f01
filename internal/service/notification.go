package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/set-night/taskcoin/internal/domain"
	"github.com/set-night/taskcoin/internal/repository"
)

// Notifier delivers in-app notifications on a best-effort basis.
type Notifier interface {
	Notify(ctx context.Context, toEmail, message, actionRoute string)
}

type NotificationService struct {
	notifications repository.NotificationStore
}

func NewNotificationService(notifications repository.NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

type NotificationInput struct {
	ToEmail     string `json:"toEmail"`
	Message     string `json:"message"`
	ActionRoute string `json:"actionRoute"`
}

func (s *NotificationService) Create(ctx context.Context, in NotificationInput) (domain.Notification, error) {
	to := domain.NormalizeEmail(in.ToEmail)
	if err := domain.ValidateEmail(to); err != nil {
		return domain.Notification{}, err
	}
	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return domain.Notification{}, domain.InvalidInput("message is required")
	}
	return s.notifications.CreateNotification(ctx, domain.Notification{
		ToEmail:     to,
		Message:     msg,
		ActionRoute: strings.TrimSpace(in.ActionRoute),
	})
}

// ListFor returns the notifications addressed to email, newest first.
func (s *NotificationService) ListFor(ctx context.Context, email string) ([]domain.Notification, error) {
	return s.notifications.ListNotifications(ctx, domain.NormalizeEmail(email))
}

// Notify records a notification and only logs when that fails; callers have
// already committed the ledger change the notification describes.
func (s *NotificationService) Notify(ctx context.Context, toEmail, message, actionRoute string) {
	_, err := s.notifications.CreateNotification(context.WithoutCancel(ctx), domain.Notification{
		ToEmail:     toEmail,
		Message:     message,
		ActionRoute: actionRoute,
	})
	if err != nil {
		slog.Warn("notification not recorded", "to", toEmail, "route", actionRoute, "error", err)
	}
}

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"subtrack/internal"
	"subtrack/internal/config"
	"subtrack/internal/storage"
)

// Dispatcher delivers one notification to its user. Real delivery (SMTP,
// push) lives outside this core; the service only guarantees that reminder
// records are created and handed over.
type Dispatcher interface {
	Send(ctx context.Context, n internal.Notification, user internal.User) error
}

// LogDispatcher is the in-repo dispatcher: it logs the delivery and
// succeeds. Useful for local runs and tests.
type LogDispatcher struct {
	Logger *slog.Logger
}

func (d LogDispatcher) Send(_ context.Context, n internal.Notification, user internal.User) error {
	d.Logger.Info("dispatching notification", "id", n.ID, "type", n.Type, "to", user.Email, "subject", n.Subject)
	return nil
}

// ReminderService creates reminder notifications ahead of billing dates and
// flushes pending ones through the dispatcher.
type ReminderService struct {
	db         *storage.DB
	cfg        config.Config
	dispatcher Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

func NewReminderService(db *storage.DB, cfg config.Config, dispatcher Dispatcher, logger *slog.Logger) *ReminderService {
	return &ReminderService{
		db:         db,
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger.With("component", "notify"),
		now:        time.Now,
	}
}

// Generate creates a pending reminder for every active subscription due
// within daysAhead, scheduled reminderDays before its billing date.
// Subscriptions whose reminder date already passed, or that already have a
// pending or sent reminder from the last day, are skipped.
func (s *ReminderService) Generate(ctx context.Context, daysAhead int) ([]internal.Notification, error) {
	if daysAhead <= 0 {
		daysAhead = s.cfg.ReminderDaysAhead
	}

	// Billing dates are stored at day resolution and read back as UTC
	// midnights, so today is computed the same way.
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	due, err := s.db.FindSubscriptionsDueBetween(today, today.AddDate(0, 0, daysAhead))
	if err != nil {
		return nil, err
	}

	var created []internal.Notification
	for _, sub := range due {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		reminderDays := sub.ReminderDays
		if reminderDays <= 0 {
			reminderDays = s.cfg.DefaultReminderDays
		}
		reminderDate := sub.NextBillingDate.AddDate(0, 0, -reminderDays)
		if reminderDate.Before(today) {
			continue
		}

		exists, err := s.db.HasRecentReminder(sub.ID, now.AddDate(0, 0, -1))
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		notification, err := s.db.CreateNotification(reminderFor(sub, reminderDays, reminderDate))
		if err != nil {
			s.logger.Error("create reminder failed", "subscription", sub.ID, "error", err)
			continue
		}
		created = append(created, notification)
	}

	s.logger.Info("generated reminders", "count", len(created), "days_ahead", daysAhead)
	return created, nil
}

func reminderFor(sub internal.Subscription, reminderDays int, reminderDate time.Time) internal.Notification {
	subID := sub.ID
	return internal.Notification{
		UserID:         sub.UserID,
		SubscriptionID: &subID,
		Type:           internal.NotifyEmail,
		Subject:        fmt.Sprintf("%s subscription reminder", sub.Name),
		Message: fmt.Sprintf("Your %s subscription will be renewed in %d days on %s for %s %.0f.",
			sub.Name, reminderDays, sub.NextBillingDate.Format("2006-01-02"), sub.Currency, sub.Amount),
		Status:      internal.NotificationPending,
		ScheduledAt: reminderDate,
	}
}

// SendPending flushes every pending notification whose scheduled time has
// arrived. A delivery failure marks that notification failed and moves on;
// one bad item never stops the flush.
func (s *ReminderService) SendPending(ctx context.Context) (int, error) {
	pending, err := s.db.ListDuePendingNotifications(s.now())
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}
	s.logger.Info("sending pending notifications", "count", len(pending))

	sent := 0
	for _, n := range pending {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		user, err := s.db.GetUser(n.UserID)
		if err != nil {
			return sent, err
		}
		if user == nil {
			s.logger.Warn("user not found for notification", "notification", n.ID, "user", n.UserID)
			continue
		}

		if err := s.dispatcher.Send(ctx, n, *user); err != nil {
			s.logger.Error("dispatch failed", "notification", n.ID, "error", err)
			if err := s.db.MarkNotificationFailed(n.ID); err != nil {
				s.logger.Error("mark failed errored", "notification", n.ID, "error", err)
			}
			continue
		}
		if err := s.db.MarkNotificationSent(n.ID, s.now()); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

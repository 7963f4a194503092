package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"subtrack/internal/config"
	"subtrack/internal/notify"
)

// Scheduler hosts the two recurring jobs: a daily reminder-generation pass
// and a short-interval flush of pending notifications. The jobs are
// independent; a job still running when its next trigger fires is skipped,
// never run concurrently with itself.
type Scheduler struct {
	reminders *notify.ReminderService
	cfg       config.Config
	logger    *slog.Logger

	generateMu sync.Mutex
	sendMu     sync.Mutex
}

func New(reminders *notify.ReminderService, cfg config.Config, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		reminders: reminders,
		cfg:       cfg,
		logger:    logger.With("component", "scheduler"),
	}
}

// Run blocks until ctx is cancelled. Both jobs fire once at startup as a
// warm-up, then on their own schedules.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler starting",
		"reminder_hour", s.cfg.ReminderHour,
		"flush_interval", s.cfg.NotifyFlushInterval)

	s.TriggerGenerate(ctx, 0)
	s.TriggerSend(ctx)

	flush := time.NewTicker(s.cfg.NotifyFlushInterval)
	defer flush.Stop()

	daily := time.NewTimer(untilNextHour(time.Now(), s.cfg.ReminderHour))
	defer daily.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-daily.C:
			s.TriggerGenerate(ctx, 0)
			daily.Reset(untilNextHour(time.Now(), s.cfg.ReminderHour))
		case <-flush.C:
			s.TriggerSend(ctx)
		}
	}
}

// TriggerGenerate runs the reminder-generation job once, on demand or from
// the daily schedule. A zero daysAhead uses the configured window. Returns
// false if the job was skipped because a previous run is still going.
func (s *Scheduler) TriggerGenerate(ctx context.Context, daysAhead int) bool {
	if !s.generateMu.TryLock() {
		s.logger.Warn("generate-reminders still running, skipping trigger")
		return false
	}
	defer s.generateMu.Unlock()

	if _, err := s.reminders.Generate(ctx, daysAhead); err != nil {
		s.logger.Error("generate-reminders failed", "error", err)
	}
	return true
}

// TriggerSend runs the pending-notification flush once. Returns false if a
// previous flush is still going.
func (s *Scheduler) TriggerSend(ctx context.Context) bool {
	if !s.sendMu.TryLock() {
		s.logger.Warn("send-notifications still running, skipping trigger")
		return false
	}
	defer s.sendMu.Unlock()

	if _, err := s.reminders.SendPending(ctx); err != nil {
		s.logger.Error("send-notifications failed", "error", err)
	}
	return true
}

// untilNextHour returns the duration until the next occurrence of the given
// local hour, always in the future.
func untilNextHour(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

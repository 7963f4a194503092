package scheduler

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"subtrack/internal/config"
	"subtrack/internal/notify"
	"subtrack/internal/storage"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	cfg, _ := config.Load()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reminders := notify.NewReminderService(db, cfg, notify.LogDispatcher{Logger: logger}, logger)
	return New(reminders, cfg, logger)
}

func TestUntilNextHour(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 30, 0, 0, time.UTC)
	if d := untilNextHour(now, 1); d != 30*time.Minute {
		t.Fatalf("d=%s", d)
	}
	// Already past the hour: roll to tomorrow.
	now = time.Date(2024, 1, 10, 2, 0, 0, 0, time.UTC)
	if d := untilNextHour(now, 1); d != 23*time.Hour {
		t.Fatalf("d=%s", d)
	}
	// Exactly on the hour counts as passed.
	now = time.Date(2024, 1, 10, 1, 0, 0, 0, time.UTC)
	if d := untilNextHour(now, 1); d != 24*time.Hour {
		t.Fatalf("d=%s", d)
	}
}

func TestTriggerSkipsWhileRunning(t *testing.T) {
	s := newTestScheduler(t)

	s.generateMu.Lock()
	if s.TriggerGenerate(context.Background(), 7) {
		t.Fatal("trigger should skip while a run holds the lock")
	}
	s.generateMu.Unlock()

	if !s.TriggerGenerate(context.Background(), 7) {
		t.Fatal("trigger should run once the lock is free")
	}

	s.sendMu.Lock()
	if s.TriggerSend(context.Background()) {
		t.Fatal("send trigger should skip while a run holds the lock")
	}
	s.sendMu.Unlock()
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newTestScheduler(t)
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	done := make(chan struct{})
	go func() {
		defer wg.Done()
		_ = s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
	wg.Wait()
}

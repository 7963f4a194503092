package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"subtrack/internal"
	"subtrack/internal/billing"
	"subtrack/internal/config"
	"subtrack/internal/connectors"
	"subtrack/internal/storage"
	"subtrack/internal/util"
)

// fallbackBillingDays estimates a billing date from the received timestamp
// when the message body carries no recognizable date.
const fallbackBillingDays = 30

// ScanService runs the full inference pass: fetch, decode, classify,
// extract, dedupe, materialize. The connector may be nil when no mailbox is
// configured; in that case a scan is a warning and an empty result.
type ScanService struct {
	db        *storage.DB
	connector connectors.MailConnector
	catalog   Catalog
	cfg       config.Config
	logger    *slog.Logger
	now       func() time.Time
}

func NewScanService(db *storage.DB, connector connectors.MailConnector, catalog Catalog, cfg config.Config, logger *slog.Logger) *ScanService {
	return &ScanService{
		db:        db,
		connector: connector,
		catalog:   catalog,
		cfg:       cfg,
		logger:    logger.With("component", "scan"),
		now:       time.Now,
	}
}

// Evaluate classifies one decoded message against the catalog and extracts
// amount and billing date. A nil result means the message yielded no
// candidate, which is a skip, not an error.
func Evaluate(msg internal.DecodedMessage, catalog Catalog) *internal.DetectionCandidate {
	rule := catalog.Match(msg)
	if rule == nil {
		return nil
	}

	// Subject is checked for an amount before the body.
	amount := ExtractAmount(msg.Subject, rule.AmountPatterns)
	if amount == nil {
		amount = ExtractAmount(msg.Body, rule.AmountPatterns)
	}

	billingDate := ExtractBillingDate(msg.Body)
	if billingDate == nil {
		estimated := startOfDay(msg.ReceivedAt.AddDate(0, 0, fallbackBillingDays))
		billingDate = &estimated
	}

	return &internal.DetectionCandidate{
		Service:     rule.Name,
		CategoryID:  rule.CategoryID,
		Amount:      amount,
		BillingDate: billingDate,
		Sender:      msg.Sender,
		Subject:     msg.Subject,
	}
}

// ScanUser fetches the user's mailbox window and materializes every
// deduplicated detection that does not already exist as a subscription.
func (s *ScanService) ScanUser(ctx context.Context, userID int64, daysBack int) ([]internal.CreatedSubscription, error) {
	if s.connector == nil {
		s.logger.Warn("mailbox not configured, skipping scan", "user", userID)
		return nil, nil
	}
	if daysBack <= 0 {
		daysBack = s.cfg.ScanDaysBack
	}

	since := s.now().AddDate(0, 0, -daysBack)
	messages, err := s.connector.FetchSince(ctx, s.cfg.IMAPFolder, since, s.cfg.IMAPFetchMax)
	if err != nil {
		// Messages fetched before the failure are still processed; the
		// connector has already closed its session.
		s.logger.Error("mailbox fetch failed", "error", err, "fetched", len(messages))
		if len(messages) == 0 {
			return nil, nil
		}
	}
	if len(messages) == 0 {
		s.logger.Info("no messages in scan window", "user", userID, "days_back", daysBack)
		return nil, nil
	}
	s.logger.Info("scanning messages", "user", userID, "count", len(messages))

	candidates := s.extractCandidates(ctx, messages)
	deduped := Dedupe(candidates)

	today := startOfDay(s.now())
	created := make([]internal.CreatedSubscription, 0, len(deduped))
	for _, cand := range deduped {
		summary, err := s.materialize(cand, userID, today)
		if err != nil {
			s.logger.Error("materialize failed", "service", cand.Service, "error", err)
			continue
		}
		if summary == nil {
			continue
		}
		created = append(created, *summary)
		s.logger.Info("created subscription from email", "name", summary.Name, "amount", summary.Amount, "cycle", summary.Cycle)
	}
	return created, nil
}

// ScanAll runs ScanUser for every active user.
func (s *ScanService) ScanAll(ctx context.Context, daysBack int) (map[int64][]internal.CreatedSubscription, error) {
	users, err := s.db.ListActiveUsers()
	if err != nil {
		return nil, err
	}
	results := make(map[int64][]internal.CreatedSubscription)
	for _, user := range users {
		created, err := s.ScanUser(ctx, user.ID, daysBack)
		if err != nil {
			s.logger.Error("scan failed", "user", user.ID, "error", err)
			continue
		}
		if len(created) > 0 {
			results[user.ID] = created
		}
	}
	return results, nil
}

// extractCandidates fans decode/classify/extract out over a bounded worker
// pool and collects all candidates before returning. Deduplication must not
// start until every message has been evaluated.
func (s *ScanService) extractCandidates(ctx context.Context, messages []internal.FetchedMailMessage) []internal.DetectionCandidate {
	workers := s.cfg.ScanWorkers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan internal.FetchedMailMessage)
	results := make(chan internal.DetectionCandidate, len(messages))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range jobs {
				decoded := Decode(msg)
				if cand := Evaluate(decoded, s.catalog); cand != nil {
					results <- *cand
				}
			}
		}()
	}

	for _, msg := range messages {
		select {
		case jobs <- msg:
		case <-ctx.Done():
			// Stop feeding; workers drain what they already hold.
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	out := make([]internal.DetectionCandidate, 0, len(messages))
	for cand := range results {
		out = append(out, cand)
	}
	return out
}

// materialize persists one deduplicated candidate as a subscription. A
// case-insensitive substring match against the owner's existing
// subscription names is a skip: repeated scans of the same mailbox must not
// create duplicates.
func (s *ScanService) materialize(cand internal.DetectionCandidate, userID int64, today time.Time) (*internal.CreatedSubscription, error) {
	if cand.Amount == nil || cand.BillingDate == nil {
		return nil, nil
	}
	name := util.TitleCase(cand.Service)

	existing, err := s.db.FindSubscriptionsByNameLike(userID, name)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		s.logger.Info("subscription already exists, skipping", "name", name)
		return nil, nil
	}

	// Cycle is inferred from amount magnitude alone; no currency awareness.
	cycle := internal.CycleMonthly
	if *cand.Amount > s.cfg.AnnualAmountThreshold {
		cycle = internal.CycleAnnual
	}

	next := billing.AdvanceUntil(cycle, startOfDay(*cand.BillingDate), today)

	categoryID := cand.CategoryID
	sub := internal.Subscription{
		UserID:          userID,
		Name:            name,
		Description:     fmt.Sprintf("Automatically detected from email: %s", cand.Subject),
		Amount:          *cand.Amount,
		Currency:        s.cfg.DefaultCurrency,
		Cycle:           cycle,
		BillingDay:      next.Day(),
		NextBillingDate: next,
		StartDate:       today,
		AutoRenew:       true,
		ReminderDays:    s.cfg.DefaultReminderDays,
		Notes:           fmt.Sprintf("Created automatically from email parsing on %s", today.Format("2006-01-02")),
		Active:          true,
		CategoryID:      &categoryID,
	}

	created, err := s.db.CreateSubscription(sub)
	if err != nil {
		return nil, err
	}

	return &internal.CreatedSubscription{
		ID:              created.ID,
		Name:            created.Name,
		Amount:          created.Amount,
		NextBillingDate: created.NextBillingDate,
		Cycle:           created.Cycle,
		CategoryID:      created.CategoryID,
	}, nil
}

// startOfDay normalizes to a UTC midnight, matching how day-resolution
// dates come back from storage.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package billing

import (
	"log/slog"
	"time"

	"subtrack/internal"
	"subtrack/internal/storage"
)

// PaymentService records payments against subscriptions and keeps their
// next billing dates rolling forward.
type PaymentService struct {
	db     *storage.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewPaymentService(db *storage.DB, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		db:     db,
		logger: logger.With("component", "payments"),
		now:    time.Now,
	}
}

// Record inserts a payment row. A payment recorded as paid also advances
// the subscription's next billing date exactly one cycle from its current
// value, not from today.
func (s *PaymentService) Record(subscriptionID int64, paymentDate time.Time, amount float64, status internal.PaymentStatus, method, notes string) (internal.Payment, error) {
	sub, err := s.db.MustGetSubscription(subscriptionID)
	if err != nil {
		return internal.Payment{}, err
	}
	if paymentDate.IsZero() {
		paymentDate = s.now()
	}
	if amount == 0 {
		amount = sub.Amount
	}

	payment, err := s.db.InsertPayment(internal.Payment{
		SubscriptionID: subscriptionID,
		PaymentDate:    paymentDate,
		Amount:         amount,
		Status:         status,
		Method:         method,
		Notes:          notes,
	})
	if err != nil {
		return internal.Payment{}, err
	}

	if status == internal.PaymentPaid {
		if err := s.Advance(subscriptionID); err != nil {
			return payment, err
		}
	}
	return payment, nil
}

// Advance moves the subscription's next billing date forward one cycle.
func (s *PaymentService) Advance(subscriptionID int64) error {
	sub, err := s.db.MustGetSubscription(subscriptionID)
	if err != nil {
		return err
	}
	next := Next(sub.Cycle, sub.NextBillingDate)
	if err := s.db.UpdateNextBillingDate(subscriptionID, next, next.Day()); err != nil {
		return err
	}
	s.logger.Info("advanced next billing date",
		"subscription", subscriptionID,
		"from", sub.NextBillingDate.Format("2006-01-02"),
		"to", next.Format("2006-01-02"))
	return nil
}

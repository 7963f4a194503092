package internal

import "time"

type BillingCycle string

const (
	CycleMonthly    BillingCycle = "monthly"
	CycleQuarterly  BillingCycle = "quarterly"
	CycleSemiannual BillingCycle = "semiannual"
	CycleAnnual     BillingCycle = "annual"
	CycleCustom     BillingCycle = "custom"
)

// ParseBillingCycle maps unknown values to CycleCustom so a bad stored cycle
// can never break date arithmetic.
func ParseBillingCycle(value string) BillingCycle {
	switch BillingCycle(value) {
	case CycleMonthly, CycleQuarterly, CycleSemiannual, CycleAnnual, CycleCustom:
		return BillingCycle(value)
	default:
		return CycleCustom
	}
}

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentFailed  PaymentStatus = "failed"
)

type NotificationType string

const (
	NotifyEmail NotificationType = "email"
	NotifyPush  NotificationType = "push"
)

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
	NotificationRead    NotificationStatus = "read"
)

// FetchedMailMessage is a raw message as pulled from a mailbox provider.
// It lives only for the duration of one scan pass and is never persisted.
type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt time.Time
	Raw        []byte
}

// DecodedMessage is the normalized form consumed by the matching and
// extraction stages. Sender, subject and body are lowercased and
// whitespace-collapsed before any pattern matching.
type DecodedMessage struct {
	Sender     string
	Subject    string
	Body       string
	ReceivedAt time.Time
}

// DetectionCandidate is one pre-deduplication subscription detection.
// Sender and subject are retained for provenance notes.
type DetectionCandidate struct {
	Service     string
	CategoryID  int64
	Amount      *float64
	BillingDate *time.Time
	Sender      string
	Subject     string
}

type Subscription struct {
	ID              int64
	UserID          int64
	Name            string
	Description     string
	Amount          float64
	Currency        string
	Cycle           BillingCycle
	BillingDay      int
	NextBillingDate time.Time
	StartDate       time.Time
	EndDate         *time.Time
	AutoRenew       bool
	ReminderDays    int
	WebsiteURL      string
	Notes           string
	Active          bool
	CategoryID      *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Payment struct {
	ID             int64
	SubscriptionID int64
	PaymentDate    time.Time
	Amount         float64
	Status         PaymentStatus
	Method         string
	Notes          string
}

type Notification struct {
	ID             int64
	UserID         int64
	SubscriptionID *int64
	Type           NotificationType
	Subject        string
	Message        string
	Status         NotificationStatus
	ScheduledAt    time.Time
	SentAt         *time.Time
	ReadAt         *time.Time
}

type User struct {
	ID       int64
	Email    string
	FullName string
	Active   bool
}

type Category struct {
	ID    int64
	Name  string
	Color string
}

// CreatedSubscription is the per-scan summary returned for every
// subscription materialized from email detection.
type CreatedSubscription struct {
	ID              int64
	Name            string
	Amount          float64
	NextBillingDate time.Time
	Cycle           BillingCycle
	CategoryID      *int64
}

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"subtrack/internal"
)

const dateLayout = "2006-01-02"

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL UNIQUE,
  fullName TEXT,
  isActive INTEGER NOT NULL DEFAULT 1,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS categories (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  color TEXT NOT NULL DEFAULT '#1E90FF'
);

CREATE TABLE IF NOT EXISTS subscriptions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  userId INTEGER NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  amount REAL NOT NULL,
  currency TEXT NOT NULL DEFAULT 'IDR',
  billingCycle TEXT NOT NULL DEFAULT 'monthly',
  billingDay INTEGER NOT NULL,
  nextBillingDate TEXT NOT NULL,
  startDate TEXT NOT NULL,
  endDate TEXT,
  autoRenew INTEGER NOT NULL DEFAULT 1,
  reminderDays INTEGER NOT NULL DEFAULT 3,
  websiteUrl TEXT,
  notes TEXT,
  isActive INTEGER NOT NULL DEFAULT 1,
  categoryId INTEGER,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(userId) REFERENCES users(id),
  FOREIGN KEY(categoryId) REFERENCES categories(id)
);
CREATE INDEX IF NOT EXISTS idx_subscriptions_user ON subscriptions(userId);
CREATE INDEX IF NOT EXISTS idx_subscriptions_nextBilling ON subscriptions(nextBillingDate);

CREATE TABLE IF NOT EXISTS payments (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  subscriptionId INTEGER NOT NULL,
  paymentDate TEXT NOT NULL,
  amount REAL NOT NULL,
  status TEXT NOT NULL,
  method TEXT,
  notes TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(subscriptionId) REFERENCES subscriptions(id)
);
CREATE INDEX IF NOT EXISTS idx_payments_subscription ON payments(subscriptionId);

CREATE TABLE IF NOT EXISTS notifications (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  userId INTEGER NOT NULL,
  subscriptionId INTEGER,
  type TEXT NOT NULL,
  subject TEXT NOT NULL,
  message TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  scheduledAt TEXT NOT NULL,
  sentAt TEXT,
  readAt TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(userId) REFERENCES users(id),
  FOREIGN KEY(subscriptionId) REFERENCES subscriptions(id)
);
CREATE INDEX IF NOT EXISTS idx_notifications_status ON notifications(status, scheduledAt);
`

	if _, err := d.conn.Exec(schema); err != nil {
		return err
	}
	return d.seed()
}

// seed inserts the default local user and the fixed category set the
// service catalog refers to by id.
func (d *DB) seed() error {
	if _, err := d.conn.Exec(`
INSERT OR IGNORE INTO users (id, email, fullName, isActive) VALUES (1, 'local@subtrack', 'Local User', 1)
`); err != nil {
		return err
	}
	categories := []struct {
		id    int64
		name  string
		color string
	}{
		{1, "Entertainment", "#E50914"},
		{2, "Software", "#1E90FF"},
		{3, "Internet & Phone", "#32CD32"},
		{4, "Hosting", "#FF8C00"},
	}
	for _, c := range categories {
		if _, err := d.conn.Exec(`INSERT OR IGNORE INTO categories (id, name, color) VALUES (?, ?, ?)`, c.id, c.name, c.color); err != nil {
			return err
		}
	}
	return nil
}

const subscriptionColumns = `
id, userId, name, COALESCE(description, ''), amount, currency, billingCycle, billingDay,
nextBillingDate, startDate, endDate, autoRenew, reminderDays,
COALESCE(websiteUrl, ''), COALESCE(notes, ''), isActive, categoryId`

func (d *DB) scanSubscription(row interface{ Scan(...any) error }) (internal.Subscription, error) {
	var sub internal.Subscription
	var cycle, nextBilling, startDate string
	var endDate *string
	if err := row.Scan(
		&sub.ID, &sub.UserID, &sub.Name, &sub.Description, &sub.Amount, &sub.Currency, &cycle, &sub.BillingDay,
		&nextBilling, &startDate, &endDate, &sub.AutoRenew, &sub.ReminderDays,
		&sub.WebsiteURL, &sub.Notes, &sub.Active, &sub.CategoryID,
	); err != nil {
		return internal.Subscription{}, err
	}
	sub.Cycle = internal.ParseBillingCycle(cycle)
	sub.NextBillingDate, _ = time.Parse(dateLayout, nextBilling)
	sub.StartDate, _ = time.Parse(dateLayout, startDate)
	if endDate != nil {
		if parsed, err := time.Parse(dateLayout, *endDate); err == nil {
			sub.EndDate = &parsed
		}
	}
	return sub, nil
}

func (d *DB) CreateSubscription(sub internal.Subscription) (internal.Subscription, error) {
	var endDate *string
	if sub.EndDate != nil {
		v := sub.EndDate.Format(dateLayout)
		endDate = &v
	}
	result, err := d.conn.Exec(`
INSERT INTO subscriptions (
  userId, name, description, amount, currency, billingCycle, billingDay,
  nextBillingDate, startDate, endDate, autoRenew, reminderDays,
  websiteUrl, notes, isActive, categoryId
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		sub.UserID, sub.Name, sub.Description, sub.Amount, sub.Currency, string(sub.Cycle), sub.BillingDay,
		sub.NextBillingDate.Format(dateLayout), sub.StartDate.Format(dateLayout), endDate, sub.AutoRenew, sub.ReminderDays,
		sub.WebsiteURL, sub.Notes, sub.Active, sub.CategoryID,
	)
	if err != nil {
		return internal.Subscription{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return internal.Subscription{}, err
	}
	sub.ID = id
	return sub, nil
}

func (d *DB) GetSubscription(id int64) (*internal.Subscription, error) {
	row := d.conn.QueryRow(`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, id)
	sub, err := d.scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (d *DB) ListSubscriptions(userID int64, activeOnly bool) ([]internal.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE userId = ?`
	if activeOnly {
		query += ` AND isActive = 1`
	}
	query += ` ORDER BY nextBillingDate ASC`
	return d.querySubscriptions(query, userID)
}

// FindSubscriptionsByNameLike returns the user's subscriptions whose name
// contains the given fragment, case-insensitively. Used as the idempotence
// guard before materializing an email detection.
func (d *DB) FindSubscriptionsByNameLike(userID int64, fragment string) ([]internal.Subscription, error) {
	return d.querySubscriptions(`
SELECT `+subscriptionColumns+` FROM subscriptions
WHERE userId = ? AND lower(name) LIKE '%' || lower(?) || '%'
`, userID, fragment)
}

func (d *DB) FindActiveSubscriptions() ([]internal.Subscription, error) {
	return d.querySubscriptions(`SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE isActive = 1 ORDER BY nextBillingDate ASC`)
}

// FindSubscriptionsDueBetween returns active subscriptions whose next
// billing date falls inside [from, to], inclusive.
func (d *DB) FindSubscriptionsDueBetween(from, to time.Time) ([]internal.Subscription, error) {
	return d.querySubscriptions(`
SELECT `+subscriptionColumns+` FROM subscriptions
WHERE isActive = 1 AND nextBillingDate >= ? AND nextBillingDate <= ?
ORDER BY nextBillingDate ASC
`, from.Format(dateLayout), to.Format(dateLayout))
}

func (d *DB) querySubscriptions(query string, args ...any) ([]internal.Subscription, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Subscription
	for rows.Next() {
		sub, err := d.scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (d *DB) UpdateNextBillingDate(id int64, next time.Time, billingDay int) error {
	_, err := d.conn.Exec(`
UPDATE subscriptions SET nextBillingDate = ?, billingDay = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?
`, next.Format(dateLayout), billingDay, id)
	return err
}

func (d *DB) SetSubscriptionActive(id int64, active bool) error {
	_, err := d.conn.Exec(`UPDATE subscriptions SET isActive = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, active, id)
	return err
}

func (d *DB) InsertPayment(p internal.Payment) (internal.Payment, error) {
	result, err := d.conn.Exec(`
INSERT INTO payments (subscriptionId, paymentDate, amount, status, method, notes)
VALUES (?, ?, ?, ?, ?, ?)
`, p.SubscriptionID, p.PaymentDate.Format(dateLayout), p.Amount, string(p.Status), p.Method, p.Notes)
	if err != nil {
		return internal.Payment{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return internal.Payment{}, err
	}
	p.ID = id
	return p, nil
}

func (d *DB) ListPaymentsBySubscription(subscriptionID int64) ([]internal.Payment, error) {
	rows, err := d.conn.Query(`
SELECT id, subscriptionId, paymentDate, amount, status, COALESCE(method, ''), COALESCE(notes, '')
FROM payments WHERE subscriptionId = ? ORDER BY paymentDate DESC
`, subscriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Payment
	for rows.Next() {
		var p internal.Payment
		var paymentDate, status string
		if err := rows.Scan(&p.ID, &p.SubscriptionID, &paymentDate, &p.Amount, &status, &p.Method, &p.Notes); err != nil {
			return nil, err
		}
		p.PaymentDate, _ = time.Parse(dateLayout, paymentDate)
		p.Status = internal.PaymentStatus(status)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (d *DB) CreateNotification(n internal.Notification) (internal.Notification, error) {
	result, err := d.conn.Exec(`
INSERT INTO notifications (userId, subscriptionId, type, subject, message, status, scheduledAt)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, n.UserID, n.SubscriptionID, string(n.Type), n.Subject, n.Message, string(n.Status), n.ScheduledAt.UTC().Format(time.RFC3339))
	if err != nil {
		return internal.Notification{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return internal.Notification{}, err
	}
	n.ID = id
	return n, nil
}

// ListDuePendingNotifications returns pending notifications scheduled at or
// before now, oldest first.
func (d *DB) ListDuePendingNotifications(now time.Time) ([]internal.Notification, error) {
	rows, err := d.conn.Query(`
SELECT id, userId, subscriptionId, type, subject, message, status, scheduledAt, sentAt, readAt
FROM notifications WHERE status = ? AND scheduledAt <= ? ORDER BY scheduledAt ASC
`, string(internal.NotificationPending), now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// HasRecentReminder reports whether a pending or sent reminder for the
// subscription was scheduled after the cutoff. Guards against duplicate
// reminders across daily generation runs.
func (d *DB) HasRecentReminder(subscriptionID int64, cutoff time.Time) (bool, error) {
	var count int
	err := d.conn.QueryRow(`
SELECT COUNT(1) FROM notifications
WHERE subscriptionId = ? AND status IN (?, ?) AND scheduledAt > ?
`, subscriptionID, string(internal.NotificationPending), string(internal.NotificationSent), cutoff.UTC().Format(time.RFC3339)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (d *DB) MarkNotificationSent(id int64, at time.Time) error {
	_, err := d.conn.Exec(`UPDATE notifications SET status = ?, sentAt = ? WHERE id = ?`,
		string(internal.NotificationSent), at.UTC().Format(time.RFC3339), id)
	return err
}

func (d *DB) MarkNotificationFailed(id int64) error {
	_, err := d.conn.Exec(`UPDATE notifications SET status = ? WHERE id = ?`, string(internal.NotificationFailed), id)
	return err
}

func (d *DB) MarkNotificationRead(id int64, at time.Time) error {
	_, err := d.conn.Exec(`UPDATE notifications SET status = ?, readAt = ? WHERE id = ?`,
		string(internal.NotificationRead), at.UTC().Format(time.RFC3339), id)
	return err
}

func scanNotification(rows *sql.Rows) (internal.Notification, error) {
	var n internal.Notification
	var typ, status, scheduledAt string
	var sentAt, readAt *string
	if err := rows.Scan(&n.ID, &n.UserID, &n.SubscriptionID, &typ, &n.Subject, &n.Message, &status, &scheduledAt, &sentAt, &readAt); err != nil {
		return internal.Notification{}, err
	}
	n.Type = internal.NotificationType(typ)
	n.Status = internal.NotificationStatus(status)
	n.ScheduledAt, _ = time.Parse(time.RFC3339, scheduledAt)
	if sentAt != nil {
		if parsed, err := time.Parse(time.RFC3339, *sentAt); err == nil {
			n.SentAt = &parsed
		}
	}
	if readAt != nil {
		if parsed, err := time.Parse(time.RFC3339, *readAt); err == nil {
			n.ReadAt = &parsed
		}
	}
	return n, nil
}

func (d *DB) ListActiveUsers() ([]internal.User, error) {
	rows, err := d.conn.Query(`SELECT id, email, COALESCE(fullName, ''), isActive FROM users WHERE isActive = 1 ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.User
	for rows.Next() {
		var u internal.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Active); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (d *DB) GetUser(id int64) (*internal.User, error) {
	var u internal.User
	err := d.conn.QueryRow(`SELECT id, email, COALESCE(fullName, ''), isActive FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.FullName, &u.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *DB) MustGetSubscription(id int64) (internal.Subscription, error) {
	sub, err := d.GetSubscription(id)
	if err != nil {
		return internal.Subscription{}, err
	}
	if sub == nil {
		return internal.Subscription{}, fmt.Errorf("subscription not found: id=%d", id)
	}
	return *sub, nil
}

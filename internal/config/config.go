package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string

	LogLevel string

	MailProvider string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPFolder   string
	IMAPFetchMax int

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	ScanWorkers  int
	ScanDaysBack int

	DefaultCurrency       string
	AnnualAmountThreshold float64

	DefaultReminderDays int
	ReminderDaysAhead   int
	ReminderHour        int
	NotifyFlushInterval time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "subtrack.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		MailProvider: getEnv("MAIL_PROVIDER", "imap"),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPFolder:   getEnv("IMAP_FOLDER", "INBOX"),
		IMAPFetchMax: getEnvInt("IMAP_FETCH_MAX", 200),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		ScanWorkers:  getEnvInt("SCAN_WORKERS", 4),
		ScanDaysBack: getEnvInt("SCAN_DAYS_BACK", 30),

		DefaultCurrency:       getEnv("DEFAULT_CURRENCY", "IDR"),
		AnnualAmountThreshold: getEnvFloat("ANNUAL_AMOUNT_THRESHOLD", 1000000),

		DefaultReminderDays: getEnvInt("DEFAULT_REMINDER_DAYS", 3),
		ReminderDaysAhead:   getEnvInt("REMINDER_DAYS_AHEAD", 7),
		ReminderHour:        getEnvInt("REMINDER_HOUR", 1),
		NotifyFlushInterval: time.Duration(getEnvInt("NOTIFY_FLUSH_MINUTES", 15)) * time.Minute,
	}

	return cfg, nil
}

// MailConfigured reports whether the active mail provider has enough
// configuration to open a mailbox. A scan with no mailbox is a no-op, not an
// error.
func (c Config) MailConfigured() bool {
	switch strings.ToLower(strings.TrimSpace(c.MailProvider)) {
	case "gmail":
		return c.GmailClientID != "" && c.GmailClientSecret != "" && c.GmailRefreshToken != ""
	default:
		return c.IMAPHost != "" && c.IMAPUser != "" && c.IMAPPassword != ""
	}
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}

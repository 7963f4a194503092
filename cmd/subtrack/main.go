package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"subtrack/internal"
	"subtrack/internal/billing"
	"subtrack/internal/config"
	"subtrack/internal/connectors"
	gmailconnector "subtrack/internal/connectors/gmail"
	imapconnector "subtrack/internal/connectors/imap"
	"subtrack/internal/notify"
	"subtrack/internal/pipeline"
	"subtrack/internal/report"
	"subtrack/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	logger := setupLogger(cfg.LogLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx := context.Background()

	cmd := os.Args[1]
	switch cmd {
	case "mail:scan":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		user := fs.Int64("user", 1, "owner user id")
		days := fs.Int("days", cfg.ScanDaysBack, "days back to scan")
		all := fs.Bool("all", false, "scan for all active users")
		_ = fs.Parse(os.Args[2:])

		scan := pipeline.NewScanService(db, makeConnector(cfg, logger), pipeline.DefaultCatalog(), cfg, logger)
		if *all {
			results, err := scan.ScanAll(ctx, *days)
			must(err)
			for userID, created := range results {
				for _, sub := range created {
					printCreated(userID, sub)
				}
			}
			return
		}
		created, err := scan.ScanUser(ctx, *user, *days)
		must(err)
		for _, sub := range created {
			printCreated(*user, sub)
		}
		fmt.Printf("scan done user=%d created=%d\n", *user, len(created))
	case "subs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		user := fs.Int64("user", 1, "owner user id")
		activeOnly := fs.Bool("active", false, "only active subscriptions")
		_ = fs.Parse(os.Args[2:])

		subs, err := db.ListSubscriptions(*user, *activeOnly)
		must(err)
		for _, sub := range subs {
			fmt.Printf("%d\t%s\t%s %.0f\t%s\tnext=%s\n",
				sub.ID, sub.Name, sub.Currency, sub.Amount, sub.Cycle, sub.NextBillingDate.Format("2006-01-02"))
		}
	case "pay:record":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.Int64("id", 0, "subscription id")
		dateStr := fs.String("date", "", "payment date (YYYY-MM-DD, default today)")
		status := fs.String("status", "paid", "paid|pending|failed")
		method := fs.String("method", "Manual Entry", "payment method")
		notes := fs.String("notes", "", "notes")
		_ = fs.Parse(os.Args[2:])
		if *id == 0 {
			must(fmt.Errorf("--id is required"))
		}

		var paymentDate time.Time
		if strings.TrimSpace(*dateStr) != "" {
			paymentDate, err = time.Parse("2006-01-02", *dateStr)
			must(err)
		}

		payments := billing.NewPaymentService(db, logger)
		payment, err := payments.Record(*id, paymentDate, 0, internal.PaymentStatus(*status), *method, *notes)
		must(err)
		fmt.Printf("payment recorded id=%d subscription=%d status=%s\n", payment.ID, payment.SubscriptionID, payment.Status)
	case "reminders:generate":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		daysAhead := fs.Int("days-ahead", cfg.ReminderDaysAhead, "reminder window in days")
		_ = fs.Parse(os.Args[2:])

		reminders := notify.NewReminderService(db, cfg, notify.LogDispatcher{Logger: logger}, logger)
		created, err := reminders.Generate(ctx, *daysAhead)
		must(err)
		fmt.Printf("generated %d reminders\n", len(created))
	case "notifications:send":
		reminders := notify.NewReminderService(db, cfg, notify.LogDispatcher{Logger: logger}, logger)
		sent, err := reminders.SendPending(ctx)
		must(err)
		fmt.Printf("sent %d notifications\n", sent)
	case "report:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		user := fs.Int64("user", 1, "owner user id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])

		outputPath := *out
		if strings.TrimSpace(outputPath) == "" {
			outputPath = filepath.Join(cfg.OutputDir, fmt.Sprintf("subscriptions_%d.xlsx", *user))
		}
		must(report.ExportSubscriptionsXLSX(db, *user, outputPath))
		fmt.Printf("exported report to %s\n", outputPath)
	default:
		usage()
		os.Exit(1)
	}
}

func printCreated(userID int64, sub internal.CreatedSubscription) {
	fmt.Printf("created user=%d id=%d name=%s amount=%.0f cycle=%s next=%s\n",
		userID, sub.ID, sub.Name, sub.Amount, sub.Cycle, sub.NextBillingDate.Format("2006-01-02"))
}

// makeConnector returns nil when the provider is unconfigured; a scan
// without a mailbox is a warning, not an error.
func makeConnector(cfg config.Config, logger *slog.Logger) connectors.MailConnector {
	if !cfg.MailConfigured() {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.MailProvider)) {
	case "gmail":
		conn, err := gmailconnector.NewConnector(cfg)
		if err != nil {
			logger.Warn("gmail connector unavailable", "error", err)
			return nil
		}
		return conn
	default:
		conn, err := imapconnector.NewConnector(cfg)
		if err != nil {
			logger.Warn("imap connector unavailable", "error", err)
			return nil
		}
		return conn
	}
}

func setupLogger(level string) *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      parseLevel(level),
		TimeFormat: time.DateTime,
	}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func usage() {
	fmt.Println("usage: subtrack <command>")
	fmt.Println("commands:")
	fmt.Println("  mail:scan [--user=1] [--days=30] [--all]")
	fmt.Println("  subs:list [--user=1] [--active]")
	fmt.Println("  pay:record --id=1 [--date=YYYY-MM-DD] [--status=paid] [--method=...] [--notes=...]")
	fmt.Println("  reminders:generate [--days-ahead=7]")
	fmt.Println("  notifications:send")
	fmt.Println("  report:xlsx [--user=1] [--out=./out/report.xlsx]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

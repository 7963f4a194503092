package report

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"subtrack/internal"
	"subtrack/internal/billing"
	"subtrack/internal/storage"
)

// ExportSubscriptionsXLSX writes a workbook with one sheet of subscriptions
// (including monthly-equivalent cost) and one sheet of their payment
// history.
func ExportSubscriptionsXLSX(db *storage.DB, userID int64, outputPath string) error {
	subs, err := db.ListSubscriptions(userID, false)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetName(sheet, "Subscriptions")
	sheet = "Subscriptions"

	headers := []string{
		"id", "name", "amount", "currency", "billing_cycle", "billing_day",
		"next_billing_date", "start_date", "monthly_equivalent", "active", "category_id",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, sub := range subs {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
		set(1, sub.ID)
		set(2, sub.Name)
		set(3, sub.Amount)
		set(4, sub.Currency)
		set(5, string(sub.Cycle))
		set(6, sub.BillingDay)
		set(7, sub.NextBillingDate.Format("2006-01-02"))
		set(8, sub.StartDate.Format("2006-01-02"))
		set(9, billing.MonthlyAmount(sub))
		set(10, sub.Active)
		if sub.CategoryID != nil {
			set(11, *sub.CategoryID)
		}
	}

	if err := writePaymentsSheet(f, db, subs); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func writePaymentsSheet(f *excelize.File, db *storage.DB, subs []internal.Subscription) error {
	const sheet = "Payments"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"payment_id", "subscription", "payment_date", "amount", "status", "method"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	r := 2
	for _, sub := range subs {
		payments, err := db.ListPaymentsBySubscription(sub.ID)
		if err != nil {
			return err
		}
		for _, p := range payments {
			set := func(col int, value any) {
				cell, _ := excelize.CoordinatesToCellName(col, r)
				_ = f.SetCellValue(sheet, cell, value)
			}
			set(1, p.ID)
			set(2, sub.Name)
			set(3, p.PaymentDate.Format("2006-01-02"))
			set(4, p.Amount)
			set(5, string(p.Status))
			set(6, p.Method)
			r++
		}
	}
	return nil
}

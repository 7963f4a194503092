package billing

import (
	"time"

	"subtrack/internal"
)

// customCycleDays is the fixed advance for custom cycles. Custom schedules
// carry no period information, so a flat 30 days is used instead of
// month-aware arithmetic.
const customCycleDays = 30

func cycleMonths(cycle internal.BillingCycle) int {
	switch cycle {
	case internal.CycleMonthly:
		return 1
	case internal.CycleQuarterly:
		return 3
	case internal.CycleSemiannual:
		return 6
	case internal.CycleAnnual:
		return 12
	default:
		return 0
	}
}

// Next computes the next occurrence of a recurring charge one cycle after
// anchor. The day of month is preserved; if the target month is shorter, the
// date is clamped to the last day of that month (Jan 31 monthly -> Feb 28,
// or Feb 29 in a leap year). Unknown cycles fall back to the custom 30-day
// advance.
func Next(cycle internal.BillingCycle, anchor time.Time) time.Time {
	months := cycleMonths(cycle)
	if months == 0 {
		return anchor.AddDate(0, 0, customCycleDays)
	}

	year := anchor.Year()
	month := int(anchor.Month()) + months
	year += (month - 1) / 12
	month = (month-1)%12 + 1

	day := anchor.Day()
	if last := daysInMonth(year, time.Month(month)); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, anchor.Location())
}

// AdvanceUntil rolls anchor forward one cycle at a time until the result is
// on or after today. Used when materializing an inferred billing date that
// may already be in the past.
func AdvanceUntil(cycle internal.BillingCycle, anchor, today time.Time) time.Time {
	next := anchor
	for next.Before(today) {
		next = Next(cycle, next)
	}
	return next
}

// MonthlyAmount converts a subscription's charge into its monthly
// equivalent for reporting.
func MonthlyAmount(sub internal.Subscription) float64 {
	switch sub.Cycle {
	case internal.CycleMonthly:
		return sub.Amount
	case internal.CycleQuarterly:
		return sub.Amount / 3
	case internal.CycleSemiannual:
		return sub.Amount / 6
	case internal.CycleAnnual:
		return sub.Amount / 12
	default:
		return sub.Amount / customCycleDays
	}
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

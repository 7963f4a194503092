package billing

import (
	"testing"
	"time"

	"subtrack/internal"
)

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestNext(t *testing.T) {
	cases := []struct {
		name   string
		cycle  internal.BillingCycle
		anchor time.Time
		want   time.Time
	}{
		{name: "monthly mid-month", cycle: internal.CycleMonthly, anchor: d(2024, time.March, 15), want: d(2024, time.April, 15)},
		{name: "monthly jan 31 leap year", cycle: internal.CycleMonthly, anchor: d(2024, time.January, 31), want: d(2024, time.February, 29)},
		{name: "monthly jan 31 non-leap", cycle: internal.CycleMonthly, anchor: d(2023, time.January, 31), want: d(2023, time.February, 28)},
		{name: "monthly mar 31 into april", cycle: internal.CycleMonthly, anchor: d(2024, time.March, 31), want: d(2024, time.April, 30)},
		{name: "monthly december wraps year", cycle: internal.CycleMonthly, anchor: d(2024, time.December, 5), want: d(2025, time.January, 5)},
		{name: "quarterly nov wraps year", cycle: internal.CycleQuarterly, anchor: d(2024, time.November, 30), want: d(2025, time.February, 28)},
		{name: "semiannual aug 31 into feb", cycle: internal.CycleSemiannual, anchor: d(2023, time.August, 31), want: d(2024, time.February, 29)},
		{name: "annual plain", cycle: internal.CycleAnnual, anchor: d(2024, time.May, 10), want: d(2025, time.May, 10)},
		{name: "annual feb 29 into non-leap", cycle: internal.CycleAnnual, anchor: d(2024, time.February, 29), want: d(2025, time.February, 28)},
		{name: "custom fixed 30 days", cycle: internal.CycleCustom, anchor: d(2024, time.January, 15), want: d(2024, time.February, 14)},
		{name: "unknown cycle treated as custom", cycle: internal.BillingCycle("weekly"), anchor: d(2024, time.January, 1), want: d(2024, time.January, 31)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Next(tc.cycle, tc.anchor)
			if !got.Equal(tc.want) {
				t.Fatalf("got %s want %s", got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
			}
		})
	}
}

func TestNextIsIdempotentOnInput(t *testing.T) {
	anchor := d(2024, time.January, 31)
	first := Next(internal.CycleMonthly, anchor)
	second := Next(internal.CycleMonthly, anchor)
	if !first.Equal(second) {
		t.Fatalf("repeat call differs: %s vs %s", first, second)
	}
}

func TestAdvanceUntil(t *testing.T) {
	today := d(2024, time.June, 10)

	got := AdvanceUntil(internal.CycleMonthly, d(2024, time.January, 31), today)
	if !got.Equal(d(2024, time.June, 29)) {
		t.Fatalf("monthly advance: got %s", got.Format("2006-01-02"))
	}

	got = AdvanceUntil(internal.CycleAnnual, d(2023, time.March, 1), today)
	if !got.Equal(d(2025, time.March, 1)) {
		t.Fatalf("annual advance: got %s", got.Format("2006-01-02"))
	}

	// Already in the future: unchanged.
	future := d(2024, time.July, 1)
	if got := AdvanceUntil(internal.CycleMonthly, future, today); !got.Equal(future) {
		t.Fatalf("future anchor moved to %s", got.Format("2006-01-02"))
	}

	// Exactly today counts as not passed.
	if got := AdvanceUntil(internal.CycleMonthly, today, today); !got.Equal(today) {
		t.Fatalf("today moved to %s", got.Format("2006-01-02"))
	}
}

func TestMonthlyAmount(t *testing.T) {
	cases := []struct {
		cycle internal.BillingCycle
		want  float64
	}{
		{internal.CycleMonthly, 120},
		{internal.CycleQuarterly, 40},
		{internal.CycleSemiannual, 20},
		{internal.CycleAnnual, 10},
		{internal.CycleCustom, 4},
	}
	for _, tc := range cases {
		sub := internal.Subscription{Amount: 120, Cycle: tc.cycle}
		if got := MonthlyAmount(sub); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.cycle, got, tc.want)
		}
	}
}

package pipeline

import (
	"testing"
	"time"
)

func TestExtractBillingDate(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"jatuh tempo pada 15-01-2024", "2024-01-15"},
		{"due on 15/01/2024", "2024-01-15"},
		{"billing date 2024-01-15", "2024-01-15"},
		{"renews on january 15, 2024", "2024-01-15"},
		{"renews on January 15 2024", "2024-01-15"},
		{"pembayaran berikutnya 15 januari 2024", "2024-01-15"},
		{"tagihan 5 agustus 2025 sudah terbit", "2025-08-05"},
	}
	for _, tc := range cases {
		got := ExtractBillingDate(tc.text)
		if got == nil {
			t.Fatalf("%q: no date", tc.text)
		}
		if got.Format("2006-01-02") != tc.want {
			t.Fatalf("%q: got %s want %s", tc.text, got.Format("2006-01-02"), tc.want)
		}
	}
}

func TestExtractBillingDateInvalid(t *testing.T) {
	cases := []string{
		"no date here",
		"pada 32-01-2024",     // day out of range
		"on 15-13-2024",       // month out of range
		"on 2024-02-31 sharp", // overflows February
		"back in 15-01-1899",  // year below range
	}
	for _, text := range cases {
		if got := ExtractBillingDate(text); got != nil {
			t.Fatalf("%q: got %s, want nil", text, got.Format("2006-01-02"))
		}
	}
}

func TestExtractBillingDateSkipsToValid(t *testing.T) {
	// The first numeric match is impossible, the second is fine.
	got := ExtractBillingDate("31-02-2024 then 15-03-2024")
	if got == nil || got.Format("2006-01-02") != "2024-03-15" {
		t.Fatalf("got %v", got)
	}
}

func TestValidDate(t *testing.T) {
	if d := validDate(2024, time.February, 29); d == nil {
		t.Fatal("2024-02-29 is a real date")
	}
	if d := validDate(2023, time.February, 29); d != nil {
		t.Fatalf("2023-02-29 accepted: %s", d.Format("2006-01-02"))
	}
	if d := validDate(2101, time.January, 1); d != nil {
		t.Fatal("year above range accepted")
	}
}

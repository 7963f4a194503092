package pipeline

import "testing"

func TestExtractAmountRupiah(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"tagihan netflix sejumlah rp 54.000", 54000},
		{"pembayaran spotify rp. 54.990", 54990},
		{"total idr 1.250.000 jatuh tempo", 1250000},
		{"rp 186000", 186000},
	}
	for _, tc := range cases {
		got := ExtractAmount(tc.text, rpAmountPatterns)
		if got == nil {
			t.Fatalf("%q: no amount", tc.text)
		}
		if *got != tc.want {
			t.Fatalf("%q: got %v want %v", tc.text, *got, tc.want)
		}
	}
}

func TestExtractAmountDollar(t *testing.T) {
	got := ExtractAmount("your github receipt: $4.00 for one seat", usdAmountPatterns)
	if got == nil || *got != 4.00 {
		t.Fatalf("got %v", got)
	}

	got = ExtractAmount("invoice total $1,234.56", usdAmountPatterns)
	if got == nil || *got != 1234.56 {
		t.Fatalf("got %v", got)
	}
}

func TestExtractAmountPatternOrder(t *testing.T) {
	// The rupiah pattern is declared first, so it wins even when a dollar
	// figure appears earlier in the text.
	got := ExtractAmount("$9.99 or rp 150.000 per month", usdAmountPatterns)
	if got == nil || *got != 150000 {
		t.Fatalf("got %v", got)
	}
}

func TestExtractAmountMiss(t *testing.T) {
	if got := ExtractAmount("no numbers to see here", rpAmountPatterns); got != nil {
		t.Fatalf("got %v, want nil", *got)
	}
	// A capture that reduces to nothing parseable is skipped, not an error.
	if got := ExtractAmount("rp .,,.", rpAmountPatterns); got != nil {
		t.Fatalf("got %v, want nil", *got)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"54.000", 54000, true},
		{"1.250.000", 1250000, true},
		{"1,234.56", 1234.56, true},
		{"4.00", 4.00, true},
		{"186000", 186000, true},
		{"54.000.", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseAmount(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("%q: got %v/%v want %v/%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

package pipeline

import (
	"testing"

	"subtrack/internal"
	"subtrack/internal/util"
)

func TestDedupeKeepsMaxAmount(t *testing.T) {
	in := []internal.DetectionCandidate{
		{Service: "netflix", Amount: util.FloatPtr(49000)},
		{Service: "Netflix", Amount: util.FloatPtr(54000)},
		{Service: "spotify", Amount: util.FloatPtr(27500)},
	}
	out := Dedupe(in)
	if len(out) != 2 {
		t.Fatalf("len=%d", len(out))
	}
	if out[0].Service != "Netflix" || *out[0].Amount != 54000 {
		t.Fatalf("got %+v", out[0])
	}
	if out[1].Service != "spotify" || *out[1].Amount != 27500 {
		t.Fatalf("got %+v", out[1])
	}
}

func TestDedupeOrderIndependent(t *testing.T) {
	a := []internal.DetectionCandidate{
		{Service: "netflix", Amount: util.FloatPtr(49000)},
		{Service: "netflix", Amount: util.FloatPtr(54000)},
	}
	b := []internal.DetectionCandidate{
		{Service: "netflix", Amount: util.FloatPtr(54000)},
		{Service: "netflix", Amount: util.FloatPtr(49000)},
	}
	ra, rb := Dedupe(a), Dedupe(b)
	if len(ra) != 1 || len(rb) != 1 || *ra[0].Amount != *rb[0].Amount {
		t.Fatalf("ra=%+v rb=%+v", ra, rb)
	}
}

func TestDedupeDropsMissingAmount(t *testing.T) {
	in := []internal.DetectionCandidate{
		{Service: "netflix"},
		{Service: "spotify", Amount: util.FloatPtr(27500)},
	}
	out := Dedupe(in)
	if len(out) != 1 || out[0].Service != "spotify" {
		t.Fatalf("got %+v", out)
	}
}

func TestDedupeIdempotent(t *testing.T) {
	in := []internal.DetectionCandidate{
		{Service: "netflix", Amount: util.FloatPtr(54000)},
		{Service: "spotify", Amount: util.FloatPtr(27500)},
	}
	once := Dedupe(in)
	twice := Dedupe(once)
	if len(once) != len(twice) {
		t.Fatalf("once=%d twice=%d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Service != twice[i].Service || *once[i].Amount != *twice[i].Amount {
			t.Fatalf("diverged at %d", i)
		}
	}
}

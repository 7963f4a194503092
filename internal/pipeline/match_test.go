package pipeline

import (
	"testing"

	"subtrack/internal"
)

func TestMatchBySender(t *testing.T) {
	catalog := DefaultCatalog()
	rule := catalog.Match(internal.DecodedMessage{
		Sender:  "info@mailer.netflix.com",
		Subject: "your receipt",
	})
	if rule == nil || rule.Name != "netflix" {
		t.Fatalf("got %+v", rule)
	}
	if rule.CategoryID != categoryEntertainment {
		t.Fatalf("category=%d", rule.CategoryID)
	}
}

func TestMatchBySubject(t *testing.T) {
	catalog := DefaultCatalog()
	rule := catalog.Match(internal.DecodedMessage{
		Sender:  "billing@example.com",
		Subject: "tagihan netflix bulan januari",
	})
	if rule == nil || rule.Name != "netflix" {
		t.Fatalf("got %+v", rule)
	}
}

func TestMatchFirstRuleWins(t *testing.T) {
	// namecheap appears under both domain and hosting; domain is declared
	// first so it takes the message.
	catalog := DefaultCatalog()
	rule := catalog.Match(internal.DecodedMessage{
		Sender:  "renewals@namecheap.com",
		Subject: "action required",
	})
	if rule == nil || rule.Name != "domain" {
		t.Fatalf("got %+v", rule)
	}
}

func TestMatchNone(t *testing.T) {
	catalog := DefaultCatalog()
	rule := catalog.Match(internal.DecodedMessage{
		Sender:  "friend@gmail.com",
		Subject: "lunch tomorrow?",
	})
	if rule != nil {
		t.Fatalf("got %+v", rule)
	}
}

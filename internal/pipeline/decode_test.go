package pipeline

import (
	"strings"
	"testing"
	"time"

	"subtrack/internal"
)

func TestDecodePlainText(t *testing.T) {
	raw := "From: billing@netflix.com\r\n" +
		"Subject: Tagihan Netflix\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Tagihan  Netflix sejumlah Rp 54.000\r\n"
	msg := Decode(internal.FetchedMailMessage{
		From:       "billing@netflix.com",
		Subject:    "Tagihan Netflix",
		ReceivedAt: time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
		Raw:        []byte(raw),
	})
	if msg.Subject != "tagihan netflix" {
		t.Fatalf("subject=%q", msg.Subject)
	}
	if msg.Body != "tagihan netflix sejumlah rp 54.000" {
		t.Fatalf("body=%q", msg.Body)
	}
	if msg.ReceivedAt.Day() != 10 {
		t.Fatalf("receivedAt=%s", msg.ReceivedAt)
	}
}

func TestDecodeHTMLOnly(t *testing.T) {
	raw := "From: no-reply@spotify.com\r\n" +
		"Subject: Spotify Premium\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><head><style>p{color:red}</style></head>" +
		"<body><script>track()</script><p>Pembayaran Spotify <b>Rp 54.990</b></p></body></html>\r\n"
	msg := Decode(internal.FetchedMailMessage{
		From: "no-reply@spotify.com",
		Raw:  []byte(raw),
	})
	if !strings.Contains(msg.Body, "pembayaran spotify") || !strings.Contains(msg.Body, "rp 54.990") {
		t.Fatalf("body=%q", msg.Body)
	}
	if strings.Contains(msg.Body, "track()") || strings.Contains(msg.Body, "color:red") {
		t.Fatalf("script/style leaked: %q", msg.Body)
	}
}

func TestDecodeEncodedSubject(t *testing.T) {
	raw := "From: billing@netflix.com\r\n" +
		"Subject: =?utf-8?B?VGFnaWhhbiBOZXRmbGl4?=\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"body\r\n"
	msg := Decode(internal.FetchedMailMessage{Raw: []byte(raw)})
	if msg.Subject != "tagihan netflix" {
		t.Fatalf("subject=%q", msg.Subject)
	}
}

func TestDecodeMissingHeaders(t *testing.T) {
	// No Subject header at all: the fetched metadata fills the gap.
	msg := Decode(internal.FetchedMailMessage{
		From:    "X@Example.com",
		Subject: "Broken  Mail",
		Raw:     []byte("Content-Type: text/plain\r\n\r\nbare body text\r\n"),
	})
	if msg.Subject != "broken mail" {
		t.Fatalf("subject=%q", msg.Subject)
	}
	if msg.Sender != "x@example.com" {
		t.Fatalf("sender=%q", msg.Sender)
	}
	if !strings.Contains(msg.Body, "bare body text") {
		t.Fatalf("body=%q", msg.Body)
	}
}

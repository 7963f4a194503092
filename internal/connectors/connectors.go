package connectors

import (
	"context"
	"time"

	"subtrack/internal"
)

// MailConnector opens a mailbox session and returns raw messages received
// within the given window. Implementations must close the session before
// returning, on every path.
type MailConnector interface {
	FetchSince(ctx context.Context, folder string, since time.Time, max int) ([]internal.FetchedMailMessage, error)
}

package mailer

import "context"

// Transport performs the actual network delivery of one message.
// Implementations must be safe for concurrent use.
type Transport interface {
	// Send delivers a single HTML email and returns the
	// provider-assigned message identifier.
	Send(ctx context.Context, from, to, subject, htmlBody string) (string, error)
}

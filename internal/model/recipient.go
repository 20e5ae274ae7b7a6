// internal/model/recipient.go
package model

import "time"

// Recipient records a single delivery attempt to one address.
// Exactly one of Error/MessageID is meaningful, determined by Status.
type Recipient struct {
    Email     string     `db:"email" json:"email"`
    Status    Status     `db:"status" json:"status"`
    SentAt    *time.Time `db:"sent_at" json:"sentAt,omitempty"`
    Error     string     `db:"error" json:"error,omitempty"`
    MessageID string     `db:"message_id" json:"messageId,omitempty"`
}

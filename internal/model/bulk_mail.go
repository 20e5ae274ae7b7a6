// internal/model/bulk_mail.go
package model

import "time"

// Status values shared by campaigns and individual recipients.
// A campaign is "pending" only while dispatch is still running;
// "partial" applies to campaigns only.
type Status string

const (
    StatusPending Status = "pending"
    StatusSent    Status = "sent"
    StatusFailed  Status = "failed"
    StatusPartial Status = "partial"
)

// BulkMail is one bulk-send request and its persisted outcome.
// Records are immutable once created.
type BulkMail struct {
    ID         string      `db:"id" json:"id"`
    Subject    string      `db:"subject" json:"subject"`
    Content    string      `db:"content" json:"content"`
    Recipients []Recipient `json:"recipients"`
    Status     Status      `db:"status" json:"status"`
    CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
    UpdatedAt  time.Time   `db:"updated_at" json:"updatedAt"`
}

// AggregateStatus derives the campaign status from its recipient
// outcomes. The campaign status is never set independently; this is
// the only place it is computed.
func AggregateStatus(recipients []Recipient) Status {
    sent, failed := 0, 0
    for _, r := range recipients {
        switch r.Status {
        case StatusSent:
            sent++
        case StatusFailed:
            failed++
        }
    }

    switch {
    case sent > 0 && failed == 0:
        return StatusSent
    case sent > 0:
        return StatusPartial
    default:
        return StatusFailed
    }
}

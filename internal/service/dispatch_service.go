// internal/service/dispatch_service.go
package service

import (
    "context"
    "fmt"
    "log"
    "strings"
    "time"
    "unicode/utf8"

    appErrors "github.com/mailforge/bulkmail-backend/internal/errors"
    "github.com/mailforge/bulkmail-backend/internal/mailer"
    "github.com/mailforge/bulkmail-backend/internal/model"
    "github.com/mailforge/bulkmail-backend/internal/queue"
    "github.com/mailforge/bulkmail-backend/internal/repository"
)

const (
    maxSubjectLength   = 200
    defaultSendTimeout = 30 * time.Second
)

// DispatchService runs one bulk send end to end: validate, attempt
// delivery per recipient, aggregate, persist once.
type DispatchService struct {
    Repo      repository.BulkMailRepositoryInterface
    Transport mailer.Transport
    Events    queue.Publisher
    From      string

    // SendTimeout bounds a single delivery attempt. Zero means
    // defaultSendTimeout.
    SendTimeout time.Duration
}

type SendBulkRequest struct {
    Subject    string   `json:"subject"`
    Content    string   `json:"content"`
    Recipients []string `json:"recipients"`
}

// SendBulk attempts delivery to every recipient in request order and
// persists the completed record. Attempts are sequential: one at a
// time keeps us inside typical provider rate limits, and a failure for
// one address never aborts the rest. Duplicate addresses are attempted
// and recorded independently, matching the order they were requested in.
func (s *DispatchService) SendBulk(ctx context.Context, req SendBulkRequest) (*model.BulkMail, error) {
    emails, err := s.validate(req)
    if err != nil {
        return nil, err
    }

    attempts := make([]model.Recipient, 0, len(emails))
    for _, email := range emails {
        attempts = append(attempts, s.attempt(ctx, email, req.Subject, req.Content))
    }

    m := &model.BulkMail{
        Subject:    req.Subject,
        Content:    req.Content,
        Recipients: attempts,
        Status:     model.AggregateStatus(attempts),
    }

    if err := s.Repo.Create(ctx, m); err != nil {
        // Emails already delivered stay delivered; only the record is lost.
        return nil, appErrors.NewPersistence("create bulk mail", err)
    }

    s.publishCompleted(m)
    return m, nil
}

func (s *DispatchService) validate(req SendBulkRequest) ([]string, error) {
    if strings.TrimSpace(req.Subject) == "" {
        return nil, appErrors.NewValidation("subject", "must not be empty")
    }
    if utf8.RuneCountInString(req.Subject) > maxSubjectLength {
        return nil, appErrors.NewValidation("subject", fmt.Sprintf("must not exceed %d characters", maxSubjectLength))
    }
    if strings.TrimSpace(req.Content) == "" {
        return nil, appErrors.NewValidation("content", "must not be empty")
    }
    if len(req.Recipients) == 0 {
        return nil, appErrors.NewValidation("recipients", "at least one recipient is required")
    }

    emails := make([]string, len(req.Recipients))
    for i, raw := range req.Recipients {
        email := model.NormalizeEmail(raw)
        if !model.ValidEmail(email) {
            return nil, appErrors.NewValidation("recipients", fmt.Sprintf("%q is not a valid email address", raw))
        }
        emails[i] = email
    }
    return emails, nil
}

// attempt performs exactly one bounded delivery try. The attempt time
// is recorded whether or not the send succeeds.
func (s *DispatchService) attempt(ctx context.Context, email, subject, content string) model.Recipient {
    timeout := s.SendTimeout
    if timeout <= 0 {
        timeout = defaultSendTimeout
    }
    sendCtx, cancel := context.WithTimeout(ctx, timeout)
    defer cancel()

    now := time.Now().UTC()
    rc := model.Recipient{Email: email, SentAt: &now}

    messageID, err := s.Transport.Send(sendCtx, s.From, email, subject, content)
    if err != nil {
        log.Println("[dispatch] send to", email, "failed:", err)
        rc.Status = model.StatusFailed
        rc.Error = err.Error()
        return rc
    }

    rc.Status = model.StatusSent
    rc.MessageID = messageID
    return rc
}

func (s *DispatchService) publishCompleted(m *model.BulkMail) {
    if s.Events == nil {
        return
    }

    sent, failed := 0, 0
    for _, rc := range m.Recipients {
        if rc.Status == model.StatusSent {
            sent++
        } else {
            failed++
        }
    }

    event := queue.CampaignEvent{
        BulkMailID: m.ID,
        Status:     string(m.Status),
        Recipients: len(m.Recipients),
        Sent:       sent,
        Failed:     failed,
        OccurredAt: time.Now().UTC(),
    }
    if err := s.Events.Publish(event); err != nil {
        log.Println("[dispatch] failed to publish campaign event:", err)
    }
}

// internal/service/history_service.go
package service

import (
    "context"
    "strings"

    "github.com/mailforge/bulkmail-backend/internal/cache"
    "github.com/mailforge/bulkmail-backend/internal/model"
    "github.com/mailforge/bulkmail-backend/internal/repository"
)

// HistoryService answers read-only queries over persisted bulk mails.
// It never mutates a record.
type HistoryService struct {
    Repo  repository.BulkMailRepositoryInterface
    Cache *cache.BulkMailCache // optional
}

type Pagination struct {
    Total      int `json:"total"`
    Page       int `json:"page"`
    Limit      int `json:"limit"`
    TotalPages int `json:"totalPages"`
}

// List returns one page of the filtered, sorted history.
func (s *HistoryService) List(ctx context.Context, f repository.Filter, page, limit int, sort string) ([]model.BulkMail, *Pagination, error) {
    if page < 1 {
        page = 1
    }
    if limit < 1 {
        limit = 20
    }
    if limit > 100 {
        limit = 100
    }
    offset := (page - 1) * limit

    items, total, err := s.Repo.List(ctx, f, sortClause(sort), offset, limit)
    if err != nil {
        return nil, nil, err
    }

    totalPages := (total + limit - 1) / limit
    return items, &Pagination{
        Total:      total,
        Page:       page,
        Limit:      limit,
        TotalPages: totalPages,
    }, nil
}

// GetByID returns a single record. Records are immutable, so a cache
// hit is always current.
func (s *HistoryService) GetByID(ctx context.Context, id string) (*model.BulkMail, error) {
    if s.Cache != nil {
        if m, ok := s.Cache.Get(ctx, id); ok {
            return m, nil
        }
    }

    m, err := s.Repo.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if s.Cache != nil {
        s.Cache.Set(ctx, m)
    }
    return m, nil
}

// GetRecipients returns just the recipient addresses of one record.
func (s *HistoryService) GetRecipients(ctx context.Context, id string) ([]string, error) {
    if s.Cache != nil {
        if m, ok := s.Cache.Get(ctx, id); ok {
            emails := make([]string, len(m.Recipients))
            for i, rc := range m.Recipients {
                emails[i] = rc.Email
            }
            return emails, nil
        }
    }
    return s.Repo.GetRecipients(ctx, id)
}

// sortClause maps the caller-facing sort parameter ("-createdAt",
// "subject", ...) onto a whitelisted ORDER BY clause. The default and
// any unknown field fall back to newest first.
func sortClause(sort string) string {
    direction := "ASC"
    field := sort
    if strings.HasPrefix(sort, "-") {
        direction = "DESC"
        field = sort[1:]
    }

    var column string
    switch field {
    case "subject":
        column = "subject"
    case "status":
        column = "status"
    case "createdAt":
        column = "created_at"
    default:
        return "created_at DESC"
    }
    return column + " " + direction
}

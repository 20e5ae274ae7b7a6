package repository

import (
    "context"
    "database/sql"
    "time"

    sq "github.com/Masterminds/squirrel"
    "github.com/google/uuid"

    appErrors "github.com/mailforge/bulkmail-backend/internal/errors"
    "github.com/mailforge/bulkmail-backend/internal/model"
)

// Filter restricts a history listing. Status is an exact match; Search
// is a case-insensitive substring over subject, content and any
// recipient address.
type Filter struct {
    Status string
    Search string
}

type BulkMailRepositoryInterface interface {
    Create(ctx context.Context, m *model.BulkMail) error
    List(ctx context.Context, f Filter, orderBy string, offset, limit int) ([]model.BulkMail, int, error)
    GetByID(ctx context.Context, id string) (*model.BulkMail, error)
    GetRecipients(ctx context.Context, id string) ([]string, error)
}

type BulkMailRepository struct {
    DB *sql.DB
    sb sq.StatementBuilderType
}

func NewBulkMailRepository(db *sql.DB) *BulkMailRepository {
    return &BulkMailRepository{
        DB: db,
        sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
    }
}

// Create persists one completed bulk mail with all recipient attempts
// in a single transaction. Assigns the record ID when empty.
func (r *BulkMailRepository) Create(ctx context.Context, m *model.BulkMail) error {
    if m.ID == "" {
        m.ID = uuid.New().String()
    }
    now := time.Now().UTC()
    m.CreatedAt = now
    m.UpdatedAt = now

    tx, err := r.DB.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer tx.Rollback()

    query, args, err := r.sb.
        Insert("bulk_mails").
        Columns("id", "subject", "content", "status", "created_at", "updated_at").
        Values(m.ID, m.Subject, m.Content, m.Status, m.CreatedAt, m.UpdatedAt).
        ToSql()
    if err != nil {
        return err
    }
    if _, err := tx.ExecContext(ctx, query, args...); err != nil {
        return err
    }

    for i, rc := range m.Recipients {
        query, args, err := r.sb.
            Insert("mail_recipients").
            Columns("bulk_mail_id", "position", "email", "status", "sent_at", "error", "message_id").
            Values(m.ID, i, rc.Email, rc.Status, rc.SentAt, rc.Error, rc.MessageID).
            ToSql()
        if err != nil {
            return err
        }
        if _, err := tx.ExecContext(ctx, query, args...); err != nil {
            return err
        }
    }

    return tx.Commit()
}

// List returns one page of bulk mails plus the total count of the full
// filtered set. Recipients are loaded for every returned record.
func (r *BulkMailRepository) List(ctx context.Context, f Filter, orderBy string, offset, limit int) ([]model.BulkMail, int, error) {
    base := r.sb.
        Select("id", "subject", "content", "status", "created_at", "updated_at").
        From("bulk_mails")
    countBase := r.sb.Select("COUNT(*)").From("bulk_mails")

    if f.Status != "" {
        base = base.Where(sq.Eq{"status": f.Status})
        countBase = countBase.Where(sq.Eq{"status": f.Status})
    }
    if f.Search != "" {
        like := "%" + f.Search + "%"
        match := sq.Or{
            sq.ILike{"subject": like},
            sq.ILike{"content": like},
            sq.Expr("EXISTS (SELECT 1 FROM mail_recipients mr WHERE mr.bulk_mail_id = bulk_mails.id AND mr.email ILIKE ?)", like),
        }
        base = base.Where(match)
        countBase = countBase.Where(match)
    }

    countQuery, countArgs, err := countBase.ToSql()
    if err != nil {
        return nil, 0, err
    }
    var total int
    if err := r.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
        return nil, 0, err
    }

    query, args, err := base.
        OrderBy(orderBy).
        Offset(uint64(offset)).
        Limit(uint64(limit)).
        ToSql()
    if err != nil {
        return nil, 0, err
    }

    rows, err := r.DB.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    mails := []model.BulkMail{}
    ids := []string{}
    for rows.Next() {
        var m model.BulkMail
        if err := rows.Scan(&m.ID, &m.Subject, &m.Content, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
            return nil, 0, err
        }
        mails = append(mails, m)
        ids = append(ids, m.ID)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }

    if len(ids) > 0 {
        byID, err := r.loadRecipients(ctx, ids)
        if err != nil {
            return nil, 0, err
        }
        for i := range mails {
            mails[i].Recipients = byID[mails[i].ID]
        }
    }

    return mails, total, nil
}

// GetByID fetches one bulk mail with its recipients in attempt order.
func (r *BulkMailRepository) GetByID(ctx context.Context, id string) (*model.BulkMail, error) {
    query, args, err := r.sb.
        Select("id", "subject", "content", "status", "created_at", "updated_at").
        From("bulk_mails").
        Where(sq.Eq{"id": id}).
        ToSql()
    if err != nil {
        return nil, err
    }

    var m model.BulkMail
    err = r.DB.QueryRowContext(ctx, query, args...).
        Scan(&m.ID, &m.Subject, &m.Content, &m.Status, &m.CreatedAt, &m.UpdatedAt)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, appErrors.NewNotFound(id)
        }
        return nil, err
    }

    byID, err := r.loadRecipients(ctx, []string{id})
    if err != nil {
        return nil, err
    }
    m.Recipients = byID[id]
    return &m, nil
}

// GetRecipients returns just the recipient addresses of one bulk mail.
func (r *BulkMailRepository) GetRecipients(ctx context.Context, id string) ([]string, error) {
    var exists bool
    if err := r.DB.QueryRowContext(ctx,
        `SELECT EXISTS (SELECT 1 FROM bulk_mails WHERE id = $1)`, id).Scan(&exists); err != nil {
        return nil, err
    }
    if !exists {
        return nil, appErrors.NewNotFound(id)
    }

    query, args, err := r.sb.
        Select("email").
        From("mail_recipients").
        Where(sq.Eq{"bulk_mail_id": id}).
        OrderBy("position").
        ToSql()
    if err != nil {
        return nil, err
    }

    rows, err := r.DB.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    emails := []string{}
    for rows.Next() {
        var email string
        if err := rows.Scan(&email); err != nil {
            return nil, err
        }
        emails = append(emails, email)
    }
    return emails, rows.Err()
}

func (r *BulkMailRepository) loadRecipients(ctx context.Context, ids []string) (map[string][]model.Recipient, error) {
    query, args, err := r.sb.
        Select("bulk_mail_id", "email", "status", "sent_at", "error", "message_id").
        From("mail_recipients").
        Where(sq.Eq{"bulk_mail_id": ids}).
        OrderBy("bulk_mail_id", "position").
        ToSql()
    if err != nil {
        return nil, err
    }

    rows, err := r.DB.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := make(map[string][]model.Recipient, len(ids))
    for rows.Next() {
        var mailID string
        var rc model.Recipient
        var sentAt sql.NullTime
        if err := rows.Scan(&mailID, &rc.Email, &rc.Status, &sentAt, &rc.Error, &rc.MessageID); err != nil {
            return nil, err
        }
        if sentAt.Valid {
            t := sentAt.Time
            rc.SentAt = &t
        }
        out[mailID] = append(out[mailID], rc)
    }
    return out, rows.Err()
}

var _ BulkMailRepositoryInterface = (*BulkMailRepository)(nil)

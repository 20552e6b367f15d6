package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gstrates/internal/domain"
	"gstrates/internal/port"
)

const historyColumns = `id, record_id, code, description, old_rate, new_rate, changed_at, source_document, reason`

type rateHistoryRepo struct {
	db *sqlx.DB
}

// NewRateHistoryRepo creates a SQL-backed RateHistoryRepository.
func NewRateHistoryRepo(db *sqlx.DB) port.RateHistoryRepository {
	return &rateHistoryRepo{db: db}
}

// List returns history newest first. An empty code lists every record.
func (r *rateHistoryRepo) List(ctx context.Context, code string, offset, limit int) ([]domain.HistoryEntry, int, error) {
	where, args := "", []interface{}{}
	if code != "" {
		where, args = " WHERE code = ?", append(args, code)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(
		`SELECT COUNT(*) FROM rate_history`+where), args...); err != nil {
		return nil, 0, fmt.Errorf("rateHistoryRepo.List count: %w", err)
	}

	var entries []domain.HistoryEntry
	err := r.db.SelectContext(ctx, &entries, r.db.Rebind(
		`SELECT `+historyColumns+` FROM rate_history`+where+
			` ORDER BY changed_at DESC, id LIMIT ? OFFSET ?`),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("rateHistoryRepo.List: %w", err)
	}
	return entries, total, nil
}

func insertHistory(ctx context.Context, ext sqlx.ExtContext, entry *domain.HistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	_, err := ext.ExecContext(ctx, ext.Rebind(
		`INSERT INTO rate_history (`+historyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		entry.ID, entry.RecordID, entry.Code, entry.Description, entry.OldRate, entry.NewRate,
		entry.ChangedAt, entry.SourceDocument, entry.Reason)
	return err
}

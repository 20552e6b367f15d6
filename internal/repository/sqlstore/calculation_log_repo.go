package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gstrates/internal/domain"
	"gstrates/internal/port"
)

const calcLogColumns = `id, input_description, matched_description, code, rate, price, inclusive,
	score, base, tax, total, calculated_at`

type calculationLogRepo struct {
	db *sqlx.DB
}

// NewCalculationLogRepo creates a SQL-backed CalculationLogRepository.
func NewCalculationLogRepo(db *sqlx.DB) port.CalculationLogRepository {
	return &calculationLogRepo{db: db}
}

func (r *calculationLogRepo) Append(ctx context.Context, entry *domain.CalculationLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CalculatedAt.IsZero() {
		entry.CalculatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO calculation_logs (`+calcLogColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		entry.ID, entry.InputDescription, entry.MatchedDescription, entry.Code, entry.Rate,
		entry.Price, entry.Inclusive, entry.Score, entry.Base, entry.Tax, entry.Total, entry.CalculatedAt)
	if err != nil {
		return fmt.Errorf("calculationLogRepo.Append: %w", err)
	}
	return nil
}

func (r *calculationLogRepo) ListRecent(ctx context.Context, limit int) ([]domain.CalculationLogEntry, error) {
	var entries []domain.CalculationLogEntry
	err := r.db.SelectContext(ctx, &entries, r.db.Rebind(
		`SELECT `+calcLogColumns+` FROM calculation_logs ORDER BY calculated_at DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("calculationLogRepo.ListRecent: %w", err)
	}
	return entries, nil
}

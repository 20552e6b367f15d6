package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gstrates/internal/domain"
	"gstrates/internal/port"
)

const rateColumns = `id, code, description, keywords, rate, last_updated, source_document, created_at`

type rateCatalogueRepo struct {
	db *sqlx.DB
}

// NewRateCatalogueRepo creates a SQL-backed RateCatalogue.
func NewRateCatalogueRepo(db *sqlx.DB) port.RateCatalogue {
	return &rateCatalogueRepo{db: db}
}

func (r *rateCatalogueRepo) FindByCodeAndDescription(ctx context.Context, code, description string) (*domain.RateRecord, error) {
	var rec domain.RateRecord
	err := r.db.GetContext(ctx, &rec, r.db.Rebind(
		`SELECT `+rateColumns+` FROM rate_records WHERE code = ? AND description = ?`),
		code, description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("rateCatalogueRepo.FindByCodeAndDescription: %w", err)
	}
	return &rec, nil
}

func (r *rateCatalogueRepo) FindAllByCode(ctx context.Context, code string) ([]domain.RateRecord, error) {
	var recs []domain.RateRecord
	err := r.db.SelectContext(ctx, &recs, r.db.Rebind(
		`SELECT `+rateColumns+` FROM rate_records WHERE code = ? ORDER BY created_at, description`),
		code)
	if err != nil {
		return nil, fmt.Errorf("rateCatalogueRepo.FindAllByCode: %w", err)
	}
	return recs, nil
}

func (r *rateCatalogueRepo) Insert(ctx context.Context, rec *domain.RateRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.LastUpdated.IsZero() {
		rec.LastUpdated = now
	}
	if rec.Keywords == nil {
		rec.Keywords = domain.Keywords{}
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO rate_records (`+rateColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.ID, rec.Code, rec.Description, rec.Keywords, rec.Rate,
		rec.LastUpdated, rec.SourceDocument, rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRecord
		}
		return fmt.Errorf("rateCatalogueRepo.Insert: %w", err)
	}
	return nil
}

// UpdateRate compares and sets the rate, then appends the history entry, in
// one transaction.
func (r *rateCatalogueRepo) UpdateRate(ctx context.Context, upd domain.RateUpdate) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("rateCatalogueRepo.UpdateRate begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, tx.Rebind(
		`UPDATE rate_records SET rate = ?, last_updated = ?, source_document = ?
		 WHERE id = ? AND ABS(rate - ?) < 0.0001`),
		upd.NewRate, now, upd.SourceDocument, upd.RecordID, upd.ExpectedRate)
	if err != nil {
		return fmt.Errorf("rateCatalogueRepo.UpdateRate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rateCatalogueRepo.UpdateRate rows: %w", err)
	}
	if affected == 0 {
		var exists int
		if err := tx.GetContext(ctx, &exists, tx.Rebind(
			`SELECT COUNT(*) FROM rate_records WHERE id = ?`), upd.RecordID); err != nil {
			return fmt.Errorf("rateCatalogueRepo.UpdateRate check: %w", err)
		}
		if exists == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrConcurrentUpdate
	}

	entry := upd.History
	entry.RecordID = upd.RecordID
	entry.ChangedAt = now
	if err := insertHistory(ctx, tx, &entry); err != nil {
		return fmt.Errorf("rateCatalogueRepo.UpdateRate history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("rateCatalogueRepo.UpdateRate commit: %w", err)
	}
	return nil
}

func (r *rateCatalogueRepo) ListAll(ctx context.Context) ([]domain.CatalogueEntry, error) {
	var entries []domain.CatalogueEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT id, code, description, rate FROM rate_records ORDER BY code, description`)
	if err != nil {
		return nil, fmt.Errorf("rateCatalogueRepo.ListAll: %w", err)
	}
	return entries, nil
}

func (r *rateCatalogueRepo) List(ctx context.Context, offset, limit int) ([]domain.RateRecord, int, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	var recs []domain.RateRecord
	err = r.db.SelectContext(ctx, &recs, r.db.Rebind(
		`SELECT `+rateColumns+` FROM rate_records ORDER BY code, description LIMIT ? OFFSET ?`),
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("rateCatalogueRepo.List: %w", err)
	}
	return recs, total, nil
}

func (r *rateCatalogueRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM rate_records`); err != nil {
		return 0, fmt.Errorf("rateCatalogueRepo.Count: %w", err)
	}
	return n, nil
}

func (r *rateCatalogueRepo) CountBySourcePrefix(ctx context.Context, prefix string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(
		`SELECT COUNT(*) FROM rate_records WHERE source_document LIKE ?`), prefix+"%")
	if err != nil {
		return 0, fmt.Errorf("rateCatalogueRepo.CountBySourcePrefix: %w", err)
	}
	return n, nil
}

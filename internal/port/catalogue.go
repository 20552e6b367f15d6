package port

import (
	"context"

	"gstrates/internal/domain"
)

// RateCatalogue is the persistent (code, description) -> rate mapping.
type RateCatalogue interface {
	// FindByCodeAndDescription returns domain.ErrNotFound when no record exists.
	FindByCodeAndDescription(ctx context.Context, code, description string) (*domain.RateRecord, error)
	FindAllByCode(ctx context.Context, code string) ([]domain.RateRecord, error)
	// Insert returns domain.ErrDuplicateRecord when the (code, description) pair exists.
	Insert(ctx context.Context, rec *domain.RateRecord) error
	// UpdateRate changes a record's rate only if it still holds ExpectedRate and
	// writes the history entry in the same transaction. A mismatch returns
	// domain.ErrConcurrentUpdate.
	UpdateRate(ctx context.Context, upd domain.RateUpdate) error
	ListAll(ctx context.Context) ([]domain.CatalogueEntry, error)
	List(ctx context.Context, offset, limit int) ([]domain.RateRecord, int, error)
	Count(ctx context.Context) (int, error)
	CountBySourcePrefix(ctx context.Context, prefix string) (int, error)
}

// RateHistoryRepository reads rate change history. Entries are written by
// RateCatalogue.UpdateRate.
type RateHistoryRepository interface {
	List(ctx context.Context, code string, offset, limit int) ([]domain.HistoryEntry, int, error)
}

// CalculationLogRepository is the append-only audit log of calculations.
type CalculationLogRepository interface {
	Append(ctx context.Context, entry *domain.CalculationLogEntry) error
	ListRecent(ctx context.Context, limit int) ([]domain.CalculationLogEntry, error)
}

package service

import (
	"context"
	"fmt"
	"io"

	"gstrates/internal/domain"
	"gstrates/internal/export"
	"gstrates/internal/port"
)

const exportBatchSize = 1000

// ExportService writes the whole catalogue in a download format.
type ExportService interface {
	Export(ctx context.Context, w io.Writer, format export.Format) error
}

type exportService struct {
	catalogue port.RateCatalogue
}

// NewExportService creates a new ExportService implementation.
func NewExportService(catalogue port.RateCatalogue) ExportService {
	return &exportService{catalogue: catalogue}
}

func (s *exportService) Export(ctx context.Context, w io.Writer, format export.Format) error {
	var all []domain.RateRecord
	for offset := 0; ; offset += exportBatchSize {
		batch, total, err := s.catalogue.List(ctx, offset, exportBatchSize)
		if err != nil {
			return fmt.Errorf("export: listing rates: %w", err)
		}
		all = append(all, batch...)
		if len(batch) < exportBatchSize || len(all) >= total {
			break
		}
	}
	return export.Write(w, format, all)
}

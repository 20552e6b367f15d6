package document

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"gstrates/internal/domain"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// CSVSource reads a CSV file as a single grid page. Ragged rows are allowed.
type CSVSource struct{}

func (CSVSource) Type() domain.FileType { return domain.FileTypeCSV }

func (CSVSource) Pages(_ context.Context, data []byte) ([]domain.Page, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %v", domain.ErrInvalidDocument, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return []domain.Page{{Number: 1, Grid: records}}, nil
}

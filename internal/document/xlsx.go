package document

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"gstrates/internal/domain"
)

// XLSXSource reads every worksheet as one grid page.
type XLSXSource struct{}

func (XLSXSource) Type() domain.FileType { return domain.FileTypeXLSX }

func (XLSXSource) Pages(ctx context.Context, data []byte) ([]domain.Page, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx open: %v", domain.ErrInvalidDocument, err)
	}
	defer func() { _ = f.Close() }()

	var pages []domain.Page
	for i, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: xlsx sheet %q: %v", domain.ErrInvalidDocument, sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		pages = append(pages, domain.Page{Number: i + 1, Grid: rows})
	}
	return pages, nil
}

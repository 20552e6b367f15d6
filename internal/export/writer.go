// Package export writes the rate catalogue as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gstrates/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentTypes maps Format to its MIME type.
var ContentTypes = map[Format]string{
	FormatCSV:  "text/csv; charset=utf-8",
	FormatXLSX: domain.AllowedFileTypes[domain.FileTypeXLSX],
}

// BOM makes Excel on Windows read the CSV as UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

const sheetName = "Rates"

var columns = []string{
	"HSN Code",
	"Description",
	"GST Rate",
	"Keywords",
	"Source Document",
	"Last Updated",
	"Created At",
}

// ParseFormat accepts "csv" or "xlsx", case-insensitively. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", domain.ErrInvalidInput, s)
	}
}

// BuildFilename returns gst_rates_{YYYY-MM-DD}.{ext}.
func BuildFilename(f Format, now time.Time) string {
	return fmt.Sprintf("gst_rates_%s.%s", now.Format("2006-01-02"), f)
}

func recordToRow(r *domain.RateRecord) []string {
	return []string{
		r.Code,
		r.Description,
		strconv.FormatFloat(r.Rate, 'f', -1, 64),
		strings.Join(r.Keywords, " "),
		r.SourceDocument,
		r.LastUpdated.UTC().Format(time.RFC3339),
		r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// WriteCSV writes a BOM, the header row and one row per record.
func WriteCSV(w io.Writer, records []domain.RateRecord) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for i := range records {
		if err := cw.Write(recordToRow(&records[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook. Rates are numeric cells.
func WriteXLSX(w io.Writer, records []domain.RateRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i := range records {
		row := recordToRow(&records[i])
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cells[2] = records[i].Rate

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

// Write dispatches on format.
func Write(w io.Writer, f Format, records []domain.RateRecord) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, records)
	case FormatCSV:
		return WriteCSV(w, records)
	default:
		return fmt.Errorf("%w: unsupported export format %q", domain.ErrInvalidInput, f)
	}
}

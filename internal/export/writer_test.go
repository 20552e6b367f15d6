package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gstrates/internal/domain"
)

var sampleRecords = []domain.RateRecord{
	{
		Code:           "0902",
		Description:    "Tea leaves, green",
		Keywords:       domain.Keywords{"tea", "leaves", "green"},
		Rate:           2.5,
		SourceDocument: "seed_rates.csv",
		LastUpdated:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		CreatedAt:      time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC),
	},
	{Code: "1905", Description: "Biscuits", Rate: 9},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, BOM))

	rows, err := csv.NewReader(bytes.NewReader(data[len(BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, columns, rows[0])
	assert.Equal(t, []string{
		"0902", "Tea leaves, green", "2.5", "tea leaves green", "seed_rates.csv",
		"2026-03-01T12:00:00Z", "2026-01-01T09:30:00Z",
	}, rows[1])
	assert.Equal(t, "9", rows[2][2])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleRecords))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "HSN Code", rows[0][0])
	assert.Equal(t, "Tea leaves, green", rows[1][1])
	assert.Equal(t, "2.5", rows[1][2])
	assert.Equal(t, "1905", rows[2][0])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "gst_rates_2026-10-14.xlsx", BuildFilename(FormatXLSX, now))
}

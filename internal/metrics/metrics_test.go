package metrics_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstrates/internal/domain"
	"gstrates/internal/metrics"
)

type fixedCount int

func (f fixedCount) Count(context.Context) (int, error) { return int(f), nil }

func TestCollector_ObserveIngest(t *testing.T) {
	c := metrics.New(fixedCount(42))
	reg := prometheus.NewRegistry()
	c.Register(reg)

	c.ObserveIngest(&domain.IngestReport{Inserted: 3, Updated: 1, Unchanged: 2}, nil)
	c.ObserveIngest(nil, errors.New("boom"))
	require.NoError(t, c.Refresh(context.Background()))

	n, err := testutil.GatherAndCount(reg, "gstrates_ingest_documents_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	expected := `
# HELP gstrates_catalogue_records Rate records in the catalogue
# TYPE gstrates_catalogue_records gauge
gstrates_catalogue_records 42
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "gstrates_catalogue_records"))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *metrics.Collector
	assert.NotPanics(t, func() {
		c.ObserveIngest(&domain.IngestReport{}, nil)
		c.ObserveResolution(&domain.Resolution{Matched: true})
		_ = c.Refresh(context.Background())
	})
}

func TestCollector_ObserveResolution(t *testing.T) {
	c := metrics.New(nil)
	reg := prometheus.NewRegistry()
	c.Register(reg)

	c.ObserveResolution(&domain.Resolution{Matched: true, Score: 100, Method: domain.MethodPolicy})
	c.ObserveResolution(&domain.Resolution{Matched: false, Score: 40, Method: domain.MethodSuggestion})
	c.ObserveResolution(nil)

	n, err := testutil.GatherAndCount(reg, "gstrates_resolutions_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

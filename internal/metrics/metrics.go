// Package metrics exposes ingestion and resolution counters for Prometheus.
// A nil *Collector is valid and records nothing.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"gstrates/internal/domain"
)

const namespace = "gstrates"

// Outcome labels for documents and resolutions.
const (
	DocumentIngested = "ingested"
	DocumentFailed   = "failed"

	ResolveMatched     = "matched"
	ResolveUnmatched   = "unmatched"
	ResolveNoCatalogue = "no_catalogue"
)

// CatalogueCounter reports the current catalogue size.
type CatalogueCounter interface {
	Count(ctx context.Context) (int, error)
}

type Collector struct {
	catalogue CatalogueCounter

	documents   *prometheus.CounterVec
	rows        *prometheus.CounterVec
	resolutions *prometheus.CounterVec
	scores      *prometheus.HistogramVec
	catalogueSz prometheus.Gauge
}

func New(catalogue CatalogueCounter) *Collector {
	c := &Collector{catalogue: catalogue}

	c.documents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_documents_total",
		Help:      "Documents processed by ingestion, by outcome",
	}, []string{"outcome"})

	c.rows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_rows_total",
		Help:      "Reconciled rows by action (inserted, updated, merged, unchanged)",
	}, []string{"action"})

	c.resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolutions_total",
		Help:      "Description resolutions by outcome and method",
	}, []string{"outcome", "method"})

	c.scores = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resolution_score",
		Help:      "Reported confidence of resolutions",
		Buckets:   []float64{10, 20, 30, 40, 50, 60, 65, 70, 80, 90, 100},
	}, []string{"outcome"})

	c.catalogueSz = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalogue_records",
		Help:      "Rate records in the catalogue",
	})

	return c
}

func (c *Collector) Register(reg prometheus.Registerer) {
	reg.MustRegister(c.documents, c.rows, c.resolutions, c.scores, c.catalogueSz)
}

// Refresh recomputes the catalogue gauge (call on each scrape).
func (c *Collector) Refresh(ctx context.Context) error {
	if c == nil || c.catalogue == nil {
		return nil
	}
	n, err := c.catalogue.Count(ctx)
	if err != nil {
		return err
	}
	c.catalogueSz.Set(float64(n))
	return nil
}

// ObserveIngest records one document and, on success, its row actions.
func (c *Collector) ObserveIngest(report *domain.IngestReport, err error) {
	if c == nil {
		return
	}
	if err != nil || report == nil {
		c.documents.WithLabelValues(DocumentFailed).Inc()
		return
	}
	c.documents.WithLabelValues(DocumentIngested).Inc()
	c.rows.WithLabelValues(string(domain.ChangeInserted)).Add(float64(report.Inserted))
	c.rows.WithLabelValues(string(domain.ChangeUpdated)).Add(float64(report.Updated))
	c.rows.WithLabelValues(string(domain.ChangeMerged)).Add(float64(report.Merged))
	c.rows.WithLabelValues(string(domain.ChangeUnchanged)).Add(float64(report.Unchanged))
}

// ObserveResolution records a resolution; a nil res counts as no catalogue.
func (c *Collector) ObserveResolution(res *domain.Resolution) {
	if c == nil {
		return
	}
	if res == nil {
		c.resolutions.WithLabelValues(ResolveNoCatalogue, "").Inc()
		return
	}
	outcome := ResolveUnmatched
	if res.Matched {
		outcome = ResolveMatched
	}
	c.resolutions.WithLabelValues(outcome, string(res.Method)).Inc()
	c.scores.WithLabelValues(outcome).Observe(res.Score)
}

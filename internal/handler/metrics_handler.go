package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gstrates/internal/metrics"
)

// MetricsHandler serves Prometheus metrics, refreshing gauges on each scrape.
type MetricsHandler struct {
	collector *metrics.Collector
	handler   http.Handler
}

// NewMetricsHandler creates a new MetricsHandler over gatherer.
func NewMetricsHandler(collector *metrics.Collector, gatherer prometheus.Gatherer) *MetricsHandler {
	return &MetricsHandler{
		collector: collector,
		handler:   promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}
}

// Serve handles GET /metrics
func (h *MetricsHandler) Serve(c *gin.Context) {
	if err := h.collector.Refresh(c.Request.Context()); err != nil {
		zap.L().Warn("metricsHandler.Serve: refresh failed", zap.Error(err))
	}
	h.handler.ServeHTTP(c.Writer, c.Request)
}

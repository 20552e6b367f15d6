package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gstrates/internal/domain"
	"gstrates/internal/export"
	"gstrates/internal/service"
)

// CalcRequest is the body of POST /api/v1/calc.
type CalcRequest struct {
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price" binding:"required"`
	Inclusive   bool    `json:"inclusive"`
	TopK        int     `json:"top_k"`
}

// MatchView is the matched catalogue line of a calculation.
type MatchView struct {
	HSN         string  `json:"hsn"`
	Description string  `json:"description"`
	Rate        float64 `json:"rate"`
	CGSTRate    float64 `json:"cgst_rate"`
	SGSTRate    float64 `json:"sgst_rate"`
}

// CalcView is the monetary part of a calculation.
type CalcView struct {
	Base      float64 `json:"base"`
	GST       float64 `json:"gst"`
	Total     float64 `json:"total"`
	Rate      float64 `json:"rate"`
	CGST      float64 `json:"cgst"`
	SGST      float64 `json:"sgst"`
	Inclusive bool    `json:"inclusive"`
}

// SuggestionView is one ranked alternative for an unmatched description.
type SuggestionView struct {
	HSN         string  `json:"hsn"`
	Description string  `json:"description"`
	Rate        float64 `json:"rate"`
	Score       float64 `json:"score"`
}

// CalcResponse is the data of a calculation or lookup.
type CalcResponse struct {
	Query       string                  `json:"query"`
	Matched     bool                    `json:"matched"`
	Score       float64                 `json:"score"`
	Method      domain.ResolutionMethod `json:"method"`
	Match       *MatchView              `json:"match,omitempty"`
	Calc        *CalcView               `json:"calc,omitempty"`
	Suggestions []SuggestionView        `json:"suggestions,omitempty"`
}

// RateHandler handles catalogue queries and calculations.
type RateHandler struct {
	rateService   service.RateService
	exportService service.ExportService
	splitRate     bool
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rateService service.RateService, exportService service.ExportService, splitRate bool) *RateHandler {
	return &RateHandler{rateService: rateService, exportService: exportService, splitRate: splitRate}
}

func (h *RateHandler) toResponse(res *domain.Resolution, b *domain.Breakdown) CalcResponse {
	resp := CalcResponse{
		Query:   res.Query,
		Matched: res.Matched,
		Score:   res.Score,
		Method:  res.Method,
	}
	if res.Match != nil {
		// Rate is the total GST; the stored rate is the CGST half in split mode.
		total, component := res.Match.Rate, res.Match.Rate/2
		if h.splitRate {
			total, component = res.Match.Rate*2, res.Match.Rate
		}
		resp.Match = &MatchView{
			HSN:         res.Match.Code,
			Description: res.Match.Description,
			Rate:        total,
			CGSTRate:    component,
			SGSTRate:    component,
		}
	}
	if b != nil {
		resp.Calc = &CalcView{
			Base:      b.Base,
			GST:       b.Tax,
			Total:     b.Total,
			Rate:      b.EffectiveRate,
			CGST:      b.CGST,
			SGST:      b.SGST,
			Inclusive: b.Inclusive,
		}
	}
	for _, s := range res.Suggestions {
		resp.Suggestions = append(resp.Suggestions, SuggestionView{
			HSN:         s.Entry.Code,
			Description: s.Entry.Description,
			Rate:        s.Entry.Rate,
			Score:       s.Score,
		})
	}
	return resp
}

// Calculate handles POST /api/v1/calc
func (h *RateHandler) Calculate(c *gin.Context) {
	var req CalcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "description and a positive price are required")
		return
	}

	out, err := h.rateService.Calculate(c.Request.Context(), service.CalcInput{
		Description: req.Description,
		Price:       req.Price,
		Inclusive:   req.Inclusive,
		TopK:        req.TopK,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	if out.AuditErr != nil {
		c.Header("X-Audit-Status", "failed")
	}

	RespondOK(c, h.toResponse(out.Resolution, out.Breakdown))
}

// Lookup handles GET /api/v1/calculate/:product
func (h *RateHandler) Lookup(c *gin.Context) {
	res, err := h.rateService.Lookup(c.Request.Context(), c.Param("product"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, h.toResponse(res, nil))
}

// Search handles GET /api/v1/search?q=&limit=
func (h *RateHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "q is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	results, err := h.rateService.Search(c.Request.Context(), q, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, results)
}

// ListRates handles GET /api/v1/rates
func (h *RateHandler) ListRates(c *gin.Context) {
	offset, limit := parsePagination(c)
	records, total, err := h.rateService.ListRates(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, records, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByCode handles GET /api/v1/rates/:code
func (h *RateHandler) GetByCode(c *gin.Context) {
	records, err := h.rateService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, records)
}

// ListHistory handles GET /api/v1/history?code=
func (h *RateHandler) ListHistory(c *gin.Context) {
	offset, limit := parsePagination(c)
	entries, total, err := h.rateService.ListHistory(c.Request.Context(), c.Query("code"), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, entries, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ListCalculations handles GET /api/v1/calculations?limit=
func (h *RateHandler) ListCalculations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := h.rateService.ListCalculations(c.Request.Context(), limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, entries)
}

// Stats handles GET /api/v1/stats
func (h *RateHandler) Stats(c *gin.Context) {
	stats, err := h.rateService.Stats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, stats)
}

// Export handles GET /api/v1/rates/export?format=csv|xlsx
func (h *RateHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}

	// Buffer so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.exportService.Export(c.Request.Context(), &buf, format); err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename(format, time.Now())
	zap.L().Info("rateHandler.Export: catalogue exported",
		zap.String("format", string(format)), zap.Int("bytes", buf.Len()))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, export.ContentTypes[format], buf.Bytes())
}

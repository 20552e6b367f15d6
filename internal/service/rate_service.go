package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"gstrates/internal/domain"
	"gstrates/internal/metrics"
	"gstrates/internal/port"
	"gstrates/internal/resolver"
	"gstrates/internal/taxcalc"
)

const defaultCalcLogLimit = 100

// CalcInput is the DTO for a resolve-and-calculate request.
type CalcInput struct {
	Description string
	Price       float64
	Inclusive   bool
	TopK        int
}

// RateService answers catalogue queries and tax calculations.
type RateService interface {
	Calculate(ctx context.Context, input CalcInput) (*domain.CalcOutcome, error)
	Lookup(ctx context.Context, product string) (*domain.Resolution, error)
	Search(ctx context.Context, query string, limit int) ([]domain.ScoredEntry, error)
	ListRates(ctx context.Context, offset, limit int) ([]domain.RateRecord, int, error)
	GetByCode(ctx context.Context, code string) ([]domain.RateRecord, error)
	ListHistory(ctx context.Context, code string, offset, limit int) ([]domain.HistoryEntry, int, error)
	ListCalculations(ctx context.Context, limit int) ([]domain.CalculationLogEntry, error)
	Stats(ctx context.Context) (*domain.CatalogueStats, error)
}

type rateService struct {
	catalogue port.RateCatalogue
	history   port.RateHistoryRepository
	calcLogs  port.CalculationLogRepository
	resolver  *resolver.Resolver
	metrics   *metrics.Collector
	splitRate bool
}

// NewRateService creates a new RateService. splitRate treats stored rates as
// the CGST half of the total GST.
func NewRateService(
	catalogue port.RateCatalogue,
	history port.RateHistoryRepository,
	calcLogs port.CalculationLogRepository,
	res *resolver.Resolver,
	collector *metrics.Collector,
	splitRate bool,
) RateService {
	return &rateService{
		catalogue: catalogue,
		history:   history,
		calcLogs:  calcLogs,
		resolver:  res,
		metrics:   collector,
		splitRate: splitRate,
	}
}

// resolve takes a fresh catalogue snapshot so ingestion is visible to the
// next request.
func (s *rateService) resolve(ctx context.Context, query string, topK int) (*domain.Resolution, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}
	entries, err := s.catalogue.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalogue: %w", err)
	}
	res, err := s.resolver.Resolve(query, entries, topK)
	if err != nil {
		if errors.Is(err, domain.ErrNoCatalogueData) {
			s.metrics.ObserveResolution(nil)
		}
		return nil, err
	}
	s.metrics.ObserveResolution(res)
	return res, nil
}

func (s *rateService) Calculate(ctx context.Context, input CalcInput) (*domain.CalcOutcome, error) {
	if math.IsNaN(input.Price) || math.IsInf(input.Price, 0) || input.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be greater than zero", domain.ErrInvalidInput)
	}

	res, err := s.resolve(ctx, input.Description, input.TopK)
	if err != nil {
		return nil, err
	}
	out := &domain.CalcOutcome{Resolution: res}
	if !res.Matched {
		return out, nil
	}

	breakdown, err := taxcalc.Calculate(taxcalc.Input{
		Price:     input.Price,
		Rate:      res.Match.Rate,
		Inclusive: input.Inclusive,
		Split:     s.splitRate,
	})
	if err != nil {
		return nil, err
	}
	out.Breakdown = breakdown

	entry := &domain.CalculationLogEntry{
		InputDescription:   res.Query,
		MatchedDescription: res.Match.Description,
		Code:               res.Match.Code,
		Rate:               res.Match.Rate,
		Price:              input.Price,
		Inclusive:          input.Inclusive,
		Score:              res.Score,
		Base:               breakdown.Base,
		Tax:                breakdown.Tax,
		Total:              breakdown.Total,
	}
	if err := s.calcLogs.Append(ctx, entry); err != nil {
		zap.L().Warn("rateService.Calculate: audit log append failed",
			zap.String("description", res.Query), zap.Error(err))
		out.AuditErr = err
	}
	return out, nil
}

func (s *rateService) Lookup(ctx context.Context, product string) (*domain.Resolution, error) {
	return s.resolve(ctx, product, 0)
}

func (s *rateService) Search(ctx context.Context, query string, limit int) ([]domain.ScoredEntry, error) {
	entries, err := s.catalogue.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalogue: %w", err)
	}
	if len(entries) == 0 {
		return nil, domain.ErrNoCatalogueData
	}
	return s.resolver.Rank(strings.TrimSpace(query), entries, limit), nil
}

func (s *rateService) ListRates(ctx context.Context, offset, limit int) ([]domain.RateRecord, int, error) {
	return s.catalogue.List(ctx, offset, limit)
}

// codePrefixFallback lists the shorter HSN headings tried after an exact miss.
var codePrefixFallback = []int{6, 4}

// GetByCode returns the records for code, falling back from 8 to 6 to 4
// digit headings when the exact code is not catalogued.
func (s *rateService) GetByCode(ctx context.Context, code string) ([]domain.RateRecord, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", domain.ErrInvalidInput)
	}

	candidates := []string{code}
	for _, n := range codePrefixFallback {
		if len(code) > n {
			candidates = append(candidates, code[:n])
		}
	}

	for _, c := range candidates {
		records, err := s.catalogue.FindAllByCode(ctx, c)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			return records, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *rateService) ListHistory(ctx context.Context, code string, offset, limit int) ([]domain.HistoryEntry, int, error) {
	return s.history.List(ctx, strings.TrimSpace(code), offset, limit)
}

func (s *rateService) ListCalculations(ctx context.Context, limit int) ([]domain.CalculationLogEntry, error) {
	if limit <= 0 || limit > defaultCalcLogLimit {
		limit = defaultCalcLogLimit
	}
	return s.calcLogs.ListRecent(ctx, limit)
}

func (s *rateService) Stats(ctx context.Context) (*domain.CatalogueStats, error) {
	total, err := s.catalogue.Count(ctx)
	if err != nil {
		return nil, err
	}
	seed, err := s.catalogue.CountBySourcePrefix(ctx, domain.SeedSourcePrefix)
	if err != nil {
		return nil, err
	}
	return &domain.CatalogueStats{Total: total, Seed: seed, Uploaded: total - seed}, nil
}

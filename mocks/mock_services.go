package mocks

import (
	"context"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"

	"gstrates/internal/domain"
	"gstrates/internal/export"
	"gstrates/internal/service"
)

// MockRateService is a mock implementation of service.RateService.
type MockRateService struct {
	mock.Mock
}

func (m *MockRateService) Calculate(ctx context.Context, input service.CalcInput) (*domain.CalcOutcome, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CalcOutcome), args.Error(1)
}

func (m *MockRateService) Lookup(ctx context.Context, product string) (*domain.Resolution, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resolution), args.Error(1)
}

func (m *MockRateService) Search(ctx context.Context, query string, limit int) ([]domain.ScoredEntry, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredEntry), args.Error(1)
}

func (m *MockRateService) ListRates(ctx context.Context, offset, limit int) ([]domain.RateRecord, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.RateRecord), args.Int(1), args.Error(2)
}

func (m *MockRateService) GetByCode(ctx context.Context, code string) ([]domain.RateRecord, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateRecord), args.Error(1)
}

func (m *MockRateService) ListHistory(ctx context.Context, code string, offset, limit int) ([]domain.HistoryEntry, int, error) {
	args := m.Called(ctx, code, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Int(1), args.Error(2)
}

func (m *MockRateService) ListCalculations(ctx context.Context, limit int) ([]domain.CalculationLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CalculationLogEntry), args.Error(1)
}

func (m *MockRateService) Stats(ctx context.Context) (*domain.CatalogueStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogueStats), args.Error(1)
}

// MockIngestService is a mock implementation of service.IngestService.
type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Ingest(ctx context.Context, input service.IngestInput) (*domain.IngestReport, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IngestReport), args.Error(1)
}

func (m *MockIngestService) SeedIfEmpty(ctx context.Context, fsys afero.Fs, dir string) (int, error) {
	args := m.Called(ctx, fsys, dir)
	return args.Int(0), args.Error(1)
}

// MockExportService is a mock implementation of service.ExportService.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Export(ctx context.Context, w io.Writer, format export.Format) error {
	args := m.Called(ctx, w, format)
	if fn, ok := args.Get(0).(func(io.Writer) error); ok {
		return fn(w)
	}
	return args.Error(0)
}

// MockTokenService is a mock implementation of service.TokenService.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Mint(subject string) (string, time.Time, error) {
	args := m.Called(subject)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

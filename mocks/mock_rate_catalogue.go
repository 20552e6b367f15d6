package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gstrates/internal/domain"
)

// MockRateCatalogue is a mock implementation of port.RateCatalogue.
type MockRateCatalogue struct {
	mock.Mock
}

func (m *MockRateCatalogue) FindByCodeAndDescription(ctx context.Context, code, description string) (*domain.RateRecord, error) {
	args := m.Called(ctx, code, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateRecord), args.Error(1)
}

func (m *MockRateCatalogue) FindAllByCode(ctx context.Context, code string) ([]domain.RateRecord, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateRecord), args.Error(1)
}

func (m *MockRateCatalogue) Insert(ctx context.Context, rec *domain.RateRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRateCatalogue) UpdateRate(ctx context.Context, upd domain.RateUpdate) error {
	args := m.Called(ctx, upd)
	return args.Error(0)
}

func (m *MockRateCatalogue) ListAll(ctx context.Context) ([]domain.CatalogueEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CatalogueEntry), args.Error(1)
}

func (m *MockRateCatalogue) List(ctx context.Context, offset, limit int) ([]domain.RateRecord, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.RateRecord), args.Int(1), args.Error(2)
}

func (m *MockRateCatalogue) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRateCatalogue) CountBySourcePrefix(ctx context.Context, prefix string) (int, error) {
	args := m.Called(ctx, prefix)
	return args.Int(0), args.Error(1)
}

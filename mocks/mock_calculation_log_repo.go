package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gstrates/internal/domain"
)

// MockCalculationLogRepo is a mock implementation of port.CalculationLogRepository.
type MockCalculationLogRepo struct {
	mock.Mock
}

func (m *MockCalculationLogRepo) Append(ctx context.Context, entry *domain.CalculationLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCalculationLogRepo) ListRecent(ctx context.Context, limit int) ([]domain.CalculationLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CalculationLogEntry), args.Error(1)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gstrates/internal/domain"
)

// MockRateHistoryRepo is a mock implementation of port.RateHistoryRepository.
type MockRateHistoryRepo struct {
	mock.Mock
}

func (m *MockRateHistoryRepo) List(ctx context.Context, code string, offset, limit int) ([]domain.HistoryEntry, int, error) {
	args := m.Called(ctx, code, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Int(1), args.Error(2)
}

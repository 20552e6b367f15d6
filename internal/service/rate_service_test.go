package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gstrates/internal/domain"
	"gstrates/internal/policy"
	"gstrates/internal/resolver"
	"gstrates/internal/service"
	"gstrates/mocks"
)

var catalogueSnapshot = []domain.CatalogueEntry{
	{ID: uuid.New(), Code: "1905", Description: "Biscuits and similar baked products", Rate: 9},
	{ID: uuid.New(), Code: "2523", Description: "Portland cement, aluminous cement, slag cement", Rate: 14},
	{ID: uuid.New(), Code: "0101", Description: "Live horses", Rate: 6},
}

type rateFixture struct {
	cat     *mocks.MockRateCatalogue
	history *mocks.MockRateHistoryRepo
	logs    *mocks.MockCalculationLogRepo
	svc     service.RateService
}

func newRateFixture() *rateFixture {
	f := &rateFixture{
		cat:     new(mocks.MockRateCatalogue),
		history: new(mocks.MockRateHistoryRepo),
		logs:    new(mocks.MockCalculationLogRepo),
	}
	res := resolver.New(nil, policy.Default(), resolver.DefaultOptions())
	f.svc = service.NewRateService(f.cat, f.history, f.logs, res, nil, true)
	return f
}

func TestRateService_Calculate_PolicyMatch(t *testing.T) {
	f := newRateFixture()
	f.cat.On("ListAll", mock.Anything).Return(catalogueSnapshot, nil)
	f.logs.On("Append", mock.Anything, mock.MatchedBy(func(e *domain.CalculationLogEntry) bool {
		return e.Code == "1905" && e.InputDescription == "chocolate biscuit" && e.Total == 118
	})).Return(nil).Once()

	out, err := f.svc.Calculate(context.Background(), service.CalcInput{Description: "chocolate biscuit", Price: 100})

	require.NoError(t, err)
	require.True(t, out.Resolution.Matched)
	assert.Equal(t, domain.MethodPolicy, out.Resolution.Method)
	assert.Equal(t, 100.0, out.Resolution.Score)
	assert.Equal(t, "1905", out.Resolution.Match.Code)
	require.NotNil(t, out.Breakdown)
	assert.Equal(t, 18.0, out.Breakdown.EffectiveRate)
	assert.Equal(t, 18.0, out.Breakdown.Tax)
	assert.Equal(t, 9.0, out.Breakdown.CGST)
	assert.Equal(t, 9.0, out.Breakdown.SGST)
	assert.Equal(t, 118.0, out.Breakdown.Total)
	assert.NoError(t, out.AuditErr)
	f.logs.AssertExpectations(t)
}

func TestRateService_Calculate_AuditFailureDoesNotFail(t *testing.T) {
	f := newRateFixture()
	f.cat.On("ListAll", mock.Anything).Return(catalogueSnapshot, nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(errors.New("log table locked"))

	out, err := f.svc.Calculate(context.Background(), service.CalcInput{Description: "portland cement", Price: 1000})

	require.NoError(t, err)
	require.True(t, out.Resolution.Matched)
	assert.Equal(t, "2523", out.Resolution.Match.Code)
	assert.Equal(t, 1280.0, out.Breakdown.Total)
	assert.EqualError(t, out.AuditErr, "log table locked")
}

func TestRateService_Calculate_NoMatchReturnsSuggestions(t *testing.T) {
	f := newRateFixture()
	f.cat.On("ListAll", mock.Anything).Return(catalogueSnapshot, nil)

	out, err := f.svc.Calculate(context.Background(), service.CalcInput{Description: "xyz widget", Price: 100, TopK: 2})

	require.NoError(t, err)
	assert.False(t, out.Resolution.Matched)
	assert.Nil(t, out.Breakdown)
	assert.Len(t, out.Resolution.Suggestions, 2)
	f.logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestRateService_Calculate_EmptyCatalogue(t *testing.T) {
	f := newRateFixture()
	f.cat.On("ListAll", mock.Anything).Return([]domain.CatalogueEntry{}, nil)

	_, err := f.svc.Calculate(context.Background(), service.CalcInput{Description: "tea", Price: 10})
	assert.ErrorIs(t, err, domain.ErrNoCatalogueData)
}

func TestRateService_Calculate_InvalidInput(t *testing.T) {
	f := newRateFixture()

	_, err := f.svc.Calculate(context.Background(), service.CalcInput{Description: "tea", Price: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Calculate(context.Background(), service.CalcInput{Description: "  ", Price: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	f.cat.AssertNotCalled(t, "ListAll", mock.Anything)
}

func TestRateService_Search(t *testing.T) {
	f := newRateFixture()
	f.cat.On("ListAll", mock.Anything).Return(catalogueSnapshot, nil)

	results, err := f.svc.Search(context.Background(), "cement", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "2523", results[0].Entry.Code)
}

func TestRateService_GetByCode_NotFound(t *testing.T) {
	f := newRateFixture()
	f.cat.On("FindAllByCode", mock.Anything, "9999").Return([]domain.RateRecord{}, nil)

	_, err := f.svc.GetByCode(context.Background(), "9999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRateService_GetByCode_HeadingFallback(t *testing.T) {
	f := newRateFixture()
	heading := []domain.RateRecord{{Code: "1905", Description: "Biscuits", Rate: 9}}
	f.cat.On("FindAllByCode", mock.Anything, "19053100").Return([]domain.RateRecord{}, nil).Once()
	f.cat.On("FindAllByCode", mock.Anything, "190531").Return([]domain.RateRecord{}, nil).Once()
	f.cat.On("FindAllByCode", mock.Anything, "1905").Return(heading, nil).Once()

	records, err := f.svc.GetByCode(context.Background(), "19053100")
	require.NoError(t, err)
	assert.Equal(t, heading, records)
	f.cat.AssertExpectations(t)
}

func TestRateService_ListCalculations_CapsLimit(t *testing.T) {
	f := newRateFixture()
	f.logs.On("ListRecent", mock.Anything, 100).Return([]domain.CalculationLogEntry{}, nil).Once()

	_, err := f.svc.ListCalculations(context.Background(), 5000)
	require.NoError(t, err)
	f.logs.AssertExpectations(t)
}

func TestRateService_Stats(t *testing.T) {
	f := newRateFixture()
	f.cat.On("Count", mock.Anything).Return(10, nil)
	f.cat.On("CountBySourcePrefix", mock.Anything, domain.SeedSourcePrefix).Return(7, nil)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &domain.CatalogueStats{Total: 10, Seed: 7, Uploaded: 3}, stats)
}

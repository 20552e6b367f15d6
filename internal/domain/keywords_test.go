package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstrates/internal/domain"
)

func TestKeywords_ValueAndScan(t *testing.T) {
	v, err := domain.Keywords{"biscuits", "baked"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["biscuits","baked"]`, v)

	var k domain.Keywords
	require.NoError(t, k.Scan([]byte(`["tea","leaves"]`)))
	assert.Equal(t, domain.Keywords{"tea", "leaves"}, k)
}

func TestKeywords_NilValue(t *testing.T) {
	var k domain.Keywords
	v, err := k.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	require.NoError(t, k.Scan(nil))
	assert.Empty(t, k)
}

func TestKeywords_ScanRejectsUnknownType(t *testing.T) {
	var k domain.Keywords
	assert.Error(t, k.Scan(42))
}

func TestRatesEqual(t *testing.T) {
	assert.True(t, domain.RatesEqual(18, 18.00001))
	assert.False(t, domain.RatesEqual(12, 18))
}

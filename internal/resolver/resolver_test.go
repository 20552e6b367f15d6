package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstrates/internal/domain"
	"gstrates/internal/fuzzy"
	"gstrates/internal/policy"
	"gstrates/internal/resolver"
)

// fixedScorer returns a preset score per catalogue description.
type fixedScorer map[string]float64

func (f fixedScorer) Score(_, description string) float64 { return f[description] }

func entry(code, desc string, rate float64) domain.CatalogueEntry {
	return domain.CatalogueEntry{Code: code, Description: desc, Rate: rate}
}

func TestResolve_EmptyCatalogue(t *testing.T) {
	r := resolver.New(nil, policy.Default(), resolver.DefaultOptions())
	res, err := r.Resolve("chocolate biscuit", nil, 3)
	assert.ErrorIs(t, err, domain.ErrNoCatalogueData)
	assert.Nil(t, res)
}

func TestResolve_AcceptanceBoundary(t *testing.T) {
	entries := []domain.CatalogueEntry{entry("0902", "Tea leaves", 2.5), entry("0901", "Coffee beans", 2.5)}

	t.Run("65 is a match", func(t *testing.T) {
		r := resolver.New(fixedScorer{"Tea leaves": 65, "Coffee beans": 10}, nil, resolver.DefaultOptions())
		res, err := r.Resolve("green chai", entries, 3)
		require.NoError(t, err)
		assert.True(t, res.Matched)
		assert.Equal(t, 65.0, res.Score)
		assert.Equal(t, "0902", res.Match.Code)
		assert.Empty(t, res.Suggestions)
	})

	t.Run("64 returns suggestions only", func(t *testing.T) {
		r := resolver.New(fixedScorer{"Tea leaves": 64, "Coffee beans": 10}, nil, resolver.DefaultOptions())
		res, err := r.Resolve("green chai", entries, 3)
		require.NoError(t, err)
		assert.False(t, res.Matched)
		assert.Nil(t, res.Match)
		assert.Equal(t, domain.MethodSuggestion, res.Method)
		require.Len(t, res.Suggestions, 2)
		assert.Equal(t, "Tea leaves", res.Suggestions[0].Entry.Description)
	})
}

func TestResolve_TermBoostPreferredOverFuzzy(t *testing.T) {
	entries := []domain.CatalogueEntry{
		entry("0401", "Fresh cow milk", 0),
		entry("0402", "Milk powder", 2.5),
	}
	r := resolver.New(fixedScorer{"Fresh cow milk": 55, "Milk powder": 60}, nil, resolver.DefaultOptions())

	res, err := r.Resolve("Fresh Milk", entries, 3)
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, domain.MethodTermBoost, res.Method)
	assert.Equal(t, "0401", res.Match.Code)
	assert.Equal(t, 75.0, res.Score)
}

func TestResolve_WeakTermBoostFallsBackToGlobalBest(t *testing.T) {
	entries := []domain.CatalogueEntry{
		entry("0401", "Fresh cow milk", 0),
		entry("0402", "Milk powder", 2.5),
	}
	r := resolver.New(fixedScorer{"Fresh cow milk": 40, "Milk powder": 66}, nil, resolver.DefaultOptions())

	res, err := r.Resolve("fresh milk", entries, 3)
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, domain.MethodFuzzy, res.Method)
	assert.Equal(t, "0402", res.Match.Code)
	assert.Equal(t, 66.0, res.Score)
}

func TestResolve_CombinedScoreIsClamped(t *testing.T) {
	entries := []domain.CatalogueEntry{entry("0401", "Fresh cow milk", 0)}
	r := resolver.New(fixedScorer{"Fresh cow milk": 95}, nil, resolver.DefaultOptions())

	res, err := r.Resolve("fresh, milk!", entries, 3)
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 100.0, res.Score)
}

func TestResolve_SuggestionsOrderedAndLimited(t *testing.T) {
	entries := []domain.CatalogueEntry{
		entry("1", "alpha item", 5),
		entry("2", "beta item", 5),
		entry("3", "gamma item", 5),
		entry("4", "delta item", 5),
	}
	r := resolver.New(fixedScorer{"alpha item": 10, "beta item": 40, "gamma item": 40, "delta item": 30}, nil, resolver.DefaultOptions())

	res, err := r.Resolve("unknown", entries, 0)
	require.NoError(t, err)
	assert.False(t, res.Matched)
	require.Len(t, res.Suggestions, 3)
	assert.Equal(t, "2", res.Suggestions[0].Entry.Code)
	assert.Equal(t, "3", res.Suggestions[1].Entry.Code)
	assert.Equal(t, "4", res.Suggestions[2].Entry.Code)
	assert.Equal(t, 40.0, res.Score)
}

func TestResolve_PolicyShortcut(t *testing.T) {
	entries := []domain.CatalogueEntry{
		entry("0902", "Tea, whether or not flavoured", 2.5),
		entry("1905", "biscuits and similar baked products", 9),
	}
	r := resolver.New(nil, policy.Default(), resolver.DefaultOptions())

	res, err := r.Resolve("chocolate biscuit", entries, 3)
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, domain.MethodPolicy, res.Method)
	assert.Equal(t, 100.0, res.Score)
	assert.Equal(t, "1905", res.Match.Code)
	assert.Equal(t, 9.0, res.Match.Rate)
}

func TestResolve_PolicyShortcutNeedsCanonicalEntry(t *testing.T) {
	entries := []domain.CatalogueEntry{entry("1905", "biscuits and similar baked products", 14)}
	r := resolver.New(nil, policy.Default(), resolver.DefaultOptions())

	res, err := r.Resolve("chocolate biscuit", entries, 3)
	require.NoError(t, err)
	assert.NotEqual(t, domain.MethodPolicy, res.Method)
	assert.False(t, res.Matched)
}

func TestResolve_RealScorer(t *testing.T) {
	entries := []domain.CatalogueEntry{
		entry("2523", "Portland cement, aluminous cement, slag cement", 14),
		entry("0101", "Live horses", 6),
	}
	r := resolver.New(fuzzy.WRatioScorer{}, nil, resolver.DefaultOptions())

	res, err := r.Resolve("portland cement", entries, 3)
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, "2523", res.Match.Code)
	assert.Equal(t, domain.MethodTermBoost, res.Method)
	assert.Equal(t, 100.0, res.Score)
}

func TestRank(t *testing.T) {
	entries := []domain.CatalogueEntry{
		entry("1", "alpha item", 5),
		entry("2", "beta item", 5),
		entry("3", "gamma item", 5),
	}
	r := resolver.New(fixedScorer{"alpha item": 10, "beta item": 90, "gamma item": 50}, nil, resolver.DefaultOptions())

	got := r.Rank("anything", entries, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].Entry.Code)
	assert.Equal(t, "3", got[1].Entry.Code)

	assert.Len(t, r.Rank("anything", entries, 0), 3)
	assert.Empty(t, r.Rank("anything", nil, 5))
}

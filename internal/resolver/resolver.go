// Package resolver maps a free-text product description to the best
// catalogue entry, or to ranked suggestions when no match is confident.
package resolver

import (
	"sort"
	"strings"
	"unicode"

	"gstrates/internal/domain"
	"gstrates/internal/fuzzy"
	"gstrates/internal/policy"
)

// Options are the resolver thresholds.
type Options struct {
	// TierSwitch is the combined term-boost score below which the global
	// fuzzy pass decides.
	TierSwitch float64
	// Accept is the minimum final score for a confirmed match.
	Accept     float64
	TokenBonus float64
	MinOverlap int
	TopK       int
}

// DefaultOptions returns the production thresholds.
func DefaultOptions() Options {
	return Options{
		TierSwitch: 70,
		Accept:     65,
		TokenBonus: 10,
		MinOverlap: 2,
		TopK:       3,
	}
}

const (
	maxScore         = 100
	defaultRankLimit = 5
)

// Resolver is stateless; a snapshot of entries is passed to every call.
type Resolver struct {
	scorer fuzzy.Scorer
	policy *policy.Policy
	opts   Options
}

// New creates a Resolver. A nil scorer uses fuzzy.WRatioScorer and a nil
// policy disables the shortcut.
func New(scorer fuzzy.Scorer, pol *policy.Policy, opts Options) *Resolver {
	if scorer == nil {
		scorer = fuzzy.WRatioScorer{}
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	return &Resolver{scorer: scorer, policy: pol, opts: opts}
}

// Resolve scores query against entries. An empty catalogue returns
// domain.ErrNoCatalogueData; a weak best score is a normal negative result
// carrying topK suggestions (the configured TopK when topK <= 0).
func (r *Resolver) Resolve(query string, entries []domain.CatalogueEntry, topK int) (*domain.Resolution, error) {
	if len(entries) == 0 {
		return nil, domain.ErrNoCatalogueData
	}
	if topK <= 0 {
		topK = r.opts.TopK
	}

	if entry, ok := r.policyShortcut(query, entries); ok {
		return &domain.Resolution{
			Query:   query,
			Matched: true,
			Match:   &entry,
			Score:   maxScore,
			Method:  domain.MethodPolicy,
		}, nil
	}

	scores := make([]float64, len(entries))
	scored := make([]bool, len(entries))
	scoreAt := func(i int) float64 {
		if !scored[i] {
			scores[i] = r.scorer.Score(query, entries[i].Description)
			scored[i] = true
		}
		return scores[i]
	}

	// Tier 1: shared whitespace tokens boost the fuzzy score.
	queryTokens := tokenSet(query)
	bestIdx, best := -1, 0.0
	for i := range entries {
		overlap := overlapCount(queryTokens, tokenSet(entries[i].Description))
		if overlap < r.opts.MinOverlap {
			continue
		}
		combined := scoreAt(i) + r.opts.TokenBonus*float64(overlap)
		if bestIdx < 0 || combined > best {
			bestIdx, best = i, combined
		}
	}
	method := domain.MethodTermBoost

	// Tier 2: global best fuzzy match.
	if bestIdx < 0 || best < r.opts.TierSwitch {
		bestIdx, best = 0, scoreAt(0)
		for i := 1; i < len(entries); i++ {
			if s := scoreAt(i); s > best {
				bestIdx, best = i, s
			}
		}
		method = domain.MethodFuzzy
	}

	if best >= r.opts.Accept {
		match := entries[bestIdx]
		return &domain.Resolution{
			Query:   query,
			Matched: true,
			Match:   &match,
			Score:   clamp(best),
			Method:  method,
		}, nil
	}

	for i := range entries {
		scoreAt(i)
	}
	suggestions := topScored(entries, scores, topK)
	res := &domain.Resolution{
		Query:       query,
		Matched:     false,
		Method:      domain.MethodSuggestion,
		Suggestions: suggestions,
	}
	if len(suggestions) > 0 {
		res.Score = suggestions[0].Score
	}
	return res, nil
}

// Rank returns the limit highest-scoring entries for query, best first.
func (r *Resolver) Rank(query string, entries []domain.CatalogueEntry, limit int) []domain.ScoredEntry {
	if limit <= 0 {
		limit = defaultRankLimit
	}
	scores := make([]float64, len(entries))
	for i := range entries {
		scores[i] = r.scorer.Score(query, entries[i].Description)
	}
	return topScored(entries, scores, limit)
}

// policyShortcut returns the first catalogue entry carrying the (code, rate)
// of the first policy rule whose phrase occurs in query.
func (r *Resolver) policyShortcut(query string, entries []domain.CatalogueEntry) (domain.CatalogueEntry, bool) {
	for _, rule := range r.policy.MatchDescription(query) {
		for _, e := range entries {
			if e.Code == rule.Code && domain.RatesEqual(e.Rate, rule.Rate) {
				return e, true
			}
		}
	}
	return domain.CatalogueEntry{}, false
}

func topScored(entries []domain.CatalogueEntry, scores []float64, k int) []domain.ScoredEntry {
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	if k > len(idx) {
		k = len(idx)
	}
	out := make([]domain.ScoredEntry, 0, k)
	for _, i := range idx[:k] {
		out = append(out, domain.ScoredEntry{Entry: entries[i], Score: clamp(scores[i])})
	}
	return out
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			set[f] = struct{}{}
		}
	}
	return set
}

func overlapCount(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}

func clamp(score float64) float64 {
	if score > maxScore {
		return maxScore
	}
	return score
}

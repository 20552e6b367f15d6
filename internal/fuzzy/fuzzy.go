// Package fuzzy implements weighted string similarity scores in [0, 100].
//
// Every score is derived from the normalized indel distance (Levenshtein with
// substitution cost 2), so ratio(a, b) = 100 * (1 - d / (len(a) + len(b))).
package fuzzy

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	unbaseScale = 0.95
	// Length ratios at which partial matching kicks in and then weakens.
	partialLenRatio = 1.5
	weakLenRatio    = 8.0
)

var indelParams = levenshtein.NewParams().SubCost(2)

// Preprocess applies NFKC, case folding and replaces every rune that is not a
// letter or digit with a space. Runs of spaces collapse to one.
func Preprocess(s string) string {
	folded := cases.Fold().String(norm.NFKC.String(s))
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, folded)
	return strings.Join(strings.Fields(mapped), " ")
}

// Scorer scores two strings in [0, 100]. WRatioScorer is the production scorer.
type Scorer interface {
	Score(a, b string) float64
}

// WRatioScorer scores with WRatio.
type WRatioScorer struct{}

// Score implements Scorer.
func (WRatioScorer) Score(a, b string) float64 { return WRatio(a, b) }

// WRatio preprocesses both inputs and returns the best of the ratio family,
// scaled down as the length difference grows.
func WRatio(a, b string) float64 {
	return wratio([]rune(Preprocess(a)), []rune(Preprocess(b)))
}

// Ratio is the normalized indel similarity of the preprocessed inputs.
func Ratio(a, b string) float64 {
	return ratio([]rune(Preprocess(a)), []rune(Preprocess(b)))
}

// PartialRatio is the best ratio of the shorter input against any
// same-length window of the longer one.
func PartialRatio(a, b string) float64 {
	return partialRatio([]rune(Preprocess(a)), []rune(Preprocess(b)))
}

// TokenSortRatio compares the inputs with their tokens sorted.
func TokenSortRatio(a, b string) float64 {
	return tokenSortRatio(Preprocess(a), Preprocess(b))
}

// TokenSetRatio compares the shared and the distinct token sets.
func TokenSetRatio(a, b string) float64 {
	return tokenSetRatio(Preprocess(a), Preprocess(b))
}

func wratio(a, b []rune) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	l1, l2 := float64(len(a)), float64(len(b))
	lenRatio := l1 / l2
	if l2 > l1 {
		lenRatio = l2 / l1
	}

	sa, sb := string(a), string(b)
	best := ratio(a, b)

	if lenRatio < partialLenRatio {
		token := tokenSortRatio(sa, sb)
		if set := tokenSetRatio(sa, sb); set > token {
			token = set
		}
		return maxf(best, token*unbaseScale)
	}

	partialScale := 0.9
	if lenRatio >= weakLenRatio {
		partialScale = 0.6
	}

	best = maxf(best, partialRatio(a, b)*partialScale)
	return maxf(best, partialTokenRatio(sa, sb)*unbaseScale*partialScale)
}

func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	d := levenshtein.Distance(string(a), string(b), indelParams)
	return 100 * (1 - float64(d)/float64(total))
}

// partialRatio slides the shorter string over the longer one, including the
// partially overlapping windows at both ends.
func partialRatio(a, b []rune) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	m, n := len(a), len(b)

	best := 0.0
	consider := func(window []rune) bool {
		if s := ratio(a, window); s > best {
			best = s
		}
		return best >= 100
	}

	for k := 1; k < m; k++ {
		if consider(b[:k]) || consider(b[n-k:]) {
			return 100
		}
	}
	for i := 0; i+m <= n; i++ {
		if consider(b[i : i+m]) {
			return 100
		}
	}
	return best
}

func tokenSortRatio(a, b string) float64 {
	return ratio([]rune(sortedTokens(a)), []rune(sortedTokens(b)))
}

func tokenSetRatio(a, b string) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var inter, diffAB, diffBA []string
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter = append(inter, t)
		} else {
			diffAB = append(diffAB, t)
		}
	}
	for t := range setB {
		if _, ok := setA[t]; !ok {
			diffBA = append(diffBA, t)
		}
	}
	if len(inter) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}

	sect := joinSorted(inter)
	combAB := strings.TrimSpace(sect + " " + joinSorted(diffAB))
	combBA := strings.TrimSpace(sect + " " + joinSorted(diffBA))

	best := ratio([]rune(combAB), []rune(combBA))
	if sect == "" {
		return best
	}
	best = maxf(best, ratio([]rune(sect), []rune(combAB)))
	return maxf(best, ratio([]rune(sect), []rune(combBA)))
}

// partialTokenRatio is 100 when the inputs share a token, else the partial
// ratio of their sorted distinct tokens.
func partialTokenRatio(a, b string) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	for t := range setA {
		if _, ok := setB[t]; ok {
			return 100
		}
	}
	return partialRatio([]rune(joinSet(setA)), []rune(joinSet(setB)))
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func sortedTokens(s string) string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

func joinSet(set map[string]struct{}) string {
	tokens := make([]string, 0, len(set))
	for t := range set {
		tokens = append(tokens, t)
	}
	return joinSorted(tokens)
}

func joinSorted(tokens []string) string {
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

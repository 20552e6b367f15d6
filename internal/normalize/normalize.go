// Package normalize cleans extracted rows and derives their keyword sets.
package normalize

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"gstrates/internal/domain"
)

// DefaultMaxKeywords bounds the keyword list stored per record.
const DefaultMaxKeywords = 20

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// DefaultStopWords are the prepositions and conjunctions dropped from keywords.
var DefaultStopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "but": {},
	"not": {}, "nor": {}, "into": {}, "onto": {}, "upon": {}, "than": {},
	"other": {}, "whether": {}, "such": {}, "their": {}, "its": {},
	"thereof": {}, "including": {}, "excluding": {}, "any": {}, "all": {},
	"are": {}, "was": {}, "were": {}, "being": {}, "has": {}, "have": {},
	"which": {}, "that": {}, "this": {}, "those": {}, "these": {},
	"under": {}, "over": {}, "per": {}, "via": {}, "etc": {},
}

// Normalizer is deterministic and holds no mutable state.
type Normalizer struct {
	MaxKeywords int
	StopWords   map[string]struct{}
}

// New returns a Normalizer with the default stop words and the given cap.
// A non-positive cap falls back to DefaultMaxKeywords.
func New(maxKeywords int) *Normalizer {
	if maxKeywords <= 0 {
		maxKeywords = DefaultMaxKeywords
	}
	return &Normalizer{MaxKeywords: maxKeywords, StopWords: DefaultStopWords}
}

// CleanDescription applies NFKC and collapses whitespace runs.
// Casing is preserved.
func CleanDescription(desc string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(desc)), " ")
}

// Keywords returns the lower-cased word tokens of desc with short tokens,
// stop words and duplicates removed, in order of first appearance.
func (n *Normalizer) Keywords(desc string) []string {
	words := wordRe.FindAllString(strings.ToLower(CleanDescription(desc)), -1)

	seen := make(map[string]struct{}, len(words))
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) <= 2 {
			continue
		}
		if _, stop := n.StopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
		if n.MaxKeywords > 0 && len(keywords) >= n.MaxKeywords {
			break
		}
	}
	return keywords
}

// Normalize cleans every row and drops the structurally invalid ones: an
// empty description, or a rate that is NaN or outside [0, 100].
func (n *Normalizer) Normalize(rows []domain.ExtractedRow) []domain.NormalizedRow {
	out := make([]domain.NormalizedRow, 0, len(rows))
	for _, r := range rows {
		desc := CleanDescription(r.Description)
		if desc == "" || !validRate(r.Rate) {
			continue
		}
		out = append(out, domain.NormalizedRow{
			ExtractedRow: domain.ExtractedRow{
				Code:        strings.TrimSpace(r.Code),
				Description: desc,
				Rate:        r.Rate,
			},
			Keywords: n.Keywords(desc),
		})
	}
	return out
}

func validRate(rate float64) bool {
	return !math.IsNaN(rate) && rate >= 0 && rate <= 100
}

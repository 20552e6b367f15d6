// Package extract turns per-page table grids or text lines into candidate
// (code, description, rate) rows using cell-role heuristics.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"gstrates/internal/domain"
)

// minDescriptionRunes is the length a cell must exceed to qualify as a
// description before the longest-cell fallback applies.
const minDescriptionRunes = 5

var (
	digitRe      = regexp.MustCompile(`\d`)
	nonRateChars = regexp.MustCompile(`[^\d.]`)
	codeRe       = regexp.MustCompile(`\b\d{2,6}\b`)
	multiCodeRe  = regexp.MustCompile(`^\d[\d\s,.]+$`)
	serialRe     = regexp.MustCompile(`^\d+\.?$`)
	rateShapeRe  = regexp.MustCompile(`^\d+(\.\d+)?\s*%?$`)
	textLineRe   = regexp.MustCompile(`(\d{2,6})\s+(.{10,200}?)\s+(\d+(\.\d+)?)\s*%?$`)
)

// ExtractPages runs ExtractPage over every page and concatenates the results.
// A page that fails contributes nothing.
func ExtractPages(pages []domain.Page) []domain.ExtractedRow {
	var out []domain.ExtractedRow
	for _, p := range pages {
		out = append(out, safeExtract(p)...)
	}
	return out
}

func safeExtract(p domain.Page) (rows []domain.ExtractedRow) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("extract.ExtractPages: page skipped",
				zap.Int("page", p.Number), zap.Any("panic", r))
			rows = nil
		}
	}()
	return ExtractPage(p)
}

// ExtractPage derives rows from a single page. The grid is used when present,
// otherwise each text line is matched against the single-line row pattern.
func ExtractPage(p domain.Page) []domain.ExtractedRow {
	if len(p.Grid) > 0 {
		var out []domain.ExtractedRow
		for _, cells := range p.Grid {
			if row, ok := ExtractGridRow(cells); ok {
				out = append(out, row)
			}
		}
		return out
	}

	var out []domain.ExtractedRow
	for _, line := range p.Lines {
		if row, ok := ExtractTextLine(line); ok {
			out = append(out, row)
		}
	}
	return out
}

// ExtractGridRow derives one row from the cells of a table row. It reports
// false when no rate can be parsed or no description exists.
func ExtractGridRow(cells []string) (domain.ExtractedRow, bool) {
	trimmed := make([]string, len(cells))
	for i, c := range cells {
		trimmed[i] = strings.TrimSpace(c)
	}

	rate, ok := rateCell(trimmed)
	if !ok {
		return domain.ExtractedRow{}, false
	}

	desc := descriptionCell(trimmed)
	if desc == "" {
		return domain.ExtractedRow{}, false
	}

	return domain.ExtractedRow{
		Code:        codeCell(trimmed),
		Description: desc,
		Rate:        rate,
	}, true
}

// rateCell scans right to left for the first cell holding a digit.
func rateCell(cells []string) (float64, bool) {
	for i := len(cells) - 1; i >= 0; i-- {
		c := cells[i]
		if c == "" || !digitRe.MatchString(c) {
			continue
		}
		raw := nonRateChars.ReplaceAllString(c, "")
		if raw == "" {
			return 0, false
		}
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false
		}
		return rate, true
	}
	return 0, false
}

func codeCell(cells []string) string {
	for _, c := range cells {
		if c == "" {
			continue
		}
		if m := codeRe.FindString(c); m != "" {
			return m
		}
	}
	return ""
}

func descriptionCell(cells []string) string {
	for _, c := range cells {
		if isDescription(c) {
			return c
		}
	}

	longest, best := -1, ""
	for _, c := range cells {
		if n := utf8.RuneCountInString(c); n > longest {
			longest, best = n, c
		}
	}
	return best
}

func isDescription(c string) bool {
	if utf8.RuneCountInString(c) <= minDescriptionRunes {
		return false
	}
	return !multiCodeRe.MatchString(c) && !serialRe.MatchString(c) && !rateShapeRe.MatchString(c)
}

// ExtractTextLine matches "<code> <description> <rate>[%]" at the end of a line.
func ExtractTextLine(line string) (domain.ExtractedRow, bool) {
	m := textLineRe.FindStringSubmatch(line)
	if m == nil {
		return domain.ExtractedRow{}, false
	}
	rate, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return domain.ExtractedRow{}, false
	}
	return domain.ExtractedRow{
		Code:        m[1],
		Description: strings.TrimSpace(m[2]),
		Rate:        rate,
	}, true
}

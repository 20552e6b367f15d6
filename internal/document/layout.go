package document

import (
	"math"
	"sort"
	"strings"

	"gstrates/internal/domain"
)

const (
	// rowTolerance is the vertical distance under which glyphs share a row.
	rowTolerance   = 2.0
	minCellGap     = 6.0
	cellGapFactor  = 1.2
	spaceGapFactor = 0.15
	fallbackFont   = 10.0
	gridMinCells   = 3
	gridMinRows    = 2
)

// Glyph is a positioned run of text on a PDF page.
type Glyph struct {
	X, Y, W  float64
	FontSize float64
	S        string
}

type glyphRow struct {
	y      float64
	glyphs []Glyph
}

// LayoutGlyphs rebuilds the visual rows of a page. A page with at least two
// rows of three or more cells becomes a grid; every row is also kept as a
// text line.
func LayoutGlyphs(number int, glyphs []Glyph) domain.Page {
	page := domain.Page{Number: number}

	gridRows := 0
	for _, row := range groupRows(glyphs) {
		cells := splitCells(row.glyphs)
		if len(cells) == 0 {
			continue
		}
		if len(cells) >= gridMinCells {
			gridRows++
		}
		page.Grid = append(page.Grid, cells)
		page.Lines = append(page.Lines, strings.Join(cells, " "))
	}
	if gridRows < gridMinRows {
		page.Grid = nil
	}
	return page
}

// groupRows buckets glyphs by baseline, top of the page first, and orders
// each row left to right.
func groupRows(glyphs []Glyph) []glyphRow {
	var rows []glyphRow
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			continue
		}
		placed := false
		for i := range rows {
			if math.Abs(rows[i].y-g.Y) < rowTolerance {
				rows[i].glyphs = append(rows[i].glyphs, g)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, glyphRow{y: g.Y, glyphs: []Glyph{g}})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })
	for i := range rows {
		gs := rows[i].glyphs
		sort.SliceStable(gs, func(a, b int) bool { return gs[a].X < gs[b].X })
	}
	return rows
}

func splitCells(glyphs []Glyph) []string {
	var (
		cells []string
		cur   strings.Builder
	)
	flush := func() {
		if c := strings.TrimSpace(cur.String()); c != "" {
			cells = append(cells, c)
		}
		cur.Reset()
	}

	for i, g := range glyphs {
		if i > 0 {
			prev := glyphs[i-1]
			gap := g.X - (prev.X + prev.W)
			size := math.Max(prev.FontSize, g.FontSize)
			if size <= 0 {
				size = fallbackFont
			}
			switch {
			case gap > math.Max(size*cellGapFactor, minCellGap):
				flush()
			case gap > size*spaceGapFactor:
				cur.WriteByte(' ')
			}
		}
		cur.WriteString(g.S)
	}
	flush()
	return cells
}

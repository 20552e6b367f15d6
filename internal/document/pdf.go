package document

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"gstrates/internal/domain"
)

func init() {
	// Keep pdfcpu from creating a config directory under $HOME.
	model.ConfigPath = "disable"
}

// PDFSource reads text-based PDFs. Scanned pages yield nothing.
type PDFSource struct{}

func (PDFSource) Type() domain.FileType { return domain.FileTypePDF }

func (PDFSource) Pages(ctx context.Context, data []byte) ([]domain.Page, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return nil, fmt.Errorf("%w: pdf validation: %v", domain.ErrInvalidDocument, err)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: pdf open: %v", domain.ErrInvalidDocument, err)
	}

	var pages []domain.Page
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		glyphs, ok := pageGlyphs(i, p)
		if !ok {
			continue
		}
		pages = append(pages, LayoutGlyphs(i, glyphs))
	}
	return pages, nil
}

// pageGlyphs decodes one content stream. The pdf package panics on some
// malformed streams, so a failure skips only that page.
func pageGlyphs(number int, p pdf.Page) (glyphs []Glyph, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("document.PDFSource: page content unreadable, skipping",
				zap.Int("page", number), zap.Any("panic", r))
			glyphs, ok = nil, false
		}
	}()

	texts := p.Content().Text
	glyphs = make([]Glyph, 0, len(texts))
	for _, t := range texts {
		glyphs = append(glyphs, Glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
	}
	return glyphs, true
}

// Package document turns uploaded files into pages of table grids or text
// lines for the extractor.
package document

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gstrates/internal/domain"
)

// Source reads one document format.
type Source interface {
	Type() domain.FileType
	Pages(ctx context.Context, data []byte) ([]domain.Page, error)
}

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// ForType returns the Source for a file type.
func ForType(ft domain.FileType) (Source, error) {
	switch ft {
	case domain.FileTypePDF:
		return PDFSource{}, nil
	case domain.FileTypeXLSX:
		return XLSXSource{}, nil
	case domain.FileTypeCSV:
		return CSVSource{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, ft)
	}
}

// Detect picks a Source from the file extension, falling back to the leading
// bytes when the extension is unknown. A known extension whose content does
// not match is an invalid document.
func Detect(filename string, data []byte) (Source, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	ft, ok := domain.AllowedExtensions[ext]
	if !ok {
		switch {
		case bytes.HasPrefix(data, pdfMagic):
			ft = domain.FileTypePDF
		case bytes.HasPrefix(data, zipMagic):
			ft = domain.FileTypeXLSX
		default:
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, filename)
		}
	}

	switch {
	case ft == domain.FileTypePDF && !bytes.HasPrefix(data, pdfMagic),
		ft == domain.FileTypeXLSX && !bytes.HasPrefix(data, zipMagic):
		return nil, fmt.Errorf("%w: %s is not a valid %s file", domain.ErrInvalidDocument, filename, ft)
	}
	return ForType(ft)
}

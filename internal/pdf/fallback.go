package pdf

import (
	"fmt"

	"pdf-unlocker/internal/domain"

	"github.com/gen2brain/go-fitz"
)

// FallbackParser is the second opinion the engine consults before declaring a
// document corrupt. It opens with MuPDF only, which accepts some files pdfcpu
// rejects. It has no password support; an encrypted document simply fails.
type FallbackParser struct{}

// NewFallbackParser creates the fitz-only fallback parser.
func NewFallbackParser() *FallbackParser {
	return &FallbackParser{}
}

// Open ignores password; MuPDF tries the empty password on its own.
func (p *FallbackParser) Open(data []byte, password string) (domain.Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return &document{doc: doc, data: data}, nil
}

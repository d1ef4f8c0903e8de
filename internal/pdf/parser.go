// Package pdf adapts the pdfcpu and go-fitz libraries to the parser and
// builder interfaces the unlock engine drives.
package pdf

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"pdf-unlocker/internal/domain"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Parser opens PDFs with pdfcpu (which understands standard password
// encryption) and hands the decrypted bytes to MuPDF for rendering and text.
type Parser struct {
	logger domain.Logger
}

// NewParser creates the primary document parser adapter.
func NewParser(logger domain.Logger) *Parser {
	return &Parser{logger: logger}
}

// Open validates data under the given password and returns a renderable
// handle. Each call works on a fresh reader over data; nothing is consumed.
func (p *Parser) Open(data []byte, password string) (domain.Document, error) {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		if isPasswordError(err) {
			return nil, fmt.Errorf("open document: %w", domain.ErrIncorrectPassword)
		}
		return nil, fmt.Errorf("open document: %w", err)
	}

	plain := data
	if password != "" {
		decrypted, err := p.decrypt(data, password)
		if err != nil {
			return nil, err
		}
		plain = decrypted
	}

	doc, err := fitz.NewFromMemory(plain)
	if err != nil {
		return nil, fmt.Errorf("open document for rendering: %w", err)
	}

	// doc references plain; the handle keeps it alive until Close.
	return &document{doc: doc, data: plain}, nil
}

// decrypt produces the plaintext bytes of an encrypted document so the
// renderer never has to deal with encryption itself.
func (p *Parser) decrypt(data []byte, password string) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	p.logger.Debug("Decrypting document", "size", len(data))

	var buf bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(data), &buf, conf); err != nil {
		if strings.Contains(err.Error(), "not encrypted") {
			// A password was supplied for a plain document; use it as is.
			return data, nil
		}
		return nil, fmt.Errorf("decrypt document: %w", err)
	}
	return buf.Bytes(), nil
}

// isPasswordError reports whether pdfcpu rejected the document because of a
// missing or wrong password. The sentinel for this has moved between pdfcpu
// packages across releases, so match the stable message fragment instead.
func isPasswordError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "correct password")
}

// document wraps a MuPDF handle over decrypted bytes.
type document struct {
	doc  *fitz.Document
	data []byte
}

func (d *document) PageCount() int {
	return d.doc.NumPage()
}

// RenderPage rasterizes page n (1-indexed) at scale times the nominal page
// size. MuPDF's nominal resolution is 72 DPI.
func (d *document) RenderPage(n int, scale float64) (image.Image, error) {
	if n < 1 || n > d.doc.NumPage() {
		return nil, fmt.Errorf("render page %d: out of range (1..%d)", n, d.doc.NumPage())
	}
	img, err := d.doc.ImageDPI(n-1, 72*scale)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", n, err)
	}
	return img, nil
}

func (d *document) PageText(n int) (string, error) {
	if n < 1 || n > d.doc.NumPage() {
		return "", fmt.Errorf("page text %d: out of range (1..%d)", n, d.doc.NumPage())
	}
	text, err := d.doc.Text(n - 1)
	if err != nil {
		return "", fmt.Errorf("page text %d: %w", n, err)
	}
	return text, nil
}

func (d *document) Close() error {
	return d.doc.Close()
}

package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"pdf-unlocker/internal/domain"

	"github.com/phpdave11/gofpdf"
)

// letter size in points, the bound reconstruction scales pages down to
var defaultPageSize = gofpdf.SizeType{Wd: 612, Ht: 792}

// Builder assembles unencrypted output documents with gofpdf, one raster
// image per page.
type Builder struct{}

// NewBuilder creates the document builder adapter.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) NewDocument() domain.DocumentWriter {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           defaultPageSize,
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return &documentWriter{pdf: pdf}
}

type documentWriter struct {
	pdf   *gofpdf.Fpdf
	pages int
}

// AddImagePage appends a width x height point page and draws img stretched to
// fill it exactly. Each image gets its own registration name so one page's
// pixels can never bleed into another's.
func (w *documentWriter) AddImagePage(img image.Image, width, height float64) error {
	if img == nil {
		return fmt.Errorf("add page %d: nil image", w.pages+1)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("add page %d: invalid dimensions %.2fx%.2f", w.pages+1, width, height)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("add page %d: encode image: %w", w.pages+1, err)
	}

	w.pages++
	name := fmt.Sprintf("page-%d", w.pages)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}

	w.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: width, Ht: height})
	w.pdf.RegisterImageOptionsReader(name, opts, &buf)
	w.pdf.ImageOptions(name, 0, 0, width, height, false, opts, 0, "")

	if w.pdf.Err() {
		return fmt.Errorf("add page %d: %w", w.pages, w.pdf.Error())
	}
	return nil
}

func (w *documentWriter) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("serialize document: %w", err)
	}
	return buf.Bytes(), nil
}

package pdf

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func testImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestBuilder_TwoPages(t *testing.T) {
	builder := NewBuilder()
	writer := builder.NewDocument()

	if err := writer.AddImagePage(testImage(100, 150, color.White), 100, 150); err != nil {
		t.Fatalf("Expected no error adding first page, got %v", err)
	}
	if err := writer.AddImagePage(testImage(80, 80, color.Black), 80, 80); err != nil {
		t.Fatalf("Expected no error adding second page, got %v", err)
	}

	out, err := writer.Bytes()
	if err != nil {
		t.Fatalf("Expected no error serializing, got %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Error("Expected output to start with a PDF header")
	}
	if !bytes.Contains(out, []byte("/Count 2")) {
		t.Error("Expected output page tree to count 2 pages")
	}
}

func TestBuilder_RejectsBadPages(t *testing.T) {
	builder := NewBuilder()

	writer := builder.NewDocument()
	if err := writer.AddImagePage(nil, 100, 100); err == nil {
		t.Error("Expected an error for a nil image")
	}

	writer = builder.NewDocument()
	if err := writer.AddImagePage(testImage(10, 10, color.White), 0, 100); err == nil {
		t.Error("Expected an error for zero width")
	}
}

func TestIsPasswordError(t *testing.T) {
	if isPasswordError(nil) {
		t.Error("Expected nil error not to be a password error")
	}
	if !isPasswordError(errTest("pdfcpu: please provide the correct password")) {
		t.Error("Expected pdfcpu password message to be detected")
	}
	if isPasswordError(errTest("pdfcpu: validation error")) {
		t.Error("Expected unrelated error not to be a password error")
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }

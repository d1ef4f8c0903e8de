package service

import (
	"errors"
	"fmt"
	"math"

	"pdf-unlocker/internal/domain"
)

const (
	// renderScale upscales rasterized pages for legibility.
	renderScale = 2.0
	// maxPageWidth/maxPageHeight bound output pages to US letter in points.
	maxPageWidth  = 612.0
	maxPageHeight = 792.0
)

// UnlockEngine is the password-recovery and document-reconstruction core.
// Documents that open without a password pass through untouched; documents
// that needed one are rebuilt page by page from raster images, which is the
// only universally available way to shed the password restriction.
type UnlockEngine struct {
	parser    domain.DocumentParser
	fallback  domain.DocumentParser
	builder   domain.DocumentBuilder
	passwords []string
	logger    domain.Logger
}

// NewUnlockEngine creates the engine. fallback may be nil; it is only
// consulted to double-check suspected corruption.
func NewUnlockEngine(
	parser domain.DocumentParser,
	fallback domain.DocumentParser,
	builder domain.DocumentBuilder,
	logger domain.Logger,
) *UnlockEngine {
	return &UnlockEngine{
		parser:    parser,
		fallback:  fallback,
		builder:   builder,
		passwords: domain.CommonPasswords,
		logger:    logger,
	}
}

// AttemptUnlock produces a password-free output buffer for source.
// With explicitPassword == "" the common-password dictionary is tried in
// order; otherwise only the given password is attempted. Errors are always
// one of the domain unlock sentinels (wrapped).
func (e *UnlockEngine) AttemptUnlock(source []byte, explicitPassword string) ([]byte, error) {
	// An open without a password succeeding means no encryption is in the
	// way: hand back the original bytes verbatim to preserve fidelity.
	doc, err := e.parser.Open(source, "")
	if err == nil {
		doc.Close()
		e.logger.Debug("Document is not encrypted, passing through", "size", len(source))
		return clone(source), nil
	}

	if !errors.Is(err, domain.ErrIncorrectPassword) {
		return e.handleSuspectedCorruption(source, err)
	}

	if explicitPassword == "" {
		return e.tryDictionary(source)
	}
	return e.tryExplicit(source, explicitPassword)
}

// handleSuspectedCorruption gives a second parser a chance before declaring
// the document corrupt. If the fallback can read it, the file is merely
// unusual, not broken, and passes through like any unencrypted document.
func (e *UnlockEngine) handleSuspectedCorruption(source []byte, cause error) ([]byte, error) {
	if e.fallback != nil {
		if doc, err := e.fallback.Open(source, ""); err == nil {
			doc.Close()
			e.logger.Warn("Primary parser rejected document but fallback accepted it, passing through", "cause", cause)
			return clone(source), nil
		}
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrCorruptDocument, cause)
}

// tryDictionary walks the common passwords in order. The empty entry is
// skipped because the no-password open already covered it. Each attempt
// starts from an unconsumed view of source.
func (e *UnlockEngine) tryDictionary(source []byte) ([]byte, error) {
	for i, candidate := range e.passwords {
		if candidate == "" {
			continue
		}
		doc, err := e.parser.Open(source, candidate)
		if err != nil {
			if errors.Is(err, domain.ErrIncorrectPassword) {
				continue
			}
			// An unexpected parser error mid-trial aborts the loop;
			// later candidates are not attempted.
			return nil, fmt.Errorf("%w: attempt %d: %v", domain.ErrUnlockFailed, i, err)
		}
		e.logger.Info("Dictionary password matched", "attempt", i)
		out, rerr := e.reconstruct(doc)
		doc.Close()
		return out, rerr
	}
	return nil, domain.ErrPasswordRequired
}

// tryExplicit attempts exactly the user-supplied password. The dictionary is
// never retried here; a wrong password goes straight back to the user.
func (e *UnlockEngine) tryExplicit(source []byte, password string) ([]byte, error) {
	doc, err := e.parser.Open(source, password)
	if err != nil {
		if errors.Is(err, domain.ErrIncorrectPassword) {
			return nil, domain.ErrIncorrectPassword
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnlockFailed, err)
	}
	out, rerr := e.reconstruct(doc)
	doc.Close()
	return out, rerr
}

// reconstruct rebuilds an opened, decrypted document as a fresh PDF of raster
// pages, in source order. Any page failure discards the partial output.
func (e *UnlockEngine) reconstruct(doc domain.Document) ([]byte, error) {
	writer := e.builder.NewDocument()
	pageCount := doc.PageCount()

	for n := 1; n <= pageCount; n++ {
		img, err := doc.RenderPage(n, renderScale)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d of %d: %v", domain.ErrReconstructionFailed, n, pageCount, err)
		}

		bounds := img.Bounds()
		width, height := float64(bounds.Dx()), float64(bounds.Dy())
		if width > maxPageWidth || height > maxPageHeight {
			s := math.Min(maxPageWidth/width, maxPageHeight/height)
			width *= s
			height *= s
		}

		if err := writer.AddImagePage(img, width, height); err != nil {
			return nil, fmt.Errorf("%w: page %d of %d: %v", domain.ErrReconstructionFailed, n, pageCount, err)
		}
		e.logger.Debug("Rebuilt page", "page", n, "total", pageCount, "width", width, "height", height)
	}

	out, err := writer.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReconstructionFailed, err)
	}
	return out, nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

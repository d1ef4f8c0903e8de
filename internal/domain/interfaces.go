package domain

import (
	"context"
	"image"
)

// DocumentParser opens a PDF byte buffer with an optional password.
// data is a freely re-readable value: implementations must not assume they
// own it or that a shared cursor survives between calls.
// A wrong or missing password surfaces as ErrIncorrectPassword (wrapped).
type DocumentParser interface {
	Open(data []byte, password string) (Document, error)
}

// Document is an opened, decrypted document handle. Pages are 1-indexed.
type Document interface {
	PageCount() int
	// RenderPage rasterizes page n at scale times the nominal page size.
	RenderPage(n int, scale float64) (image.Image, error)
	// PageText extracts the text of page n; rasterized pages yield "".
	PageText(n int) (string, error)
	Close() error
}

// DocumentBuilder assembles a fresh, unencrypted PDF from raster images.
type DocumentBuilder interface {
	NewDocument() DocumentWriter
}

// DocumentWriter accumulates image pages in order and serializes the result.
type DocumentWriter interface {
	// AddImagePage appends a page of width x height points with img drawn
	// stretched to fill it exactly.
	AddImagePage(img image.Image, width, height float64) error
	Bytes() ([]byte, error)
}

// UnlockEngine turns source bytes into a password-free output buffer.
// explicitPassword == "" means "try the dictionary".
type UnlockEngine interface {
	AttemptUnlock(source []byte, explicitPassword string) ([]byte, error)
}

// NamingSuggester proposes a better filename for an unlocked document.
// Callers treat any error as "no suggestion"; it never fails a session.
type NamingSuggester interface {
	SuggestName(ctx context.Context, pdfBytes []byte, currentName string) (string, error)
}

// SessionRepository is the in-memory store for active file sessions.
// Get and List return copies; mutation happens only through Update, which
// reports false when the session has been removed (the update is a no-op).
type SessionRepository interface {
	Create(session *FileSession) error
	Get(id string) (*FileSession, bool)
	List() []*FileSession
	Update(id string, apply func(*FileSession)) bool
	Delete(id string) bool
}

// SessionManager is the upload/password/download boundary the HTTP layer
// drives.
type SessionManager interface {
	CreateSessions(files []FileUpload) []*FileSession
	SubmitPassword(id, password string) error
	Get(id string) (*FileSession, error)
	List() []*FileSession
	Remove(id string) error
	Download(id string) ([]byte, string, error)
}

// Exporter produces the batch download artifact.
type Exporter interface {
	ExportUnlocked() (*ExportResult, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetAllowedOrigins() []string
	AISuggestionsEnabled() bool
	GetGoogleProject() string
	GetGoogleLocation() string
}

package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// SessionStatus tracks where a file is in its unlock journey.
type SessionStatus string

const (
	StatusPending       SessionStatus = "pending"
	StatusUnlocking     SessionStatus = "unlocking"
	StatusNeedsPassword SessionStatus = "needs_password"
	StatusRenaming      SessionStatus = "renaming"
	StatusUnlocked      SessionStatus = "unlocked"
	StatusFailed        SessionStatus = "failed"
)

// FileSession represents one uploaded document's unlock journey.
//
// Source is immutable after creation and re-read once per password attempt.
// Output is set exactly once, on a successful unlock, and never cleared.
// All state lives in process memory only; nothing is persisted.
type FileSession struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Source        []byte        `json:"-"`
	Status        SessionStatus `json:"status"`
	Output        []byte        `json:"-"`
	SuggestedName string        `json:"suggested_name,omitempty"`
	LastError     string        `json:"error,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Terminal reports whether the unlock concern is settled for this session.
// A terminal session can still be removed by the user.
func (s *FileSession) Terminal() bool {
	return s.Status == StatusUnlocked || s.Status == StatusFailed
}

// DownloadReady reports whether the session has an artifact to hand out.
func (s *FileSession) DownloadReady() bool {
	return s.Status == StatusUnlocked && len(s.Output) > 0
}

// ResolvedName returns the filename the output should be downloaded under:
// the AI suggestion when present and different from the original, otherwise
// the original name with "_unlocked" inserted before the extension.
func (s *FileSession) ResolvedName() string {
	if s.SuggestedName != "" && s.SuggestedName != s.Name {
		return s.SuggestedName
	}
	ext := filepath.Ext(s.Name)
	if ext == "" {
		return s.Name + "_unlocked"
	}
	return strings.TrimSuffix(s.Name, ext) + "_unlocked" + ext
}

package domain

import "errors"

// Unlock errors. The session service maps these onto session statuses and
// user-facing messages; nothing else is allowed to escape the engine.
var (
	ErrPasswordRequired     = errors.New("password required")
	ErrIncorrectPassword    = errors.New("incorrect password")
	ErrCorruptDocument      = errors.New("corrupt document")
	ErrUnlockFailed         = errors.New("unlock failed")
	ErrReconstructionFailed = errors.New("reconstruction failed")
)

// Domain errors
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidFile      = errors.New("invalid file")
	ErrNotUnlocked      = errors.New("session is not unlocked")
	ErrPasswordNotAsked = errors.New("session is not waiting for a password")
	ErrPasswordMissing  = errors.New("password must not be empty")
	ErrNothingToExport  = errors.New("no unlocked files to export")
)

// UserMessage returns the message shown next to a session for an unlock error.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrPasswordRequired):
		return "Password required to unlock this PDF"
	case errors.Is(err, ErrIncorrectPassword):
		return "Incorrect password"
	case errors.Is(err, ErrCorruptDocument):
		return "Failed to load PDF - file may be corrupted"
	case errors.Is(err, ErrReconstructionFailed):
		return "Failed to rebuild unlocked PDF"
	default:
		return "Failed to unlock PDF"
	}
}

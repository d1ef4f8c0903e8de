// Package repository holds the in-memory session store. Sessions live for the
// process lifetime only; no file, password, or status is ever persisted.
package repository

import (
	"sort"
	"sync"

	"pdf-unlocker/internal/domain"
)

// MemorySessionRepository implements domain.SessionRepository with a mutex
// protected map. Get and List hand out copies so callers never observe a
// session mid-transition; all mutation funnels through Update.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.FileSession
	logger   domain.Logger
}

// NewMemorySessionRepository creates an empty session store.
func NewMemorySessionRepository(logger domain.Logger) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*domain.FileSession),
		logger:   logger,
	}
}

// Create registers a new session.
func (r *MemorySessionRepository) Create(session *domain.FileSession) error {
	if session.ID == "" {
		return domain.ErrInvalidFile
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

// Get returns a copy of the session, if present.
func (r *MemorySessionRepository) Get(id string) (*domain.FileSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	copied := *session
	return &copied, true
}

// List returns copies of all sessions in upload order.
func (r *MemorySessionRepository) List() []*domain.FileSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.FileSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		copied := *session
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Update applies a mutation under the lock. It reports false when the session
// has been removed, making late engine results on detached sessions no-ops.
func (r *MemorySessionRepository) Update(id string, apply func(*domain.FileSession)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		r.logger.Debug("Update on removed session ignored", "session_id", id)
		return false
	}
	apply(session)
	return true
}

// Delete removes a session from the active set.
func (r *MemorySessionRepository) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

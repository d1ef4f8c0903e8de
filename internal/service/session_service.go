package service

import (
	"context"
	"errors"
	"time"

	"pdf-unlocker/internal/domain"

	"github.com/google/uuid"
)

// SessionService drives each file session through
// pending -> unlocking -> {needs_password, failed, renaming|unlocked}.
// Sessions run independently; one session's unlock never blocks another's.
type SessionService struct {
	repo   domain.SessionRepository
	engine domain.UnlockEngine
	naming domain.NamingSuggester // nil when AI suggestions are disabled
	logger domain.Logger
}

// NewSessionService creates a new session service. naming may be nil.
func NewSessionService(
	repo domain.SessionRepository,
	engine domain.UnlockEngine,
	naming domain.NamingSuggester,
	logger domain.Logger,
) *SessionService {
	return &SessionService{
		repo:   repo,
		engine: engine,
		naming: naming,
		logger: logger,
	}
}

// CreateSessions registers the PDF uploads among files as pending sessions
// and starts an unlock attempt for each. Non-PDF candidates are dropped.
func (s *SessionService) CreateSessions(files []domain.FileUpload) []*domain.FileSession {
	created := make([]*domain.FileSession, 0, len(files))
	for _, file := range files {
		if !file.IsPDF() {
			s.logger.Debug("Skipping non-PDF upload", "name", file.Name, "content_type", file.ContentType)
			continue
		}
		session := &domain.FileSession{
			ID:        uuid.NewString(),
			Name:      file.Name,
			Source:    file.Data,
			Status:    domain.StatusPending,
			CreatedAt: time.Now(),
		}
		if err := s.repo.Create(session); err != nil {
			s.logger.Error("Failed to register session", err, "name", file.Name)
			continue
		}
		snapshot := *session
		created = append(created, &snapshot)

		go s.unlock(session.ID, "")
	}
	return created
}

// SubmitPassword re-triggers the engine with a user-supplied password for a
// session waiting in needs_password.
func (s *SessionService) SubmitPassword(id, password string) error {
	session, ok := s.repo.Get(id)
	if !ok {
		return domain.ErrSessionNotFound
	}
	if session.Status != domain.StatusNeedsPassword {
		return domain.ErrPasswordNotAsked
	}
	if password == "" {
		return domain.ErrPasswordMissing
	}

	s.repo.Update(id, func(f *domain.FileSession) {
		f.Status = domain.StatusUnlocking
		f.LastError = ""
	})
	go s.unlock(id, password)
	return nil
}

// Get returns a snapshot of one session.
func (s *SessionService) Get(id string) (*domain.FileSession, error) {
	session, ok := s.repo.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// List returns snapshots of all sessions in upload order.
func (s *SessionService) List() []*domain.FileSession {
	return s.repo.List()
}

// Remove drops a session from the active set. An in-flight unlock for it is
// not retracted; its late result lands on a removed id and is discarded.
func (s *SessionService) Remove(id string) error {
	if !s.repo.Delete(id) {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Download returns the unlocked output and its resolved filename.
func (s *SessionService) Download(id string) ([]byte, string, error) {
	session, ok := s.repo.Get(id)
	if !ok {
		return nil, "", domain.ErrSessionNotFound
	}
	if !session.DownloadReady() {
		return nil, "", domain.ErrNotUnlocked
	}
	return session.Output, session.ResolvedName(), nil
}

// unlock runs one engine attempt for the session and maps the outcome onto
// its status. It is the only writer of session state and tolerates the
// session disappearing at any point.
func (s *SessionService) unlock(id, password string) {
	if !s.repo.Update(id, func(f *domain.FileSession) {
		f.Status = domain.StatusUnlocking
		f.LastError = ""
	}) {
		return
	}

	session, ok := s.repo.Get(id)
	if !ok {
		return
	}

	output, err := s.engine.AttemptUnlock(session.Source, password)
	if err != nil {
		s.settleFailure(id, err)
		return
	}

	if s.naming == nil {
		s.repo.Update(id, func(f *domain.FileSession) {
			f.Status = domain.StatusUnlocked
			f.Output = output
		})
		return
	}

	if !s.repo.Update(id, func(f *domain.FileSession) {
		f.Status = domain.StatusRenaming
		f.Output = output
	}) {
		return
	}
	s.suggestName(id, output, session.Name)
}

// settleFailure maps an engine error onto the session. Password problems are
// not failures: they park the session at the inline prompt instead.
func (s *SessionService) settleFailure(id string, err error) {
	status := domain.StatusFailed
	if errors.Is(err, domain.ErrPasswordRequired) || errors.Is(err, domain.ErrIncorrectPassword) {
		status = domain.StatusNeedsPassword
	}
	message := domain.UserMessage(err)
	if !s.repo.Update(id, func(f *domain.FileSession) {
		f.Status = status
		f.LastError = message
	}) {
		return
	}
	s.logger.Info("Unlock attempt settled", "session_id", id, "status", status, "message", message)
}

// suggestName asks the naming collaborator and then finishes the session as
// unlocked no matter what; naming errors are absorbed, never surfaced.
func (s *SessionService) suggestName(id string, output []byte, currentName string) {
	suggested, err := s.naming.SuggestName(context.Background(), output, currentName)
	if err != nil {
		s.logger.Warn("Filename suggestion failed, keeping original name", "session_id", id, "error", err)
		suggested = ""
	}
	s.repo.Update(id, func(f *domain.FileSession) {
		f.Status = domain.StatusUnlocked
		f.SuggestedName = suggested
	})
}

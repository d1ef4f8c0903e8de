package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"pdf-unlocker/internal/domain"
)

// Mock implementations for testing

type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.FileSession
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*domain.FileSession)}
}

func (r *mockSessionRepo) Create(session *domain.FileSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

func (r *mockSessionRepo) Get(id string) (*domain.FileSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	copied := *session
	return &copied, true
}

func (r *mockSessionRepo) List() []*domain.FileSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.FileSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		copied := *session
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *mockSessionRepo) Update(id string, apply func(*domain.FileSession)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return false
	}
	apply(session)
	return true
}

func (r *mockSessionRepo) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

type mockEngine struct {
	mu      sync.Mutex
	calls   []string
	attempt func(password string) ([]byte, error)
	block   chan struct{} // when non-nil, attempts wait here first
}

func (e *mockEngine) AttemptUnlock(source []byte, password string) ([]byte, error) {
	e.mu.Lock()
	e.calls = append(e.calls, password)
	e.mu.Unlock()
	if e.block != nil {
		<-e.block
	}
	return e.attempt(password)
}

func (e *mockEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

type mockNamer struct {
	name string
	err  error
}

func (n *mockNamer) SuggestName(ctx context.Context, pdfBytes []byte, currentName string) (string, error) {
	return n.name, n.err
}

func waitForStatus(t *testing.T, service *SessionService, id string, status domain.SessionStatus) *domain.FileSession {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if session, err := service.Get(id); err == nil && session.Status == status {
			return session
		}
		time.Sleep(5 * time.Millisecond)
	}
	session, _ := service.Get(id)
	t.Fatalf("Timed out waiting for status %s, session: %+v", status, session)
	return nil
}

func pdfUpload(name string) domain.FileUpload {
	return domain.FileUpload{Name: name, ContentType: "application/pdf", Data: []byte("%PDF-1.4 " + name)}
}

func TestSessionService_UnencryptedFlow(t *testing.T) {
	repo := newMockSessionRepo()
	engine := &mockEngine{attempt: func(password string) ([]byte, error) {
		return []byte("unlocked output"), nil
	}}
	service := NewSessionService(repo, engine, nil, &mockLogger{})

	created := service.CreateSessions([]domain.FileUpload{pdfUpload("a.pdf")})
	if len(created) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(created))
	}
	if created[0].Status != domain.StatusPending {
		t.Errorf("Expected new session to be pending, got %s", created[0].Status)
	}

	session := waitForStatus(t, service, created[0].ID, domain.StatusUnlocked)
	if string(session.Output) != "unlocked output" {
		t.Error("Expected output artifact on the unlocked session")
	}
	if session.LastError != "" {
		t.Errorf("Expected no error message, got %q", session.LastError)
	}
}

func TestSessionService_NeedsPasswordThenCorrect(t *testing.T) {
	repo := newMockSessionRepo()
	engine := &mockEngine{attempt: func(password string) ([]byte, error) {
		if password == "s3cret" {
			return []byte("rebuilt"), nil
		}
		return nil, domain.ErrPasswordRequired
	}}
	service := NewSessionService(repo, engine, nil, &mockLogger{})

	created := service.CreateSessions([]domain.FileUpload{pdfUpload("locked.pdf")})
	session := waitForStatus(t, service, created[0].ID, domain.StatusNeedsPassword)
	if session.LastError != "Password required to unlock this PDF" {
		t.Errorf("Expected password prompt message, got %q", session.LastError)
	}
	if len(session.Output) != 0 {
		t.Error("Expected no output while waiting for a password")
	}

	if err := service.SubmitPassword(created[0].ID, "s3cret"); err != nil {
		t.Fatalf("Expected password submission to be accepted, got %v", err)
	}
	session = waitForStatus(t, service, created[0].ID, domain.StatusUnlocked)
	if string(session.Output) != "rebuilt" {
		t.Error("Expected rebuilt output after the correct password")
	}
	// Initial dictionary run plus one explicit attempt; no dictionary retry.
	if engine.callCount() != 2 {
		t.Errorf("Expected 2 engine calls, got %d", engine.callCount())
	}
}

func TestSessionService_IncorrectPasswordKeepsPromptOpen(t *testing.T) {
	repo := newMockSessionRepo()
	engine := &mockEngine{attempt: func(password string) ([]byte, error) {
		if password == "" {
			return nil, domain.ErrPasswordRequired
		}
		return nil, domain.ErrIncorrectPassword
	}}
	service := NewSessionService(repo, engine, nil, &mockLogger{})

	created := service.CreateSessions([]domain.FileUpload{pdfUpload("locked.pdf")})
	waitForStatus(t, service, created[0].ID, domain.StatusNeedsPassword)

	if err := service.SubmitPassword(created[0].ID, "wrong"); err != nil {
		t.Fatalf("Expected password submission to be accepted, got %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	var session *domain.FileSession
	for time.Now().Before(deadline) {
		session, _ = service.Get(created[0].ID)
		if session.Status == domain.StatusNeedsPassword && session.LastError == "Incorrect password" {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if session.Status != domain.StatusNeedsPassword {
		t.Errorf("Expected session to stay at the prompt, got %s", session.Status)
	}
	if session.LastError != "Incorrect password" {
		t.Errorf("Expected incorrect password message, got %q", session.LastError)
	}
}

func TestSessionService_CorruptDocumentFails(t *testing.T) {
	repo := newMockSessionRepo()
	engine := &mockEngine{attempt: func(password string) ([]byte, error) {
		return nil, domain.ErrCorruptDocument
	}}
	service := NewSessionService(repo, engine, nil, &mockLogger{})

	created := service.CreateSessions([]domain.FileUpload{pdfUpload("broken.pdf")})
	session := waitForStatus(t, service, created[0].ID, domain.StatusFailed)
	if session.LastError != "Failed to load PDF - file may be corrupted" {
		t.Errorf("Expected corruption message, got %q", session.LastError)
	}
}

func TestSessionService_NamingSuccess(t *testing.T) {
	repo := newMockSessionRepo()
	engine := &mockEngine{attempt: func(password string) ([]byte, error) {
		return []byte("out"), nil
	}}
	namer := &mockNamer{name: "annual_report_2026.pdf"}
	service := NewSessionService(repo, engine, namer, &mockLogger{})

	created := service.CreateSessions([]domain.FileUpload{pdfUpload("scan_001.pdf")})
	session := waitForStatus(t, service, created[0].ID, domain.StatusUnlocked)
	if session.SuggestedName != "annual_report_2026.pdf" {
		t.Errorf("Expected suggested name, got %q", session.SuggestedName)
	}
}

func TestSessionService_NamingFailureIsAbsorbed(t *testing.T) {
	repo := newMockSessionRepo()
	engine := &mockEngine{attempt: func(password string) ([]byte, error) {
		return []byte("out"), nil
	}}
	namer := &mockNamer{err: errors.New("quota exceeded")}
	service := NewSessionService(repo, engine, namer, &mockLogger{})

	created := service.CreateSessions([]domain.FileUpload{pdfUpload("scan_001.pdf")})
	session := waitForStatus(t, service, created[0].ID, domain.StatusUnlocked)
	if session.SuggestedName != "" {
		t.Errorf("Expected no suggestion after a naming error, got %q", session.SuggestedName)
	}
	if len(session.Output) == 0 {
		t.Error("Expected the output artifact to survive a naming failure")
	}
}

func TestSessionService_FiltersNonPDFs(t *testing.T) {
	repo := newMockSessionRepo()
	engine := &mockEngine{attempt: func(password string) ([]byte, error) {
		return []byte("out"), nil
	}}
	service := NewSessionService(repo, engine, nil, &mockLogger{})

	created := service.CreateSessions([]domain.FileUpload{
		pdfUpload("keep.pdf"),
		{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hi")},
		{Name: "bare.pdf", Data: []byte("%PDF-1.4")},
	})
	if len(created) != 2 {
		t.Fatalf("Expected 2 sessions (txt dropped), got %d", len(created))
	}
}

func TestSessionService_RemoveDuringUnlock(t *testing.T) {
	repo := newMockSessionRepo()
	engine := &mockEngine{
		attempt: func(password string) ([]byte, error) { return []byte("out"), nil },
		block:   make(chan struct{}),
	}
	service := NewSessionService(repo, engine, nil, &mockLogger{})

	created := service.CreateSessions([]domain.FileUpload{pdfUpload("slow.pdf")})
	waitForStatus(t, service, created[0].ID, domain.StatusUnlocking)

	if err := service.Remove(created[0].ID); err != nil {
		t.Fatalf("Expected removal to succeed, got %v", err)
	}
	close(engine.block) // let the in-flight attempt finish against a removed session

	time.Sleep(50 * time.Millisecond)
	if _, err := service.Get(created[0].ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Expected the removed session to stay gone, got %v", err)
	}
}

func TestSessionService_SubmitPasswordGuards(t *testing.T) {
	repo := newMockSessionRepo()
	engine := &mockEngine{attempt: func(password string) ([]byte, error) {
		return []byte("out"), nil
	}}
	service := NewSessionService(repo, engine, nil, &mockLogger{})

	if err := service.SubmitPassword("missing", "pw"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	created := service.CreateSessions([]domain.FileUpload{pdfUpload("a.pdf")})
	waitForStatus(t, service, created[0].ID, domain.StatusUnlocked)
	if err := service.SubmitPassword(created[0].ID, "pw"); !errors.Is(err, domain.ErrPasswordNotAsked) {
		t.Errorf("Expected ErrPasswordNotAsked for an unlocked session, got %v", err)
	}
}

func TestSessionService_DownloadGuards(t *testing.T) {
	repo := newMockSessionRepo()
	engine := &mockEngine{attempt: func(password string) ([]byte, error) {
		return nil, domain.ErrPasswordRequired
	}}
	service := NewSessionService(repo, engine, nil, &mockLogger{})

	created := service.CreateSessions([]domain.FileUpload{pdfUpload("locked.pdf")})
	waitForStatus(t, service, created[0].ID, domain.StatusNeedsPassword)

	if _, _, err := service.Download(created[0].ID); !errors.Is(err, domain.ErrNotUnlocked) {
		t.Errorf("Expected ErrNotUnlocked, got %v", err)
	}
}

func TestSessionService_IndependentSessions(t *testing.T) {
	repo := newMockSessionRepo()
	service := NewSessionService(repo, &sourceAwareEngine{}, nil, &mockLogger{})

	created := service.CreateSessions([]domain.FileUpload{
		{Name: "locked.pdf", ContentType: "application/pdf", Data: []byte("locked")},
		{Name: "plain.pdf", ContentType: "application/pdf", Data: []byte("plain")},
	})

	lockedID, plainID := created[0].ID, created[1].ID
	waitForStatus(t, service, plainID, domain.StatusUnlocked)
	waitForStatus(t, service, lockedID, domain.StatusNeedsPassword)
}

type sourceAwareEngine struct{}

func (e *sourceAwareEngine) AttemptUnlock(source []byte, password string) ([]byte, error) {
	if string(source) == "plain" {
		return source, nil
	}
	return nil, domain.ErrPasswordRequired
}

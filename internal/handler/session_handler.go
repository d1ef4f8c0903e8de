// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"pdf-unlocker/internal/domain"

	"github.com/gorilla/mux"
)

// SessionHandler handles file session HTTP requests: upload, status,
// password submission, download, removal and batch export.
type SessionHandler struct {
	sessions    domain.SessionManager
	exporter    domain.Exporter
	maxFileSize int64
	logger      domain.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions domain.SessionManager, exporter domain.Exporter, maxFileSize int64, logger domain.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:    sessions,
		exporter:    exporter,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// UploadSessions accepts a multipart upload, filters it to PDFs and starts an
// unlock attempt per accepted file.
func (h *SessionHandler) UploadSessions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize*8)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No files provided")
		return
	}

	uploads := make([]domain.FileUpload, 0, len(headers))
	for _, header := range headers {
		if header.Size > h.maxFileSize {
			h.logger.Warn("Rejecting oversized upload", "name", header.Filename, "size", header.Size)
			continue
		}
		file, err := header.Open()
		if err != nil {
			h.logger.Warn("Could not open uploaded file", "name", header.Filename, "error", err)
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			h.logger.Warn("Could not read uploaded file", "name", header.Filename, "error", err)
			continue
		}
		uploads = append(uploads, domain.FileUpload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	created := h.sessions.CreateSessions(uploads)
	if len(created) == 0 {
		writeError(w, http.StatusBadRequest, "No PDF files in upload")
		return
	}

	h.logger.Info("Upload accepted", "files", len(headers), "sessions", len(created))
	writeJSON(w, http.StatusCreated, created)
}

// GetSessions lists all active sessions.
func (h *SessionHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessions.List()
	// Ensure JSON is [] not null when there are no sessions.
	if sessions == nil {
		sessions = make([]*domain.FileSession, 0)
	}
	writeJSON(w, http.StatusOK, sessions)
}

// GetSession returns one session's record.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	session, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// SubmitPassword re-triggers the unlock with a user-supplied password for a
// session waiting at the prompt.
func (h *SessionHandler) SubmitPassword(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.sessions.SubmitPassword(id, body.Password)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
		return
	case errors.Is(err, domain.ErrPasswordNotAsked):
		writeError(w, http.StatusConflict, "Session is not waiting for a password")
		return
	case errors.Is(err, domain.ErrPasswordMissing):
		writeError(w, http.StatusBadRequest, "Password must not be empty")
		return
	default:
		h.logger.Error("Password submission failed", err, "session_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to submit password")
		return
	}

	session, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusAccepted, session)
}

// DownloadSession streams the unlocked output under its resolved filename.
func (h *SessionHandler) DownloadSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	data, name, err := h.sessions.Download(id)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
		return
	case errors.Is(err, domain.ErrNotUnlocked):
		writeError(w, http.StatusConflict, "Session is not unlocked yet")
		return
	case err != nil:
		h.logger.Error("Download failed", err, "session_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to download file")
		return
	}
	serveAttachment(w, name, "application/pdf", data)
}

// RemoveSession drops a session from the active set.
func (h *SessionHandler) RemoveSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.sessions.Remove(id); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportAll bundles every unlocked session for download: one file directly,
// several as a zip. When archiving failed the response lists the files to
// fetch individually instead.
func (h *SessionHandler) ExportAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.exporter.ExportUnlocked()
	if errors.Is(err, domain.ErrNothingToExport) {
		writeError(w, http.StatusNotFound, "No unlocked files to export")
		return
	}
	if err != nil {
		h.logger.Error("Export failed", err)
		writeError(w, http.StatusInternalServerError, "Failed to export files")
		return
	}

	if len(result.Items) > 0 {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"fallback": true,
			"files":    result.Items,
		})
		return
	}
	serveAttachment(w, result.Name, result.ContentType, result.Data)
}

// GetPasswordDictionary lists the common passwords tried automatically, in
// trial order. The empty "no password" entry is implied and left out.
func (h *SessionHandler) GetPasswordDictionary(w http.ResponseWriter, r *http.Request) {
	passwords := make([]string, 0, len(domain.CommonPasswords))
	for _, pw := range domain.CommonPasswords {
		if pw == "" {
			continue
		}
		passwords = append(passwords, pw)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"passwords": passwords})
}

func serveAttachment(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", strconv.Quote(name)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

package service

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"pdf-unlocker/internal/domain"
)

// ExportService bundles the unlocked sessions for download: one file goes out
// directly, several go out as a zip archive.
type ExportService struct {
	repo   domain.SessionRepository
	logger domain.Logger
}

// NewExportService creates a new export service.
func NewExportService(repo domain.SessionRepository, logger domain.Logger) *ExportService {
	return &ExportService{repo: repo, logger: logger}
}

// ExportUnlocked collects every session in terminal unlocked state with an
// output artifact, in upload order.
func (s *ExportService) ExportUnlocked() (*domain.ExportResult, error) {
	var items []domain.ExportItem
	for _, session := range s.repo.List() {
		if !session.DownloadReady() {
			continue
		}
		items = append(items, domain.ExportItem{
			SessionID: session.ID,
			Name:      session.ResolvedName(),
			Data:      session.Output,
		})
	}
	if len(items) == 0 {
		return nil, domain.ErrNothingToExport
	}
	if len(items) == 1 {
		return &domain.ExportResult{
			Name:        items[0].Name,
			ContentType: "application/pdf",
			Data:        items[0].Data,
		}, nil
	}

	archive, err := buildArchive(items)
	if err != nil {
		// Degrade to individual downloads when the archive cannot be built.
		s.logger.Warn("Archive creation failed, falling back to individual exports", "error", err, "files", len(items))
		return &domain.ExportResult{Items: items}, nil
	}
	return &domain.ExportResult{
		Name:        "unlocked_pdfs.zip",
		ContentType: "application/zip",
		Data:        archive,
	}, nil
}

// buildArchive zips the items, deduplicating resolved names so no entry
// silently overwrites another.
func buildArchive(items []domain.ExportItem) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	seen := make(map[string]int)
	for _, item := range items {
		name := item.Name
		if n := seen[name]; n > 0 {
			ext := filepath.Ext(name)
			name = fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), n, ext)
		}
		seen[item.Name]++

		f, err := w.Create(name)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("create archive entry %q: %w", name, err)
		}
		if _, err := f.Write(item.Data); err != nil {
			w.Close()
			return nil, fmt.Errorf("write archive entry %q: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

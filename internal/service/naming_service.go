package service

import (
	"context"
	"fmt"
	"strings"

	"pdf-unlocker/internal/domain"

	"cloud.google.com/go/vertexai/genai"
)

const (
	namingModel       = "gemini-2.0-flash-001"
	namingSamplePages = 5
	namingMaxTokens   = 100
)

// NamingService asks a Vertex AI model for a better filename for an unlocked
// document. It is strictly best-effort: every error means "no suggestion".
type NamingService struct {
	client *genai.Client
	parser domain.DocumentParser
	logger domain.Logger
}

// NewNamingService creates the naming collaborator.
func NewNamingService(ctx context.Context, projectID, location string, parser domain.DocumentParser, logger domain.Logger) (*NamingService, error) {
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}
	return &NamingService{
		client: client,
		parser: parser,
		logger: logger,
	}, nil
}

// SuggestName returns a proposed filename for pdfBytes or an error. The
// caller decides what a failed suggestion means; here it is just an error.
func (s *NamingService) SuggestName(ctx context.Context, pdfBytes []byte, currentName string) (string, error) {
	pageCount, sample := s.describeDocument(pdfBytes)

	prompt := fmt.Sprintf(`You are a helpful assistant that suggests meaningful filenames for PDF documents.

Current filename: %s

The PDF has %d pages. Here's a sample of the content:
%s

Based on the content, suggest a better filename if the current one is generic (like "document.pdf", "scan_001.pdf", etc.).
If the current filename already properly describes the content, keep it unchanged.

Return ONLY the suggested filename (with .pdf extension), nothing else. The filename should be:
- Descriptive of the content
- Use underscores or hyphens instead of spaces
- Include relevant dates if found in format YYYY-MM-DD
- Be concise but informative`, currentName, pageCount, sample)

	model := s.client.GenerativeModel(namingModel)
	model.SetMaxOutputTokens(namingMaxTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate filename suggestion: %w", err)
	}

	return sanitizeSuggestion(firstText(resp))
}

// Close releases the Vertex AI client.
func (s *NamingService) Close() error {
	return s.client.Close()
}

// describeDocument extracts page count and a text sample of the first pages.
// Rasterized output carries no text layer, so the sample is often empty and
// the model works from the current name and page count alone.
func (s *NamingService) describeDocument(pdfBytes []byte) (int, string) {
	doc, err := s.parser.Open(pdfBytes, "")
	if err != nil {
		s.logger.Debug("Could not reopen output for naming, using name only", "error", err)
		return 0, "(content not available)"
	}
	defer doc.Close()

	pageCount := doc.PageCount()
	var sb strings.Builder
	pages := pageCount
	if pages > namingSamplePages {
		pages = namingSamplePages
	}
	for n := 1; n <= pages; n++ {
		text, err := doc.PageText(n)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&sb, "Page %d:\n%s\n\n", n, text)
	}
	if sb.Len() == 0 {
		return pageCount, "(image-only document, no extractable text)"
	}
	return pageCount, sb.String()
}

// firstText pulls the first text part out of a generation response.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			return string(text)
		}
	}
	return ""
}

// sanitizeSuggestion normalizes a model answer into a usable filename.
func sanitizeSuggestion(suggestion string) (string, error) {
	suggestion = strings.TrimSpace(suggestion)
	suggestion = strings.Trim(suggestion, "\"'`")
	if suggestion == "" {
		return "", fmt.Errorf("empty filename suggestion")
	}
	if strings.ContainsAny(suggestion, "\r\n/\\") {
		return "", fmt.Errorf("unusable filename suggestion %q", suggestion)
	}
	if !strings.HasSuffix(strings.ToLower(suggestion), ".pdf") {
		suggestion += ".pdf"
	}
	return suggestion, nil
}

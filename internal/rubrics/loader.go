package rubrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/scorecard/internal/documents"
	"github.com/JaimeStill/scorecard/internal/segmentation"
)

// Domain errors for rubric loading.
var (
	ErrUnsupportedFormat = errors.New("unsupported rubric format")
	ErrEmptyRubric       = errors.New("rubric file contains no text")
)

// MapHTTPStatus maps rubric domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnsupportedFormat) || errors.Is(err, ErrEmptyRubric) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Loader reads rubric files into free-text rubrics. Plain text formats
// are read directly; PDFs go through page extraction so scanned rubrics
// still load when OCR is available.
type Loader struct {
	extractor *segmentation.PageExtractor
	logger    *slog.Logger
}

// NewLoader creates a rubric Loader.
func NewLoader(extractor *segmentation.PageExtractor, logger *slog.Logger) *Loader {
	return &Loader{
		extractor: extractor,
		logger:    logger.With("system", "rubrics"),
	}
}

// Load reads the file at path into a free-text rubric named after the
// file. Structured criteria, when wanted, come from a later enrichment
// pass over the same text.
func (l *Loader) Load(ctx context.Context, path string) (*Rubric, error) {
	text, err := l.readText(ctx, path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyRubric, filepath.Base(path))
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	l.logger.InfoContext(ctx, "loaded rubric", "name", name, "chars", len(text))

	return NewFreeText(name, text), nil
}

func (l *Loader) readText(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read rubric file: %w", err)
		}
		return string(data), nil
	case ".pdf":
		return l.readPDF(ctx, path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func (l *Loader) readPDF(ctx context.Context, path string) (string, error) {
	doc, err := documents.Open(path)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	pages, err := l.extractor.Extract(ctx, doc)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			parts = append(parts, strings.TrimSpace(p.Text))
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

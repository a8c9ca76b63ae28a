// Package segmentation implements the submission segmentation pipeline:
// per-page text acquisition with OCR fallback, best-effort identity
// recovery, and partitioning of page sequences into per-student units.
// It depends only on the Document and OCR contracts below, never on a
// concrete PDF or OCR implementation, so it is testable without either.
package segmentation

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
)

// Document is an ordered page sequence with per-page plain-text
// extraction and optional rasterization for OCR. Pages are 1-based.
type Document interface {
	Name() string
	PageCount() int
	PageText(page int) (string, error)
	RenderPage(page int, dpi float64) (image.Image, error)
}

// OCR recognizes text in a rasterized page image. Implementations are
// best-effort; failures degrade to empty page text and never abort
// extraction.
type OCR interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Origin records how a page's text was obtained.
type Origin string

const (
	OriginNative Origin = "native-text"
	OriginOCR    Origin = "ocr"
	OriginEmpty  Origin = "empty"
)

// Page is one extracted document page. Immutable once produced.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
	Origin Origin `json:"origin"`
}

const renderDPI = 300

// PageExtractor acquires per-page text from documents, falling back to
// OCR for pages with no native text layer when an OCR capability was
// supplied.
type PageExtractor struct {
	ocr    OCR
	logger *slog.Logger
}

// NewPageExtractor creates a PageExtractor. ocr may be nil, in which case
// pages without a text layer are tagged origin=empty.
func NewPageExtractor(ocr OCR, logger *slog.Logger) *PageExtractor {
	return &PageExtractor{
		ocr:    ocr,
		logger: logger.With("system", "segmentation"),
	}
}

// Extract produces one Page per document page, in document order. A page
// read failure is fatal to the whole call; OCR failures degrade the
// affected page to origin=empty.
func (e *PageExtractor) Extract(ctx context.Context, doc Document) ([]Page, error) {
	count := doc.PageCount()
	pages := make([]Page, 0, count)

	for n := 1; n <= count; n++ {
		text, err := doc.PageText(n)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d of %s: %w", ErrDocumentRead, n, doc.Name(), err)
		}

		origin := OriginNative
		if strings.TrimSpace(text) == "" {
			text, origin = e.recognize(ctx, doc, n)
		}

		pages = append(pages, Page{Number: n, Text: text, Origin: origin})
	}

	return pages, nil
}

// recognize rasterizes the page and runs OCR. Any failure yields an empty
// page rather than an error.
func (e *PageExtractor) recognize(ctx context.Context, doc Document, page int) (string, Origin) {
	if e.ocr == nil {
		return "", OriginEmpty
	}

	img, err := doc.RenderPage(page, renderDPI)
	if err != nil {
		e.logger.Warn("page render failed, skipping OCR", "document", doc.Name(), "page", page, "error", err)
		return "", OriginEmpty
	}

	text, err := e.ocr.Recognize(ctx, img)
	if err != nil {
		e.logger.Warn("ocr failed", "document", doc.Name(), "page", page, "error", err)
		return "", OriginEmpty
	}

	if strings.TrimSpace(text) == "" {
		return "", OriginEmpty
	}

	return text, OriginOCR
}

// joinContent renders unit content: pages with non-empty text, each
// prefixed with its page marker, blank-line separated. Pages without text
// contribute nothing, so a unit of blank pages has empty content.
func joinContent(pages []Page) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", p.Number, p.Text))
	}
	return strings.Join(parts, "\n\n")
}

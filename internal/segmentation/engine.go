package segmentation

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
)

// Strategy selects how a page sequence is partitioned into student units.
type Strategy string

const (
	// StrategyIndividual treats each input document as one student.
	StrategyIndividual Strategy = "individual"
	// StrategyFixedPages partitions a single combined document into
	// consecutive blocks of a fixed page count.
	StrategyFixedPages Strategy = "fixed-pages"
	// StrategyMarker partitions a single combined document at pages
	// matching a marker pattern.
	StrategyMarker Strategy = "marker-pattern"
)

// Params carries strategy-specific parameters.
type Params struct {
	// PagesPerStudent is required by StrategyFixedPages; must be positive.
	PagesPerStudent int `json:"pages_per_student,omitempty"`
	// MarkerPattern is required by StrategyMarker: a regular expression,
	// compiled case-insensitively, whose match on a page signals that a
	// new student's submission begins on that page. The first capture
	// group (or the whole match, if there is none) becomes the unit ID.
	MarkerPattern string `json:"marker_pattern,omitempty"`
}

// PageRange is a 1-based inclusive span of pages within a source document.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Unit is one student's submission extracted from one or more pages.
// Read-only after segmentation.
type Unit struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Content string     `json:"content"`
	Source  string     `json:"source"`
	Pages   *PageRange `json:"page_range,omitempty"`
}

// Result is the ordered unit sequence for a segmentation pass. Order is
// document/page order. Within one source document the units' page ranges
// are contiguous, non-overlapping, and cover every page exactly once.
type Result struct {
	Units []Unit `json:"units"`
}

// Engine drives a partitioning strategy over extracted page sequences.
type Engine struct {
	extractor *PageExtractor
	logger    *slog.Logger
}

// NewEngine creates an Engine using the given extractor for page text
// acquisition.
func NewEngine(extractor *PageExtractor, logger *slog.Logger) *Engine {
	return &Engine{
		extractor: extractor,
		logger:    logger.With("system", "segmentation"),
	}
}

// Segment partitions the documents into ordered student units. Empty
// documents yield no units; documents whose every page is blank yield
// units with empty content. Both are defined outcomes, not errors.
func (e *Engine) Segment(ctx context.Context, docs []Document, strategy Strategy, params Params) (*Result, error) {
	switch strategy {
	case StrategyIndividual:
		return e.segmentIndividual(ctx, docs)
	case StrategyFixedPages:
		return e.segmentFixedPages(ctx, docs, params)
	case StrategyMarker:
		return e.segmentMarker(ctx, docs, params)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStrategy, strategy)
	}
}

func (e *Engine) segmentIndividual(ctx context.Context, docs []Document) (*Result, error) {
	result := &Result{Units: make([]Unit, 0, len(docs))}

	for _, doc := range docs {
		pages, err := e.extractor.Extract(ctx, doc)
		if err != nil {
			return nil, err
		}

		content := joinContent(pages)
		ident := ExtractIdentity(content)

		id := ident.ID
		if id == PlaceholderIdentity {
			if fid := filenameID(doc.Name()); fid != "" {
				id = fid
			}
		}

		result.Units = append(result.Units, newUnit(id, ident.Name, content, doc.Name(), nil))
	}

	e.logger.InfoContext(ctx, "segmented individual documents", "documents", len(docs), "units", len(result.Units))
	return result, nil
}

func (e *Engine) segmentFixedPages(ctx context.Context, docs []Document, params Params) (*Result, error) {
	if len(docs) != 1 {
		return nil, fmt.Errorf("%w: fixed-pages requires a single combined document, got %d", ErrInvalidParams, len(docs))
	}
	if params.PagesPerStudent < 1 {
		return nil, fmt.Errorf("%w: pages_per_student must be positive, got %d", ErrInvalidParams, params.PagesPerStudent)
	}

	doc := docs[0]
	pages, err := e.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for start := 0; start < len(pages); start += params.PagesPerStudent {
		end := min(start+params.PagesPerStudent, len(pages))
		block := pages[start:end]

		content := joinContent(block)
		ident := ExtractIdentity(content)

		id := ident.ID
		if id == PlaceholderIdentity {
			id = fmt.Sprintf("Student_%d", len(result.Units)+1)
		}

		result.Units = append(result.Units, newUnit(
			id, ident.Name, content, doc.Name(),
			&PageRange{Start: start + 1, End: end},
		))
	}

	e.logger.InfoContext(ctx, "segmented by fixed pages",
		"document", doc.Name(),
		"pages", len(pages),
		"pages_per_student", params.PagesPerStudent,
		"units", len(result.Units),
	)
	return result, nil
}

// segmentMarker scans pages in order. A page matching the marker pattern
// starts a new unit and belongs to it; the unit accumulated so far (if
// any) closes at the previous page. Pages before the first match become a
// leading unit with a positional placeholder ID. The final unit is always
// flushed at end of document; when no page ever matched, identity falls
// back to ExtractIdentity over the whole content, so a zero-match
// document is one whole unit, not an error.
func (e *Engine) segmentMarker(ctx context.Context, docs []Document, params Params) (*Result, error) {
	if len(docs) != 1 {
		return nil, fmt.Errorf("%w: marker-pattern requires a single combined document, got %d", ErrInvalidParams, len(docs))
	}
	if params.MarkerPattern == "" {
		return nil, fmt.Errorf("%w: marker pattern required", ErrInvalidParams)
	}

	marker, err := regexp.Compile("(?i)" + params.MarkerPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: marker pattern: %w", ErrInvalidParams, err)
	}

	doc := docs[0]
	pages, err := e.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	var current []Page
	currentID := ""
	currentStart := 1

	for i, p := range pages {
		pageNum := i + 1

		if m := marker.FindStringSubmatch(p.Text); m != nil {
			if len(current) > 0 {
				result.Units = append(result.Units, closedMarkerUnit(
					doc, current, currentID, currentStart, pageNum-1, len(result.Units),
				))
				current = nil
				currentStart = pageNum
			}
			currentID = sanitizeMarkerID(markerID(m))
		}

		current = append(current, p)
	}

	if len(current) > 0 {
		result.Units = append(result.Units, finalMarkerUnit(
			doc, current, currentID, currentStart, len(pages),
		))
	}

	e.logger.InfoContext(ctx, "segmented by marker pattern",
		"document", doc.Name(),
		"pages", len(pages),
		"units", len(result.Units),
	)
	return result, nil
}

// closedMarkerUnit builds a unit closed mid-scan by a marker match on the
// following page. An empty id means the unit held pages before the first
// match; it gets a positional placeholder.
func closedMarkerUnit(doc Document, pages []Page, id string, start, end, existing int) Unit {
	if id == "" {
		id = fmt.Sprintf("Student_%d", existing+1)
	}
	return newUnit(id, PlaceholderIdentity, joinContent(pages), doc.Name(), &PageRange{Start: start, End: end})
}

// finalMarkerUnit flushes the trailing unit at end of document. If no
// marker ever resolved an ID, identity extraction over the accumulated
// content is the fallback.
func finalMarkerUnit(doc Document, pages []Page, id string, start, end int) Unit {
	name := PlaceholderIdentity
	content := joinContent(pages)
	if id == "" {
		ident := ExtractIdentity(content)
		id = ident.ID
		name = ident.Name
	}
	return newUnit(id, name, content, doc.Name(), &PageRange{Start: start, End: end})
}

// markerID selects the first capture group when the pattern has one, the
// whole match otherwise. With no capture group the whole match becomes
// the ID verbatim, surrounding label text included; callers depend on
// this exact rule, so it is deliberately not tightened.
func markerID(m []string) string {
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

var markerSanitizer = regexp.MustCompile(`[^\w-]`)

func sanitizeMarkerID(id string) string {
	return markerSanitizer.ReplaceAllString(id, "_")
}

// newUnit applies the unit invariants: trimmed identity fields that fall
// back to the placeholder rather than an empty string.
func newUnit(id, name, content, source string, pages *PageRange) Unit {
	id = strings.TrimSpace(id)
	if id == "" {
		id = PlaceholderIdentity
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = PlaceholderIdentity
	}
	return Unit{ID: id, Name: name, Content: content, Source: source, Pages: pages}
}

// filenameID derives a fallback ID from a document filename: the first
// run of alphanumeric, hyphen, or underscore characters in the base name.
func filenameID(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filenameIDPattern.FindString(base)
}

var filenameIDPattern = regexp.MustCompile(`[A-Za-z0-9_-]+`)

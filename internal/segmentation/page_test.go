package segmentation_test

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/JaimeStill/scorecard/internal/segmentation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDoc serves pages from a string slice. A negative renderErrAt or
// textErrAt disables the corresponding failure.
type fakeDoc struct {
	name        string
	pages       []string
	textErrAt   int
	renderErrAt int
}

func newFakeDoc(name string, pages ...string) *fakeDoc {
	return &fakeDoc{name: name, pages: pages, textErrAt: -1, renderErrAt: -1}
}

func (d *fakeDoc) Name() string   { return d.name }
func (d *fakeDoc) PageCount() int { return len(d.pages) }

func (d *fakeDoc) PageText(page int) (string, error) {
	if page == d.textErrAt {
		return "", errors.New("damaged page")
	}
	return d.pages[page-1], nil
}

func (d *fakeDoc) RenderPage(page int, dpi float64) (image.Image, error) {
	if page == d.renderErrAt {
		return nil, errors.New("render failed")
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

// fakeOCR returns canned text keyed by invocation order.
type fakeOCR struct {
	texts []string
	err   error
	calls int
}

func (o *fakeOCR) Recognize(ctx context.Context, img image.Image) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	text := ""
	if o.calls < len(o.texts) {
		text = o.texts[o.calls]
	}
	o.calls++
	return text, nil
}

func TestExtractNativeText(t *testing.T) {
	extractor := segmentation.NewPageExtractor(nil, testLogger())
	doc := newFakeDoc("a.pdf", "first page", "second page")

	pages, err := extractor.Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	if len(pages) != 2 {
		t.Fatalf("pages: got %d, want 2", len(pages))
	}
	for i, p := range pages {
		if p.Number != i+1 {
			t.Errorf("page %d: number %d", i, p.Number)
		}
		if p.Origin != segmentation.OriginNative {
			t.Errorf("page %d: origin %s, want native", i, p.Origin)
		}
	}
	if pages[1].Text != "second page" {
		t.Errorf("page 2 text: got %q", pages[1].Text)
	}
}

func TestExtractEmptyWithoutOCR(t *testing.T) {
	extractor := segmentation.NewPageExtractor(nil, testLogger())
	doc := newFakeDoc("scan.pdf", "  \n\t ")

	pages, err := extractor.Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	if pages[0].Origin != segmentation.OriginEmpty {
		t.Errorf("origin: got %s, want empty", pages[0].Origin)
	}
	if pages[0].Text != "" {
		t.Errorf("text: got %q, want empty", pages[0].Text)
	}
}

func TestExtractOCRFallback(t *testing.T) {
	tests := []struct {
		name       string
		ocr        *fakeOCR
		renderErr  bool
		wantText   string
		wantOrigin segmentation.Origin
	}{
		{
			name:       "ocr recovers text",
			ocr:        &fakeOCR{texts: []string{"recognized text"}},
			wantText:   "recognized text",
			wantOrigin: segmentation.OriginOCR,
		},
		{
			name:       "ocr failure degrades to empty",
			ocr:        &fakeOCR{err: errors.New("ocr crashed")},
			wantOrigin: segmentation.OriginEmpty,
		},
		{
			name:       "ocr whitespace counts as empty",
			ocr:        &fakeOCR{texts: []string{"   "}},
			wantOrigin: segmentation.OriginEmpty,
		},
		{
			name:       "render failure degrades to empty",
			ocr:        &fakeOCR{texts: []string{"never used"}},
			renderErr:  true,
			wantOrigin: segmentation.OriginEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := segmentation.NewPageExtractor(tt.ocr, testLogger())
			doc := newFakeDoc("scan.pdf", "")
			if tt.renderErr {
				doc.renderErrAt = 1
			}

			pages, err := extractor.Extract(context.Background(), doc)
			if err != nil {
				t.Fatalf("extract failed: %v", err)
			}

			if pages[0].Origin != tt.wantOrigin {
				t.Errorf("origin: got %s, want %s", pages[0].Origin, tt.wantOrigin)
			}
			if pages[0].Text != tt.wantText {
				t.Errorf("text: got %q, want %q", pages[0].Text, tt.wantText)
			}
		})
	}
}

func TestExtractReadFailureIsFatal(t *testing.T) {
	extractor := segmentation.NewPageExtractor(nil, testLogger())
	doc := newFakeDoc("broken.pdf", "ok", "bad")
	doc.textErrAt = 2

	_, err := extractor.Extract(context.Background(), doc)
	if !errors.Is(err, segmentation.ErrDocumentRead) {
		t.Fatalf("error: got %v, want ErrDocumentRead", err)
	}
	if !strings.Contains(err.Error(), "page 2") {
		t.Errorf("error should name the failing page: %v", err)
	}
}

func TestExtractMixedOrigins(t *testing.T) {
	ocr := &fakeOCR{texts: []string{"ocr page"}}
	extractor := segmentation.NewPageExtractor(ocr, testLogger())
	doc := newFakeDoc("mixed.pdf", "native page", "", "another native")

	pages, err := extractor.Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	want := []segmentation.Origin{
		segmentation.OriginNative,
		segmentation.OriginOCR,
		segmentation.OriginNative,
	}
	for i, origin := range want {
		if pages[i].Origin != origin {
			t.Errorf("page %d: origin %s, want %s", i+1, pages[i].Origin, origin)
		}
	}
	if ocr.calls != 1 {
		t.Errorf("ocr calls: got %d, want 1", ocr.calls)
	}
}

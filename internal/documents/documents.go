// Package documents provides the concrete document capabilities the
// segmentation pipeline consumes: PDF page access backed by MuPDF,
// best-effort OCR via the tesseract binary, local upload storage, and
// per-unit PDF splitting.
package documents

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"runtime"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"
)

// PDF is a readable PDF document implementing the segmentation Document
// contract. Not safe for concurrent use; open one per goroutine.
type PDF struct {
	name string
	doc  *fitz.Document
}

// Open opens a PDF from a file path. The name reported to consumers is
// the path itself, so filename-derived fallback IDs keep working.
func Open(path string) (*PDF, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, path, err)
	}
	return &PDF{name: path, doc: doc}, nil
}

// OpenBytes opens a PDF from raw bytes. The data is validated with pdfcpu
// before MuPDF touches it; corrupt uploads fail here, not mid-extraction.
func OpenBytes(name string, data []byte) (*PDF, error) {
	if _, err := api.PageCount(bytes.NewReader(data), nil); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, name, err)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, name, err)
	}
	return &PDF{name: name, doc: doc}, nil
}

// Name returns the document's source name.
func (p *PDF) Name() string {
	return p.name
}

// PageCount returns the number of pages.
func (p *PDF) PageCount() int {
	return p.doc.NumPage()
}

// PageText extracts the native text layer of the 1-based page.
func (p *PDF) PageText(page int) (string, error) {
	text, err := p.doc.Text(page - 1)
	if err != nil {
		return "", fmt.Errorf("extract text for page %d: %w", page, err)
	}
	return text, nil
}

// RenderPage rasterizes the 1-based page at the given DPI.
func (p *PDF) RenderPage(page int, dpi float64) (image.Image, error) {
	img, err := p.doc.ImageDPI(page-1, dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	return img, nil
}

// Close releases the underlying MuPDF document.
func (p *PDF) Close() error {
	return p.doc.Close()
}

// OpenAll opens multiple PDFs concurrently with bounded parallelism,
// preserving input order. On any failure all successfully opened
// documents are closed and the first error is returned.
func OpenAll(ctx context.Context, paths []string) ([]*PDF, error) {
	docs := make([]*PDF, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(openWorkerCount(len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			doc, err := Open(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		CloseAll(docs)
		return nil, err
	}

	return docs, nil
}

// CloseAll closes every non-nil document in the slice.
func CloseAll(docs []*PDF) {
	for _, doc := range docs {
		if doc != nil {
			doc.Close()
		}
	}
}

func openWorkerCount(n int) int {
	return max(min(runtime.NumCPU(), n), 1)
}

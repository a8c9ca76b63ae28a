package documents

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// Tesseract recognizes page images by shelling out to the tesseract
// binary. It satisfies the segmentation OCR contract.
type Tesseract struct {
	binary string
	logger *slog.Logger
}

// NewTesseract probes for the tesseract binary and returns an OCR
// capability backed by it. Returns ErrOCRUnavailable when the binary is
// not installed; callers should then run extraction without OCR rather
// than failing.
func NewTesseract(logger *slog.Logger) (*Tesseract, error) {
	binary, err := exec.LookPath("tesseract")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOCRUnavailable, err)
	}
	return &Tesseract{
		binary: binary,
		logger: logger.With("system", "ocr"),
	}, nil
}

// Recognize runs tesseract over the image and returns the recognized
// text. Best-effort: any failure is returned as an error for the caller
// to degrade on, never to propagate as fatal.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	dir, err := os.MkdirTemp("", "scorecard-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp directory: %w", err)
	}
	defer os.RemoveAll(dir)

	imgPath := filepath.Join(dir, "page.png")
	if err := writePNG(imgPath, img); err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.binary, imgPath, "stdout")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, stderr.String())
	}

	t.logger.Debug("page recognized", "chars", stdout.Len())
	return stdout.String(), nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode image: %w", err)
	}
	return nil
}

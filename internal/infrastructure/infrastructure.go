// Package infrastructure provides core service initialization for application startup.
// It assembles the common dependencies (logging, upload storage, OCR, segmentation)
// that domain systems require.
package infrastructure

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/scorecard/internal/config"
	"github.com/JaimeStill/scorecard/internal/documents"
	"github.com/JaimeStill/scorecard/internal/segmentation"
	"github.com/JaimeStill/scorecard/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Uploads   *documents.Store
	Extractor *segmentation.PageExtractor
	Engine    *segmentation.Engine
}

// New creates an Infrastructure from the application configuration. OCR
// is attached when enabled and the tesseract binary is installed;
// otherwise extraction proceeds on native text alone.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	uploads, err := documents.NewStore(cfg.Storage.Root, cfg.Storage.MaxUploadSize, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	var ocr segmentation.OCR
	if cfg.Storage.OCR() {
		tess, err := documents.NewTesseract(logger)
		switch {
		case err == nil:
			ocr = tess
		case errors.Is(err, documents.ErrOCRUnavailable):
			logger.Warn("tesseract not found, scanned pages will read as empty")
		default:
			return nil, fmt.Errorf("ocr init failed: %w", err)
		}
	}

	extractor := segmentation.NewPageExtractor(ocr, logger)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Uploads:   uploads,
		Extractor: extractor,
		Engine:    segmentation.NewEngine(extractor, logger),
	}, nil
}

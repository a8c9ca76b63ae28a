package documents

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/scorecard/internal/segmentation"
)

// SplitUnits writes one PDF per segmented unit into outDir, each
// trimmed to the unit's page range within the combined source document.
// Units without a page range (individual-document segmentation) are
// skipped; they already have their own file. Returns unit ID to output
// path.
func SplitUnits(sourcePath, outDir string, units []segmentation.Unit, logger *slog.Logger) (map[string]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create split directory: %w", err)
	}

	paths := make(map[string]string, len(units))
	for _, unit := range units {
		if unit.Pages == nil {
			continue
		}

		out := filepath.Join(outDir, sanitizeFilename(unit.ID)+".pdf")
		selection := []string{fmt.Sprintf("%d-%d", unit.Pages.Start, unit.Pages.End)}

		if err := api.TrimFile(sourcePath, out, selection, nil); err != nil {
			return nil, fmt.Errorf("split pages %d-%d for %s: %w", unit.Pages.Start, unit.Pages.End, unit.ID, err)
		}

		paths[unit.ID] = out
		logger.Debug("wrote split unit", "unit", unit.ID, "path", out)
	}

	return paths, nil
}

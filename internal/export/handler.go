package export

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/JaimeStill/scorecard/internal/documents"
	"github.com/JaimeStill/scorecard/internal/grading"
	"github.com/JaimeStill/scorecard/pkg/handlers"
	"github.com/JaimeStill/scorecard/pkg/routes"
)

// Handler provides the HTTP endpoint for exporting session results.
type Handler struct {
	sys      grading.System
	exporter *Exporter
	uploads  *documents.Store
	logger   *slog.Logger
}

// NewHandler creates a Handler for export endpoints.
func NewHandler(sys grading.System, exporter *Exporter, uploads *documents.Store, logger *slog.Logger) *Handler {
	return &Handler{
		sys:      sys,
		exporter: exporter,
		uploads:  uploads,
		logger:   logger.With("handler", "export"),
	}
}

// Routes returns the route group definition for export endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/export",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Export},
		},
	}
}

// Export writes the session results in the format named by the
// "format" query parameter (default excel) and streams the file back
// as an attachment.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	session, err := h.sys.GetSession(id)
	if err != nil {
		handlers.RespondError(w, h.logger, grading.MapHTTPStatus(err), err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = FormatExcel
	}

	path := h.uploads.ExportPath("grades_"+id, Ext(format))
	if _, err := h.exporter.Export(session, format, path); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	http.ServeFile(w, r, path)
}

package grading

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/scorecard/internal/documents"
	"github.com/JaimeStill/scorecard/internal/providers"
	"github.com/JaimeStill/scorecard/internal/rubrics"
	"github.com/JaimeStill/scorecard/internal/segmentation"
	"github.com/JaimeStill/scorecard/pkg/formatting"
	"github.com/JaimeStill/scorecard/pkg/handlers"
	"github.com/JaimeStill/scorecard/pkg/routes"
)

// Handler provides HTTP endpoints for the grading workflow.
type Handler struct {
	sys           System
	uploads       *documents.Store
	logger        *slog.Logger
	maxUploadSize int64
	defaults      Defaults
}

// Defaults supply provider and grading settings for requests that omit
// them.
type Defaults struct {
	Provider providers.Config
	Options  Options
}

// NewHandler creates a Handler for grading endpoints.
func NewHandler(sys System, uploads *documents.Store, defaults Defaults, maxUploadSize int64, logger *slog.Logger) *Handler {
	return &Handler{
		sys:           sys,
		uploads:       uploads,
		logger:        logger.With("handler", "grading"),
		maxUploadSize: maxUploadSize,
		defaults:      defaults,
	}
}

// Routes returns the route group definition for grading endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "POST", Pattern: "/{id}/documents", Handler: h.UploadDocuments},
			{Method: "POST", Pattern: "/{id}/rubric", Handler: h.UploadRubric},
			{Method: "POST", Pattern: "/{id}/rubric/parse", Handler: h.ParseRubric},
			{Method: "POST", Pattern: "/{id}/grade", Handler: h.StartGrading},
			{Method: "POST", Pattern: "/{id}/cancel", Handler: h.Cancel},
			{Method: "GET", Pattern: "/{id}/progress", Handler: h.Progress},
			{Method: "POST", Pattern: "/{id}/grades", Handler: h.UpdateGrade},
			{Method: "POST", Pattern: "/{id}/split", Handler: h.Split},
			{Method: "POST", Pattern: "/{id}/save", Handler: h.Save},
			{Method: "POST", Pattern: "/{id}/restore", Handler: h.Restore},
		},
	}
}

// Create starts a new empty grading session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	session := h.sys.CreateSession()
	handlers.RespondJSON(w, http.StatusCreated, session)
}

// Find returns the full session state.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	session, err := h.sys.GetSession(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, session)
}

// Delete removes a session, cancelling any in-flight grading run.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.sys.DeleteSession(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// UploadDocuments accepts a multipart form of assignment PDFs plus
// segmentation settings and loads the resulting student units into the
// session. Form fields: strategy, pages_per_student, marker_pattern;
// files under "assignments".
func (h *Handler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, documents.ErrFileTooLarge)
		return
	}

	files := r.MultipartForm.File["assignments"]
	if len(files) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, documents.ErrInvalidFile)
		return
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
			handlers.RespondError(w, h.logger, http.StatusBadRequest,
				fmt.Errorf("%w: %s", documents.ErrInvalidFile, fh.Filename))
			return
		}
		path, err := h.saveUpload(documents.DirAssignments, fh)
		if err != nil {
			handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
			return
		}
		paths = append(paths, path)
	}

	strategy := segmentation.Strategy(r.FormValue("strategy"))
	if strategy == "" {
		strategy = segmentation.StrategyIndividual
	}
	params := segmentation.Params{
		PagesPerStudent: formatting.ParseInt(r.FormValue("pages_per_student")),
		MarkerPattern:   r.FormValue("marker_pattern"),
	}

	units, err := h.sys.LoadUnits(r.Context(), r.PathValue("id"), paths, strategy, params)
	if err != nil {
		handlers.RespondError(w, h.logger, segmentationStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"units": units,
		"count": len(units),
	})
}

// UploadRubric attaches a rubric to the session, either as inline text
// (form field "rubric_text") or an uploaded file (form file "rubric").
func (h *Handler) UploadRubric(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, documents.ErrFileTooLarge)
		return
	}

	id := r.PathValue("id")

	var rubric *rubrics.Rubric
	var err error
	if text := r.FormValue("rubric_text"); text != "" {
		rubric, err = h.sys.LoadRubricText(r.Context(), id, r.FormValue("rubric_name"), text)
	} else if fhs := r.MultipartForm.File["rubric"]; len(fhs) > 0 {
		var path string
		path, err = h.saveUpload(documents.DirRubrics, fhs[0])
		if err == nil {
			rubric, err = h.sys.LoadRubricFile(r.Context(), id, path)
		}
	} else {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, rubrics.ErrEmptyRubric)
		return
	}

	if err != nil {
		handlers.RespondError(w, h.logger, rubricStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rubric)
}

// ParseRubric enriches the session's rubric into structured criteria
// using the provider named in the JSON body (or the configured default).
func (h *Handler) ParseRubric(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.providerConfig(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	rubric, err := h.sys.ParseRubric(r.Context(), r.PathValue("id"), cfg)
	if err != nil {
		handlers.RespondError(w, h.logger, gradingStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rubric)
}

// StartGradingRequest configures a grading run.
type StartGradingRequest struct {
	Provider      *providers.Config `json:"provider,omitempty"`
	MarkingMode   string            `json:"marking_mode,omitempty"`
	FeedbackStyle string            `json:"feedback_style,omitempty"`
}

// StartGrading launches a background grading run and returns 202.
func (h *Handler) StartGrading(w http.ResponseWriter, r *http.Request) {
	var req StartGradingRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := formatting.Decode(r.Body, &req); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	cfg := h.defaults.Provider
	if req.Provider != nil {
		cfg = *req.Provider
	}

	opts := h.defaults.Options
	if req.MarkingMode != "" {
		opts.MarkingMode = req.MarkingMode
	}
	if req.FeedbackStyle != "" {
		opts.FeedbackStyle = req.FeedbackStyle
	}

	if err := h.sys.StartGrading(r.PathValue("id"), cfg, opts); err != nil {
		handlers.RespondError(w, h.logger, gradingStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, map[string]string{"status": StatusProcessing})
}

// Cancel stops an in-flight grading run.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.CancelGrading(r.PathValue("id")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// Progress reports the grading progress snapshot.
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sys.Progress(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, snap)
}

// UpdateGrade applies a manual grade adjustment from the JSON body.
func (h *Handler) UpdateGrade(w http.ResponseWriter, r *http.Request) {
	var req UpdateGradeRequest
	if err := formatting.Decode(r.Body, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.UpdateGrade(r.PathValue("id"), req); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Split writes one PDF per student unit from the session's combined
// source document into the export directory. Only sessions segmented
// from a combined document carry page ranges to split on.
func (h *Handler) Split(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	session, err := h.sys.GetSession(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	if len(session.Units) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoUnits)
		return
	}

	outDir := filepath.Join(h.uploads.Dir(documents.DirExports), "split_"+id)
	paths, err := documents.SplitUnits(session.Units[0].Source, outDir, session.Units, h.logger)
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"count": len(paths),
		"files": paths,
	})
}

// Save persists the session to disk.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	path, err := h.sys.PersistSession(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, map[string]string{"path": path})
}

// Restore loads a previously persisted session back into memory.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	session, err := h.sys.RestoreSession(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) saveUpload(dir string, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.uploads.Save(dir, fh.Filename, f)
}

func (h *Handler) providerConfig(r *http.Request) (providers.Config, error) {
	cfg := h.defaults.Provider
	if r.Body == nil || r.ContentLength == 0 {
		return cfg, nil
	}

	var req providers.Config
	if err := formatting.Decode(r.Body, &req); err != nil {
		return cfg, err
	}
	if req.Provider != "" {
		cfg = req
	}
	return cfg, nil
}

func segmentationStatus(err error) int {
	if status := segmentation.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	if status := documents.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return MapHTTPStatus(err)
}

func rubricStatus(err error) int {
	if status := rubrics.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return MapHTTPStatus(err)
}

func gradingStatus(err error) int {
	if status := providers.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return MapHTTPStatus(err)
}

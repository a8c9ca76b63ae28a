package providers

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/scorecard/pkg/formatting"
	"github.com/JaimeStill/scorecard/pkg/handlers"
	"github.com/JaimeStill/scorecard/pkg/routes"
)

// Handler provides HTTP endpoints for provider discovery and testing.
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a Handler for provider endpoints.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger.With("handler", "providers")}
}

// Routes returns the route group definition for provider endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/providers",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "/test", Handler: h.Test},
		},
	}
}

// List returns the provider catalog.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Catalog())
}

// Test constructs a client from the JSON body and verifies it can
// complete a minimal generation.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	var cfg Config
	if err := formatting.Decode(r.Body, &cfg); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	client, err := New(r.Context(), cfg)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := client.TestConnection(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"provider": client.Name(),
		"ok":       true,
	})
}

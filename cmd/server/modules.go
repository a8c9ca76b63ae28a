package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/scorecard/internal/config"
	"github.com/JaimeStill/scorecard/internal/export"
	"github.com/JaimeStill/scorecard/internal/grading"
	"github.com/JaimeStill/scorecard/internal/infrastructure"
	"github.com/JaimeStill/scorecard/internal/providers"
	"github.com/JaimeStill/scorecard/internal/rubrics"
	"github.com/JaimeStill/scorecard/pkg/middleware"
	"github.com/JaimeStill/scorecard/pkg/routes"
)

type Modules struct {
	Grading   *grading.Handler
	Providers *providers.Handler
	Export    *export.Handler
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) *Modules {
	loader := rubrics.NewLoader(infra.Extractor, infra.Logger)
	store := grading.NewStore(infra.Uploads.SessionPath, infra.Logger)
	system := grading.NewSystem(store, infra.Engine, loader, infra.Logger)

	defaults := grading.Defaults{
		Provider: cfg.Provider.Provider(),
		Options:  cfg.Grading.Options(),
	}

	return &Modules{
		Grading:   grading.NewHandler(system, infra.Uploads, defaults, cfg.Storage.MaxUploadSize, infra.Logger),
		Providers: providers.NewHandler(infra.Logger),
		Export:    export.NewHandler(system, export.NewExporter(infra.Logger), infra.Uploads, infra.Logger),
	}
}

func buildRouter(infra *infrastructure.Infrastructure, modules *Modules) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	routes.Register(mux,
		modules.Grading.Routes(),
		modules.Providers.Routes(),
		modules.Export.Routes(),
	)

	mw := middleware.New()
	mw.Use(middleware.Logger(infra.Logger))
	return mw.Apply(mux)
}

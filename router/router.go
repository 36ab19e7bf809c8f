// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/track360/server/auth"
	"github.com/track360/server/cliparse"
	"github.com/track360/server/handlers"
	"github.com/track360/server/media"
	"github.com/track360/server/middleware"
	"github.com/track360/server/seed"
	"github.com/track360/server/store"
)

// Deps are the long-lived collaborators shared by every handler. They are
// created in main and closed there on shutdown.
type Deps struct {
	Store  store.Store
	Media  media.Host
	Signer *auth.Signer
	Sample *seed.Sample
}

func NewRouter(deps Deps, cfg cliparse.Config) http.Handler {
	r := chi.NewRouter()

	// Initialize handlers
	unprocessedHandler := handlers.NewUnprocessedHandler(deps.Store, deps.Media, cfg)
	processedHandler := handlers.NewProcessedHandler(deps.Store, deps.Media, deps.Signer, cfg)
	dashboardHandler := handlers.NewDashboardHandler(deps.Store)
	seedHandler := handlers.NewSeedHandler(deps.Store, deps.Sample, cfg)

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(cfg.CORS.Origins))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.WithLogging)
		r.Use(middleware.Metrics)
		if cfg.RateLimit.Requests > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit.Requests, cfg.RateLimit.Window))
		}

		// Raw captures
		r.Post("/unprocessed/upload", unprocessedHandler.Upload)
		r.Get("/unprocessed", unprocessedHandler.List)
		r.Get("/unprocessed/{id}", unprocessedHandler.Get)

		// Processed results linked back to captures
		r.Get("/processed/sign-upload", processedHandler.SignUpload)
		r.Post("/processed/upload", processedHandler.Upload)
		r.Get("/processed/{id}", processedHandler.Get)

		r.Get("/dashboard/stats", dashboardHandler.Stats)
		r.Get("/seed", seedHandler.Seed)
	})

	// Root endpoint
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("track360 API v1"))
	})

	return r
}

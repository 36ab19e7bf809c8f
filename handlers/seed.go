// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/track360/server/cliparse"
	"github.com/track360/server/middleware"
	"github.com/track360/server/models"
	"github.com/track360/server/seed"
	"github.com/track360/server/store"
)

type SeedHandler struct {
	store  store.Store
	sample *seed.Sample
	cfg    cliparse.Config
}

func NewSeedHandler(s store.Store, sample *seed.Sample, cfg cliparse.Config) *SeedHandler {
	return &SeedHandler{store: s, sample: sample, cfg: cfg}
}

// Seed handles GET /api/seed
func (h *SeedHandler) Seed(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.Seed.Enabled {
		middleware.ErrorResponse(w, http.StatusForbidden, "Seeding is disabled")
		return
	}

	inserted, err := seed.Run(r.Context(), h.store, h.sample, time.Now())
	if err != nil {
		slog.Error("failed to seed sample data", "error", err, "inserted", inserted)
		middleware.JSONResponse(w, http.StatusInternalServerError, models.SeedResponse{Success: false})
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SeedResponse{Success: true, Inserted: inserted})
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/track360/server/middleware"
	"github.com/track360/server/models"
	"github.com/track360/server/stats"
	"github.com/track360/server/store"
)

type DashboardHandler struct {
	store store.Store
	now   func() time.Time
}

func NewDashboardHandler(s store.Store) *DashboardHandler {
	return &DashboardHandler{store: s, now: time.Now}
}

// Stats handles GET /api/dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.CountVideos(r.Context())
	if err != nil {
		slog.Error("failed to count videos", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch dashboard stats")
		return
	}

	records, err := h.store.ListProcessed(r.Context())
	if err != nil {
		slog.Error("failed to list processed records", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch dashboard stats")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DashboardStatsEnvelope{
		Data: stats.Aggregate(counts, records, h.now()),
	})
}

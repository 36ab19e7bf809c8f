// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/track360/server/cliparse"
	"github.com/track360/server/media"
	"github.com/track360/server/metrics"
	"github.com/track360/server/middleware"
	"github.com/track360/server/models"
	"github.com/track360/server/store"
	"github.com/track360/server/validation"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type UnprocessedHandler struct {
	store store.Store
	media media.Host
	cfg   cliparse.Config
}

func NewUnprocessedHandler(s store.Store, m media.Host, cfg cliparse.Config) *UnprocessedHandler {
	return &UnprocessedHandler{store: s, media: m, cfg: cfg}
}

// Upload handles POST /api/unprocessed/upload
func (h *UnprocessedHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !parseMultipart(w, r, h.cfg.Upload.MaxBytes) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("video")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing video or location")
		return
	}
	defer file.Close()

	locationJSON := r.FormValue("location")
	if locationJSON == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing video or location")
		return
	}

	if header.Size == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Video file is empty")
		return
	}

	location, err := parseLocation(locationJSON)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid location: "+err.Error())
		return
	}

	folder := h.cfg.Media.UnprocessedFolder
	start := time.Now()
	asset, err := h.media.Upload(r.Context(), file, folder)
	metrics.RecordMediaUpload(folder, err, time.Since(start))
	if err != nil {
		slog.Error("failed to upload video", "error", err, "size", header.Size)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to upload video")
		return
	}

	rec := &models.UnprocessedRecord{
		VideoURL: asset.URL,
		Location: location,
	}
	if err := h.store.CreateUnprocessed(r.Context(), rec); err != nil {
		// The media object stays behind; log it so it can be cleaned up
		slog.Error("failed to insert unprocessed record",
			"error", err,
			"orphaned_public_id", asset.PublicID,
		)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save video record")
		return
	}

	metrics.RecordCreated(models.CollectionUnprocessed)
	slog.Info("unprocessed video stored", "id", rec.ID, "size", header.Size)

	middleware.JSONResponse(w, http.StatusCreated, models.UnprocessedUploadResponse{
		ID:       rec.ID,
		VideoURL: rec.VideoURL,
	})
}

// parseLocation decodes {"latitude": .., "longitude": ..}; both keys are
// required and must be in range.
func parseLocation(s string) (models.Location, error) {
	var raw struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return models.Location{}, errors.New("malformed JSON")
	}
	if raw.Latitude == nil || raw.Longitude == nil {
		return models.Location{}, errors.New("latitude and longitude are required")
	}

	loc := models.Location{Latitude: *raw.Latitude, Longitude: *raw.Longitude}
	if err := validation.Struct(loc); err != nil {
		return models.Location{}, err
	}
	return loc, nil
}

// Get handles GET /api/unprocessed/{id}
func (h *UnprocessedHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.GetUnprocessed(r.Context(), pathParam(r, "id"))
	switch {
	case errors.Is(err, store.ErrInvalidID):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid unprocessed ID")
		return
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Unprocessed record not found")
		return
	case err != nil:
		slog.Error("failed to query unprocessed record", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, rec)
}

// List handles GET /api/unprocessed?status=pending|processed|all&limit=N
func (h *UnprocessedHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.StatusAll
	}
	switch status {
	case models.StatusPending, models.StatusProcessed, models.StatusAll:
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be pending, processed or all")
		return
	}

	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxListLimit {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxListLimit))
			return
		}
		limit = n
	}

	records, err := h.store.ListUnprocessed(r.Context(), status, limit)
	if err != nil {
		slog.Error("failed to list unprocessed records", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.UnprocessedListResponse{
		Records: records,
		Count:   len(records),
	})
}

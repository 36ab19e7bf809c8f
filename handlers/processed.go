// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/track360/server/auth"
	"github.com/track360/server/cliparse"
	"github.com/track360/server/media"
	"github.com/track360/server/metrics"
	"github.com/track360/server/middleware"
	"github.com/track360/server/models"
	"github.com/track360/server/store"
)

type ProcessedHandler struct {
	store  store.Store
	media  media.Host
	signer *auth.Signer
	cfg    cliparse.Config
}

func NewProcessedHandler(s store.Store, m media.Host, signer *auth.Signer, cfg cliparse.Config) *ProcessedHandler {
	return &ProcessedHandler{store: s, media: m, signer: signer, cfg: cfg}
}

// processedUpload is a validated processed-upload request. Exactly one of
// videoURL and video is set.
type processedUpload struct {
	unprocessedID string
	videoURL      string
	video         multipart.File
	extra         json.RawMessage
}

// Upload handles POST /api/processed/upload
//
// A JSON body carries a ready-made videoUrl; a multipart body carries the
// video file itself, which is stored only after the source record is found.
func (h *ProcessedHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var (
		req processedUpload
		ok  bool
	)
	if isMultipart(r) {
		if !parseMultipart(w, r, h.cfg.Upload.MaxBytes) {
			return
		}
		defer r.MultipartForm.RemoveAll()
		req, ok = h.readMultipart(w, r)
	} else {
		req, ok = h.readJSON(w, r)
	}
	// The readers reject missing fields and bad data before the id is looked
	// up, so an unknown id with malformed data is a 400 rather than a 404.
	// Neither case writes anything.
	if !ok {
		return
	}
	if req.video != nil {
		defer req.video.Close()
	}

	if !store.ValidID(req.unprocessedID) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid unprocessed ID")
		return
	}

	if _, err := h.store.GetUnprocessed(r.Context(), req.unprocessedID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Unprocessed record not found")
			return
		}
		slog.Error("failed to query unprocessed record", "error", err, "unprocessed_id", req.unprocessedID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}

	if req.video != nil {
		folder := h.cfg.Media.ProcessedFolder
		start := time.Now()
		asset, err := h.media.Upload(r.Context(), req.video, folder)
		metrics.RecordMediaUpload(folder, err, time.Since(start))
		if err != nil {
			slog.Error("failed to upload processed video", "error", err, "unprocessed_id", req.unprocessedID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to process upload")
			return
		}
		req.videoURL = asset.URL
	}

	rec, err := h.store.LinkProcessed(r.Context(), req.unprocessedID, store.ProcessedLink{
		ProcessedVideoURL: req.videoURL,
		ExtraData:         req.extra,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Unprocessed record not found")
			return
		}
		slog.Error("failed to link processed record", "error", err, "unprocessed_id", req.unprocessedID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}

	metrics.RecordCreated(models.CollectionProcessed)
	slog.Info("processed video linked", "id", rec.ID, "unprocessed_id", rec.UnprocessedID)

	middleware.JSONResponse(w, http.StatusOK, models.ProcessedUploadResponse{
		Success:           true,
		ID:                rec.ID,
		ProcessedVideoURL: rec.ProcessedVideoURL,
	})
}

func (h *ProcessedHandler) readJSON(w http.ResponseWriter, r *http.Request) (processedUpload, bool) {
	var body models.ProcessedUploadRequest
	if err := middleware.ParseJSONBody(r, &body); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return processedUpload{}, false
	}

	if body.VideoURL == "" || body.ID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Video URL and unprocessed ID are required")
		return processedUpload{}, false
	}

	extra, ok := parseExtraData(w, body.Data)
	if !ok {
		return processedUpload{}, false
	}

	return processedUpload{unprocessedID: body.ID, videoURL: body.VideoURL, extra: extra}, true
}

func (h *ProcessedHandler) readMultipart(w http.ResponseWriter, r *http.Request) (processedUpload, bool) {
	id := r.FormValue("id")
	files := r.MultipartForm.File["video"]
	if len(files) == 0 || files[0].Size == 0 || id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Video file and unprocessed ID are required")
		return processedUpload{}, false
	}

	extra, ok := parseExtraData(w, r.FormValue("data"))
	if !ok {
		return processedUpload{}, false
	}

	file, err := files[0].Open()
	if err != nil {
		slog.Error("failed to open uploaded file", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to process upload")
		return processedUpload{}, false
	}
	return processedUpload{unprocessedID: id, video: file, extra: extra}, true
}

// parseExtraData validates the optional data document. An empty string is
// treated as absent.
func parseExtraData(w http.ResponseWriter, data string) (json.RawMessage, bool) {
	if data == "" {
		return nil, true
	}
	if !json.Valid([]byte(data)) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON in 'data'")
		return nil, false
	}
	return json.RawMessage(data), true
}

// Get handles GET /api/processed/{id}
func (h *ProcessedHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.GetProcessed(r.Context(), pathParam(r, "id"))
	switch {
	case errors.Is(err, store.ErrInvalidID):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid processed ID")
		return
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Processed record not found")
		return
	case err != nil:
		slog.Error("failed to query processed record", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, rec)
}

// SignUpload handles GET /api/processed/sign-upload
func (h *ProcessedHandler) SignUpload(w http.ResponseWriter, r *http.Request) {
	resp, err := h.signer.SignUpload()
	if err != nil {
		slog.Error("failed to sign upload", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to sign upload")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

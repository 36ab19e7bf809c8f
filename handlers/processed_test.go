// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/track360/server/auth"
	"github.com/track360/server/models"
	"github.com/track360/server/store"
	"github.com/track360/server/testutil"
)

func linkTestRecord(t *testing.T, s store.Store, unprocessedID string) *models.ProcessedRecord {
	t.Helper()

	rec, err := s.LinkProcessed(context.Background(), unprocessedID, store.ProcessedLink{
		ProcessedVideoURL: "https://media.test/p/" + unprocessedID + ".mp4",
	})
	if err != nil {
		t.Fatalf("Failed to link test record: %v", err)
	}
	return rec
}

func newTestProcessedHandler(s store.Store, fake *testutil.FakeMedia) *ProcessedHandler {
	cfg := testutil.GetTestConfig()
	signer := auth.NewSigner(cfg.Media.CloudName, cfg.Media.APIKey, cfg.Media.APISecret, cfg.Media.ProcessedFolder)
	return NewProcessedHandler(s, fake, signer, cfg)
}

func TestProcessedUpload_JSON(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := newTestProcessedHandler(s, &testutil.FakeMedia{})
	src := testutil.CreateTestUnprocessed(t, s, "https://media.test/u/src.webm", 12.5, 77.5)

	req := testutil.MakeRequest("POST", "/api/processed/upload", models.ProcessedUploadRequest{
		VideoURL: "https://x/y.mp4",
		ID:       src.ID,
		Data:     `{"rider":"Asha","detections":[{"type":"pothole"}]}`,
	}, nil)
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ProcessedUploadResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Success {
		t.Error("Expected success=true")
	}
	if resp.ProcessedVideoURL != "https://x/y.mp4" {
		t.Errorf("Expected processedVideoUrl https://x/y.mp4, got %s", resp.ProcessedVideoURL)
	}
	if resp.ID == "" || resp.ID == src.ID {
		t.Errorf("Expected a new record id, got %q", resp.ID)
	}

	updated, err := s.GetUnprocessed(context.Background(), src.ID)
	if err != nil {
		t.Fatalf("Failed to refetch source: %v", err)
	}
	if !updated.Processed {
		t.Error("Expected source to be marked processed")
	}
	if updated.ProcessedID == nil || *updated.ProcessedID != resp.ID {
		t.Errorf("Expected processedId %s, got %v", resp.ID, updated.ProcessedID)
	}

	rec, err := s.GetProcessed(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("Failed to fetch processed record: %v", err)
	}
	if rec.OriginalVideoURL != src.VideoURL {
		t.Errorf("Expected originalVideoUrl %s, got %s", src.VideoURL, rec.OriginalVideoURL)
	}
	if rec.Location != src.Location {
		t.Errorf("Expected location %+v, got %+v", src.Location, rec.Location)
	}
	var extra map[string]any
	if err := json.Unmarshal(rec.ExtraData, &extra); err != nil {
		t.Fatalf("Failed to decode extra data: %v", err)
	}
	if extra["rider"] != "Asha" {
		t.Errorf("Expected rider Asha, got %v", extra["rider"])
	}
}

func TestProcessedUpload_JSONErrors(t *testing.T) {
	tests := []struct {
		name           string
		body           func(srcID string) interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name: "unknown id",
			body: func(string) interface{} {
				return models.ProcessedUploadRequest{VideoURL: "https://x/y.mp4", ID: "000000000000000000000000"}
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "Unprocessed record not found",
		},
		{
			name: "invalid data JSON",
			body: func(id string) interface{} {
				return models.ProcessedUploadRequest{VideoURL: "https://x/y.mp4", ID: id, Data: "{not json"}
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid JSON in 'data'",
		},
		{
			name: "invalid data JSON for unknown id",
			body: func(string) interface{} {
				return models.ProcessedUploadRequest{VideoURL: "https://x/y.mp4", ID: "000000000000000000000000", Data: "nope"}
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid JSON in 'data'",
		},
		{
			name: "missing video url",
			body: func(id string) interface{} {
				return models.ProcessedUploadRequest{ID: id}
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Video URL and unprocessed ID are required",
		},
		{
			name: "missing id",
			body: func(string) interface{} {
				return models.ProcessedUploadRequest{VideoURL: "https://x/y.mp4"}
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Video URL and unprocessed ID are required",
		},
		{
			name: "malformed id",
			body: func(string) interface{} {
				return models.ProcessedUploadRequest{VideoURL: "https://x/y.mp4", ID: "xyz"}
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid unprocessed ID",
		},
		{
			name:           "body is not an object",
			body:           func(string) interface{} { return "invalid json" },
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testutil.SetupTestStore(t)
			handler := newTestProcessedHandler(s, &testutil.FakeMedia{})
			src := testutil.CreateTestUnprocessed(t, s, "https://media.test/u/src.webm", 1, 2)

			req := testutil.MakeRequest("POST", "/api/processed/upload", tt.body(src.ID), nil)
			w := httptest.NewRecorder()

			handler.Upload(w, req)

			testutil.AssertError(t, w, tt.expectedStatus, tt.expectedError)

			// Rejected requests never write
			total, processed := testutil.CountRecords(t, s)
			if total != 1 || processed != 0 {
				t.Errorf("Expected 1 unprocessed and 0 processed, got %d and %d", total, processed)
			}
			got, err := s.GetUnprocessed(context.Background(), src.ID)
			if err != nil {
				t.Fatalf("Failed to refetch source: %v", err)
			}
			if got.Processed || got.ProcessedID != nil {
				t.Error("Expected source record to be untouched")
			}
		})
	}
}

func TestProcessedUpload_EmptyDataIsAbsent(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := newTestProcessedHandler(s, &testutil.FakeMedia{})
	src := testutil.CreateTestUnprocessed(t, s, "https://media.test/u/src.webm", 1, 2)

	req := testutil.MakeRequest("POST", "/api/processed/upload", map[string]string{
		"videoUrl": "https://x/y.mp4",
		"id":       src.ID,
		"data":     "",
	}, nil)
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ProcessedUploadResponse
	testutil.AssertJSON(t, w, &resp)
	rec, err := s.GetProcessed(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("Failed to fetch processed record: %v", err)
	}
	if rec.ExtraData != nil {
		t.Errorf("Expected no extra data, got %s", rec.ExtraData)
	}
}

func TestProcessedUpload_Multipart(t *testing.T) {
	s := testutil.SetupTestStore(t)
	fake := &testutil.FakeMedia{}
	handler := newTestProcessedHandler(s, fake)
	src := testutil.CreateTestUnprocessed(t, s, "https://media.test/u/src.webm", 1, 2)

	req := testutil.MakeMultipartRequest("POST", "/api/processed/upload",
		map[string]string{"id": src.ID, "data": `{"reward":5}`},
		&testutil.FormFile{Field: "video", Filename: "out.mp4", Data: []byte("mp4-bytes")})
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ProcessedUploadResponse
	testutil.AssertJSON(t, w, &resp)

	uploads := fake.Uploads()
	if len(uploads) != 1 {
		t.Fatalf("Expected 1 media upload, got %d", len(uploads))
	}
	if uploads[0].Folder != "processed-videos" {
		t.Errorf("Expected folder processed-videos, got %s", uploads[0].Folder)
	}
	if resp.ProcessedVideoURL != "https://media.test/processed-videos/clip-1.mp4" {
		t.Errorf("Unexpected processedVideoUrl %s", resp.ProcessedVideoURL)
	}

	updated, err := s.GetUnprocessed(context.Background(), src.ID)
	if err != nil {
		t.Fatalf("Failed to refetch source: %v", err)
	}
	if updated.ProcessedID == nil || *updated.ProcessedID != resp.ID {
		t.Errorf("Expected processedId %s, got %v", resp.ID, updated.ProcessedID)
	}
}

func TestProcessedUpload_MultipartErrors(t *testing.T) {
	video := &testutil.FormFile{Field: "video", Filename: "out.mp4", Data: []byte("mp4-bytes")}

	tests := []struct {
		name           string
		fields         func(srcID string) map[string]string
		file           *testutil.FormFile
		mediaErr       error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "unknown id",
			fields:         func(string) map[string]string { return map[string]string{"id": "000000000000000000000000"} },
			file:           video,
			expectedStatus: http.StatusNotFound,
			expectedError:  "Unprocessed record not found",
		},
		{
			name:           "invalid data JSON",
			fields:         func(id string) map[string]string { return map[string]string{"id": id, "data": "{oops"} },
			file:           video,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid JSON in 'data'",
		},
		{
			name:           "missing video",
			fields:         func(id string) map[string]string { return map[string]string{"id": id} },
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Video file and unprocessed ID are required",
		},
		{
			name:           "missing id",
			fields:         func(string) map[string]string { return map[string]string{} },
			file:           video,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Video file and unprocessed ID are required",
		},
		{
			name:           "media host failure",
			fields:         func(id string) map[string]string { return map[string]string{"id": id} },
			file:           video,
			mediaErr:       errors.New("host unavailable"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Failed to process upload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testutil.SetupTestStore(t)
			fake := &testutil.FakeMedia{Err: tt.mediaErr}
			handler := newTestProcessedHandler(s, fake)
			src := testutil.CreateTestUnprocessed(t, s, "https://media.test/u/src.webm", 1, 2)

			req := testutil.MakeMultipartRequest("POST", "/api/processed/upload", tt.fields(src.ID), tt.file)
			w := httptest.NewRecorder()

			handler.Upload(w, req)

			testutil.AssertError(t, w, tt.expectedStatus, tt.expectedError)

			if n := len(fake.Uploads()); n != 0 {
				t.Errorf("Expected no stored media, got %d uploads", n)
			}
			if _, processed := testutil.CountRecords(t, s); processed != 0 {
				t.Errorf("Expected no processed records, got %d", processed)
			}
		})
	}
}

func TestGetProcessed(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := newTestProcessedHandler(s, &testutil.FakeMedia{})
	src := testutil.CreateTestUnprocessed(t, s, "https://media.test/u/src.webm", 1, 2)
	rec := linkTestRecord(t, s, src.ID)

	tests := []struct {
		name           string
		id             string
		expectedStatus int
	}{
		{"existing record", rec.ID, http.StatusOK},
		{"unprocessed id is not a processed id", src.ID, http.StatusNotFound},
		{"malformed id", "123", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/api/processed/"+tt.id, nil, nil)
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()

			handler.Get(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var got models.ProcessedRecord
			testutil.AssertJSON(t, w, &got)
			if got.UnprocessedID != src.ID {
				t.Errorf("Expected unprocessedId %s, got %s", src.ID, got.UnprocessedID)
			}
		})
	}
}

func TestSignUpload(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := newTestProcessedHandler(s, &testutil.FakeMedia{})

	req := testutil.MakeRequest("GET", "/api/processed/sign-upload", nil, nil)
	w := httptest.NewRecorder()

	handler.SignUpload(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SignUploadResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Timestamp <= 0 {
		t.Errorf("Expected positive timestamp, got %d", resp.Timestamp)
	}
	if resp.Signature == "" {
		t.Error("Expected non-empty signature")
	}
	if resp.APIKey != "test-key" || resp.CloudName != "test-cloud" {
		t.Errorf("Unexpected credentials in response: %+v", resp)
	}
}

func TestSignUpload_MissingSecret(t *testing.T) {
	s := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewProcessedHandler(s, &testutil.FakeMedia{}, auth.NewSigner("test-cloud", "test-key", "", "processed-videos"), cfg)

	req := testutil.MakeRequest("GET", "/api/processed/sign-upload", nil, nil)
	w := httptest.NewRecorder()

	handler.SignUpload(w, req)

	testutil.AssertError(t, w, http.StatusInternalServerError, "Failed to sign upload")
}

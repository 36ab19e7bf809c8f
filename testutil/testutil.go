// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/track360/server/cliparse"
	"github.com/track360/server/media"
	"github.com/track360/server/models"
	"github.com/track360/server/store"
)

// SetupTestStore creates a fresh in-memory store with the full schema
func SetupTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	s, err := store.OpenSQL(store.TypeSQLite, "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port: 3318,
		Database: cliparse.DatabaseConfig{
			Type: store.TypeSQLite,
			URL:  "file::memory:",
			Name: "track360",
		},
		Media: cliparse.MediaConfig{
			CloudName:         "test-cloud",
			APIKey:            "test-key",
			APISecret:         "test-secret",
			UnprocessedFolder: "unprocessed-videos",
			ProcessedFolder:   "processed-videos",
		},
		Upload:          cliparse.UploadConfig{MaxSize: "1MB", MaxBytes: 1 << 20},
		Log:             cliparse.LogConfig{Level: "info", Format: "json"},
		CORS:            cliparse.CORSConfig{Origins: []string{"*"}},
		Seed:            cliparse.SeedConfig{Enabled: true},
		ShutdownTimeout: time.Second,
	}
}

// Upload is one call made to a FakeMedia host.
type Upload struct {
	Folder string
	Data   []byte
}

// FakeMedia is an in-memory media.Host. Set Err to make every upload fail.
type FakeMedia struct {
	mu      sync.Mutex
	Err     error
	uploads []Upload
}

func (f *FakeMedia) Upload(ctx context.Context, r io.Reader, folder string) (*media.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return nil, fmt.Errorf("%w: %v", media.ErrUploadFailed, f.Err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	f.uploads = append(f.uploads, Upload{Folder: folder, Data: data})
	n := len(f.uploads)
	return &media.Asset{
		URL:      fmt.Sprintf("https://media.test/%s/clip-%d.mp4", folder, n),
		PublicID: fmt.Sprintf("%s/clip-%d", folder, n),
	}, nil
}

// Uploads returns every successful upload so far.
func (f *FakeMedia) Uploads() []Upload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Upload(nil), f.uploads...)
}

// CreateTestUnprocessed inserts an unprocessed record and returns it
func CreateTestUnprocessed(t *testing.T, s store.Store, videoURL string, lat, lng float64) *models.UnprocessedRecord {
	t.Helper()

	rec := &models.UnprocessedRecord{
		VideoURL: videoURL,
		Location: models.Location{Latitude: lat, Longitude: lng},
	}
	if err := s.CreateUnprocessed(context.Background(), rec); err != nil {
		t.Fatalf("Failed to create test record: %v", err)
	}
	return rec
}

// CountRecords returns the number of unprocessed and processed records
func CountRecords(t *testing.T, s store.Store) (unprocessed, processed int) {
	t.Helper()

	counts, err := s.CountVideos(context.Background())
	if err != nil {
		t.Fatalf("Failed to count records: %v", err)
	}
	records, err := s.ListProcessed(context.Background())
	if err != nil {
		t.Fatalf("Failed to list processed records: %v", err)
	}
	return counts.Total, len(records)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// FormFile is a file part for MakeMultipartRequest
type FormFile struct {
	Field    string
	Filename string
	Data     []byte
}

// MakeMultipartRequest creates a multipart/form-data test request
func MakeMultipartRequest(method, path string, fields map[string]string, file *FormFile) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if file != nil {
		fw, _ := mw.CreateFormFile(file.Field, file.Filename)
		fw.Write(file.Data)
	}
	mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertError checks the status and the {"error": ...} message
func AssertError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	AssertStatus(t, w, status)

	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error response %q: %v", w.Body.String(), err)
	}
	if resp.Error != message {
		t.Errorf("Expected error %q, got %q", message, resp.Error)
	}
}

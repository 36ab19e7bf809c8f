// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/track360/server/models"
)

// APIError is a non-2xx response. Message is the server's {"error": ...}
// text when it sent one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Client calls the Track360 HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadUnprocessed sends a raw clip and the position it was recorded at.
func (c *Client) UploadUnprocessed(ctx context.Context, video io.Reader, filename string, loc models.Location) (*models.UnprocessedUploadResponse, error) {
	locJSON, err := json.Marshal(loc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode location: %w", err)
	}

	body, contentType, err := multipartBody(map[string]string{"location": string(locJSON)}, "video", filename, video)
	if err != nil {
		return nil, err
	}

	var resp models.UnprocessedUploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/unprocessed/upload", contentType, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LinkProcessed submits a ready-made processed video URL for an unprocessed
// record. data, when non-empty, must be a JSON document.
func (c *Client) LinkProcessed(ctx context.Context, unprocessedID, videoURL, data string) (*models.ProcessedUploadResponse, error) {
	payload, err := json.Marshal(models.ProcessedUploadRequest{VideoURL: videoURL, ID: unprocessedID, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var resp models.ProcessedUploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/processed/upload", "application/json", bytes.NewReader(payload), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadProcessed sends a processed video file for an unprocessed record.
func (c *Client) UploadProcessed(ctx context.Context, unprocessedID string, video io.Reader, filename, data string) (*models.ProcessedUploadResponse, error) {
	fields := map[string]string{"id": unprocessedID}
	if data != "" {
		fields["data"] = data
	}

	body, contentType, err := multipartBody(fields, "video", filename, video)
	if err != nil {
		return nil, err
	}

	var resp models.ProcessedUploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/processed/upload", contentType, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SignUpload(ctx context.Context) (*models.SignUploadResponse, error) {
	var resp models.SignUploadResponse
	if err := c.do(ctx, http.MethodGet, "/api/processed/sign-upload", "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetUnprocessed(ctx context.Context, id string) (*models.UnprocessedRecord, error) {
	var rec models.UnprocessedRecord
	if err := c.do(ctx, http.MethodGet, "/api/unprocessed/"+url.PathEscape(id), "", nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) ListUnprocessed(ctx context.Context, status string, limit int) (*models.UnprocessedListResponse, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	path := "/api/unprocessed"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp models.UnprocessedListResponse
	if err := c.do(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DashboardStats fetches the statistics as sent, with absent fields left
// nil. Use WithDefaults to fill them.
func (c *Client) DashboardStats(ctx context.Context) (*models.PartialDashboardStats, error) {
	var env models.PartialDashboardEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/stats", "", nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) Seed(ctx context.Context) (*models.SeedResponse, error) {
	var resp models.SeedResponse
	if err := c.do(ctx, http.MethodGet, "/api/seed", "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e models.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// multipartBody buffers a form with text fields and one file part.
func multipartBody(fields map[string]string, fileField, filename string, file io.Reader) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}

	fw, err := mw.CreateFormFile(fileField, filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(fw, file); err != nil {
		return nil, "", fmt.Errorf("failed to read video: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}

	return &buf, mw.FormDataContentType(), nil
}

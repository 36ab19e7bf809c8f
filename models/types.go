// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"time"
)

// Collection names shared by every store backend
const (
	CollectionUnprocessed = "unprocessed"
	CollectionProcessed   = "processed"
)

// Status filters for listing unprocessed records
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusAll       = "all"
)

// Domain types

type Location struct {
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"gte=-180,lte=180"`
}

// UnprocessedRecord references a freshly captured clip awaiting processing.
// It is mutated once, when a processed record is linked to it.
type UnprocessedRecord struct {
	ID          string    `json:"id"`
	VideoURL    string    `json:"videoUrl"`
	Location    Location  `json:"location"`
	Processed   bool      `json:"processed"`
	ProcessedID *string   `json:"processedId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProcessedRecord is immutable once created.
type ProcessedRecord struct {
	ID                string          `json:"id"`
	UnprocessedID     string          `json:"unprocessedId"`
	OriginalVideoURL  string          `json:"originalVideoUrl"`
	ProcessedVideoURL string          `json:"processedVideoUrl"`
	Location          Location        `json:"location"`
	CreatedAt         time.Time       `json:"createdAt"`
	ExtraData         json.RawMessage `json:"extraData,omitempty"`
}

// Request types

// ProcessedUploadRequest is body variant A of POST /api/processed/upload.
// Data is itself a JSON document encoded as a string.
type ProcessedUploadRequest struct {
	VideoURL string `json:"videoUrl"`
	ID       string `json:"id"`
	Data     string `json:"data,omitempty"`
}

// Response types

type UnprocessedUploadResponse struct {
	ID       string `json:"id"`
	VideoURL string `json:"videoUrl"`
}

type ProcessedUploadResponse struct {
	Success           bool   `json:"success"`
	ID                string `json:"id"`
	ProcessedVideoURL string `json:"processedVideoUrl"`
}

type SignUploadResponse struct {
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
	APIKey    string `json:"apiKey"`
	CloudName string `json:"cloudName"`
}

type UnprocessedListResponse struct {
	Records []UnprocessedRecord `json:"records"`
	Count   int                 `json:"count"`
}

type SeedResponse struct {
	Success  bool `json:"success"`
	Inserted int  `json:"inserted,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error string `json:"error"`
}

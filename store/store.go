// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/track360/server/db"
	"github.com/track360/server/models"
)

// Store types
const (
	TypeMongo    = "mongodb"
	TypePostgres = db.DialectPostgres
	TypeSQLite   = db.DialectSQLite
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrInvalidID = errors.New("invalid record id")
)

// Store persists unprocessed and processed records. Implementations are safe
// for concurrent use and own their connection until Close.
type Store interface {
	// CreateUnprocessed inserts a new record with processed=false. ID and
	// CreatedAt are assigned when empty.
	CreateUnprocessed(ctx context.Context, rec *models.UnprocessedRecord) error
	GetUnprocessed(ctx context.Context, id string) (*models.UnprocessedRecord, error)
	ListUnprocessed(ctx context.Context, status string, limit int) ([]models.UnprocessedRecord, error)

	// LinkProcessed creates a processed record copying the source URL and
	// location, then marks the source processed with a back-reference.
	LinkProcessed(ctx context.Context, unprocessedID string, link ProcessedLink) (*models.ProcessedRecord, error)
	GetProcessed(ctx context.Context, id string) (*models.ProcessedRecord, error)
	// ListProcessed returns processed records, newest first.
	ListProcessed(ctx context.Context) ([]models.ProcessedRecord, error)

	CountVideos(ctx context.Context) (VideoCounts, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ProcessedLink carries the new data for a processed record.
type ProcessedLink struct {
	ProcessedVideoURL string
	ExtraData         json.RawMessage
	CreatedAt         time.Time
}

type VideoCounts struct {
	Total     int
	Processed int
}

// Options selects and configures a backend.
type Options struct {
	Type         string
	URL          string
	Name         string
	Transactions bool
}

// Open connects to the configured backend. The caller owns the returned
// store and must Close it on shutdown.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)

	switch opts.Type {
	case TypeMongo:
		s, err = OpenMongo(ctx, opts.URL, opts.Name, opts.Transactions)
	case TypePostgres, TypeSQLite:
		s, err = OpenSQL(opts.Type, opts.URL)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", opts.Type)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("store initialized", "type", opts.Type)
	return s, nil
}

// NewID returns a fresh record id (24 hex characters).
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidID reports whether id has the record id format.
func ValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

func prepareUnprocessed(rec *models.UnprocessedRecord) error {
	if rec.ID == "" {
		rec.ID = NewID()
	} else if !ValidID(rec.ID) {
		return ErrInvalidID
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Processed = false
	rec.ProcessedID = nil
	return nil
}

func newProcessedRecord(src *models.UnprocessedRecord, link ProcessedLink) *models.ProcessedRecord {
	createdAt := link.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var extra json.RawMessage
	if len(link.ExtraData) > 0 {
		extra = link.ExtraData
	}
	return &models.ProcessedRecord{
		ID:                NewID(),
		UnprocessedID:     src.ID,
		OriginalVideoURL:  src.VideoURL,
		ProcessedVideoURL: link.ProcessedVideoURL,
		Location:          src.Location,
		CreatedAt:         createdAt,
		ExtraData:         extra,
	}
}

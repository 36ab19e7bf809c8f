// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/track360/server/db"
	"github.com/track360/server/models"
)

// SQLStore keeps records in the postgres or sqlite schema from package db.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// OpenSQL connects and ensures the schema exists.
func OpenSQL(dialect, url string) (*SQLStore, error) {
	conn, err := db.Open(dialect, url)
	if err != nil {
		return nil, err
	}

	if err := db.CreateSchema(conn, dialect); err != nil {
		conn.Close()
		return nil, err
	}

	return NewSQLStore(conn, dialect), nil
}

// NewSQLStore wraps an existing connection whose schema is already in place.
func NewSQLStore(conn *sql.DB, dialect string) *SQLStore {
	return &SQLStore{db: conn, dialect: dialect}
}

// DB exposes the underlying connection (tests and seeding inspect it).
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) q(query string) string {
	return db.Rebind(s.dialect, query)
}

func (s *SQLStore) CreateUnprocessed(ctx context.Context, rec *models.UnprocessedRecord) error {
	if err := prepareUnprocessed(rec); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO unprocessed (id, video_url, latitude, longitude, processed, processed_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), rec.ID, rec.VideoURL, rec.Location.Latitude, rec.Location.Longitude, false, nil, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert unprocessed record: %w", err)
	}
	return nil
}

const unprocessedColumns = `id, video_url, latitude, longitude, processed, processed_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUnprocessed(row rowScanner) (*models.UnprocessedRecord, error) {
	var rec models.UnprocessedRecord
	var processedID sql.NullString
	err := row.Scan(&rec.ID, &rec.VideoURL, &rec.Location.Latitude, &rec.Location.Longitude,
		&rec.Processed, &processedID, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	if processedID.Valid {
		rec.ProcessedID = &processedID.String
	}
	return &rec, nil
}

func (s *SQLStore) GetUnprocessed(ctx context.Context, id string) (*models.UnprocessedRecord, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}

	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+unprocessedColumns+` FROM unprocessed WHERE id = ?`), id)
	rec, err := scanUnprocessed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed record: %w", err)
	}
	return rec, nil
}

func (s *SQLStore) ListUnprocessed(ctx context.Context, status string, limit int) ([]models.UnprocessedRecord, error) {
	query := `SELECT ` + unprocessedColumns + ` FROM unprocessed`
	args := []any{}
	switch status {
	case models.StatusPending:
		query += ` WHERE processed = ?`
		args = append(args, false)
	case models.StatusProcessed:
		query += ` WHERE processed = ?`
		args = append(args, true)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed records: %w", err)
	}
	defer rows.Close()

	records := []models.UnprocessedRecord{}
	for rows.Next() {
		rec, err := scanUnprocessed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unprocessed record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// LinkProcessed runs the lookup, insert and back-link update in one
// transaction so a failed update never leaves a dangling processed record.
func (s *SQLStore) LinkProcessed(ctx context.Context, unprocessedID string, link ProcessedLink) (*models.ProcessedRecord, error) {
	if !ValidID(unprocessedID) {
		return nil, ErrInvalidID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	src, err := scanUnprocessed(tx.QueryRowContext(ctx, s.q(`SELECT `+unprocessedColumns+` FROM unprocessed WHERE id = ?`), unprocessedID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed record: %w", err)
	}

	rec := newProcessedRecord(src, link)

	var extra any
	if rec.ExtraData != nil {
		extra = string(rec.ExtraData)
	}

	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO processed (id, unprocessed_id, original_video_url, processed_video_url, latitude, longitude, created_at, extra_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), rec.ID, rec.UnprocessedID, rec.OriginalVideoURL, rec.ProcessedVideoURL,
		rec.Location.Latitude, rec.Location.Longitude, rec.CreatedAt, extra)
	if err != nil {
		return nil, fmt.Errorf("failed to insert processed record: %w", err)
	}

	_, err = tx.ExecContext(ctx, s.q(`
		UPDATE unprocessed
		SET processed = ?, processed_id = ?
		WHERE id = ?
	`), true, rec.ID, unprocessedID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark unprocessed record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return rec, nil
}

const processedColumns = `id, unprocessed_id, original_video_url, processed_video_url, latitude, longitude, created_at, extra_data`

func scanProcessed(row rowScanner) (*models.ProcessedRecord, error) {
	var rec models.ProcessedRecord
	var extra sql.NullString
	err := row.Scan(&rec.ID, &rec.UnprocessedID, &rec.OriginalVideoURL, &rec.ProcessedVideoURL,
		&rec.Location.Latitude, &rec.Location.Longitude, &rec.CreatedAt, &extra)
	if err != nil {
		return nil, err
	}
	if extra.Valid && extra.String != "" {
		rec.ExtraData = []byte(extra.String)
	}
	return &rec, nil
}

func (s *SQLStore) GetProcessed(ctx context.Context, id string) (*models.ProcessedRecord, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}

	rec, err := scanProcessed(s.db.QueryRowContext(ctx, s.q(`SELECT `+processedColumns+` FROM processed WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query processed record: %w", err)
	}
	return rec, nil
}

func (s *SQLStore) ListProcessed(ctx context.Context) ([]models.ProcessedRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+processedColumns+` FROM processed ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query processed records: %w", err)
	}
	defer rows.Close()

	records := []models.ProcessedRecord{}
	for rows.Next() {
		rec, err := scanProcessed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan processed record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (s *SQLStore) CountVideos(ctx context.Context) (VideoCounts, error) {
	var counts VideoCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN processed THEN 1 ELSE 0 END), 0)
		FROM unprocessed
	`).Scan(&counts.Total, &counts.Processed)
	if err != nil {
		return VideoCounts{}, fmt.Errorf("failed to count videos: %w", err)
	}
	return counts, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close(_ context.Context) error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

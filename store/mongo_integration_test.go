// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

//go:build integration

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/track360/server/models"
)

func newMongoTestStore(t *testing.T) *MongoStore {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start mongo container: %v", err)
	}
	t.Cleanup(func() { container.Terminate(ctx) }) //nolint:errcheck

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	// Standalone server, so no multi-document transactions
	s, err := OpenMongo(ctx, fmt.Sprintf("mongodb://%s:%s", host, port.Port()), "track360_test", false)
	if err != nil {
		t.Fatalf("failed to open mongo store: %v", err)
	}
	t.Cleanup(func() { s.Close(ctx) })
	return s
}

func TestMongoStore_Lifecycle(t *testing.T) {
	s := newMongoTestStore(t)
	ctx := context.Background()

	src := &models.UnprocessedRecord{
		VideoURL: "https://media.example/u/m.webm",
		Location: models.Location{Latitude: 19.07, Longitude: 72.87},
	}
	if err := s.CreateUnprocessed(ctx, src); err != nil {
		t.Fatalf("CreateUnprocessed failed: %v", err)
	}

	rec, err := s.LinkProcessed(ctx, src.ID, ProcessedLink{
		ProcessedVideoURL: "https://media.example/p/m.mp4",
		ExtraData:         json.RawMessage(`{"rider":"Ravi","reward":5}`),
	})
	if err != nil {
		t.Fatalf("LinkProcessed failed: %v", err)
	}

	updated, err := s.GetUnprocessed(ctx, src.ID)
	if err != nil {
		t.Fatalf("GetUnprocessed failed: %v", err)
	}
	if !updated.Processed || updated.ProcessedID == nil || *updated.ProcessedID != rec.ID {
		t.Errorf("expected source linked to %s, got %+v", rec.ID, updated)
	}

	stored, err := s.GetProcessed(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetProcessed failed: %v", err)
	}
	var extra struct {
		Rider  string  `json:"rider"`
		Reward float64 `json:"reward"`
	}
	if err := json.Unmarshal(stored.ExtraData, &extra); err != nil {
		t.Fatalf("failed to decode extra data %s: %v", stored.ExtraData, err)
	}
	if extra.Rider != "Ravi" || extra.Reward != 5 {
		t.Errorf("unexpected extra data: %+v", extra)
	}

	counts, err := s.CountVideos(ctx)
	if err != nil {
		t.Fatalf("CountVideos failed: %v", err)
	}
	if counts.Total != 1 || counts.Processed != 1 {
		t.Errorf("expected total=1 processed=1, got %+v", counts)
	}

	if _, err := s.LinkProcessed(ctx, NewID(), ProcessedLink{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/track360/server/models"
)

// LoadFailedMessage is shown in place of the dashboard when Load fails.
const LoadFailedMessage = "Failed to load dashboard data. Please try again later."

var (
	ErrLoad            = errors.New("failed to load dashboard data")
	ErrSeedUnavailable = errors.New("sample data can only be loaded into an empty store")
	ErrSeedFailed      = errors.New("seeding failed")
)

// Source is the API the dashboard reads. *client.Client satisfies it.
type Source interface {
	DashboardStats(ctx context.Context) (*models.PartialDashboardStats, error)
	Seed(ctx context.Context) (*models.SeedResponse, error)
}

// Dashboard fetches statistics once and keeps them for rendering. Every
// field of the result is populated, whatever the backend omitted.
type Dashboard struct {
	src Source

	mu      sync.Mutex
	stats   *models.DashboardStats
	seeding bool
}

func New(src Source) *Dashboard {
	return &Dashboard{src: src}
}

// Load returns the statistics, fetching them on the first call only.
func (d *Dashboard) Load(ctx context.Context) (models.DashboardStats, error) {
	d.mu.Lock()
	if d.stats != nil {
		stats := *d.stats
		d.mu.Unlock()
		return stats, nil
	}
	d.mu.Unlock()

	return d.Refresh(ctx)
}

// Refresh fetches the statistics again.
func (d *Dashboard) Refresh(ctx context.Context) (models.DashboardStats, error) {
	partial, err := d.src.DashboardStats(ctx)
	if err != nil {
		slog.Error("failed to fetch dashboard stats", "error", err)
		return models.DashboardStats{}, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	stats := partial.WithDefaults()

	d.mu.Lock()
	d.stats = &stats
	d.mu.Unlock()
	return stats, nil
}

// CanSeed reports whether the sample-data action is offered: the stats are
// loaded, the store is empty and no seed is running.
func (d *Dashboard) CanSeed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats != nil && d.stats.TotalVideos == 0 && !d.seeding
}

// Seed loads the sample data and then refetches the statistics.
func (d *Dashboard) Seed(ctx context.Context) (models.DashboardStats, error) {
	d.mu.Lock()
	if d.stats == nil || d.stats.TotalVideos != 0 || d.seeding {
		d.mu.Unlock()
		return models.DashboardStats{}, ErrSeedUnavailable
	}
	d.seeding = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.seeding = false
		d.mu.Unlock()
	}()

	resp, err := d.src.Seed(ctx)
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("%w: %v", ErrSeedFailed, err)
	}
	if !resp.Success {
		return models.DashboardStats{}, ErrSeedFailed
	}

	slog.Info("sample data loaded", "inserted", resp.Inserted)
	return d.Refresh(ctx)
}

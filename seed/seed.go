// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/track360/server/models"
	"github.com/track360/server/store"
)

//go:embed sample.yaml
var sampleYAML []byte

type Sample struct {
	Videos []Video `yaml:"videos"`
}

type Video struct {
	VideoURL  string         `yaml:"video_url"`
	Latitude  float64        `yaml:"latitude"`
	Longitude float64        `yaml:"longitude"`
	Age       time.Duration  `yaml:"age"`
	Processed *ProcessedClip `yaml:"processed"`
}

type ProcessedClip struct {
	VideoURL string         `yaml:"video_url"`
	Extra    map[string]any `yaml:"extra"`
}

// Load parses a sample set.
func Load(data []byte) (*Sample, error) {
	var s Sample
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse sample data: %w", err)
	}
	return &s, nil
}

// Default returns the embedded sample set.
func Default() (*Sample, error) {
	return Load(sampleYAML)
}

// Run inserts the sample set if the store holds no videos and returns the
// number of unprocessed records inserted. A non-empty store is left alone.
func Run(ctx context.Context, s store.Store, sample *Sample, now time.Time) (int, error) {
	counts, err := s.CountVideos(ctx)
	if err != nil {
		return 0, err
	}
	if counts.Total > 0 {
		slog.Info("store already has data, skipping seed", "total_videos", counts.Total)
		return 0, nil
	}

	inserted := 0
	for _, v := range sample.Videos {
		capturedAt := now.Add(-v.Age).UTC()

		rec := &models.UnprocessedRecord{
			VideoURL:  v.VideoURL,
			Location:  models.Location{Latitude: v.Latitude, Longitude: v.Longitude},
			CreatedAt: capturedAt,
		}
		if err := s.CreateUnprocessed(ctx, rec); err != nil {
			return inserted, fmt.Errorf("failed to seed %s: %w", v.VideoURL, err)
		}
		inserted++

		if v.Processed == nil {
			continue
		}

		var extra json.RawMessage
		if v.Processed.Extra != nil {
			extra, err = json.Marshal(v.Processed.Extra)
			if err != nil {
				return inserted, fmt.Errorf("failed to encode extra data for %s: %w", v.VideoURL, err)
			}
		}

		_, err = s.LinkProcessed(ctx, rec.ID, store.ProcessedLink{
			ProcessedVideoURL: v.Processed.VideoURL,
			ExtraData:         extra,
			CreatedAt:         capturedAt.Add(10 * time.Minute),
		})
		if err != nil {
			return inserted, fmt.Errorf("failed to link seeded record %s: %w", rec.ID, err)
		}
	}

	slog.Info("seeded sample data", "inserted", inserted)
	return inserted, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stats

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/track360/server/models"
	"github.com/track360/server/store"
)

// Detection types counted by the dashboard
const (
	DetectionPothole          = "pothole"
	DetectionBrokenRoad       = "broken_road"
	DetectionRoadDamage       = "road_damage"
	DetectionGarbage          = "garbage"
	DetectionTrafficViolation = "traffic_violation"
	DetectionHelmetViolation  = "helmet_violation"
)

const (
	RecentActivityLimit = 5
	TrendDays           = 7
	UnknownRider        = "Unknown rider"
)

// Extra is the subset of a processed record's extraData the dashboard reads.
type Extra struct {
	Rider      string     `json:"rider"`
	Reward     float64    `json:"reward"`
	Title      string     `json:"title"`
	Detections Detections `json:"detections"`
}

// Detections accepts a list of detections or an object of per-type counts
// ({"pothole": 2}).
type Detections []Detection

func (ds *Detections) UnmarshalJSON(data []byte) error {
	var list []Detection
	if err := json.Unmarshal(data, &list); err == nil {
		*ds = list
		return nil
	}

	var counts map[string]int
	if err := json.Unmarshal(data, &counts); err != nil {
		return err
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := Detections{}
	for _, k := range keys {
		for i := 0; i < counts[k]; i++ {
			out = append(out, Detection{Type: NormalizeType(k)})
		}
	}
	*ds = out
	return nil
}

// Detection accepts either {"type": "pothole"} or the bare string "pothole".
type Detection struct {
	Type string `json:"type"`
}

func (d *Detection) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d.Type = NormalizeType(s)
		return nil
	}

	var obj struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	d.Type = NormalizeType(obj.Type)
	return nil
}

// NormalizeType maps free-form labels ("Potholes", "broken-road",
// "no helmet") onto the canonical detection types.
func NormalizeType(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	t = strings.NewReplacer(" ", "_", "-", "_").Replace(t)

	switch t {
	case "potholes":
		return DetectionPothole
	case "broken_roads":
		return DetectionBrokenRoad
	case "traffic_violations":
		return DetectionTrafficViolation
	case "helmet_violations", "no_helmet", "without_helmet":
		return DetectionHelmetViolation
	}
	return t
}

// ParseExtra decodes extraData. Missing or malformed data yields an empty
// Extra; the dashboard never fails on one bad record.
func ParseExtra(raw json.RawMessage) Extra {
	var e Extra
	if len(raw) == 0 {
		return e
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		slog.Debug("ignoring malformed extra data", "error", err)
		return Extra{}
	}
	return e
}

// Aggregate computes the dashboard statistics from video counts and the
// processed records. now anchors the trend window.
func Aggregate(counts store.VideoCounts, processed []models.ProcessedRecord, now time.Time) models.DashboardStats {
	result := models.DashboardStats{
		TotalVideos:    counts.Total,
		Processed:      counts.Processed,
		Unprocessed:    counts.Total - counts.Processed,
		RecentActivity: []models.Activity{},
	}
	if result.Unprocessed < 0 {
		result.Unprocessed = 0
	}

	records := make([]models.ProcessedRecord, len(processed))
	copy(records, processed)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	trend := newTrend(now)
	riders := make(map[string]struct{})

	for i, rec := range records {
		extra := ParseExtra(rec.ExtraData)

		if extra.Rider != "" {
			riders[extra.Rider] = struct{}{}
		}
		result.RewardsDistributed += extra.Reward

		for _, d := range extra.Detections {
			countDetection(&result, d.Type)
			trend.add(rec.CreatedAt, d.Type)
		}

		if i < RecentActivityLimit {
			result.RecentActivity = append(result.RecentActivity, activity(rec, extra))
		}
	}

	result.ActiveRiders = len(riders)
	result.TrendingIssues = trend.series()
	return result
}

func countDetection(s *models.DashboardStats, t string) {
	s.DetectionSummary.Total++

	switch t {
	case DetectionPothole:
		s.DetectionSummary.Pothole++
		s.IssueCategories.RoadDamage++
	case DetectionBrokenRoad:
		s.DetectionSummary.BrokenRoad++
		s.IssueCategories.RoadDamage++
	case DetectionRoadDamage:
		s.IssueCategories.RoadDamage++
	case DetectionGarbage:
		s.IssueCategories.Garbage++
	case DetectionTrafficViolation:
		s.IssueCategories.TrafficViolations++
	case DetectionHelmetViolation:
		s.IssueCategories.HelmetViolations++
	}
}

func activity(rec models.ProcessedRecord, extra Extra) models.Activity {
	title := extra.Title
	if title == "" {
		id := rec.ID
		if len(id) > 6 {
			id = id[len(id)-6:]
		}
		title = "Video " + id
	}

	rider := extra.Rider
	if rider == "" {
		rider = UnknownRider
	}

	return models.Activity{
		ID:             rec.ID,
		Title:          title,
		ProcessedAt:    rec.CreatedAt.UTC().Format(time.RFC3339),
		Rider:          rider,
		DetectionCount: len(extra.Detections),
	}
}

// trend buckets detections by UTC day over the last TrendDays days,
// oldest first, ending with the day of now.
type trend struct {
	start      time.Time
	labels     []string
	potholes   []int
	brokenRoad []int
	other      []int
}

func newTrend(now time.Time) *trend {
	today := now.UTC().Truncate(24 * time.Hour)
	t := &trend{
		start:      today.AddDate(0, 0, -(TrendDays - 1)),
		labels:     make([]string, TrendDays),
		potholes:   make([]int, TrendDays),
		brokenRoad: make([]int, TrendDays),
		other:      make([]int, TrendDays),
	}
	for i := range t.labels {
		t.labels[i] = t.start.AddDate(0, 0, i).Weekday().String()[:3]
	}
	return t
}

func (t *trend) add(at time.Time, kind string) {
	day := int(at.UTC().Sub(t.start) / (24 * time.Hour))
	if at.UTC().Before(t.start) || day >= TrendDays {
		return
	}

	switch kind {
	case DetectionPothole:
		t.potholes[day]++
	case DetectionBrokenRoad:
		t.brokenRoad[day]++
	default:
		t.other[day]++
	}
}

func (t *trend) series() models.TrendSeries {
	return models.TrendSeries{
		Labels: t.labels,
		Datasets: []models.TrendDataset{
			{Label: "Potholes", Data: t.potholes},
			{Label: "Broken Roads", Data: t.brokenRoad},
			{Label: "Other", Data: t.other},
		},
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// DashboardStats is the fully populated statistics shape rendered by the
// dashboard. Every field has a usable zero value.
type DashboardStats struct {
	TotalVideos        int              `json:"total_videos"`
	Processed          int              `json:"processed"`
	Unprocessed        int              `json:"unprocessed"`
	ActiveRiders       int              `json:"active_riders"`
	RewardsDistributed float64          `json:"rewards_distributed"`
	DetectionSummary   DetectionSummary `json:"detection_summary"`
	IssueCategories    IssueCategories  `json:"issue_categories"`
	RecentActivity     []Activity       `json:"recent_activity"`
	TrendingIssues     TrendSeries      `json:"trending_issues"`
}

type DetectionSummary struct {
	BrokenRoad int `json:"broken_road"`
	Pothole    int `json:"pothole"`
	Total      int `json:"total"`
}

type IssueCategories struct {
	Garbage           int `json:"garbage"`
	RoadDamage        int `json:"road_damage"`
	TrafficViolations int `json:"traffic_violations"`
	HelmetViolations  int `json:"helmet_violations"`
}

type Activity struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	ProcessedAt    string `json:"processed_at"`
	Rider          string `json:"rider"`
	DetectionCount int    `json:"detection_count"`
}

type TrendSeries struct {
	Labels   []string       `json:"labels"`
	Datasets []TrendDataset `json:"datasets"`
}

type TrendDataset struct {
	Label string `json:"label"`
	Data  []int  `json:"data"`
}

// DashboardStatsEnvelope is the body of GET /api/dashboard/stats.
type DashboardStatsEnvelope struct {
	Data DashboardStats `json:"data"`
}

// PartialDashboardStats is what a client decodes from a backend that may
// omit any field. Nil means "absent".
type PartialDashboardStats struct {
	TotalVideos        *int              `json:"total_videos"`
	Processed          *int              `json:"processed"`
	Unprocessed        *int              `json:"unprocessed"`
	ActiveRiders       *int              `json:"active_riders"`
	RewardsDistributed *float64          `json:"rewards_distributed"`
	DetectionSummary   *DetectionSummary `json:"detection_summary"`
	IssueCategories    *IssueCategories  `json:"issue_categories"`
	RecentActivity     []Activity        `json:"recent_activity"`
	TrendingIssues     *TrendSeries      `json:"trending_issues"`
}

type PartialDashboardEnvelope struct {
	Data *PartialDashboardStats `json:"data"`
}

// WithDefaults builds a complete DashboardStats, substituting the zero-value
// default for every absent field.
func (p *PartialDashboardStats) WithDefaults() DashboardStats {
	stats := DashboardStats{
		RecentActivity: []Activity{},
		TrendingIssues: TrendSeries{Labels: []string{}, Datasets: []TrendDataset{}},
	}
	if p == nil {
		return stats
	}

	stats.TotalVideos = intOrZero(p.TotalVideos)
	stats.Processed = intOrZero(p.Processed)
	stats.Unprocessed = intOrZero(p.Unprocessed)
	stats.ActiveRiders = intOrZero(p.ActiveRiders)
	if p.RewardsDistributed != nil {
		stats.RewardsDistributed = *p.RewardsDistributed
	}
	if p.DetectionSummary != nil {
		stats.DetectionSummary = *p.DetectionSummary
	}
	if p.IssueCategories != nil {
		stats.IssueCategories = *p.IssueCategories
	}
	if p.RecentActivity != nil {
		stats.RecentActivity = p.RecentActivity
	}
	if p.TrendingIssues != nil {
		if p.TrendingIssues.Labels != nil {
			stats.TrendingIssues.Labels = p.TrendingIssues.Labels
		}
		if p.TrendingIssues.Datasets != nil {
			stats.TrendingIssues.Datasets = p.TrendingIssues.Datasets
		}
	}
	return stats
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

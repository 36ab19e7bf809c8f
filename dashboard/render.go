// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dashboard

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/track360/server/models"
)

// Render writes the statistics as plain text. now anchors relative times.
func Render(w io.Writer, s models.DashboardStats, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "Dashboard Overview")
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Total Videos\t%s\n", humanize.Comma(int64(s.TotalVideos)))
	fmt.Fprintf(tw, "  processed\t%s\n", humanize.Comma(int64(s.Processed)))
	fmt.Fprintf(tw, "  unprocessed\t%s\n", humanize.Comma(int64(s.Unprocessed)))
	fmt.Fprintf(tw, "Active Riders\t%s\n", humanize.Comma(int64(s.ActiveRiders)))
	fmt.Fprintf(tw, "Rewards Distributed\t%s\n", humanize.Commaf(s.RewardsDistributed))

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Issues by Category")
	fmt.Fprintf(tw, "  Garbage\t%d\n", s.IssueCategories.Garbage)
	fmt.Fprintf(tw, "  Road Damage\t%d\n", s.IssueCategories.RoadDamage)
	fmt.Fprintf(tw, "  Traffic Violations\t%d\n", s.IssueCategories.TrafficViolations)
	fmt.Fprintf(tw, "  Helmet Violations\t%d\n", s.IssueCategories.HelmetViolations)

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Detection Summary")
	fmt.Fprintf(tw, "  Broken Road\t%d\t%s\n", s.DetectionSummary.BrokenRoad, share(s.DetectionSummary.BrokenRoad, s.DetectionSummary.Total))
	fmt.Fprintf(tw, "  Pothole\t%d\t%s\n", s.DetectionSummary.Pothole, share(s.DetectionSummary.Pothole, s.DetectionSummary.Total))
	fmt.Fprintf(tw, "  Total\t%d\n", s.DetectionSummary.Total)

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Trending Issues")
	if len(s.TrendingIssues.Labels) > 0 {
		fmt.Fprintf(tw, "  \t%s\n", strings.Join(s.TrendingIssues.Labels, "\t"))
	}
	for _, ds := range s.TrendingIssues.Datasets {
		cells := make([]string, len(ds.Data))
		for i, v := range ds.Data {
			cells[i] = fmt.Sprint(v)
		}
		fmt.Fprintf(tw, "  %s\t%s\n", ds.Label, strings.Join(cells, "\t"))
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Recent Activity")
	if len(s.RecentActivity) == 0 {
		fmt.Fprintln(tw, "  No recent activity")
	}
	for _, a := range s.RecentActivity {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", a.Title, a.Rider, processedAgo(a.ProcessedAt, now),
			english.Plural(a.DetectionCount, "detection", ""))
	}

	return tw.Flush()
}

// share is n as a percentage of total; an empty total counts as 1.
func share(n, total int) string {
	if total == 0 {
		total = 1
	}
	return fmt.Sprintf("%.0f%%", float64(n)/float64(total)*100)
}

func processedAgo(ts string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "track360_http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "track360_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Media host
	MediaUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "track360_media_uploads_total",
			Help: "Media host uploads by folder and result",
		},
		[]string{"folder", "result"},
	)

	MediaUploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "track360_media_upload_duration_seconds",
			Help:    "Time spent waiting for the media host",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// Records
	RecordsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "track360_records_created_total",
			Help: "Records created by kind (unprocessed, processed)",
		},
		[]string{"kind"},
	)
)

func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordMediaUpload(folder string, err error, d time.Duration) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	MediaUploadsTotal.WithLabelValues(folder, result).Inc()
	MediaUploadDuration.Observe(d.Seconds())
}

func RecordCreated(kind string) {
	RecordsCreatedTotal.WithLabelValues(kind).Inc()
}

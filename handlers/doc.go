// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Track360 API.

# Handler Types

Each handler is a struct holding its store, media host and config:

  - UnprocessedHandler: raw clip upload and lookup
  - ProcessedHandler: linking processed results to raw clips, signed uploads
  - DashboardHandler: aggregate statistics
  - SeedHandler: sample data for empty deployments

	h := handlers.NewUnprocessedHandler(st, host, cfg)

# Capture

	POST /api/unprocessed/upload → Upload (multipart: video, location)
	GET  /api/unprocessed        → List (?status=pending|processed|all&limit=n)
	GET  /api/unprocessed/{id}   → Get

The video goes to the media host first; the record is only written once the
host returns a URL.

# Linking

	POST /api/processed/upload      → Upload
	GET  /api/processed/sign-upload → SignUpload
	GET  /api/processed/{id}        → Get

Upload accepts either a JSON body {videoUrl, id, data} or a multipart form
with a video file. Every request error (missing fields, bad data, malformed
or unknown id) is reported before anything is uploaded or written. On
success the new record copies the source's URL and location and the source
is marked processed.

# Dashboard

	GET /api/dashboard/stats → Stats
	GET /api/seed            → Seed

Stats is computed from the stored records by package stats.
*/
package handlers

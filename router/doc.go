// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Track360 API.

# Route Registration

NewRouter builds a chi router with all endpoints:

	h := router.NewRouter(router.Deps{
		Store:  st,
		Media:  host,
		Signer: signer,
		Sample: sample,
	}, cfg)

# Endpoints

Service:

	GET /health  - Liveness
	GET /metrics - Prometheus metrics
	GET /        - Version banner

Capture:

	POST /api/unprocessed/upload - Upload a raw clip with its location
	GET  /api/unprocessed        - List raw clips
	GET  /api/unprocessed/{id}   - Fetch one raw clip

Processing:

	GET  /api/processed/sign-upload - Signed direct-upload parameters
	POST /api/processed/upload      - Link a processed result to its clip
	GET  /api/processed/{id}        - Fetch one processed record

Dashboard:

	GET /api/dashboard/stats - Aggregate statistics
	GET /api/seed            - Insert sample data into an empty store

# Middleware

Every route gets panic recovery, request ids and CORS. Routes under /api
are also logged, counted in metrics and, when cfg.RateLimit.Requests is
set, rate limited per client IP.
*/
package router

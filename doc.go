// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Track360 API server.

Track360 collects short geotagged road clips recorded by riders, stores
them at a media host and links each raw clip to its processed result. A
dashboard endpoint summarizes detections, riders and rewards.

# Starting the Server

The server reads configuration from flags, environment variables, an
optional .env file and an optional YAML file:

	DATABASE_URL=mongodb://localhost:27017 \
	CLOUDINARY_CLOUD_NAME=demo CLOUDINARY_API_KEY=... CLOUDINARY_API_SECRET=... \
	go run .

Or with flags:

	go run . -p 3318 -t sqlite -d "file:track360.db"

# Configuration

Required settings:

  - DATABASE_URL (-d): store connection string
  - CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY: media host account
  - CLOUDINARY_API_SECRET (--cloudinary-secret): media host secret

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): mongodb, postgres or sqlite (default: mongodb)
  - UPLOAD_MAX_SIZE: multipart body cap, e.g. "100MB"
  - SEED_ENABLED: allow GET /api/seed (default: true)

Secrets are never compiled in; supply them from the deployment's secret
store through the environment or flags.

# Architecture

  - handlers: HTTP request handlers (uploads, linking, dashboard, seed)
  - router: chi routes, CORS, rate limiting, /metrics
  - middleware: request ids, logging, metrics, JSON helpers
  - store: MongoDB and SQL record stores
  - media: Cloudinary uploads
  - auth: signed direct uploads
  - stats: dashboard aggregation
  - supervisor: suture supervision of the HTTP server
  - cliparse: configuration parsing

The client, capture and dashboard packages and cmd/track360ctl drive the
API from the rider side.
*/
package main

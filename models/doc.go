// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Location: latitude/longitude captured with a clip
  - UnprocessedRecord: raw clip reference, processed flag, back-link
  - ProcessedRecord: processed clip reference linked to its source

# Request Types

  - ProcessedUploadRequest: videoUrl, id, data (JSON variant of the
    processed upload; the multipart variant carries the same fields)

# Response Types

  - UnprocessedUploadResponse: id, videoUrl
  - ProcessedUploadResponse: success, id, processedVideoUrl
  - SignUploadResponse: timestamp, signature, apiKey, cloudName
  - UnprocessedListResponse: records, count
  - SeedResponse: success, inserted
  - ErrorResponse: error

# Dashboard

DashboardStats is the complete statistics shape. Clients decode into
PartialDashboardStats, where every field is optional, and call WithDefaults:

	var env models.PartialDashboardEnvelope
	json.Unmarshal(body, &env)
	stats := env.Data.WithDefaults()

A missing detection_summary becomes {broken_road:0, pothole:0, total:0},
a missing recent_activity becomes an empty list, and so on.

# Collections

	CollectionUnprocessed = "unprocessed"
	CollectionProcessed   = "processed"
*/
package models

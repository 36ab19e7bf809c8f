// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics defines the Prometheus collectors exposed on /metrics:
// HTTP traffic per route, media host uploads and record creation counts.
package metrics

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package client is a Go client for the Track360 HTTP API. Every call takes
// a context; non-2xx responses come back as *APIError.
package client

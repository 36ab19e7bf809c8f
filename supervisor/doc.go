// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package supervisor runs the HTTP server under a suture supervisor so a
// crashed listener is restarted with backoff and a canceled context shuts
// everything down within the configured timeout.
package supervisor

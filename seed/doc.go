// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package seed populates an empty store with the embedded sample clips so the
// dashboard has something to show on a fresh deployment.
package seed

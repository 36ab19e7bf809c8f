// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package dashboard is the reading side of the statistics endpoint. It
// fetches once, fills every absent field with its zero default, offers the
// sample-data action only for an empty store and renders the result as text.
package dashboard

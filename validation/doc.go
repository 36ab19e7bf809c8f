// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package validation wraps go-playground/validator with a process-wide
// instance and short, client-safe error messages.
package validation

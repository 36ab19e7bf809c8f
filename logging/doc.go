// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package logging backs log/slog with zerolog.

Code everywhere logs through slog with key/value pairs:

	slog.Error("failed to insert record", "error", err)

Init installs a zerolog-backed handler as the slog default, so output is
zerolog JSON (or the console writer for local runs) while call sites stay on
the standard API. The supervisor's event hook uses the same logger.
*/
package logging

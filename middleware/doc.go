// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request IDs

RequestID reuses an incoming X-Request-ID header or generates a UUID, echoes
it on the response and stores it in the request context:

	r.Use(middleware.RequestID)
	id := middleware.GetRequestID(req.Context())

# Request Logging and Metrics

	r.Use(middleware.WithLogging, middleware.Metrics)

WithLogging logs request start at debug and completion with status and
duration_ms. Metrics records request counts and latency by chi route
pattern, so /api/unprocessed/{id} is one series rather than one per id.

# CORS Middleware

The capture and dashboard pages run in browsers on other origins:

	r.Use(middleware.CORS(cfg.CORS.Origins))

Allows GET, POST and OPTIONS. A "*" origin disables credentials.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")

Errors are always written as {"error": message}.

# Client IP Extraction

GetClientIP prefers X-Forwarded-For, then X-Real-IP, then RemoteAddr.
*/
package middleware

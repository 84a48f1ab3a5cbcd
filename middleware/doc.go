// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Every request gets an id (taken from X-Request-ID or generated with
google/uuid) that is echoed back in the response header, attached to
the request context and logged with the start and completion lines.

	id := middleware.RequestID(r.Context())

# CORS Middleware

Enable cross-origin requests for the event frontend:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows X-Admin-Key and X-Reservation-Token besides the usual headers.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

DecodeAndValidate parses a body and runs its go-playground/validator tags:

	var req models.BookRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Used for booking IP hashes and IP-based origin lookup. X-Forwarded-For and
X-Real-IP are trusted as sent, so deployments must put a reverse proxy in
front that overwrites them.
*/
package middleware

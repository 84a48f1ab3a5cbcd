// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/smartecoq/assistant"
	"github.com/danielhkuo/smartecoq/auth"
	"github.com/danielhkuo/smartecoq/cliparse"
	"github.com/danielhkuo/smartecoq/geocode"
	"github.com/danielhkuo/smartecoq/middleware"
	"github.com/danielhkuo/smartecoq/navigator"
	"github.com/danielhkuo/smartecoq/queue"
	"github.com/danielhkuo/smartecoq/routing"
	"github.com/danielhkuo/smartecoq/venue"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, queue.ErrStandNotFound),
		errors.Is(err, queue.ErrReservationNotFound),
		errors.Is(err, venue.ErrUnknownDataset),
		errors.Is(err, geocode.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, queue.ErrQueueFull),
		errors.Is(err, queue.ErrNotWaiting),
		errors.Is(err, queue.ErrDuplicateStand):
		return http.StatusConflict
	case errors.Is(err, queue.ErrInvalidCount),
		errors.Is(err, queue.ErrInvalidStand),
		errors.Is(err, queue.ErrNameRequired),
		errors.Is(err, queue.ErrInvalidQR),
		errors.Is(err, navigator.ErrNoDestination):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidAdminKey):
		return http.StatusUnauthorized
	case errors.Is(err, routing.ErrNoRoute),
		errors.Is(err, navigator.ErrNoRoute),
		errors.Is(err, geocode.ErrUpstream),
		errors.Is(err, assistant.ErrUpstream),
		errors.Is(err, assistant.ErrEmptyReply):
		return http.StatusBadGateway
	case errors.Is(err, assistant.ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError sends err with its mapped status. Unmapped errors are logged
// and replaced by fallback so internals do not leak.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(fallback,
			"request_id", middleware.RequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		middleware.ErrorResponse(w, status, fallback)
		return
	}
	middleware.ErrorResponse(w, status, err.Error())
}

// requireAdmin checks X-Admin-Key and writes a 401 when it is wrong
func requireAdmin(w http.ResponseWriter, r *http.Request, cfg cliparse.Config) bool {
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(auth.AdminScope, adminKey, cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}

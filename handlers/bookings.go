// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/smartecoq/auth"
	"github.com/danielhkuo/smartecoq/cliparse"
	"github.com/danielhkuo/smartecoq/middleware"
	"github.com/danielhkuo/smartecoq/models"
	"github.com/danielhkuo/smartecoq/queue"
)

type BookingHandler struct {
	store *queue.Store
	cfg   cliparse.Config
}

func NewBookingHandler(store *queue.Store, cfg cliparse.Config) *BookingHandler {
	return &BookingHandler{store: store, cfg: cfg}
}

// BookAtStand handles POST /stands/{id}/reservations
func (h *BookingHandler) BookAtStand(w http.ResponseWriter, r *http.Request) {
	var req models.BookRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	h.book(w, r, r.PathValue("id"), req.Name)
}

// BookFromQR handles POST /reservations
// The stand comes from the scanned QR payload.
func (h *BookingHandler) BookFromQR(w http.ResponseWriter, r *http.Request) {
	var req models.BookRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	standID, err := queue.ParseStandQR(req.QRPayload)
	if err != nil {
		writeError(w, r, err, "Failed to read QR payload")
		return
	}

	h.book(w, r, standID, req.Name)
}

func (h *BookingHandler) book(w http.ResponseWriter, r *http.Request, standID, name string) {
	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.CodeSalt)

	res, token, err := h.store.Book(r.Context(), standID, name, ipHash)
	if err != nil {
		writeError(w, r, err, "Failed to book")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.BookResponse{
		Reservation: res,
		Token:       token,
		QRPayload:   queue.StandQRPayload(res.StandID),
	})
}

// GetReservation handles GET /reservations/{id}
func (h *BookingHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.store.GetReservation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "Failed to load reservation")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, res)
}

// GetReservationByCode handles GET /reservations/code/{code}
func (h *BookingHandler) GetReservationByCode(w http.ResponseWriter, r *http.Request) {
	res, err := h.store.GetReservationByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, r, err, "Failed to load reservation")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, res)
}

// CancelReservation handles POST /reservations/{id}/cancel
func (h *BookingHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Reservation-Token")
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Reservation-Token header required")
		return
	}

	res, err := h.store.CancelReservation(r.Context(), r.PathValue("id"), token)
	if err != nil {
		writeError(w, r, err, "Failed to cancel reservation")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, res)
}

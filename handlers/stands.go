// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/smartecoq/cliparse"
	"github.com/danielhkuo/smartecoq/middleware"
	"github.com/danielhkuo/smartecoq/models"
	"github.com/danielhkuo/smartecoq/queue"
)

type StandHandler struct {
	store *queue.Store
	cfg   cliparse.Config
}

func NewStandHandler(store *queue.Store, cfg cliparse.Config) *StandHandler {
	return &StandHandler{store: store, cfg: cfg}
}

// ListStands handles GET /stands?kind=
func (h *StandHandler) ListStands(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind != "" && !models.ValidKind(kind) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "kind must be stand, toilet or ecopoint")
		return
	}

	stands, err := h.store.ListStands(r.Context(), kind)
	if err != nil {
		writeError(w, r, err, "Failed to list stands")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, stands)
}

// GetStand handles GET /stands/{id}
func (h *StandHandler) GetStand(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.GetStand(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "Failed to load stand")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, st)
}

// Arrive handles POST /stands/{id}/arrivals
// Walk-ins join the line without a name or token.
func (h *StandHandler) Arrive(w http.ResponseWriter, r *http.Request) {
	var req models.CountRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	st, tickets, err := h.store.Arrive(r.Context(), r.PathValue("id"), req.Count)
	if err != nil {
		writeError(w, r, err, "Failed to record arrivals")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.ArrivalsResponse{
		Stand:   st,
		Tickets: tickets,
	})
}

// ListReservations handles GET /stands/{id}/reservations
// Only bookings are listed unless walk_ins=true.
func (h *StandHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	withWalkIns := r.URL.Query().Get("walk_ins") == "true"

	list, err := h.store.ListReservations(r.Context(), r.PathValue("id"), withWalkIns)
	if err != nil {
		writeError(w, r, err, "Failed to list reservations")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, list)
}

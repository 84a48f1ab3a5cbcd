// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/danielhkuo/smartecoq/cliparse"
	"github.com/danielhkuo/smartecoq/db"
	"github.com/danielhkuo/smartecoq/middleware"
	"github.com/danielhkuo/smartecoq/models"
	"github.com/danielhkuo/smartecoq/queue"
)

// defaultSeedMax matches the length range of the queue seeding tool
const defaultSeedMax = 20

// AdminHandler serves operator endpoints. Every route checks X-Admin-Key.
type AdminHandler struct {
	conn   *sql.DB
	store  *queue.Store
	cfg    cliparse.Config
	stands []models.CreateStandRequest
}

// NewAdminHandler creates the handler. stands are re-created after a reset.
func NewAdminHandler(conn *sql.DB, store *queue.Store, cfg cliparse.Config, stands []models.CreateStandRequest) *AdminHandler {
	return &AdminHandler{conn: conn, store: store, cfg: cfg, stands: stands}
}

// Reset handles POST /admin/reset
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.cfg) {
		return
	}

	if err := db.Reset(h.conn); err != nil {
		slog.Error("failed to reset database", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset database")
		return
	}

	n, err := h.store.EnsureStands(r.Context(), h.stands)
	if err != nil {
		writeError(w, r, err, "Failed to recreate stands")
		return
	}

	slog.Warn("database reset", "stands", n)
	middleware.JSONResponse(w, http.StatusOK, models.ResetResponse{Status: "reset", Stands: n})
}

// CreateStand handles POST /stands
func (h *AdminHandler) CreateStand(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.cfg) {
		return
	}

	var req models.CreateStandRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := h.store.CreateStand(r.Context(), req)
	if err != nil {
		writeError(w, r, err, "Failed to create stand")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, st)
}

// Serve handles POST /stands/{id}/serve
func (h *AdminHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.cfg) {
		return
	}

	var req models.CountRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	st, served, err := h.store.Serve(r.Context(), r.PathValue("id"), req.Count)
	if err != nil {
		writeError(w, r, err, "Failed to serve")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ServeResponse{Stand: st, Served: served})
}

// SetQueueLength handles PUT /stands/{id}/queue
func (h *AdminHandler) SetQueueLength(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.cfg) {
		return
	}

	var req models.QueueLengthRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := h.store.SetQueueLength(r.Context(), r.PathValue("id"), req.Length)
	if err != nil {
		writeError(w, r, err, "Failed to set queue length")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, st)
}

// SeedQueues handles POST /admin/seed-queues
func (h *AdminHandler) SeedQueues(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.cfg) {
		return
	}

	req := models.SeedQueuesRequest{Max: defaultSeedMax}
	if r.ContentLength != 0 {
		if err := middleware.DecodeAndValidate(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	lengths, err := queue.SeedRandomQueues(r.Context(), h.store, req.Max, rng)
	if err != nil {
		writeError(w, r, err, "Failed to seed queues")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SeedQueuesResponse{Lengths: lengths})
}

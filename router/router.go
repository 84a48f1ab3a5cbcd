// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/smartecoq/assistant"
	"github.com/danielhkuo/smartecoq/cliparse"
	"github.com/danielhkuo/smartecoq/handlers"
	"github.com/danielhkuo/smartecoq/middleware"
	"github.com/danielhkuo/smartecoq/models"
	"github.com/danielhkuo/smartecoq/navigator"
	"github.com/danielhkuo/smartecoq/queue"
)

// Services are the long-lived components built at startup
type Services struct {
	Store     *queue.Store
	Navigator *navigator.Navigator
	Assistant *assistant.Assistant

	// Stands recreated by POST /admin/reset
	Stands []models.CreateStandRequest
}

func NewRouter(db *sql.DB, cfg cliparse.Config, svc Services) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	standHandler := handlers.NewStandHandler(svc.Store, cfg)
	bookingHandler := handlers.NewBookingHandler(svc.Store, cfg)
	adminHandler := handlers.NewAdminHandler(db, svc.Store, cfg, svc.Stands)
	navHandler := handlers.NewNavigatorHandler(svc.Navigator)
	assistantHandler := handlers.NewAssistantHandler(svc.Assistant)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Stands and their lines (public)
	mux.HandleFunc("GET /stands", middleware.WithLogging(standHandler.ListStands))
	mux.HandleFunc("GET /stands/{id}", middleware.WithLogging(standHandler.GetStand))
	mux.HandleFunc("POST /stands/{id}/arrivals", middleware.WithLogging(standHandler.Arrive))
	mux.HandleFunc("GET /stands/{id}/reservations", middleware.WithLogging(standHandler.ListReservations))

	// Bookings (public, cancel needs X-Reservation-Token)
	mux.HandleFunc("POST /stands/{id}/reservations", middleware.WithLogging(bookingHandler.BookAtStand))
	mux.HandleFunc("POST /reservations", middleware.WithLogging(bookingHandler.BookFromQR))
	mux.HandleFunc("GET /reservations/{id}", middleware.WithLogging(bookingHandler.GetReservation))
	mux.HandleFunc("GET /reservations/code/{code}", middleware.WithLogging(bookingHandler.GetReservationByCode))
	mux.HandleFunc("POST /reservations/{id}/cancel", middleware.WithLogging(bookingHandler.CancelReservation))

	// Operator endpoints (X-Admin-Key)
	mux.HandleFunc("POST /stands", middleware.WithLogging(adminHandler.CreateStand))
	mux.HandleFunc("POST /stands/{id}/serve", middleware.WithLogging(adminHandler.Serve))
	mux.HandleFunc("PUT /stands/{id}/queue", middleware.WithLogging(adminHandler.SetQueueLength))
	mux.HandleFunc("POST /admin/reset", middleware.WithLogging(adminHandler.Reset))
	mux.HandleFunc("POST /admin/seed-queues", middleware.WithLogging(adminHandler.SeedQueues))

	// Navigator
	mux.HandleFunc("GET /navigator/datasets", middleware.WithLogging(navHandler.Datasets))
	mux.HandleFunc("GET /navigator/pois", middleware.WithLogging(navHandler.POIs))
	mux.HandleFunc("GET /navigator/origin", middleware.WithLogging(navHandler.Origin))
	mux.HandleFunc("POST /navigator/route", middleware.WithLogging(navHandler.Route))
	mux.HandleFunc("POST /navigator/plan", middleware.WithLogging(navHandler.Plan))

	// Assistant
	mux.HandleFunc("POST /assistant/chat", middleware.WithLogging(assistantHandler.Chat))
	mux.HandleFunc("POST /assistant/recycling", middleware.WithLogging(assistantHandler.Recycling))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("smartecoq API v1"))
	})

	return middleware.CORS(mux)
}

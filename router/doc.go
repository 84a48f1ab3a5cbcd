// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the SmartEcoQ API.

# Route Registration

NewRouter builds an http.ServeMux with every endpoint and wraps it in CORS:

	h := router.NewRouter(db, cfg, router.Services{
		Store:     store,
		Navigator: nav,
		Assistant: bot,
		Stands:    v.StandRequests(),
	})

# Endpoints

Health:

	GET /health

Stands (public):

	GET  /stands?kind=               - Stands with live queue and wait
	GET  /stands/{id}                - One stand
	POST /stands/{id}/arrivals       - Walk-ins join the line
	GET  /stands/{id}/reservations   - Bookings in ticket order

Bookings (public, cancel requires X-Reservation-Token):

	POST /stands/{id}/reservations   - Book at a stand
	POST /reservations               - Book from a scanned QR payload
	GET  /reservations/{id}          - Position and wait
	GET  /reservations/code/{code}   - Lookup by short code
	POST /reservations/{id}/cancel   - Leave the line

Operator (requires X-Admin-Key):

	POST /stands                     - Create stand
	POST /stands/{id}/serve          - Serve people by hand
	PUT  /stands/{id}/queue          - Set line length
	POST /admin/reset                - Wipe and recreate the venue stands
	POST /admin/seed-queues          - Random demo lines

Navigator:

	GET  /navigator/datasets
	GET  /navigator/pois?dataset=&amenity=
	GET  /navigator/origin?lat=&lon=
	POST /navigator/route
	POST /navigator/plan

Assistant:

	POST /assistant/chat
	POST /assistant/recycling
*/
package router

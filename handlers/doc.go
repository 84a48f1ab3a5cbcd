// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the SmartEcoQ API.

# Handler Types

Each handler is a struct holding the component it fronts:

  - StandHandler: stand listing and walk-in arrivals
  - BookingHandler: bookings, lookups and cancellation
  - AdminHandler: operator actions (create, serve, queue length, reset, seeding)
  - NavigatorHandler: POIs, origin, routes and queue-aware plans
  - AssistantHandler: event chat and recycling advice

Handlers are created via constructor functions:

	stands := handlers.NewStandHandler(store, cfg)

# Errors

Domain errors from the queue, navigator and assistant packages are mapped
to HTTP statuses in one place (errors.go). Unexpected errors are logged
with the request id and answered with the handler's fallback message.

# Authentication

Operator actions require the X-Admin-Key header, an HMAC of the admin
scope under ADMIN_KEY_SALT. Cancelling a booking requires the
X-Reservation-Token returned when it was made.
*/
package handlers

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON, validated with go-playground/validator tags:

  - CreateStandRequest: name, kind, max_capacity, service_seconds, servers, lat, lon
  - BookRequest: name, qr_payload
  - CountRequest: count (arrivals and manual serves)
  - QueueLengthRequest, SeedQueuesRequest: operator overrides
  - RouteRequest, PlanRequest: navigator queries
  - ChatRequest, RecyclingRequest: assistant prompts

# Response Types

  - BookResponse: reservation, token, qr_payload
  - ArrivalsResponse, ServeResponse: stand after the change
  - Plan, Route, POIResponse, Location: navigator answers
  - ChatResponse, RecyclingResponse: assistant answers
  - ErrorResponse: error, message

# Domain Types

  - Stand: a service point with its live line
  - Reservation: one ticket in a line, booked or walk-in

# Constants

Kinds:

	KindStand    = "stand"
	KindToilet   = "toilet"
	KindEcopoint = "ecopoint"

Reservation status:

	StatusWaiting   = "waiting"
	StatusServed    = "served"
	StatusCancelled = "cancelled"

Reservation source:

	SourceBooking = "booking"
	SourceWalkIn  = "walk_in"
*/
package models

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the SmartEcoQ API server.

SmartEcoQ runs the lines of an outdoor event: food stands, toilets and
ecological points. Visitors book a place from a stand's QR code, the
navigator sends them to the stand that serves them soonest, and an
assistant answers questions about the event and about recycling.

# Starting the Server

With no flags the server uses a SQLite file and ./venue.yml:

	ADMIN_KEY_SALT=... RESERVATION_CODE_SALT=... go run .

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..." -p 3318

# Configuration

Required settings:

  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC
  - RESERVATION_CODE_SALT (--code-salt): Secret for reservation codes

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): SQLite file or PostgreSQL URL (default: event.db)
  - VENUE_FILE (--venue): Venue description (default: venue.yml)
  - DECAY_INTERVAL (--decay): Background queue tick (default: 15s)
  - CHAT_PROVIDER (--chat), API_KEY, CHAT_MODEL, CHAT_BASE_URL: Assistant
  - WATSONX_PROJECT_ID, IAM_URL: watsonx credentials
  - GEOCODER_URL, ROUTING_URL, ROUTING_PROFILE, IP_LOCATOR_URL: Navigator upstreams

A .env file in the working directory is read first; real environment
variables take precedence.

# Architecture

  - queue: Line simulation, bookings and the background decayer
  - navigator: Queue-aware planning over the venue
  - routing: Walkway graph, OSRM and straight-line routers
  - geocode: Place search and IP location
  - assistant: LLM relays (OpenAI, watsonx, Gemini)
  - venue: YAML venue file and GeoJSON POI datasets
  - handlers, router, middleware: HTTP surface
  - models, auth, db, cliparse: Shared types, tokens, schema and config

The operator CLI lives in cmd/ecoqctl.
*/
package main

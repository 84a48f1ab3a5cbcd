// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first (godotenv); variables
already set in the process environment are never overwritten by it.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseType: sqlite (default) or postgres
  - DatabaseURL: SQLite file (default: event.db) or PostgreSQL connection string
  - AdminKeySalt: Secret for admin key HMAC (required)
  - CodeSalt: Secret for short reservation codes (required)
  - VenueFile: Venue YAML (default: venue.yml)
  - DecayInterval: Background queue decay tick (default: 15s)
  - ChatProvider: openai (default), watsonx or gemini

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type
	-venue          Venue file
	-decay          Decay tick interval
	--admin-salt    Admin key salt
	--code-salt     Reservation code salt
	-chat           Assistant provider

# Environment Variables

Flags fall back to environment variables:

	PORT                  → -p
	DATABASE_URL          → -d
	DATABASE_TYPE         → -t
	VENUE_FILE            → -venue
	DECAY_INTERVAL        → -decay
	ADMIN_KEY_SALT        → --admin-salt
	RESERVATION_CODE_SALT → --code-salt
	CHAT_PROVIDER         → -chat

Environment only:

	API_KEY, CHAT_MODEL, CHAT_BASE_URL, WATSONX_PROJECT_ID, IAM_URL
	GEOCODER_URL, ROUTING_URL, ROUTING_PROFILE, IP_LOCATOR_URL

CLI flags take precedence over environment variables.
*/
package cliparse

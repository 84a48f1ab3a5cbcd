// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Admin Keys

Operator endpoints (reset, manual serve, stand creation) are guarded by an
HMAC-SHA256 key derived from a scope and the ADMIN_KEY_SALT secret:

	adminKey := auth.GenerateAdminKey(auth.AdminScope, salt)
	err := auth.ValidateAdminKey(auth.AdminScope, adminKey, salt)

The key is URL-safe base64 encoded without padding and never stored.

# Reservation Tokens

Reservation tokens are random 24-byte (192-bit) secrets returned once on
booking and required to cancel:

	token, err := auth.GenerateReservationToken()
	err = auth.ValidateReservationToken(presented, stored)

# Reservation Codes

Short base62 codes identify a reservation at the stand counter, typically
printed as a QR code:

	code := auth.GenerateReservationCode(reservationID, salt)

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth

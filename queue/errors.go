// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package queue

import "errors"

var (
	ErrStandNotFound       = errors.New("stand not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrQueueFull           = errors.New("queue is at capacity")
	ErrNotWaiting          = errors.New("reservation is no longer waiting")
	ErrInvalidCount        = errors.New("count must be positive")
	ErrInvalidStand        = errors.New("invalid stand")
	ErrNameRequired        = errors.New("reservation name is required")
	ErrInvalidQR           = errors.New("not a stand QR payload")
	ErrDuplicateStand      = errors.New("stand name already exists")

	// ErrInconsistent means stand counters and reservation rows disagree
	ErrInconsistent = errors.New("stand and reservations out of sync")
)

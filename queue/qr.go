// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package queue

import (
	"strings"
)

const qrPrefix = "smartecoq:stand:"

// StandQRPayload is the text encoded in the QR code posted at a stand
func StandQRPayload(standID string) string {
	return qrPrefix + standID
}

// ParseStandQR extracts the stand id from a scanned QR payload.
// A bare stand id is accepted too, matching hand-typed codes.
func ParseStandQR(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", ErrInvalidQR
	}
	if id, ok := strings.CutPrefix(payload, qrPrefix); ok {
		if id == "" || strings.ContainsAny(id, ":/ ") {
			return "", ErrInvalidQR
		}
		return id, nil
	}
	if strings.ContainsAny(payload, ":/ ") {
		return "", ErrInvalidQR
	}
	return payload, nil
}

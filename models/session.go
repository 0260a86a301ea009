// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package models

import "time"

// SessionTTL is the default lifetime of a session and its JWT.
const SessionTTL = 7 * time.Hour

// Session is the server-side session record stored at auth:session:{jti}.
// A JWT is only honoured while its jti maps to a live session; logout and
// refresh kill the record and blacklist the jti for its remaining lifetime.
type Session struct {
	JTI        string    `json:"jti"`
	CustomerID string    `json:"customerId"`
	IssuedAt   time.Time `json:"issuedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`

	// CSRF is the double-submit value mirrored into the JWT's csrf claim.
	CSRF string `json:"csrf"`

	IsSuperAdmin bool `json:"isSuperAdmin"`
}

// Expired reports whether the session is past its expiry.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

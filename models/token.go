// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the claim set carried by every issued JWT.
//
// The subject claim holds the customerId. CSRF mirrors the session's CSRF
// value so that state-changing requests can be checked without a session
// lookup; IsSuperAdmin gates the /admin/* surface.
type AccessClaims struct {
	jwt.RegisteredClaims

	Email        string `json:"email"`
	CSRF         string `json:"csrf"`
	IsSuperAdmin bool   `json:"isSuperAdmin"`
}

// Token wraps a parsed JWT together with its compact serialized form and
// convenience accessors for the strixun claim set.
type Token struct {
	// Token is the underlying JWT used for signing and claim inspection.
	// Excluded from JSON serialization; only the compact string form is
	// meaningful outside the server process.
	*jwt.Token `json:"-"`

	// Claims is the decoded strixun claim set.
	Claims AccessClaims `json:"-"`

	// SignedString is the compact JWS representation
	// (base64url header.payload.signature).
	SignedString string `json:"-"`
}

// CustomerID returns the customer identifier from the subject claim.
func (t *Token) CustomerID() string {
	return t.Claims.Subject
}

// JTI returns the token identifier claim.
func (t *Token) JTI() string {
	return t.Claims.ID
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *Token) String() string {
	return t.SignedString
}

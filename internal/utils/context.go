// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

// Package utils provides general-purpose helper utilities used across
// different parts of the application: type-safe context keys, JWT helpers,
// and HTTP response writing.
package utils

import (
	"context"

	"github.com/strixun/edge-core/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// Auth type values stored under AuthTypeCtxKey.
const (
	AuthTypeUser    = "user"
	AuthTypeService = "service"
)

var (
	// CustomerIDCtxKey stores the authenticated customer's identifier.
	CustomerIDCtxKey = contextKey("customerID")

	// TokenCtxKey stores the decoded bearer token of the current request.
	// Carrying the token in the context (instead of mutating the request
	// DTO) is what the response cipher relies on to key the envelope.
	TokenCtxKey = contextKey("token")

	// AuthTypeCtxKey tags the request as user- or service-originated.
	AuthTypeCtxKey = contextKey("authType")
)

// GetCustomerIDFromContext retrieves the customer identifier from the context.
//
// Returns the ID and an ok flag:
//   - ok == true: value is found and has the correct string type
//   - ok == false: value is missing or has an unexpected type
func GetCustomerIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CustomerIDCtxKey).(string)
	return id, ok
}

// GetTokenFromContext retrieves the decoded bearer token from the context.
func GetTokenFromContext(ctx context.Context) (*models.Token, bool) {
	token, ok := ctx.Value(TokenCtxKey).(*models.Token)
	return token, ok
}

// GetAuthTypeFromContext retrieves the auth-type tag from the context.
// An untagged context returns ok == false.
func GetAuthTypeFromContext(ctx context.Context) (string, bool) {
	at, ok := ctx.Value(AuthTypeCtxKey).(string)
	return at, ok
}

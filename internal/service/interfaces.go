// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

// Package service implements the business rules of the trust plane: the
// OTP login flow, session and token lifecycle, customer profiles, rate
// limiting, and custodial data-request grants. Handlers stay thin; every
// rule lives here behind small interfaces so transports and tests can
// swap implementations.
package service

import (
	"context"

	"github.com/strixun/edge-core/internal/config"
	"github.com/strixun/edge-core/internal/logger"
	"github.com/strixun/edge-core/internal/store"
	"github.com/strixun/edge-core/models"
)

// LoginResult bundles everything a successful login or refresh produces.
type LoginResult struct {
	Token    models.Token
	Session  models.Session
	Customer models.Customer
}

// IdentityService owns the OTP login flow and the session lifecycle.
type IdentityService interface {
	// RequestOTP validates the address, applies the otp-request rate
	// bucket, stores a fresh challenge (superseding any pending one) and
	// mails the code.
	RequestOTP(ctx context.Context, email string) (models.RequestOTPResponse, error)

	// VerifyOTP checks the code against the pending challenge, tracking
	// the five-attempt budget, and on success upserts the customer and
	// issues a session-backed JWT.
	VerifyOTP(ctx context.Context, email, code string) (LoginResult, error)

	// Refresh rotates the session: the old jti is blacklisted for its
	// remaining lifetime and a fresh token is issued.
	Refresh(ctx context.Context, token *models.Token) (LoginResult, error)

	// Logout kills the session and blacklists the jti. Idempotent.
	Logout(ctx context.Context, token *models.Token) error

	// Me loads the caller's own profile.
	Me(ctx context.Context, customerID string) (models.Customer, error)

	// ParseToken validates a compact JWT against the signing key, the
	// blacklist and the live-session requirement. Every failure mode
	// collapses to [ErrTokenIsExpiredOrInvalid].
	ParseToken(ctx context.Context, tokenString string) (*models.Token, error)
}

// DataRequestService owns the custodial re-disclosure flow: super-admins
// file requests, targets approve or reject, approved requesters collect a
// sealed two-stage payload plus the grant key encrypted to their token.
type DataRequestService interface {
	Create(ctx context.Context, requesterID, targetCustomerID, dataType string) (models.DataRequest, error)
	Approve(ctx context.Context, requestID, callerID, ownerToken string) (models.DataRequest, error)
	Reject(ctx context.Context, requestID, callerID string) (models.DataRequest, error)

	// Collect returns the approved request with RequestKey encrypted to
	// the requester's token, plus the sealed two-stage payload
	// (base64url).
	Collect(ctx context.Context, requestID, callerID, callerToken string) (models.DataRequest, string, error)

	// ListForTarget returns the requests aimed at one customer.
	ListForTarget(ctx context.Context, targetCustomerID string) ([]models.DataRequest, error)
}

// Services aggregates the service layer for handler wiring.
type Services struct {
	Identity     IdentityService
	DataRequests DataRequestService
	Limiter      *RateLimiter
	Blobs        *store.BlobStore
	Migrations   *store.Migrator
}

// NewServices wires the default implementations over one entity store.
func NewServices(entities *store.EntityStore, sender EmailSender, appCfg config.App, log *logger.Logger) *Services {
	limiter := NewRateLimiter(entities.KV(), nil)
	return &Services{
		Identity:     NewIdentityService(entities, sender, limiter, appCfg, log),
		DataRequests: NewDataRequestService(entities, log),
		Limiter:      limiter,
		Blobs:        store.NewBlobStore(entities.KV()),
		Migrations:   store.NewMigrator(entities, log),
	}
}

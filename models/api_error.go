// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package models

// Error kinds used across the core. Every error surfaced over HTTP carries
// one of these in the response body.
const (
	KindValidation         = "ValidationError"
	KindUnauthorized       = "Unauthorized"
	KindForbidden          = "Forbidden"
	KindNotFound           = "NotFound"
	KindConflict           = "Conflict"
	KindRateLimited        = "RateLimited"
	KindDecryptionFailed   = "DecryptionFailed"
	KindIntegrityFailed    = "IntegrityFailed"
	KindUpstream           = "UpstreamUnavailable"
	KindEmailDelivery      = "EmailDeliveryFailed"
	KindCrypto             = "CryptoError"
	KindTimeout            = "Timeout"
	KindSuperAdminRequired = "SuperAdminRequired"
	KindInternal           = "InternalError"
)

// APIError is the JSON error body written by the outermost handler layer.
type APIError struct {
	Kind    string `json:"error"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`

	// RetryAfter is set for RateLimited responses, in seconds.
	RetryAfter int `json:"retryAfter,omitempty"`

	Retryable bool `json:"retryable,omitempty"`
}

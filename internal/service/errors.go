// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package service

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors returned by the identity and data-request services.
// Handlers match against them with [errors.Is] and map them to HTTP
// statuses in one place.
var (
	// ErrInvalidEmail indicates an address that fails the RFC-5322-lite
	// shape check.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrOTPNotFoundOrExpired indicates a verify against a missing,
	// consumed or expired OTP record.
	ErrOTPNotFoundOrExpired = errors.New("otp not found or expired")

	// ErrOTPInvalid indicates a code mismatch. Use [OTPInvalidError] to
	// carry the remaining attempt count.
	ErrOTPInvalid = errors.New("otp invalid")

	// ErrOTPAttemptsExhausted indicates the five-attempt budget is spent;
	// the record is deleted and a fresh request-otp is required.
	ErrOTPAttemptsExhausted = errors.New("otp attempts exhausted")

	// ErrEmailDeliveryFailed indicates the email vendor returned a
	// non-2xx status. Vendor detail is deliberately not carried.
	ErrEmailDeliveryFailed = errors.New("email delivery failed")

	// ErrTokenIsExpiredOrInvalid normalises every JWT validation failure
	// (expired, blacklisted, unknown session, malformed) so callers never
	// learn which check failed.
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	// ErrRateLimited is the base error matched by [RateLimitedError].
	ErrRateLimited = errors.New("rate limited")

	// ErrSuperAdminRequired indicates an /admin operation attempted
	// without super-admin rights.
	ErrSuperAdminRequired = errors.New("super admin required")

	// ErrDataRequestNotFound indicates an unknown or expired data request.
	ErrDataRequestNotFound = errors.New("data request not found")

	// ErrDataRequestNotPending indicates an approve/reject against a
	// request that already left the pending state.
	ErrDataRequestNotPending = errors.New("data request is not pending")

	// ErrNotRequestTarget indicates an approve/reject by anyone other
	// than the target customer.
	ErrNotRequestTarget = errors.New("only the target customer may decide this request")

	// ErrNotRequestOwner indicates a fetch of an approved grant by anyone
	// other than the requester.
	ErrNotRequestOwner = errors.New("only the requester may collect this grant")
)

// RateLimitedError carries the wait hint for a 429 response. It matches
// [ErrRateLimited] under errors.Is.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// OTPInvalidError carries the remaining attempt count for a 400 response.
// It matches [ErrOTPInvalid] under errors.Is.
type OTPInvalidError struct {
	Remaining int
}

func (e *OTPInvalidError) Error() string {
	return fmt.Sprintf("otp invalid, %d attempts remaining", e.Remaining)
}

func (e *OTPInvalidError) Is(target error) bool {
	return target == ErrOTPInvalid
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/strixun/edge-core/internal/crypto"
	"github.com/strixun/edge-core/internal/integrity"
	"github.com/strixun/edge-core/internal/logger"
	"github.com/strixun/edge-core/internal/service"
	"github.com/strixun/edge-core/internal/store"
	"github.com/strixun/edge-core/internal/utils"
	"github.com/strixun/edge-core/models"
)

// writeError is the single place service and store errors become HTTP
// statuses. Handlers bubble errors up untranslated.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := mapError(err)
	if status >= http.StatusInternalServerError {
		logger.FromRequest(r).Err(err).Msg("request failed")
	}
	utils.WriteAPIError(w, apiErr, status)
}

func mapError(err error) (int, models.APIError) {
	var rateLimited *service.RateLimitedError
	if errors.As(err, &rateLimited) {
		retryAfter := int(rateLimited.RetryAfter.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		return http.StatusTooManyRequests, models.APIError{
			Kind:       models.KindRateLimited,
			Message:    "too many requests",
			RetryAfter: retryAfter,
			Retryable:  true,
		}
	}

	var otpInvalid *service.OTPInvalidError
	if errors.As(err, &otpInvalid) {
		return http.StatusBadRequest, models.APIError{
			Kind:    models.KindValidation,
			Message: "invalid code",
			Detail:  strconv.Itoa(otpInvalid.Remaining) + " attempts remaining",
		}
	}

	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest, models.APIError{Kind: models.KindValidation, Message: "invalid email address"}

	case errors.Is(err, service.ErrOTPNotFoundOrExpired):
		return http.StatusBadRequest, models.APIError{Kind: models.KindValidation, Message: "code not found or expired, request a new one"}

	case errors.Is(err, service.ErrOTPAttemptsExhausted):
		return http.StatusTooManyRequests, models.APIError{Kind: models.KindRateLimited, Message: "attempts exhausted, request a new code"}

	case errors.Is(err, service.ErrEmailDeliveryFailed):
		return http.StatusBadGateway, models.APIError{Kind: models.KindEmailDelivery, Message: "could not deliver the code", Retryable: true}

	case errors.Is(err, service.ErrTokenIsExpiredOrInvalid):
		return http.StatusUnauthorized, models.APIError{Kind: models.KindUnauthorized, Message: "token is expired or invalid"}

	case errors.Is(err, service.ErrSuperAdminRequired):
		return http.StatusForbidden, models.APIError{Kind: models.KindSuperAdminRequired, Message: "super admin rights required"}

	case errors.Is(err, service.ErrNotRequestTarget),
		errors.Is(err, service.ErrNotRequestOwner),
		errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden, models.APIError{Kind: models.KindForbidden, Message: "access denied"}

	case errors.Is(err, service.ErrDataRequestNotPending):
		return http.StatusConflict, models.APIError{Kind: models.KindConflict, Message: "request already decided or expired"}

	case errors.Is(err, service.ErrDataRequestNotFound),
		errors.Is(err, store.ErrEntityNotFound):
		return http.StatusNotFound, models.APIError{Kind: models.KindNotFound, Message: "not found"}

	case errors.Is(err, crypto.ErrUnsupportedEnvelopeVersion):
		return http.StatusBadRequest, models.APIError{Kind: models.KindDecryptionFailed, Message: "unsupported envelope version"}

	case errors.Is(err, crypto.ErrDecryptionFailed):
		return http.StatusBadRequest, models.APIError{Kind: models.KindDecryptionFailed, Message: "decryption failed"}

	case errors.Is(err, store.ErrUnknownFormat),
		errors.Is(err, store.ErrMalformedKey):
		return http.StatusBadRequest, models.APIError{Kind: models.KindValidation, Message: "malformed payload"}

	// A tampered or replayed service request is refused without running
	// the handler; the mesh treats it as a fault, not an auth problem.
	case errors.Is(err, integrity.ErrStaleTimestamp),
		errors.Is(err, integrity.ErrBadSignature):
		return http.StatusInternalServerError, models.APIError{Kind: models.KindIntegrityFailed, Message: "request integrity verification failed"}

	// An expected upstream signature that never arrived surfaces as a bad
	// gateway on the inbound side.
	case errors.Is(err, integrity.ErrMissingSignature):
		return http.StatusBadGateway, models.APIError{Kind: models.KindIntegrityFailed, Message: "response integrity verification failed"}
	}

	return http.StatusInternalServerError, models.APIError{Kind: models.KindInternal, Message: "internal error"}
}

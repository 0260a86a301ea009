// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"net/http"
	"time"

	"github.com/strixun/edge-core/internal/service"
	"github.com/strixun/edge-core/internal/utils"
	"github.com/strixun/edge-core/models"
)

type requestOTPBody struct {
	Email string `json:"email"`
}

type verifyOTPBody struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// RequestOTP handles POST /auth/request-otp.
func (h *Handler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var body requestOTPBody
	if err := readJSONBody(r, &body); err != nil {
		h.writeError(w, r, service.ErrInvalidEmail)
		return
	}

	resp, err := h.services.Identity.RequestOTP(r.Context(), body.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_, _ = utils.WriteJSON(w, resp, http.StatusOK)
}

// VerifyOTP handles POST /auth/verify-otp. A successful login also sets
// the SSO cookie on the apex domain.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var body verifyOTPBody
	if err := readJSONBody(r, &body); err != nil {
		h.writeError(w, r, service.ErrInvalidEmail)
		return
	}

	result, err := h.services.Identity.VerifyOTP(r.Context(), body.Email, body.OTP)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.setAuthCookie(w, result.Token.SignedString, result.Session.ExpiresAt)
	_, _ = utils.WriteJSON(w, models.VerifyOTPResponse{
		Token:       result.Token.SignedString,
		CustomerID:  result.Customer.CustomerID,
		Email:       result.Customer.Email,
		DisplayName: result.Customer.DisplayName,
		ExpiresAt:   result.Session.ExpiresAt.Format(time.RFC3339),
	}, http.StatusOK)
}

// Refresh handles POST /auth/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := requestToken(r)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	result, err := h.services.Identity.Refresh(r.Context(), token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.setAuthCookie(w, result.Token.SignedString, result.Session.ExpiresAt)
	_, _ = utils.WriteJSON(w, models.RefreshResponse{
		Token:     result.Token.SignedString,
		ExpiresAt: result.Session.ExpiresAt.Format(time.RFC3339),
	}, http.StatusOK)
}

// Logout handles POST /auth/logout. Idempotent; always clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := requestToken(r)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	if err := h.services.Identity.Logout(r.Context(), token); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.clearAuthCookie(w)
	_, _ = utils.WriteJSON(w, models.LogoutResponse{Success: true}, http.StatusOK)
}

// Me handles GET /auth/me. The body is sealed to the caller's token by the
// response post-processor.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	customerID, ok := utils.GetCustomerIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	customer, err := h.services.Identity.Me(r.Context(), customerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_, _ = utils.WriteJSON(w, customer, http.StatusOK)
}

func (h *Handler) setAuthCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Domain:   h.cfg.App.CookieDomain,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Domain:   h.cfg.App.CookieDomain,
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/strixun/edge-core/internal/integrity"
	"github.com/strixun/edge-core/internal/service"
	"github.com/strixun/edge-core/internal/utils"
	"github.com/strixun/edge-core/models"
)

// authCookieName is the SSO cookie carrying the JWT across subdomains.
const authCookieName = "auth_token"

// Authenticate admits either a customer JWT (Authorization header or SSO
// cookie) or a cooperating service presenting the configured service key.
// The decoded token, customer ID and auth type land in the context, and
// the token is announced to the sealing post-processor upstream, which
// keys the response envelope off it.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.isServiceKey(r.Header.Get(integrity.HeaderServiceKey)) {
			ctx := context.WithValue(r.Context(), utils.AuthTypeCtxKey, utils.AuthTypeService)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		tokenString, ok := bearerOrCookie(r)
		if !ok {
			h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
			return
		}

		token, err := h.services.Identity.ParseToken(r.Context(), tokenString)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		announceToken(r.Context(), token)

		ctx := context.WithValue(r.Context(), utils.TokenCtxKey, token)
		ctx = context.WithValue(ctx, utils.CustomerIDCtxKey, token.CustomerID())
		ctx = context.WithValue(ctx, utils.AuthTypeCtxKey, utils.AuthTypeUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSuperAdmin gates the /admin surface: a service key counts, a
// customer JWT needs the isSuperAdmin claim.
func (h *Handler) RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if at, ok := utils.GetAuthTypeFromContext(r.Context()); ok && at == utils.AuthTypeService {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := utils.GetTokenFromContext(r.Context())
		if !ok || !token.Claims.IsSuperAdmin {
			h.writeError(w, r, service.ErrSuperAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) isServiceKey(presented string) bool {
	configured := h.cfg.App.ServiceAPIKey
	if configured == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(configured)) == 1
}

// bearerOrCookie resolves the JWT: Authorization header first, SSO cookie
// as fallback.
func bearerOrCookie(r *http.Request) (string, bool) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, err := utils.ParseBearerToken(auth); err == nil && utils.LooksLikeJWT(token) {
			return token, true
		}
	}
	if cookie, err := r.Cookie(authCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

// requestToken returns the decoded token of an authenticated user request.
func requestToken(r *http.Request) (*models.Token, bool) {
	return utils.GetTokenFromContext(r.Context())
}

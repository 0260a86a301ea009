// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/strixun/edge-core/internal/utils"
	"github.com/strixun/edge-core/models"
)

// HeaderCSRF is the double-submit header checked on state-changing verbs.
const HeaderCSRF = "X-CSRF-Token"

// RequireCSRF enforces the double-submit check for authenticated customers:
// on POST/PUT/PATCH/DELETE the X-CSRF-Token header must equal the csrf
// claim of the JWT. Service calls and safe verbs pass through.
func (h *Handler) RequireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		if at, ok := utils.GetAuthTypeFromContext(r.Context()); ok && at == utils.AuthTypeService {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := utils.GetTokenFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		presented := r.Header.Get(HeaderCSRF)
		if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token.Claims.CSRF)) != 1 {
			utils.WriteAPIError(w, models.APIError{
				Kind:    models.KindForbidden,
				Message: "csrf token missing or invalid",
			}, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/strixun/edge-core/internal/crypto"
	"github.com/strixun/edge-core/internal/integrity"
	"github.com/strixun/edge-core/internal/utils"
)

// RateLimit applies one sliding-window bucket to the wrapped routes. The
// subject is resolved in order: hashed service key, authenticated customer
// ID, connecting IP, "unknown". OTP endpoints do not use this middleware;
// their own otp-request bucket is applied inside the identity service.
func (h *Handler) RateLimit(bucket string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := h.services.Limiter.Allow(r.Context(), bucket, rateLimitSubject(r)); err != nil {
				h.writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitSubject(r *http.Request) string {
	if key := r.Header.Get(integrity.HeaderServiceKey); key != "" {
		return hex.EncodeToString(crypto.SHA256Sum([]byte(key)))
	}
	if id, ok := utils.GetCustomerIDFromContext(r.Context()); ok && id != "" {
		return id
	}
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if host := r.RemoteAddr; host != "" {
		if i := strings.LastIndex(host, ":"); i > 0 {
			return host[:i]
		}
		return host
	}
	return "unknown"
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"net/http"
	"strings"

	"github.com/strixun/edge-core/internal/config"
	"github.com/strixun/edge-core/internal/integrity"
)

// CORS applies the ALLOWED_ORIGINS allow-list. A wildcard entry is only
// honoured in development and test; production always requires an explicit
// origin match. Allowed origins are echoed back verbatim (never a literal
// "*") because credentials are in play.
func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && h.originAllowed(origin) {
			header := w.Header()
			header.Set("Access-Control-Allow-Origin", origin)
			header.Add("Vary", "Origin")
			header.Set("Access-Control-Allow-Credentials", "true")
			header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			header.Set("Access-Control-Allow-Headers", strings.Join([]string{
				"Authorization",
				"Content-Type",
				"X-CSRF-Token",
				integrity.HeaderServiceKey,
				integrity.HeaderServiceRequest,
				integrity.HeaderCustomerID,
				integrity.HeaderRequestIntegrity,
				integrity.HeaderRequestTimestamp,
				HeaderTraceID,
			}, ", "))
			header.Set("Access-Control-Expose-Headers", strings.Join([]string{
				HeaderEncrypted,
				HeaderTraceID,
				integrity.HeaderResponseIntegrity,
				"Retry-After",
			}, ", "))
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) originAllowed(origin string) bool {
	wildcardOK := false
	switch h.cfg.App.Environment {
	case config.EnvDevelopment, config.EnvTest, config.EnvDev:
		wildcardOK = true
	}

	for _, allowed := range h.cfg.App.AllowedOrigins {
		allowed = strings.TrimSpace(allowed)
		if allowed == origin {
			return true
		}
		if allowed == "*" && wildcardOK {
			return true
		}
	}
	return false
}

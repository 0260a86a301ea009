// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/strixun/edge-core/internal/config"
	"github.com/strixun/edge-core/internal/integrity"
	"github.com/strixun/edge-core/internal/logger"
)

func corsHandler(environment string, origins []string) *Handler {
	return NewHandler(nil, integrity.NewSigner(testKeyphrase), &config.StructuredConfig{
		App: config.App{Environment: environment, AllowedOrigins: origins},
	}, logger.Nop())
}

func corsResponse(h *Handler, method, origin string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, "/auth/me", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	h.CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, r)
	return rec
}

func TestCORS_AllowedOriginEchoedBack(t *testing.T) {
	h := corsHandler(config.EnvProduction, []string{"https://app.example.com"})

	rec := corsResponse(h, http.MethodGet, "https://app.example.com")
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-CSRF-Token")
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), HeaderEncrypted)
}

func TestCORS_UnknownOriginGetsNoHeaders(t *testing.T) {
	h := corsHandler(config.EnvProduction, []string{"https://app.example.com"})

	rec := corsResponse(h, http.MethodGet, "https://evil.example.com")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_WildcardOnlyInLocalDev(t *testing.T) {
	dev := corsHandler(config.EnvDevelopment, []string{"*"})
	rec := corsResponse(dev, http.MethodGet, "https://anything.example.com")
	assert.Equal(t, "https://anything.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	prod := corsHandler(config.EnvProduction, []string{"*"})
	rec = corsResponse(prod, http.MethodGet, "https://anything.example.com")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	h := corsHandler(config.EnvProduction, []string{"https://app.example.com"})

	rec := corsResponse(h, http.MethodOptions, "https://app.example.com")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/strixun/edge-core/internal/config"
	"github.com/strixun/edge-core/internal/integrity"
	"github.com/strixun/edge-core/internal/logger"
	"github.com/strixun/edge-core/internal/utils"
)

func csrfHandler() *Handler {
	return NewHandler(nil, integrity.NewSigner(testKeyphrase), &config.StructuredConfig{}, logger.Nop())
}

func csrfRequest(t *testing.T, method, presented string, withToken bool) *http.Request {
	t.Helper()
	r := httptest.NewRequest(method, "/auth/logout", nil)
	if presented != "" {
		r.Header.Set(HeaderCSRF, presented)
	}
	if withToken {
		token := contextToken(t)
		r = r.WithContext(context.WithValue(r.Context(), utils.TokenCtxKey, token))
	}
	return r
}

func TestRequireCSRF(t *testing.T) {
	h := csrfHandler()
	passed := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { passed = true })

	tests := []struct {
		name      string
		request   func(t *testing.T) *http.Request
		wantPass  bool
		wantCode  int
	}{
		{
			name:     "GET passes without a header",
			request:  func(t *testing.T) *http.Request { return csrfRequest(t, http.MethodGet, "", true) },
			wantPass: true,
			wantCode: http.StatusOK,
		},
		{
			name:     "POST with matching header passes",
			request:  func(t *testing.T) *http.Request { return csrfRequest(t, http.MethodPost, "csrf-value", true) },
			wantPass: true,
			wantCode: http.StatusOK,
		},
		{
			name:     "POST without header is refused",
			request:  func(t *testing.T) *http.Request { return csrfRequest(t, http.MethodPost, "", true) },
			wantPass: false,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "POST with wrong header is refused",
			request:  func(t *testing.T) *http.Request { return csrfRequest(t, http.MethodPost, "stolen", true) },
			wantPass: false,
			wantCode: http.StatusForbidden,
		},
		{
			name: "service calls skip the check",
			request: func(t *testing.T) *http.Request {
				r := csrfRequest(t, http.MethodPost, "", false)
				return r.WithContext(context.WithValue(r.Context(), utils.AuthTypeCtxKey, utils.AuthTypeService))
			},
			wantPass: true,
			wantCode: http.StatusOK,
		},
		{
			name:     "anonymous POST passes through to auth",
			request:  func(t *testing.T) *http.Request { return csrfRequest(t, http.MethodPost, "", false) },
			wantPass: true,
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			passed = false
			rec := httptest.NewRecorder()
			h.RequireCSRF(next).ServeHTTP(rec, tt.request(t))
			assert.Equal(t, tt.wantPass, passed)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

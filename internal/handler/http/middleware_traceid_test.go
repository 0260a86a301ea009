// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strixun/edge-core/internal/config"
	"github.com/strixun/edge-core/internal/integrity"
	"github.com/strixun/edge-core/internal/logger"
)

func traceHandler() *Handler {
	return NewHandler(nil, integrity.NewSigner(testKeyphrase), &config.StructuredConfig{}, logger.Nop())
}

func TestTraceID_GeneratesWhenAbsent(t *testing.T) {
	h := traceHandler()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	h.TraceID(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	traceID := rec.Header().Get(HeaderTraceID)
	require.NotEmpty(t, traceID)
	_, err := uuid.Parse(traceID)
	assert.NoError(t, err)
}

func TestTraceID_ReusesInboundID(t *testing.T) {
	h := traceHandler()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.Header.Set(HeaderTraceID, "trace-from-upstream")

	rec := httptest.NewRecorder()
	h.TraceID(next).ServeHTTP(rec, r)

	assert.Equal(t, "trace-from-upstream", rec.Header().Get(HeaderTraceID))
}

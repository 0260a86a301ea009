// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"net/http"

	"github.com/google/uuid"
)

// HeaderTraceID carries the request correlation ID across the fleet.
const HeaderTraceID = "X-Trace-ID"

// TraceID attaches a correlation ID to the request-scoped logger and
// echoes it back on the response. An inbound ID is reused so a call chain
// shares one trace.
func (h *Handler) TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set(HeaderTraceID, traceID)

		reqLogger := h.logger.With().Str("traceId", traceID).Logger()
		next.ServeHTTP(w, r.WithContext(reqLogger.WithContext(r.Context())))
	})
}

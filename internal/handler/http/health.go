// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"net/http"

	"github.com/strixun/edge-core/internal/utils"
	"github.com/strixun/edge-core/models"
)

// Health handles GET /health for authenticated customers and services.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	_, _ = utils.WriteJSON(w, models.HealthResponse{
		Status:  "ok",
		Service: h.cfg.App.ServiceName,
	}, http.StatusOK)
}

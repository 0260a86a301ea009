// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

// Package http wires the trust-plane HTTP surface: the auth endpoints, the
// admin and data-request flows, the blob pipeline and the health probe,
// plus the middleware chain (trace IDs, logging, CORS, CSRF, rate limits,
// auth, inbound integrity verification and the sealing post-processor that
// encrypts user responses and signs service responses).
package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/strixun/edge-core/internal/config"
	"github.com/strixun/edge-core/internal/integrity"
	"github.com/strixun/edge-core/internal/logger"
	"github.com/strixun/edge-core/internal/service"
)

// maxBodyBytes caps inbound request bodies. Blob uploads carry encrypted
// envelopes, everything else is small JSON.
const maxBodyBytes = 25 << 20

// Handler carries the dependencies of every route and middleware.
type Handler struct {
	services *service.Services
	signer   *integrity.Signer
	cfg      *config.StructuredConfig
	logger   *logger.Logger
}

// NewHandler constructs the HTTP handler layer.
func NewHandler(services *service.Services, signer *integrity.Signer, cfg *config.StructuredConfig, log *logger.Logger) *Handler {
	return &Handler{
		services: services,
		signer:   signer,
		cfg:      cfg,
		logger:   log,
	}
}

// readJSONBody decodes the request body into target, rejecting unknown
// payload shapes with a plain error the caller maps to 400.
func readJSONBody(r *http.Request, target any) error {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("empty request body")
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

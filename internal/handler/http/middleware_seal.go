// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/strixun/edge-core/internal/crypto"
	"github.com/strixun/edge-core/internal/integrity"
	"github.com/strixun/edge-core/internal/logger"
	"github.com/strixun/edge-core/internal/utils"
	"github.com/strixun/edge-core/models"
)

// HeaderEncrypted marks a response body as a token-bound envelope.
const HeaderEncrypted = "X-Encrypted"

type sealTokenCtxKey struct{}

// tokenCarrier hands the decoded token back to the sealing post-processor.
// Seal runs upstream of Authenticate, and the context fork that carries the
// token only travels downstream; the carrier is planted before the fork so
// the announcement crosses it.
type tokenCarrier struct {
	mu    sync.Mutex
	token *models.Token
}

func (c *tokenCarrier) set(token *models.Token) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *tokenCarrier) get() (*models.Token, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.token != nil
}

// announceToken fills the carrier planted by Seal, when one is present.
func announceToken(ctx context.Context, token *models.Token) {
	if carrier, ok := ctx.Value(sealTokenCtxKey{}).(*tokenCarrier); ok {
		carrier.set(token)
	}
}

// responseToken resolves the token the envelope is keyed to: the one the
// auth middleware announced while this request was in flight, or one
// already present on the request context.
func responseToken(r *http.Request) (*models.Token, bool) {
	if carrier, ok := r.Context().Value(sealTokenCtxKey{}).(*tokenCarrier); ok {
		if token, ok := carrier.get(); ok {
			return token, true
		}
	}
	return utils.GetTokenFromContext(r.Context())
}

// sealRecorder buffers the downstream response so the post-processor can
// filter, encrypt or sign the complete body before anything reaches the
// wire. Partial encrypted bodies are never flushed.
type sealRecorder struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newSealRecorder() *sealRecorder {
	return &sealRecorder{header: make(http.Header), status: http.StatusOK}
}

func (rec *sealRecorder) Header() http.Header { return rec.header }

func (rec *sealRecorder) WriteHeader(status int) { rec.status = status }

func (rec *sealRecorder) Write(p []byte) (int, error) { return rec.buf.Write(p) }

// Seal is the response post-processor. User-facing JSON responses are
// field-filtered and encrypted into a token-bound envelope; recognised
// service responses (and successful image bodies) are HMAC-signed instead.
// A service response the server cannot sign is aborted with a 500 rather
// than sent unsigned.
func (h *Handler) Seal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Recognition must happen before the handler runs: the request
		// headers are the contract, not whatever the handler did.
		isService := integrity.IsServiceRequest(r)

		carrier := &tokenCarrier{}
		r = r.WithContext(context.WithValue(r.Context(), sealTokenCtxKey{}, carrier))

		rec := newSealRecorder()
		next.ServeHTTP(rec, r)

		body := rec.buf.Bytes()
		contentType := rec.header.Get("Content-Type")

		switch {
		case isService:
			if h.signer == nil {
				logger.FromRequest(r).Error().Msg("service response with no signer configured")
				http.Error(w, "cannot sign response", http.StatusInternalServerError)
				return
			}
			rec.header.Set(integrity.HeaderResponseIntegrity, h.signer.SignResponse(rec.status, body))

		case integrity.IsImageResponse(rec.status, contentType) && h.signer != nil:
			rec.header.Set(integrity.HeaderResponseIntegrity, h.signer.SignResponse(rec.status, body))

		default:
			sealed, ok, err := h.encryptUserBody(r, rec.status, contentType, body)
			if err != nil {
				// Nothing encrypted has touched the wire; abort opaquely
				// instead of flushing the plaintext.
				logger.FromRequest(r).Err(err).Msg("response encryption failed")
				http.Error(w, "cannot encrypt response", http.StatusInternalServerError)
				return
			}
			if ok {
				body = sealed
				rec.header.Set(HeaderEncrypted, "true")
				rec.header.Set("Content-Type", "application/octet-stream")
			}
		}

		headers := w.Header()
		for name, values := range rec.header {
			headers[name] = values
		}
		headers.Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(rec.status)
		_, _ = w.Write(body)
	})
}

// encryptUserBody seals a successful JSON response to the caller's token.
// Responses without a context token (the login endpoints) and non-JSON
// bodies pass through in the clear.
func (h *Handler) encryptUserBody(r *http.Request, status int, contentType string, body []byte) ([]byte, bool, error) {
	if status < 200 || status >= 300 || len(body) == 0 {
		return nil, false, nil
	}
	if !strings.HasPrefix(contentType, "application/json") {
		return nil, false, nil
	}
	token, ok := responseToken(r)
	if !ok {
		return nil, false, nil
	}

	filtered := parseResponseFilter(r.URL.Query()).apply(body)

	sealed, err := crypto.EncryptEnvelope(token.SignedString, filtered)
	if err != nil {
		return nil, false, err
	}
	return sealed, true, nil
}

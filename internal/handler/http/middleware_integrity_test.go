// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strixun/edge-core/internal/config"
	"github.com/strixun/edge-core/internal/integrity"
	"github.com/strixun/edge-core/internal/logger"
)

func integrityHandler() *Handler {
	return NewHandler(nil, integrity.NewSigner(testKeyphrase), &config.StructuredConfig{}, logger.Nop())
}

func signedRequest(keyphrase, method, target string, body []byte, customerID string) *http.Request {
	signer := integrity.NewSigner(keyphrase)
	r := httptest.NewRequest(method, target, bytes.NewReader(body))

	ts := integrity.Timestamp(time.Now())
	pathWithQuery := r.URL.Path
	if r.URL.RawQuery != "" {
		pathWithQuery += "?" + r.URL.RawQuery
	}
	r.Header.Set(integrity.HeaderRequestTimestamp, ts)
	r.Header.Set(integrity.HeaderRequestIntegrity, signer.SignRequest(method, pathWithQuery, body, ts, customerID))
	if customerID != "" {
		r.Header.Set(integrity.HeaderCustomerID, customerID)
	}
	return r
}

func TestVerifyRequestIntegrity_ValidSignaturePasses(t *testing.T) {
	h := integrityHandler()

	var seenBody []byte
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenBody, _ = io.ReadAll(r.Body)
	})

	body := []byte(`{"entity":"thing_1"}`)
	rec := httptest.NewRecorder()
	h.VerifyRequestIntegrity(next).ServeHTTP(rec, signedRequest(testKeyphrase, http.MethodPost, "/internal/check?x=1", body, "cust_1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, seenBody, "the body is rewound for the handler after verification")
}

func TestVerifyRequestIntegrity_WrongKeyphraseRejected(t *testing.T) {
	h := integrityHandler()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run on a bad signature")
	})

	rec := httptest.NewRecorder()
	h.VerifyRequestIntegrity(next).ServeHTTP(rec, signedRequest("other-keyphrase", http.MethodPost, "/internal/check", []byte(`{}`), ""))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestVerifyRequestIntegrity_TamperedBodyRejected(t *testing.T) {
	h := integrityHandler()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run on a bad signature")
	})

	r := signedRequest(testKeyphrase, http.MethodPost, "/internal/check", []byte(`{"a":1}`), "")
	r.Body = io.NopCloser(bytes.NewReader([]byte(`{"a":2}`)))

	rec := httptest.NewRecorder()
	h.VerifyRequestIntegrity(next).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestVerifyRequestIntegrity_StaleTimestampRejected(t *testing.T) {
	h := integrityHandler()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run on a stale timestamp")
	})

	signer := integrity.NewSigner(testKeyphrase)
	body := []byte(`{}`)
	ts := integrity.Timestamp(time.Now().Add(-integrity.MaxClockSkew - time.Minute))

	r := httptest.NewRequest(http.MethodPost, "/internal/check", bytes.NewReader(body))
	r.Header.Set(integrity.HeaderRequestTimestamp, ts)
	r.Header.Set(integrity.HeaderRequestIntegrity, signer.SignRequest(http.MethodPost, "/internal/check", body, ts, ""))

	rec := httptest.NewRecorder()
	h.VerifyRequestIntegrity(next).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestVerifyRequestIntegrity_UnsignedRequestPassesThrough(t *testing.T) {
	h := integrityHandler()
	passed := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { passed = true })

	rec := httptest.NewRecorder()
	h.VerifyRequestIntegrity(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

	require.True(t, passed)
	assert.Equal(t, http.StatusOK, rec.Code)
}

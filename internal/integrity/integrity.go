// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

// Package integrity implements HMAC signing of service-to-service requests
// and responses. It is inert for user-facing calls carrying JWTs; those
// are protected by the token-bound response envelope instead.
//
// Every cooperating service shares one keyphrase; a request or response
// whose signature does not verify under it is treated as tampered.
package integrity

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/strixun/edge-core/internal/crypto"
	"github.com/strixun/edge-core/internal/utils"
)

// Wire headers of the integrity protocol.
const (
	HeaderRequestIntegrity  = "X-Strixun-Request-Integrity"
	HeaderRequestTimestamp  = "X-Strixun-Request-Timestamp"
	HeaderResponseIntegrity = "X-Strixun-Response-Integrity"
	HeaderCustomerID        = "X-Customer-ID"
	HeaderServiceRequest    = "X-Service-Request"
	HeaderServiceKey        = "X-Service-Key"
)

// noCustomer is the placeholder signed when no customer binding exists.
// Binding the customer ID into the signature base prevents cross-customer
// replay of otherwise identical requests.
const noCustomer = "∅"

// MaxClockSkew is how far a request timestamp may drift from the
// verifier's clock in either direction.
const MaxClockSkew = 5 * time.Minute

// Signer signs and verifies messages under the mesh keyphrase.
type Signer struct {
	keyphrase []byte
}

// NewSigner constructs a Signer. An empty keyphrase is rejected at config
// validation, not here.
func NewSigner(keyphrase string) *Signer {
	return &Signer{keyphrase: []byte(keyphrase)}
}

// SignRequest computes the request signature over
//
//	method \n path-with-query \n body \n timestamp \n customerID-or-∅
//
// and returns it base64url-encoded.
func (s *Signer) SignRequest(method, pathWithQuery string, body []byte, timestamp, customerID string) string {
	return crypto.B64URLEncode(crypto.HMACSHA256(s.keyphrase, requestBase(method, pathWithQuery, body, timestamp, customerID)))
}

// VerifyRequest checks the signature and the timestamp drift of an inbound
// service request. Returns ErrStaleTimestamp when the timestamp is outside
// ±[MaxClockSkew], ErrBadSignature when the HMAC does not match.
func (s *Signer) VerifyRequest(method, pathWithQuery string, body []byte, timestamp, customerID, signature string, now time.Time) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp %q", ErrBadSignature, timestamp)
	}

	drift := now.Sub(time.Unix(ts, 0))
	if drift < -MaxClockSkew || drift > MaxClockSkew {
		return ErrStaleTimestamp
	}

	sig, err := crypto.B64URLDecode(signature)
	if err != nil {
		return ErrBadSignature
	}

	expected := crypto.HMACSHA256(s.keyphrase, requestBase(method, pathWithQuery, body, timestamp, customerID))
	if !crypto.CTEqual(sig, expected) {
		return ErrBadSignature
	}
	return nil
}

// SignResponse computes the response signature over "status \n body" and
// returns it base64url-encoded.
func (s *Signer) SignResponse(status int, body []byte) string {
	return crypto.B64URLEncode(crypto.HMACSHA256(s.keyphrase, responseBase(status, body)))
}

// VerifyResponse checks a response signature. Returns ErrMissingSignature
// for an empty signature and ErrBadSignature on mismatch.
func (s *Signer) VerifyResponse(status int, body []byte, signature string) error {
	if signature == "" {
		return ErrMissingSignature
	}

	sig, err := crypto.B64URLDecode(signature)
	if err != nil {
		return ErrBadSignature
	}

	expected := crypto.HMACSHA256(s.keyphrase, responseBase(status, body))
	if !crypto.CTEqual(sig, expected) {
		return ErrBadSignature
	}
	return nil
}

func requestBase(method, pathWithQuery string, body []byte, timestamp, customerID string) []byte {
	if customerID == "" {
		customerID = noCustomer
	}

	var b strings.Builder
	b.Grow(len(method) + len(pathWithQuery) + len(body) + len(timestamp) + len(customerID) + 4)
	b.WriteString(method)
	b.WriteByte('\n')
	b.WriteString(pathWithQuery)
	b.WriteByte('\n')
	b.Write(body)
	b.WriteByte('\n')
	b.WriteString(timestamp)
	b.WriteByte('\n')
	b.WriteString(customerID)
	return []byte(b.String())
}

func responseBase(status int, body []byte) []byte {
	base := make([]byte, 0, len(body)+4)
	base = append(base, []byte(strconv.Itoa(status))...)
	base = append(base, '\n')
	base = append(base, body...)
	return base
}

// IsServiceRequest recognises a machine-originated call: any integrity
// header, the explicit service markers, or a non-JWT bearer token.
func IsServiceRequest(r *http.Request) bool {
	if r.Header.Get(HeaderRequestIntegrity) != "" {
		return true
	}
	if r.Header.Get(HeaderServiceRequest) == "true" {
		return true
	}
	if r.Header.Get(HeaderServiceKey) != "" {
		return true
	}

	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, err := utils.ParseBearerToken(auth); err == nil && !utils.LooksLikeJWT(token) {
			return true
		}
	}

	if at, ok := utils.GetAuthTypeFromContext(r.Context()); ok && at == utils.AuthTypeService {
		return true
	}

	return false
}

// ResolveCustomerID resolves the customer binding for the request
// signature, in order: the explicit value, the X-Customer-ID header, the
// customerId claim of a bearer JWT, else empty.
func ResolveCustomerID(explicit string, header http.Header) string {
	if explicit != "" {
		return explicit
	}
	if id := header.Get(HeaderCustomerID); id != "" {
		return id
	}
	if auth := header.Get("Authorization"); auth != "" {
		if token, err := utils.ParseBearerToken(auth); err == nil && utils.LooksLikeJWT(token) {
			if id, err := utils.ParseCustomerIDFromJWT(token); err == nil {
				return id
			}
		}
	}
	return ""
}

// IsImageResponse reports whether a successful response carries opaque
// image bytes that should be signed even on user-facing calls.
func IsImageResponse(status int, contentType string) bool {
	return status == http.StatusOK && strings.HasPrefix(contentType, "image/")
}

// Timestamp formats now as the wire timestamp (unix seconds).
func Timestamp(now time.Time) string {
	return strconv.FormatInt(now.Unix(), 10)
}

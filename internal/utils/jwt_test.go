// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strixun/edge-core/models"
)

const (
	testIssuer  = "strixun-auth"
	testSignKey = "test-sign-key-of-at-least-32-bytes!!"
)

func testSession(now time.Time) models.Session {
	return models.Session{
		JTI:        "jti_test",
		CustomerID: "cust_test",
		IssuedAt:   now,
		ExpiresAt:  now.Add(models.SessionTTL),
		CSRF:       "csrf-token-value",
	}
}

func TestGenerateJWTToken_RoundTrip(t *testing.T) {
	now := time.Now()
	session := testSession(now)

	token, err := GenerateJWTToken(testIssuer, session, "user@example.com", testSignKey)
	require.NoError(t, err)
	require.NotEmpty(t, token.SignedString)

	parsed, err := ValidateAndParseJWTToken(token.SignedString, testSignKey, testIssuer)
	require.NoError(t, err)

	assert.Equal(t, "cust_test", parsed.CustomerID())
	assert.Equal(t, "jti_test", parsed.JTI())
	assert.Equal(t, "user@example.com", parsed.Claims.Email)
	assert.Equal(t, "csrf-token-value", parsed.Claims.CSRF)
	assert.False(t, parsed.Claims.IsSuperAdmin)
}

func TestGenerateJWTToken_RequiredParams(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		issuer  string
		session models.Session
		signKey string
	}{
		{"empty issuer", "", testSession(now), testSignKey},
		{"empty sign key", testIssuer, testSession(now), ""},
		{"empty jti", testIssuer, models.Session{CustomerID: "cust_test"}, testSignKey},
		{"empty customer", testIssuer, models.Session{JTI: "jti_test"}, testSignKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateJWTToken(tt.issuer, tt.session, "user@example.com", tt.signKey)
			assert.Error(t, err)
		})
	}
}

func TestValidateAndParseJWTToken_Rejections(t *testing.T) {
	now := time.Now()
	token, err := GenerateJWTToken(testIssuer, testSession(now), "user@example.com", testSignKey)
	require.NoError(t, err)

	t.Run("wrong sign key", func(t *testing.T) {
		_, err := ValidateAndParseJWTToken(token.SignedString, "another-key-that-is-long-enough!!", testIssuer)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := ValidateAndParseJWTToken(token.SignedString, testSignKey, "someone-else")
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := testSession(now.Add(-2 * models.SessionTTL))
		old, err := GenerateJWTToken(testIssuer, expired, "user@example.com", testSignKey)
		require.NoError(t, err)

		_, err = ValidateAndParseJWTToken(old.SignedString, testSignKey, testIssuer)
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := ValidateAndParseJWTToken("not-a-token", testSignKey, testIssuer)
		assert.Error(t, err)
	})
}

func TestParseBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid bearer", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"missing token", "Bearer ", "", true},
		{"no scheme", "abc.def.ghi", "", true},
		{"empty header", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBearerToken(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCustomerIDFromJWT(t *testing.T) {
	now := time.Now()
	token, err := GenerateJWTToken(testIssuer, testSession(now), "user@example.com", testSignKey)
	require.NoError(t, err)

	id, err := ParseCustomerIDFromJWT(token.SignedString)
	require.NoError(t, err)
	assert.Equal(t, "cust_test", id)

	_, err = ParseCustomerIDFromJWT("not.a.jwt")
	assert.Error(t, err)
}

func TestLooksLikeJWT(t *testing.T) {
	assert.True(t, LooksLikeJWT("aaa.bbb.ccc"))
	assert.False(t, LooksLikeJWT("opaque-service-token"))
	assert.False(t, LooksLikeJWT("aa.bb"))
}

func TestRemainingLifetime(t *testing.T) {
	now := time.Now()
	token, err := GenerateJWTToken(testIssuer, testSession(now), "user@example.com", testSignKey)
	require.NoError(t, err)

	remaining := RemainingLifetime(&token, now)
	assert.InDelta(t, models.SessionTTL.Seconds(), remaining.Seconds(), 1.5)

	assert.Equal(t, time.Duration(0), RemainingLifetime(&token, now.Add(2*models.SessionTTL)))
	assert.Equal(t, time.Duration(0), RemainingLifetime(&models.Token{}, now))
}

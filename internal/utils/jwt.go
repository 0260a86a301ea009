// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/strixun/edge-core/models"
)

// GenerateJWTToken creates a signed HMAC-SHA256 JWT for the given session.
//
// The token carries the standard claims (iss, sub, iat, exp, jti) plus the
// strixun claims email, csrf and isSuperAdmin. The subject is the customer
// identifier, the jti references the server-side session record, and the
// expiry mirrors the session expiry exactly: a token at exactly exp is
// treated as expired by the jwt library's verifier.
//
// All parameters are required. Returns an error if any of them are empty.
func GenerateJWTToken(issuer string, session models.Session, email, signKey string) (models.Token, error) {
	if issuer == "" || signKey == "" || session.JTI == "" || session.CustomerID == "" {
		return models.Token{}, errors.New("invalid params for generating JWT Token")
	}

	claims := models.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   session.CustomerID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			ID:        session.JTI,
		},
		Email:        email,
		CSRF:         session.CSRF,
		IsSuperAdmin: session.IsSuperAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return models.Token{}, fmt.Errorf("error occurred during signing JWT token: %w", err)
	}

	return models.Token{Token: token, Claims: claims, SignedString: tokenString}, nil
}

// ValidateAndParseJWTToken validates the given JWT token string and extracts
// its claims.
//
// Validation includes:
//   - signature verification using the provided sign key (HS256 only)
//   - issuer (iss) claim check against tokenIssuer
//   - expiration (exp) claim check
//   - subject (sub) claim presence
//
// Returns the decoded token model, or an error if validation fails or
// claims are missing.
func ValidateAndParseJWTToken(tokenString, tokenSignKey, tokenIssuer string) (models.Token, error) {
	claims := &models.AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(tokenSignKey), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Token{}, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	if claims.Subject == "" {
		return models.Token{}, errors.New("empty subject error")
	}

	return models.Token{Token: token, Claims: *claims, SignedString: tokenString}, nil
}

// ParseBearerToken extracts the token string from an Authorization header
// value of the form "Bearer <token>".
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Split(strings.TrimSpace(authorizationHeader), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

// ParseCustomerIDFromJWT pulls the subject claim out of a token string
// without verifying the signature. Used by the integrity layer, which only
// needs the customer binding for the signature base, never for auth.
func ParseCustomerIDFromJWT(tokenString string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	return sub, nil
}

// LooksLikeJWT reports whether a bearer token has the three dot-separated
// segments of a compact JWS. Non-JWT bearers mark the call as
// service-originated.
func LooksLikeJWT(token string) bool {
	return strings.Count(token, ".") == 2
}

// RemainingLifetime returns how long the token stays valid from now, floored
// at zero.
func RemainingLifetime(t *models.Token, now time.Time) time.Duration {
	if t.Claims.ExpiresAt == nil {
		return 0
	}
	d := t.Claims.ExpiresAt.Time.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

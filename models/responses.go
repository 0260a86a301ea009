// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package models

// RequestOTPResponse is returned by POST /auth/request-otp.
type RequestOTPResponse struct {
	Success   bool `json:"success"`
	ExpiresIn int  `json:"expiresIn"`
	Remaining int  `json:"remaining"`

	// DebugCode echoes the generated code in test environments only.
	DebugCode string `json:"debugCode,omitempty"`
}

// VerifyOTPResponse is returned by POST /auth/verify-otp.
type VerifyOTPResponse struct {
	Token       string `json:"token"`
	CustomerID  string `json:"customerId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	ExpiresAt   string `json:"expiresAt"`
}

// RefreshResponse is returned by POST /auth/refresh.
type RefreshResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// LogoutResponse is returned by POST /auth/logout. Logout is idempotent:
// a second call is a no-op that still reports success.
type LogoutResponse struct {
	Success bool `json:"success"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

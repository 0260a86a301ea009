// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package models

import "time"

// OTP lifecycle constants. A record lives ten minutes and tolerates five
// verification attempts; a new request-otp for the same address supersedes
// the old record entirely.
const (
	OTPDigits      = 9
	OTPTTL         = 10 * time.Minute
	OTPMaxAttempts = 5
)

// OTPRecord is the pending login challenge stored at auth:otp:{emailHash}.
// The plaintext email never appears in the key.
type OTPRecord struct {
	Code      string    `json:"code"`
	EmailHash string    `json:"emailHash"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Attempts  int       `json:"attempts"`
	Consumed  bool      `json:"consumed"`
}

// Expired reports whether the record is past its expiry. A verify at
// exactly ExpiresAt is already expired.
func (o OTPRecord) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// Locked reports whether the attempt budget is spent.
func (o OTPRecord) Locked() bool {
	return o.Attempts >= OTPMaxAttempts
}

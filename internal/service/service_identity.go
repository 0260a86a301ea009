// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package service

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/strixun/edge-core/internal/config"
	"github.com/strixun/edge-core/internal/crypto"
	"github.com/strixun/edge-core/internal/logger"
	"github.com/strixun/edge-core/internal/store"
	"github.com/strixun/edge-core/internal/utils"
	"github.com/strixun/edge-core/models"
)

// Key builders of the auth namespace. OTP records are addressed by email
// hash so the plaintext address never appears in a key; sessions and
// blacklist entries by jti.
func otpKey(emailHash string) string { return "auth:otp:" + emailHash }
func sessionKey(jti string) string   { return "auth:session:" + jti }
func blacklistKey(jti string) string { return "auth:blacklist:" + jti }

// Canonical entity coordinates of the customer profile.
const (
	customerService = "customer"
	customerEntity  = "profile"
	customerByEmail = "by-email"
)

// emailPattern is the RFC-5322-lite shape check: one @, no whitespace, a
// dot in the domain. Real validation is the delivered OTP itself.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type identityService struct {
	entities *store.EntityStore
	kv       store.KVStore
	sender   EmailSender
	limiter  *RateLimiter
	cfg      config.App
	logger   *logger.Logger

	now func() time.Time
}

// NewIdentityService wires the default identity implementation.
func NewIdentityService(entities *store.EntityStore, sender EmailSender, limiter *RateLimiter, cfg config.App, log *logger.Logger) IdentityService {
	return &identityService{
		entities: entities,
		kv:       entities.KV(),
		sender:   sender,
		limiter:  limiter,
		cfg:      cfg,
		logger:   log,
		now:      time.Now,
	}
}

// NormalizeEmail lower-cases and trims an address; the result is the only
// form hashed, stored or compared.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashEmail returns the lowercase-hex SHA-256 of a normalized address.
func HashEmail(normalized string) string {
	return hex.EncodeToString(crypto.SHA256Sum([]byte(normalized)))
}

func (s *identityService) RequestOTP(ctx context.Context, email string) (models.RequestOTPResponse, error) {
	email = NormalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return models.RequestOTPResponse{}, ErrInvalidEmail
	}
	emailHash := HashEmail(email)

	remaining, err := s.limiter.Allow(ctx, BucketOTPRequest, emailHash)
	if err != nil {
		return models.RequestOTPResponse{}, err
	}

	code, err := generateOTPCode()
	if err != nil {
		return models.RequestOTPResponse{}, fmt.Errorf("generate otp: %w", err)
	}

	now := s.now().UTC()
	record := models.OTPRecord{
		Code:      code,
		EmailHash: emailHash,
		IssuedAt:  now,
		ExpiresAt: now.Add(models.OTPTTL),
	}

	// A fresh request supersedes any pending challenge for the address,
	// attempts counter included.
	if err := store.PutJSON(ctx, s.kv, otpKey(emailHash), record, store.PutOptions{TTL: models.OTPTTL}); err != nil {
		return models.RequestOTPResponse{}, err
	}

	if err := s.sender.Send(ctx, EmailMessage{To: email, Subject: otpMailSubject, HTML: otpMailBody(code)}); err != nil {
		// An undeliverable code must not stay verifiable.
		if delErr := s.kv.Delete(ctx, otpKey(emailHash)); delErr != nil {
			s.logger.Err(delErr).Msg("failed to delete otp after send failure")
		}
		return models.RequestOTPResponse{}, err
	}

	s.logger.Info().Str("emailHash", emailHash).Msg("otp issued")

	resp := models.RequestOTPResponse{
		Success:   true,
		ExpiresIn: int(models.OTPTTL.Seconds()),
		Remaining: remaining,
	}
	if s.debugEcho() {
		resp.DebugCode = code
	}
	return resp, nil
}

// debugEcho reports whether responses may carry the generated code: test
// email key AND a non-production environment, never either alone.
func (s *identityService) debugEcho() bool {
	switch s.cfg.Environment {
	case config.EnvDevelopment, config.EnvTest:
		return s.sender.TestMode()
	}
	return false
}

func (s *identityService) VerifyOTP(ctx context.Context, email, code string) (LoginResult, error) {
	email = NormalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return LoginResult{}, ErrInvalidEmail
	}
	emailHash := HashEmail(email)
	now := s.now().UTC()

	var record models.OTPRecord
	found, err := store.GetJSON(ctx, s.kv, otpKey(emailHash), &record)
	if err != nil {
		return LoginResult{}, err
	}
	if !found || record.Consumed || record.Expired(now) {
		if found {
			_ = s.kv.Delete(ctx, otpKey(emailHash))
		}
		return LoginResult{}, ErrOTPNotFoundOrExpired
	}
	if record.Locked() {
		_ = s.kv.Delete(ctx, otpKey(emailHash))
		return LoginResult{}, ErrOTPAttemptsExhausted
	}

	if !crypto.CTEqual([]byte(record.Code), []byte(code)) {
		record.Attempts++
		if err := store.PutJSON(ctx, s.kv, otpKey(emailHash), record, store.PutOptions{ExpiresAt: record.ExpiresAt}); err != nil {
			return LoginResult{}, err
		}
		return LoginResult{}, &OTPInvalidError{Remaining: models.OTPMaxAttempts - record.Attempts}
	}

	// Single use: the record dies on success.
	if err := s.kv.Delete(ctx, otpKey(emailHash)); err != nil {
		return LoginResult{}, err
	}

	customer, err := s.upsertCustomer(ctx, email, emailHash, now)
	if err != nil {
		return LoginResult{}, err
	}

	result, err := s.issueSession(ctx, customer, now)
	if err != nil {
		return LoginResult{}, err
	}

	s.logger.Info().Str("customerId", customer.CustomerID).Msg("login succeeded")
	return result, nil
}

// upsertCustomer resolves the address to a profile via the by-email
// index, creating a fresh profile with a generated display name on first
// login. The entity write lands before the index write.
func (s *identityService) upsertCustomer(ctx context.Context, email, emailHash string, now time.Time) (models.Customer, error) {
	id, found, err := s.entities.IndexGetSingle(ctx, customerService, customerByEmail, emailHash)
	if err != nil {
		return models.Customer{}, err
	}

	if found {
		var customer models.Customer
		exists, err := s.entities.GetEntity(ctx, customerService, customerEntity, id, &customer)
		if err != nil {
			return models.Customer{}, err
		}
		if exists {
			return customer, nil
		}
		// Dangling index entry; fall through and recreate the profile.
		s.logger.Warn().Str("customerId", id).Msg("by-email index points at missing profile")
	}

	displayName, err := GenerateDisplayName()
	if err != nil {
		return models.Customer{}, err
	}

	customer := models.Customer{
		CustomerID:  "cust_" + uuid.NewString(),
		Email:       email,
		EmailHash:   emailHash,
		DisplayName: displayName,
		CreatedAt:   now.Format(time.RFC3339Nano),
		Status:      "active",
		Preferences: models.CustomerPreferences{
			EmailVisibility: models.EmailVisibilityPrivate,
		},
	}

	if err := s.entities.PutEntity(ctx, customerService, customerEntity, customer.CustomerID, customer); err != nil {
		return models.Customer{}, err
	}
	if err := s.entities.IndexSetSingle(ctx, customerService, customerByEmail, emailHash, customer.CustomerID); err != nil {
		return models.Customer{}, err
	}

	s.logger.Info().Str("customerId", customer.CustomerID).Msg("customer created")
	return customer, nil
}

// issueSession creates the server-side session record and signs its JWT.
func (s *identityService) issueSession(ctx context.Context, customer models.Customer, now time.Time) (LoginResult, error) {
	csrf, err := crypto.RandomBytes(16)
	if err != nil {
		return LoginResult{}, err
	}

	session := models.Session{
		JTI:          "jti_" + uuid.NewString(),
		CustomerID:   customer.CustomerID,
		IssuedAt:     now,
		ExpiresAt:    now.Add(s.tokenDuration()),
		CSRF:         hex.EncodeToString(csrf),
		IsSuperAdmin: s.isSuperAdmin(customer),
	}

	if err := store.PutJSON(ctx, s.kv, sessionKey(session.JTI), session, store.PutOptions{TTL: s.tokenDuration()}); err != nil {
		return LoginResult{}, err
	}

	token, err := utils.GenerateJWTToken(s.cfg.TokenIssuer, session, customer.Email, s.cfg.JWTSecret)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token, Session: session, Customer: customer}, nil
}

func (s *identityService) tokenDuration() time.Duration {
	if s.cfg.TokenDuration > 0 {
		return s.cfg.TokenDuration
	}
	return models.SessionTTL
}

func (s *identityService) isSuperAdmin(customer models.Customer) bool {
	for _, admin := range s.cfg.SuperAdminEmails {
		if NormalizeEmail(admin) == customer.Email {
			return true
		}
	}
	return customer.HasRole(models.RoleSuperAdmin)
}

func (s *identityService) Refresh(ctx context.Context, token *models.Token) (LoginResult, error) {
	now := s.now().UTC()

	var session models.Session
	found, err := store.GetJSON(ctx, s.kv, sessionKey(token.JTI()), &session)
	if err != nil {
		return LoginResult{}, err
	}
	if !found || session.Expired(now) {
		return LoginResult{}, ErrTokenIsExpiredOrInvalid
	}

	var customer models.Customer
	exists, err := s.entities.GetEntity(ctx, customerService, customerEntity, session.CustomerID, &customer)
	if err != nil {
		return LoginResult{}, err
	}
	if !exists {
		return LoginResult{}, ErrTokenIsExpiredOrInvalid
	}

	// The old jti dies with the rotation: blacklist it for its remaining
	// lifetime and drop the session record.
	if remaining := utils.RemainingLifetime(token, now); remaining > 0 {
		if err := s.kv.Put(ctx, blacklistKey(token.JTI()), []byte("revoked"), store.PutOptions{TTL: remaining}); err != nil {
			return LoginResult{}, err
		}
	}
	if err := s.kv.Delete(ctx, sessionKey(token.JTI())); err != nil {
		return LoginResult{}, err
	}

	result, err := s.issueSession(ctx, customer, now)
	if err != nil {
		return LoginResult{}, err
	}

	s.logger.Info().Str("customerId", customer.CustomerID).Msg("session rotated")
	return result, nil
}

func (s *identityService) Logout(ctx context.Context, token *models.Token) error {
	now := s.now().UTC()

	if remaining := utils.RemainingLifetime(token, now); remaining > 0 {
		if err := s.kv.Put(ctx, blacklistKey(token.JTI()), []byte("revoked"), store.PutOptions{TTL: remaining}); err != nil {
			return err
		}
	}
	// Logout is idempotent: deleting an already-dead session still
	// succeeds.
	return s.kv.Delete(ctx, sessionKey(token.JTI()))
}

func (s *identityService) Me(ctx context.Context, customerID string) (models.Customer, error) {
	var customer models.Customer
	found, err := s.entities.GetEntity(ctx, customerService, customerEntity, customerID, &customer)
	if err != nil {
		return models.Customer{}, err
	}
	if !found {
		return models.Customer{}, fmt.Errorf("%w: customer %s", store.ErrEntityNotFound, customerID)
	}
	return customer, nil
}

func (s *identityService) ParseToken(ctx context.Context, tokenString string) (*models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, s.cfg.JWTSecret, s.cfg.TokenIssuer)
	if err != nil {
		return nil, ErrTokenIsExpiredOrInvalid
	}

	if _, revoked, err := s.kv.Get(ctx, blacklistKey(token.JTI())); err != nil {
		return nil, err
	} else if revoked {
		return nil, ErrTokenIsExpiredOrInvalid
	}

	var session models.Session
	found, err := store.GetJSON(ctx, s.kv, sessionKey(token.JTI()), &session)
	if err != nil {
		return nil, err
	}
	if !found || session.Expired(s.now().UTC()) {
		return nil, ErrTokenIsExpiredOrInvalid
	}

	return &token, nil
}

// generateOTPCode draws a uniform 9-digit code from the OS CSPRNG using
// rejection sampling, so no residue class of 10^9 is favoured.
func generateOTPCode() (string, error) {
	const modulus = 1_000_000_000
	const limit = uint64(math.MaxUint64) - uint64(math.MaxUint64)%modulus

	for {
		buf, err := crypto.RandomBytes(8)
		if err != nil {
			return "", err
		}
		v := binary.BigEndian.Uint64(buf)
		if v >= limit {
			continue
		}
		return fmt.Sprintf("%09d", v%modulus), nil
	}
}

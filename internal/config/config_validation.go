// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package config

// minJWTSecretLen is the minimum byte length accepted for JWT_SECRET.
const minJWTSecretLen = 32

// validate checks that the final merged [StructuredConfig] satisfies all
// startup invariants:
//   - JWT_SECRET present and at least 32 bytes;
//   - NETWORK_INTEGRITY_KEYPHRASE present;
//   - ENVIRONMENT is one of the recognised names (empty counts as local dev).
//
// Returns nil if the configuration is valid, or a descriptive error
// otherwise.
func (cfg *StructuredConfig) validate() error {
	if len(cfg.App.JWTSecret) < minJWTSecretLen {
		return ErrInvalidJWTSecret
	}

	if cfg.App.IntegrityKeyphrase == "" {
		return ErrMissingIntegrityKeyphrase
	}

	switch cfg.App.Environment {
	case EnvDevelopment, EnvTest, EnvDev, EnvProduction, "":
	default:
		return ErrInvalidEnvironment
	}

	return nil
}

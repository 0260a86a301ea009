// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package crypto

// Two-stage encryption nests two token-bound envelopes for custodial
// re-disclosure of sensitive fields (e.g. a private email). The inner stage
// is keyed off the data owner's token; the outer stage off a per-request
// grant key handed to the requester through an approved data request.
//
// Opening the outer stage alone yields only another opaque envelope: both
// the grant key and the owner's token (delivered out-of-band by the system)
// are required to reach the plaintext. Each stage carries its own salt, IV
// and token hash, so either party's key can be verified independently.

// EncryptTwoStage seals plaintext with the owner's token (stage 1), then
// seals the resulting envelope with the per-request key (stage 2).
func EncryptTwoStage(ownerToken, requestKey string, plaintext []byte) ([]byte, error) {
	inner, err := EncryptEnvelope(ownerToken, plaintext)
	if err != nil {
		return nil, err
	}
	return EncryptEnvelope(requestKey, inner)
}

// DecryptTwoStage reverses [EncryptTwoStage]: the per-request key opens the
// outer stage, the owner's token opens the inner one. Any failure in either
// stage surfaces as [ErrDecryptionFailed].
func DecryptTwoStage(ownerToken, requestKey string, envelope []byte) ([]byte, error) {
	inner, err := DecryptEnvelope(requestKey, envelope)
	if err != nil {
		return nil, err
	}
	return DecryptEnvelope(ownerToken, inner)
}

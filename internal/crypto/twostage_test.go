// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncryptTwoStage_RoundTrip(t *testing.T) {
	ownerToken := "owner-token"
	requestKey := "per-request-grant-key"
	plaintext := []byte(`{"email":"owner@example.com"}`)

	envelope, err := EncryptTwoStage(ownerToken, requestKey, plaintext)
	if err != nil {
		t.Fatalf("EncryptTwoStage error: %v", err)
	}

	got, err := DecryptTwoStage(ownerToken, requestKey, envelope)
	if err != nil {
		t.Fatalf("DecryptTwoStage error: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("plaintext mismatch: got %q, want %q", got, plaintext)
	}
}

func TestDecryptTwoStage_OuterStageAloneYieldsEnvelope(t *testing.T) {
	ownerToken := "owner-token"
	requestKey := "per-request-grant-key"
	plaintext := []byte("private")

	envelope, err := EncryptTwoStage(ownerToken, requestKey, plaintext)
	if err != nil {
		t.Fatalf("EncryptTwoStage error: %v", err)
	}

	inner, err := DecryptEnvelope(requestKey, envelope)
	if err != nil {
		t.Fatalf("outer DecryptEnvelope error: %v", err)
	}

	// The inner blob must still be an opaque envelope, not the plaintext.
	if bytes.Contains(inner, plaintext) {
		t.Fatalf("inner stage leaked plaintext")
	}
	if inner[0] != EnvelopeV5 {
		t.Fatalf("inner version = %d, want %d", inner[0], EnvelopeV5)
	}
}

func TestDecryptTwoStage_WrongKeysFail(t *testing.T) {
	ownerToken := "owner-token"
	requestKey := "per-request-grant-key"

	envelope, err := EncryptTwoStage(ownerToken, requestKey, []byte("private"))
	if err != nil {
		t.Fatalf("EncryptTwoStage error: %v", err)
	}

	if _, err := DecryptTwoStage(ownerToken, "wrong-request-key", envelope); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("wrong request key: error = %v, want ErrDecryptionFailed", err)
	}
	if _, err := DecryptTwoStage("wrong-owner-token", requestKey, envelope); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("wrong owner token: error = %v, want ErrDecryptionFailed", err)
	}
}

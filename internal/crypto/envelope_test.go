// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncryptEnvelope_RoundTrip(t *testing.T) {
	token := "bearer-token-abc"
	plaintext := []byte(`{"hello":"world"}`)

	envelope, err := EncryptEnvelope(token, plaintext)
	if err != nil {
		t.Fatalf("EncryptEnvelope error: %v", err)
	}

	if envelope[0] != EnvelopeV5 {
		t.Fatalf("version byte = %d, want %d", envelope[0], EnvelopeV5)
	}
	if envelope[1] != SaltLen || envelope[2] != NonceLen || envelope[3] != 32 {
		t.Fatalf("header lengths = %d/%d/%d, want %d/%d/32", envelope[1], envelope[2], envelope[3], SaltLen, NonceLen)
	}

	got, err := DecryptEnvelope(token, envelope)
	if err != nil {
		t.Fatalf("DecryptEnvelope error: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("plaintext mismatch: got %q, want %q", got, plaintext)
	}
}

func TestEncryptEnvelope_CompressesLargeRepetitiveBody(t *testing.T) {
	token := "bearer-token-abc"
	plaintext := bytes.Repeat([]byte("abcdefgh"), 4096)

	envelope, err := EncryptEnvelope(token, plaintext)
	if err != nil {
		t.Fatalf("EncryptEnvelope error: %v", err)
	}

	if len(envelope) >= len(plaintext) {
		t.Fatalf("expected compressed envelope smaller than plaintext: %d >= %d", len(envelope), len(plaintext))
	}

	flagOffset := envelopeHeaderLen + SaltLen + NonceLen + 32
	if envelope[flagOffset] != 1 {
		t.Fatalf("compressed flag = %d, want 1", envelope[flagOffset])
	}

	got, err := DecryptEnvelope(token, envelope)
	if err != nil {
		t.Fatalf("DecryptEnvelope error: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round-trip mismatch after compression")
	}
}

func TestEncryptEnvelope_SkipsCompressionForIncompressibleBody(t *testing.T) {
	token := "bearer-token-abc"
	plaintext, err := RandomBytes(256)
	if err != nil {
		t.Fatalf("RandomBytes error: %v", err)
	}

	envelope, err := EncryptEnvelope(token, plaintext)
	if err != nil {
		t.Fatalf("EncryptEnvelope error: %v", err)
	}

	flagOffset := envelopeHeaderLen + SaltLen + NonceLen + 32
	if envelope[flagOffset] != 0 {
		t.Fatalf("compressed flag = %d, want 0 for random body", envelope[flagOffset])
	}

	got, err := DecryptEnvelope(token, envelope)
	if err != nil {
		t.Fatalf("DecryptEnvelope error: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round-trip mismatch")
	}
}

func TestDecryptEnvelope_WrongTokenFails(t *testing.T) {
	envelope, err := EncryptEnvelope("right-token", []byte("secret"))
	if err != nil {
		t.Fatalf("EncryptEnvelope error: %v", err)
	}

	_, err = DecryptEnvelope("wrong-token", envelope)
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("error = %v, want ErrDecryptionFailed", err)
	}
}

func TestDecryptEnvelope_TamperedCiphertextFails(t *testing.T) {
	token := "bearer-token-abc"
	envelope, err := EncryptEnvelope(token, []byte("secret"))
	if err != nil {
		t.Fatalf("EncryptEnvelope error: %v", err)
	}

	// Flip one bit in the ciphertext tail.
	envelope[len(envelope)-1] ^= 0x01

	_, err = DecryptEnvelope(token, envelope)
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("error = %v, want ErrDecryptionFailed", err)
	}
}

func TestDecryptEnvelope_RejectsVersion3(t *testing.T) {
	envelope := append([]byte{3, SaltLen, NonceLen, 32}, bytes.Repeat([]byte{0x00}, 128)...)

	_, err := DecryptEnvelope("any-token", envelope)
	if !errors.Is(err, ErrUnsupportedEnvelopeVersion) {
		t.Fatalf("error = %v, want ErrUnsupportedEnvelopeVersion", err)
	}
}

func TestDecryptEnvelope_TruncatedInputFails(t *testing.T) {
	token := "bearer-token-abc"
	envelope, err := EncryptEnvelope(token, []byte("secret"))
	if err != nil {
		t.Fatalf("EncryptEnvelope error: %v", err)
	}

	for _, cut := range []int{0, 1, 3, envelopeHeaderLen + 5} {
		if _, err := DecryptEnvelope(token, envelope[:cut]); err == nil {
			t.Fatalf("expected error for envelope truncated to %d bytes", cut)
		}
	}
}

func TestDecryptEnvelope_AcceptsVersion4(t *testing.T) {
	token := "bearer-token-abc"
	plaintext := []byte("legacy body")

	// Build a v4 envelope by hand: same layout as v5 without the
	// compression flag.
	salt, err := RandomBytes(SaltLen)
	if err != nil {
		t.Fatalf("RandomBytes error: %v", err)
	}
	iv, err := RandomBytes(NonceLen)
	if err != nil {
		t.Fatalf("RandomBytes error: %v", err)
	}

	key := DeriveKey([]byte(token), salt)
	sealed, err := EncryptAESGCM(key, iv, plaintext, nil)
	if err != nil {
		t.Fatalf("EncryptAESGCM error: %v", err)
	}

	tokenHash := SHA256Sum([]byte(token))
	envelope := []byte{EnvelopeV4, SaltLen, NonceLen, byte(len(tokenHash))}
	envelope = append(envelope, salt...)
	envelope = append(envelope, iv...)
	envelope = append(envelope, tokenHash...)
	envelope = append(envelope, sealed...)

	got, err := DecryptEnvelope(token, envelope)
	if err != nil {
		t.Fatalf("DecryptEnvelope error: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("plaintext mismatch: got %q, want %q", got, plaintext)
	}
}

func TestEnvelopeVersion(t *testing.T) {
	envelope, err := EncryptEnvelope("token", []byte("body"))
	if err != nil {
		t.Fatalf("EncryptEnvelope error: %v", err)
	}

	version, err := EnvelopeVersion(envelope)
	if err != nil {
		t.Fatalf("EnvelopeVersion error: %v", err)
	}
	if version != EnvelopeV5 {
		t.Fatalf("version = %d, want %d", version, EnvelopeV5)
	}

	if _, err := EnvelopeVersion(nil); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("error = %v, want ErrMalformedInput", err)
	}
}

func TestEncryptEnvelope_EnvelopesDiffer(t *testing.T) {
	token := "bearer-token-abc"
	plaintext := []byte("same body")

	e1, err := EncryptEnvelope(token, plaintext)
	if err != nil {
		t.Fatalf("EncryptEnvelope error: %v", err)
	}
	e2, err := EncryptEnvelope(token, plaintext)
	if err != nil {
		t.Fatalf("EncryptEnvelope error: %v", err)
	}

	if bytes.Equal(e1, e2) {
		t.Fatalf("expected envelopes to differ due to fresh salt and IV")
	}
}

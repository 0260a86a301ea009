// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

// Package crypto wraps the well-known primitives used across the trust
// plane: AES-256-GCM, PBKDF2-SHA256, HMAC-SHA256, SHA-256, the OS CSPRNG,
// unpadded base64url, and constant-time comparison. It also implements the
// token-bound response envelope (v4/v5) and its two-stage variant.
//
// All functions are pure and stateless; the package holds no keys.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2Iterations is the fixed iteration count for key derivation. Any
// change is a breaking format change: envelopes written with a different
// count can never be opened again.
const PBKDF2Iterations = 100_000

// KeyLen is the derived key length in bytes (AES-256).
const KeyLen = 32

// NonceLen is the AES-GCM nonce length in bytes.
const NonceLen = 12

// SaltLen is the PBKDF2 salt length in bytes.
const SaltLen = 16

// RandomBytes reads n random bytes from the OS CSPRNG. Returns an error if
// the random read fails.
func RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return buf, nil
}

// SHA256Sum returns the 32-byte SHA-256 digest of data.
func SHA256Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// HMACSHA256 returns the 32-byte HMAC-SHA256 of msg under key.
func HMACSHA256(key, msg []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(msg)
	return h.Sum(nil)
}

// DeriveKey derives a 256-bit key from password and salt using
// PBKDF2-SHA256 with the fixed [PBKDF2Iterations] count.
func DeriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, PBKDF2Iterations, KeyLen, sha256.New)
}

// CTEqual compares a and b in constant time.
func CTEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// B64URLEncode encodes data as unpadded base64url.
func B64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// B64URLDecode decodes an unpadded base64url string.
func B64URLDecode(s string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return data, nil
}

// EncryptAESGCM encrypts plaintext with AES-256-GCM under key using the
// 12-byte iv. The optional aad is authenticated but not encrypted. The
// returned blob is ciphertext‖tag.
func EncryptAESGCM(key, iv, plaintext, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: iv must be %d bytes", ErrMalformedInput, gcm.NonceSize())
	}
	return gcm.Seal(nil, iv, plaintext, aad), nil
}

// DecryptAESGCM decrypts a ciphertext‖tag blob produced by
// [EncryptAESGCM]. Returns [ErrAuthTagMismatch] if the key is wrong, the
// ciphertext was tampered with, or the aad does not match.
func DecryptAESGCM(key, iv, blob, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: iv must be %d bytes", ErrMalformedInput, gcm.NonceSize())
	}

	plaintext, err := gcm.Open(nil, iv, blob, aad)
	if err != nil {
		return nil, ErrAuthTagMismatch
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

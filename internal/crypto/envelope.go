// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package crypto

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// Envelope versions. Version 5 is the default write format; version 4 is
// the legacy binary format still accepted on decrypt (identical layout
// without the compression flag). Version 3 is referenced by old payloads in
// the wild but has no decoder: it is rejected up front, before any key
// derivation work.
const (
	EnvelopeV4 = 4
	EnvelopeV5 = 5
)

// gzipSavingsRatio is the break-even point for envelope compression: the
// compressed body is used only when it is at least 5% smaller.
const gzipSavingsRatio = 0.95

// envelopeHeaderLen is version + saltLen + ivLen + hashLen.
const envelopeHeaderLen = 4

// EncryptEnvelope seals plaintext into a version-5 envelope keyed off the
// caller's bearer token:
//
//	version(1)=5 | saltLen(1)=16 | ivLen(1)=12 | hashLen(1)=32 |
//	salt(16) | iv(12) | tokenHash(32) | compressedFlag(1) | ciphertext||tag
//
// The AES key is PBKDF2(token, salt); tokenHash = SHA-256(token) is embedded
// so the decrypt side can verify token identity in constant time before
// deriving a key. The body is gzip-compressed when that saves at least 5%.
func EncryptEnvelope(token string, plaintext []byte) ([]byte, error) {
	salt, err := RandomBytes(SaltLen)
	if err != nil {
		return nil, err
	}
	iv, err := RandomBytes(NonceLen)
	if err != nil {
		return nil, err
	}

	body := plaintext
	compressed := byte(0)
	if gz, err := gzipBytes(plaintext); err == nil && float64(len(gz)) < float64(len(plaintext))*gzipSavingsRatio {
		body = gz
		compressed = 1
	}

	key := DeriveKey([]byte(token), salt)
	sealed, err := EncryptAESGCM(key, iv, body, nil)
	if err != nil {
		return nil, err
	}

	tokenHash := SHA256Sum([]byte(token))

	out := make([]byte, 0, envelopeHeaderLen+SaltLen+NonceLen+len(tokenHash)+1+len(sealed))
	out = append(out, EnvelopeV5, SaltLen, NonceLen, byte(len(tokenHash)))
	out = append(out, salt...)
	out = append(out, iv...)
	out = append(out, tokenHash...)
	out = append(out, compressed)
	out = append(out, sealed...)
	return out, nil
}

// DecryptEnvelope opens a version-4 or version-5 envelope with the caller's
// bearer token and returns the plaintext body.
//
// The flow is: version check (before any PBKDF2 work), constant-time
// comparison of the embedded token hash against SHA-256(token), key
// derivation, AES-GCM open, and gunzip when the v5 compression flag is set.
//
// All failures (wrong token, tampered ciphertext, truncated blob) surface
// as [ErrDecryptionFailed] with no further detail; only an unsupported
// version is distinguished, as [ErrUnsupportedEnvelopeVersion].
func DecryptEnvelope(token string, envelope []byte) ([]byte, error) {
	if len(envelope) < 1 {
		return nil, ErrDecryptionFailed
	}

	version := envelope[0]
	if version != EnvelopeV4 && version != EnvelopeV5 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedEnvelopeVersion, version)
	}

	if len(envelope) < envelopeHeaderLen {
		return nil, ErrDecryptionFailed
	}
	saltLen := int(envelope[1])
	ivLen := int(envelope[2])
	hashLen := int(envelope[3])

	offset := envelopeHeaderLen
	end := offset + saltLen + ivLen + hashLen
	if len(envelope) < end {
		return nil, ErrDecryptionFailed
	}

	salt := envelope[offset : offset+saltLen]
	iv := envelope[offset+saltLen : offset+saltLen+ivLen]
	tokenHash := envelope[offset+saltLen+ivLen : end]

	if !CTEqual(tokenHash, SHA256Sum([]byte(token))) {
		return nil, ErrDecryptionFailed
	}

	compressed := false
	rest := envelope[end:]
	if version == EnvelopeV5 {
		if len(rest) < 1 {
			return nil, ErrDecryptionFailed
		}
		compressed = rest[0] == 1
		rest = rest[1:]
	}

	key := DeriveKey([]byte(token), salt)
	body, err := DecryptAESGCM(key, iv, rest, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	if compressed {
		body, err = gunzipBytes(body)
		if err != nil {
			return nil, ErrDecryptionFailed
		}
	}

	return body, nil
}

// EnvelopeVersion returns the version byte of an envelope without decoding
// it. Used by the blob pipeline to pick a decode path from the first byte.
func EnvelopeVersion(envelope []byte) (byte, error) {
	if len(envelope) < 1 {
		return 0, ErrMalformedInput
	}
	return envelope[0], nil
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzipBytes(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

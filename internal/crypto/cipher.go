// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// Cipher encrypts and decrypts credential strings. Implementations must be
// safe for concurrent use; one instance is shared across all requests.
type Cipher interface {
	// EncryptString encrypts plaintext and returns an opaque string safe
	// to store. Two calls with the same plaintext produce different
	// outputs.
	EncryptString(plaintext string) (string, error)

	// DecryptString reverses EncryptString. Any tampering with the stored
	// blob, and any key mismatch, yields ErrDecryptionFailed.
	DecryptString(encrypted string) (string, error)
}

// aesCipher is the private AES-256-GCM implementation of [Cipher].
type aesCipher struct {
	gcm cipher.AEAD
}

// NewCipher builds a [Cipher] from a 32-byte key, normally the output of
// [DeriveKey]. The AEAD is constructed once here so the per-call cost is
// only nonce generation and the seal/open itself.
func NewCipher(key []byte) (Cipher, error) {
	if len(key) != kdfKeyLen {
		return nil, ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &aesCipher{gcm: gcm}, nil
}

// EncryptString implements [Cipher]. The output is a Base64 (standard
// encoding) string of the blob: nonce (12 bytes) ‖ ciphertext. A fresh
// random nonce is generated per call.
func (c *aesCipher) EncryptString(plaintext string) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	// Prepend the nonce so DecryptString can split it out.
	ciphertext := c.gcm.Seal(nil, nonce, []byte(plaintext), nil)
	blob := append(nonce, ciphertext...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptString implements [Cipher]. It Base64-decodes the blob, splits
// out the nonce, and opens the ciphertext. Every failure mode collapses
// into ErrDecryptionFailed so callers cannot distinguish a truncated blob
// from an authentication-tag mismatch.
func (c *aesCipher) DecryptString(encrypted string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	nonceSize := c.gcm.NonceSize()
	if len(blob) < nonceSize {
		return "", ErrDecryptionFailed
	}
	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}

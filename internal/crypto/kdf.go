// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package crypto derives the server-side encryption key from the deployment
// master secret and encrypts stored API keys with it. It also produces the
// non-reversible display previews shown in key listings.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. Changing any of them changes every derived key, so
// existing ciphertexts become undecryptable; treat them as frozen.
const (
	kdfIterations = 100_000
	kdfKeyLen     = 32
	saltLen       = 16
)

// DeriveKey stretches the master secret into a 256-bit AES key using
// PBKDF2-HMAC-SHA256 with 100 000 iterations. The same secret and salt
// always yield the same key, which is what lets a restarted process
// decrypt previously stored credentials.
func DeriveKey(masterSecret string, salt []byte) []byte {
	return pbkdf2.Key([]byte(masterSecret), salt, kdfIterations, kdfKeyLen, sha256.New)
}

// GenerateSalt reads 16 random bytes from the OS CSPRNG. Used by tooling
// that provisions a new deployment; at runtime the salt comes from
// configuration.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

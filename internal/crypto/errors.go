// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import "errors"

var (
	// ErrDecryptionFailed is returned for every decryption failure:
	// corrupted ciphertext, truncated blob, or a wrong key. The single
	// sentinel avoids leaking which of the three happened.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidKeySize is returned when the cipher is built with a key
	// that is not 32 bytes.
	ErrInvalidKeySize = errors.New("encryption key must be 32 bytes")
)

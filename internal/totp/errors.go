// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package totp

import "errors"

var (
	// ErrInvalidSecret is returned when a secret is not valid unpadded
	// base32.
	ErrInvalidSecret = errors.New("invalid totp secret")

	// ErrInvalidCode is returned when a submitted code is not exactly
	// six digits.
	ErrInvalidCode = errors.New("invalid totp code format")

	// ErrEmptyURI is returned when QR generation is asked to encode an
	// empty enrollment URI.
	ErrEmptyURI = errors.New("empty enrollment uri")
)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

// Validation errors returned by [StructuredConfig.validate]. Each one is
// fatal at startup: running without the named value would either disable
// authentication or silently weaken the credential encryption.
var (
	// ErrMissingMasterSecret indicates the encryption master secret is
	// not set in production.
	ErrMissingMasterSecret = errors.New("master secret is required in production")

	// ErrInvalidEncryptionSalt indicates the key-derivation salt is
	// missing or not exactly 16 bytes.
	ErrInvalidEncryptionSalt = errors.New("encryption salt must be exactly 16 bytes")

	// ErrMissingTokenSignKey indicates the JWT signing key is not set in
	// production.
	ErrMissingTokenSignKey = errors.New("token sign key is required in production")

	// ErrMissingCaptchaSignKey indicates the CAPTCHA token signing key is
	// not set in production.
	ErrMissingCaptchaSignKey = errors.New("captcha sign key is required in production")

	// ErrMissingWebhookToken indicates the payment webhook shared secret
	// is not set in production.
	ErrMissingWebhookToken = errors.New("payment webhook token is required in production")

	// ErrMissingDSN indicates no database connection string was provided.
	ErrMissingDSN = errors.New("database DSN is required")
)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrInvalidCredentials covers every authentication failure a caller
	// must not be able to distinguish: unknown user, wrong password,
	// wrong TOTP code, failed CAPTCHA.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrAccountLocked   = errors.New("account is temporarily locked")
	ErrAccountDisabled = errors.New("account is disabled")
	ErrTOTPRequired    = errors.New("totp code required")
	ErrWeakPassword    = errors.New("password does not meet the policy")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	ErrKeyQuotaExceeded = errors.New("key quota for the membership tier exceeded")

	ErrTOTPAlreadyEnabled = errors.New("totp is already enabled")
	ErrTOTPNotEnabled     = errors.New("totp is not enabled")

	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// TOTPConfig is the one-per-user TOTP state. A row exists from enrollment
// onward; IsEnabled flips to true only after the user proves possession of
// the secret with a valid code.
type TOTPConfig struct {
	ConfigID int64 `json:"-"`
	UserID   int64 `json:"-"`

	// Secret is the base32-encoded shared secret. Never serialized;
	// it leaves the server exactly once, in the enrollment response.
	Secret string `json:"-"`

	IsEnabled bool      `json:"is_enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the TOTPConfig model.
func (t TOTPConfig) TableName() string {
	return "totp_configs"
}

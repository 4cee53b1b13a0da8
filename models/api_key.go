// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// API key lifecycle statuses.
const (
	KeyStatusActive   = "active"
	KeyStatusInactive = "inactive"
	KeyStatusExpired  = "expired"
)

// APIKey is a stored third-party credential. The key material is held only
// in EncryptedKey (AES-256-GCM ciphertext) and Preview (a non-reversible
// display fragment); the plaintext exists only transiently inside the
// service layer during encrypt/decrypt calls.
type APIKey struct {
	KeyID      int64 `json:"id"`
	UserID     int64 `json:"-"`
	ProviderID int64 `json:"provider_id"`

	// ModelID optionally pins the key to a specific catalogue model.
	ModelID *int64 `json:"model_id,omitempty"`

	// KeyName is the user-chosen label, unique per user.
	KeyName string `json:"key_name"`

	// EncryptedKey is the base64 AES-256-GCM blob. Never serialized.
	EncryptedKey string `json:"-"`

	// Preview is the masked display form computed at write time,
	// e.g. "sk-a...f9Gk". It cannot be reversed into the key.
	Preview string `json:"api_key_preview"`

	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`

	// ExpiresAt is an optional user-declared expiry for the credential.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// LastUsedAt is bumped whenever the plaintext is retrieved or probed.
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the APIKey model.
func (k APIKey) TableName() string {
	return "user_api_keys"
}

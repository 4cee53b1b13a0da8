// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package models defines the domain entities shared between the store,
// service, and transport layers: accounts, provider catalogue entries,
// encrypted API key records, TOTP configuration, and audit records.
package models

import "time"

// Account roles. Role changes are admin-only operations.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Membership tiers. Paid tiers expire and fall back to TierFree.
const (
	TierFree  = "free"
	TierBasic = "basic"
	TierPro   = "pro"
)

// User represents an account. Credential material is stored only in
// derived form (bcrypt hash); plaintext passwords never reach this struct.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"id"`

	// Username is the unique login identifier.
	Username string `json:"username"`

	// Email is the unique contact address supplied at registration.
	Email string `json:"email"`

	// PasswordHash is the bcrypt digest of the user's password.
	// Never exposed via JSON.
	PasswordHash string `json:"-"`

	// Role is either RoleUser or RoleAdmin.
	Role string `json:"role"`

	// MembershipTier is the current tier (free, basic, pro).
	MembershipTier string `json:"membership_tier"`

	// MembershipExpireAt is when a paid tier lapses. Nil for free accounts
	// that never purchased a membership.
	MembershipExpireAt *time.Time `json:"membership_expire_at,omitempty"`

	// MembershipStartedAt records the first successful purchase.
	MembershipStartedAt *time.Time `json:"membership_started_at,omitempty"`

	// LoginAttempts counts consecutive failed logins. Reset on success.
	LoginAttempts int `json:"-"`

	// LockedUntil is set when LoginAttempts crosses the lockout threshold.
	// Evaluated lazily at login time; a past value means the lock expired.
	LockedUntil *time.Time `json:"-"`

	// LastLogin is the timestamp of the last successful authentication.
	LastLogin *time.Time `json:"last_login,omitempty"`

	// IsActive is false for accounts suspended by an administrator.
	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// IsAdmin reports whether the account carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// MembershipActive reports whether the user currently holds an unexpired
// paid tier. Free accounts are never "active" in this sense.
func (u User) MembershipActive(now time.Time) bool {
	if u.MembershipTier == TierFree {
		return false
	}
	return u.MembershipExpireAt != nil && u.MembershipExpireAt.After(now)
}

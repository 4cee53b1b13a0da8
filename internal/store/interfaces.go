// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	"github.com/ikunfydeos-tech/APIKey/models"
)

// UserFilter narrows and pages admin user listings. Zero values mean
// "no filter".
type UserFilter struct {
	Search string // matches username or email, case-insensitive substring
	Role   string
	Tier   string
	Limit  int
	Offset int
}

// KeyFilter narrows and pages a user's key listing.
type KeyFilter struct {
	Status     string
	ProviderID int64
	Limit      int
	Offset     int
}

// LogFilter narrows and pages audit log listings.
type LogFilter struct {
	Action string
	Status string
	Limit  int
	Offset int
}

// KeyUpdate is a partial update of an API key row. Nil fields leave the
// corresponding column untouched. Encrypted and Preview are set together
// when the plaintext was replaced.
type KeyUpdate struct {
	KeyName   *string
	Encrypted *string
	Preview   *string
	ModelID   *int64
	Status    *string
	Notes     *string
	ExpiresAt *time.Time
}

// UserRepository persists accounts and the login security counters.
type UserRepository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, userID int64) (models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	Delete(ctx context.Context, userID int64) error

	// RecordLoginFailure increments the failed-attempt counter and, when
	// the new count reaches threshold, sets locked_until to now+lockFor.
	// Returns the new attempt count.
	RecordLoginFailure(ctx context.Context, userID int64, threshold int, lockFor time.Duration) (int, error)

	// ResetLoginSecurity clears the attempt counter and lock and stamps
	// last_login. Called on every successful authentication.
	ResetLoginSecurity(ctx context.Context, userID int64) error

	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	UpdateRole(ctx context.Context, userID int64, role string) error
	UpdateActive(ctx context.Context, userID int64, active bool) error
	UpdateMembership(ctx context.Context, userID int64, tier string, expireAt time.Time, startedAt *time.Time) error

	// DowngradeExpired flips every paid account whose membership lapsed
	// before now back to the free tier, keeping the expiry timestamp for
	// the record. Returns the affected users.
	DowngradeExpired(ctx context.Context, now time.Time) ([]models.User, error)

	CountAll(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	CountPaid(ctx context.Context, now time.Time) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	RegistrationTrend(ctx context.Context, days int) ([]models.TrendPoint, error)
}

// KeyRepository persists encrypted API key records. Every read and write is
// scoped by owner; a key id belonging to another user behaves like a
// missing row.
type KeyRepository interface {
	Create(ctx context.Context, key models.APIKey) (models.APIKey, error)
	FindByID(ctx context.Context, userID, keyID int64) (models.APIKey, error)
	List(ctx context.Context, userID int64, filter KeyFilter) ([]models.APIKey, int64, error)
	Update(ctx context.Context, userID, keyID int64, upd KeyUpdate) (models.APIKey, error)
	Delete(ctx context.Context, userID, keyID int64) error
	TouchLastUsed(ctx context.Context, keyID int64) error
	CountByUser(ctx context.Context, userID int64) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

// ProviderRepository persists the provider catalogue and its models.
type ProviderRepository interface {
	// ListVisible returns active global providers plus the caller's own
	// custom providers.
	ListVisible(ctx context.Context, userID int64) ([]models.Provider, error)
	ListAll(ctx context.Context) ([]models.Provider, error)
	FindByID(ctx context.Context, providerID int64) (models.Provider, error)
	Create(ctx context.Context, provider models.Provider) (models.Provider, error)
	Update(ctx context.Context, provider models.Provider) error
	SetActive(ctx context.Context, providerID int64, active bool) error
	Delete(ctx context.Context, providerID int64) error

	// DeleteCustom removes a custom provider owned by userID.
	DeleteCustom(ctx context.Context, userID, providerID int64) error

	ListModels(ctx context.Context) ([]models.APIModel, error)
	ModelsByProvider(ctx context.Context, providerID int64) ([]models.APIModel, error)
	CreateModel(ctx context.Context, model models.APIModel) (models.APIModel, error)
	UpdateModel(ctx context.Context, model models.APIModel) error
	DeleteModel(ctx context.Context, modelID int64) error
}

// TOTPRepository persists the one-per-user TOTP configuration.
type TOTPRepository interface {
	FindByUser(ctx context.Context, userID int64) (models.TOTPConfig, error)

	// Upsert stores a fresh secret for the user with is_enabled=false,
	// replacing any previous not-yet-activated secret.
	Upsert(ctx context.Context, userID int64, secret string) (models.TOTPConfig, error)

	SetEnabled(ctx context.Context, userID int64, enabled bool) error

	// ReplaceSecret swaps the stored secret in a single statement; the
	// enabled flag is untouched.
	ReplaceSecret(ctx context.Context, userID int64, secret string) error

	Delete(ctx context.Context, userID int64) error
}

// AuditRepository persists operation logs and login history.
type AuditRepository interface {
	InsertLog(ctx context.Context, entry models.LogEntry) error
	ListLogs(ctx context.Context, userID int64, filter LogFilter) ([]models.LogEntry, int64, error)
	DistinctActions(ctx context.Context, userID int64) ([]string, error)
	InsertLoginHistory(ctx context.Context, record models.LoginHistory) error
	ListLoginHistory(ctx context.Context, userID int64, limit, offset int) ([]models.LoginHistory, int64, error)
}

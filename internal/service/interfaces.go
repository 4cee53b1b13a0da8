// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service implements the business rules between the HTTP layer and
// the repositories: account security policy, credential encryption, TOTP
// lifecycle, membership billing, and admin operations.
package service

import (
	"context"

	"github.com/ikunfydeos-tech/APIKey/internal/store"
	"github.com/ikunfydeos-tech/APIKey/models"
)

// ClientInfo identifies the caller for audit records.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// AuthService owns registration, login (with lockout, CAPTCHA, and TOTP
// gates), token lifecycle, and account-level self-service operations.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest, client ClientInfo) (models.User, error)
	Login(ctx context.Context, req models.LoginRequest, client ClientInfo) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)

	// User loads the account for middleware context injection.
	User(ctx context.Context, userID int64) (models.User, error)

	ChangePassword(ctx context.Context, userID int64, req models.ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, userID int64, password string, client ClientInfo) error

	LoginHistory(ctx context.Context, userID int64, limit, offset int) ([]models.LoginHistory, int64, error)
	Logs(ctx context.Context, userID int64, filter store.LogFilter) ([]models.LogEntry, int64, error)
	LogActions(ctx context.Context, userID int64) ([]string, error)
}

// KeyService owns stored credentials. Plaintext key material exists only
// inside these methods, between decode and encrypt.
type KeyService interface {
	Create(ctx context.Context, user models.User, req models.CreateKeyRequest, client ClientInfo) (models.APIKey, error)
	List(ctx context.Context, userID int64, filter store.KeyFilter) ([]models.APIKey, int64, error)

	// Reveal decrypts the stored credential and bumps last_used_at. It
	// returns the record and the plaintext separately; the plaintext
	// never lives inside the struct.
	Reveal(ctx context.Context, userID, keyID int64, client ClientInfo) (models.APIKey, string, error)

	Update(ctx context.Context, userID, keyID int64, req models.UpdateKeyRequest, client ClientInfo) (models.APIKey, error)
	Delete(ctx context.Context, userID, keyID int64, client ClientInfo) error
	Limits(ctx context.Context, user models.User) (models.KeyLimitsResponse, error)

	// Probe sends a minimal request to the provider endpoint with the
	// decrypted key and reports reachability and latency.
	Probe(ctx context.Context, userID, keyID int64) (models.KeyProbeResponse, error)

	VisibleProviders(ctx context.Context, userID int64) ([]models.Provider, error)
	CreateCustomProvider(ctx context.Context, userID int64, req models.CreateCustomProviderRequest) (models.Provider, error)
	DeleteCustomProvider(ctx context.Context, userID, providerID int64) error
	Models(ctx context.Context) ([]models.APIModel, error)
	ModelsByProvider(ctx context.Context, providerID int64) ([]models.APIModel, error)
}

// TOTPService owns the second-factor lifecycle including the dual-code
// secret rotation.
type TOTPService interface {
	Status(ctx context.Context, userID int64) (models.TOTPStatusResponse, error)
	Enroll(ctx context.Context, user models.User) (models.TOTPEnrollmentResponse, error)
	Activate(ctx context.Context, userID int64, code string) error

	// Verify rechecks a code for sensitive operations after login.
	Verify(ctx context.Context, userID int64, code string) error

	BeginRotation(ctx context.Context, user models.User) (models.TOTPEnrollmentResponse, error)
	ConfirmRotation(ctx context.Context, userID int64, req models.TOTPRotateConfirmRequest) error
	Disable(ctx context.Context, user models.User, req models.TOTPDisableRequest) error
	BackupCodes(ctx context.Context, userID int64) (models.BackupCodesResponse, error)
}

// MembershipService owns billing webhook processing, status reporting, and
// the expiry sweep.
type MembershipService interface {
	// HandlePaymentEvent processes one webhook call. The returned string
	// is the platform-facing status: "ok" or "ignored".
	HandlePaymentEvent(ctx context.Context, event models.PaymentWebhookRequest) (string, error)

	Status(ctx context.Context, user models.User) models.MembershipStatusResponse

	// SweepExpired downgrades lapsed paid tiers and returns how many
	// accounts were touched.
	SweepExpired(ctx context.Context) (int, error)
}

// AdminService owns the privileged console operations.
type AdminService interface {
	Overview(ctx context.Context) (models.AdminOverviewResponse, error)
	RegistrationTrend(ctx context.Context, days int) ([]models.TrendPoint, error)

	ListUsers(ctx context.Context, filter store.UserFilter) ([]models.User, int64, error)
	UserDetail(ctx context.Context, userID int64) (models.User, error)
	UpdateUserRole(ctx context.Context, actor models.User, userID int64, role string) error
	UpdateUserStatus(ctx context.Context, actor models.User, userID int64, active bool) error
	DeleteUser(ctx context.Context, actor models.User, userID int64) error

	ListProviders(ctx context.Context) ([]models.Provider, error)
	CreateProvider(ctx context.Context, req models.ProviderRequest) (models.Provider, error)
	UpdateProvider(ctx context.Context, providerID int64, req models.ProviderRequest) error
	SetProviderActive(ctx context.Context, providerID int64, active bool) error
	DeleteProvider(ctx context.Context, providerID int64) error

	ListModels(ctx context.Context) ([]models.APIModel, error)
	CreateModel(ctx context.Context, req models.APIModelRequest) (models.APIModel, error)
	UpdateModel(ctx context.Context, modelID int64, req models.APIModelRequest) error
	DeleteModel(ctx context.Context, modelID int64) error
}

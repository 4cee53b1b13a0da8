// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"time"

	"github.com/ikunfydeos-tech/APIKey/internal/captcha"
	"github.com/ikunfydeos-tech/APIKey/internal/store"
	"github.com/ikunfydeos-tech/APIKey/models"
)

// Hand-written mocks: each repository method delegates to an optional
// function field and falls back to a zero-value success.

type mockUserRepo struct {
	createFn             func(ctx context.Context, user models.User) (models.User, error)
	findByUsernameFn     func(ctx context.Context, username string) (models.User, error)
	findByIDFn           func(ctx context.Context, userID int64) (models.User, error)
	recordLoginFailureFn func(ctx context.Context, userID int64, threshold int, lockFor time.Duration) (int, error)
	resetLoginSecurityFn func(ctx context.Context, userID int64) error
	updatePasswordFn     func(ctx context.Context, userID int64, hash string) error
	updateRoleFn         func(ctx context.Context, userID int64, role string) error
	registrationTrendFn  func(ctx context.Context, days int) ([]models.TrendPoint, error)
	updateMembershipFn   func(ctx context.Context, userID int64, tier string, expireAt time.Time, startedAt *time.Time) error
	downgradeExpiredFn   func(ctx context.Context, now time.Time) ([]models.User, error)
	deleteFn             func(ctx context.Context, userID int64) error
}

func (m *mockUserRepo) Create(ctx context.Context, user models.User) (models.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return user, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (models.User, error) {
	if m.findByUsernameFn != nil {
		return m.findByUsernameFn(ctx, username)
	}
	return models.User{}, store.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, userID int64) (models.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, userID)
	}
	return models.User{}, store.ErrUserNotFound
}

func (m *mockUserRepo) List(ctx context.Context, filter store.UserFilter) ([]models.User, int64, error) {
	return nil, 0, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID)
	}
	return nil
}

func (m *mockUserRepo) RecordLoginFailure(ctx context.Context, userID int64, threshold int, lockFor time.Duration) (int, error) {
	if m.recordLoginFailureFn != nil {
		return m.recordLoginFailureFn(ctx, userID, threshold, lockFor)
	}
	return 1, nil
}

func (m *mockUserRepo) ResetLoginSecurity(ctx context.Context, userID int64) error {
	if m.resetLoginSecurityFn != nil {
		return m.resetLoginSecurityFn(ctx, userID)
	}
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(ctx, userID, hash)
	}
	return nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, userID int64, role string) error {
	if m.updateRoleFn != nil {
		return m.updateRoleFn(ctx, userID, role)
	}
	return nil
}

func (m *mockUserRepo) UpdateActive(ctx context.Context, userID int64, active bool) error {
	return nil
}

func (m *mockUserRepo) UpdateMembership(ctx context.Context, userID int64, tier string, expireAt time.Time, startedAt *time.Time) error {
	if m.updateMembershipFn != nil {
		return m.updateMembershipFn(ctx, userID, tier, expireAt, startedAt)
	}
	return nil
}

func (m *mockUserRepo) DowngradeExpired(ctx context.Context, now time.Time) ([]models.User, error) {
	if m.downgradeExpiredFn != nil {
		return m.downgradeExpiredFn(ctx, now)
	}
	return nil, nil
}

func (m *mockUserRepo) CountAll(ctx context.Context) (int64, error)    { return 0, nil }
func (m *mockUserRepo) CountActive(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockUserRepo) CountPaid(ctx context.Context, now time.Time) (int64, error) { return 0, nil }

func (m *mockUserRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return 0, nil
}

func (m *mockUserRepo) RegistrationTrend(ctx context.Context, days int) ([]models.TrendPoint, error) {
	if m.registrationTrendFn != nil {
		return m.registrationTrendFn(ctx, days)
	}
	return nil, nil
}

type mockKeyRepo struct {
	createFn      func(ctx context.Context, key models.APIKey) (models.APIKey, error)
	findByIDFn    func(ctx context.Context, userID, keyID int64) (models.APIKey, error)
	updateFn      func(ctx context.Context, userID, keyID int64, upd store.KeyUpdate) (models.APIKey, error)
	countByUserFn func(ctx context.Context, userID int64) (int64, error)
}

func (m *mockKeyRepo) Create(ctx context.Context, key models.APIKey) (models.APIKey, error) {
	if m.createFn != nil {
		return m.createFn(ctx, key)
	}
	return key, nil
}

func (m *mockKeyRepo) FindByID(ctx context.Context, userID, keyID int64) (models.APIKey, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, userID, keyID)
	}
	return models.APIKey{}, store.ErrKeyNotFound
}

func (m *mockKeyRepo) List(ctx context.Context, userID int64, filter store.KeyFilter) ([]models.APIKey, int64, error) {
	return nil, 0, nil
}

func (m *mockKeyRepo) Update(ctx context.Context, userID, keyID int64, upd store.KeyUpdate) (models.APIKey, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, keyID, upd)
	}
	return models.APIKey{}, store.ErrKeyNotFound
}

func (m *mockKeyRepo) Delete(ctx context.Context, userID, keyID int64) error { return nil }

func (m *mockKeyRepo) TouchLastUsed(ctx context.Context, keyID int64) error { return nil }

func (m *mockKeyRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	if m.countByUserFn != nil {
		return m.countByUserFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockKeyRepo) CountAll(ctx context.Context) (int64, error) { return 0, nil }

type mockProviderRepo struct {
	findByIDFn func(ctx context.Context, providerID int64) (models.Provider, error)
}

func (m *mockProviderRepo) ListVisible(ctx context.Context, userID int64) ([]models.Provider, error) {
	return nil, nil
}

func (m *mockProviderRepo) ListAll(ctx context.Context) ([]models.Provider, error) { return nil, nil }

func (m *mockProviderRepo) FindByID(ctx context.Context, providerID int64) (models.Provider, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, providerID)
	}
	return models.Provider{ProviderID: providerID, Name: "openai", IsActive: true}, nil
}

func (m *mockProviderRepo) Create(ctx context.Context, provider models.Provider) (models.Provider, error) {
	return provider, nil
}

func (m *mockProviderRepo) Update(ctx context.Context, provider models.Provider) error { return nil }

func (m *mockProviderRepo) SetActive(ctx context.Context, providerID int64, active bool) error {
	return nil
}

func (m *mockProviderRepo) Delete(ctx context.Context, providerID int64) error { return nil }

func (m *mockProviderRepo) DeleteCustom(ctx context.Context, userID, providerID int64) error {
	return nil
}

func (m *mockProviderRepo) ListModels(ctx context.Context) ([]models.APIModel, error) {
	return nil, nil
}

func (m *mockProviderRepo) ModelsByProvider(ctx context.Context, providerID int64) ([]models.APIModel, error) {
	return nil, nil
}

func (m *mockProviderRepo) CreateModel(ctx context.Context, model models.APIModel) (models.APIModel, error) {
	return model, nil
}

func (m *mockProviderRepo) UpdateModel(ctx context.Context, model models.APIModel) error { return nil }

func (m *mockProviderRepo) DeleteModel(ctx context.Context, modelID int64) error { return nil }

type mockTOTPRepo struct {
	findByUserFn    func(ctx context.Context, userID int64) (models.TOTPConfig, error)
	upsertFn        func(ctx context.Context, userID int64, secret string) (models.TOTPConfig, error)
	setEnabledFn    func(ctx context.Context, userID int64, enabled bool) error
	replaceSecretFn func(ctx context.Context, userID int64, secret string) error
	deleteFn        func(ctx context.Context, userID int64) error
}

func (m *mockTOTPRepo) FindByUser(ctx context.Context, userID int64) (models.TOTPConfig, error) {
	if m.findByUserFn != nil {
		return m.findByUserFn(ctx, userID)
	}
	return models.TOTPConfig{}, store.ErrTOTPNotFound
}

func (m *mockTOTPRepo) Upsert(ctx context.Context, userID int64, secret string) (models.TOTPConfig, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, userID, secret)
	}
	return models.TOTPConfig{UserID: userID, Secret: secret}, nil
}

func (m *mockTOTPRepo) SetEnabled(ctx context.Context, userID int64, enabled bool) error {
	if m.setEnabledFn != nil {
		return m.setEnabledFn(ctx, userID, enabled)
	}
	return nil
}

func (m *mockTOTPRepo) ReplaceSecret(ctx context.Context, userID int64, secret string) error {
	if m.replaceSecretFn != nil {
		return m.replaceSecretFn(ctx, userID, secret)
	}
	return nil
}

func (m *mockTOTPRepo) Delete(ctx context.Context, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID)
	}
	return nil
}

type mockAuditRepo struct {
	insertLogFn          func(ctx context.Context, entry models.LogEntry) error
	insertLoginHistoryFn func(ctx context.Context, record models.LoginHistory) error
}

func (m *mockAuditRepo) InsertLog(ctx context.Context, entry models.LogEntry) error {
	if m.insertLogFn != nil {
		return m.insertLogFn(ctx, entry)
	}
	return nil
}

func (m *mockAuditRepo) ListLogs(ctx context.Context, userID int64, filter store.LogFilter) ([]models.LogEntry, int64, error) {
	return nil, 0, nil
}

func (m *mockAuditRepo) DistinctActions(ctx context.Context, userID int64) ([]string, error) {
	return nil, nil
}

func (m *mockAuditRepo) InsertLoginHistory(ctx context.Context, record models.LoginHistory) error {
	if m.insertLoginHistoryFn != nil {
		return m.insertLoginHistoryFn(ctx, record)
	}
	return nil
}

func (m *mockAuditRepo) ListLoginHistory(ctx context.Context, userID int64, limit, offset int) ([]models.LoginHistory, int64, error) {
	return nil, 0, nil
}

// mockCaptcha approves or rejects every verification uniformly.
type mockCaptcha struct {
	ok bool
}

func (m *mockCaptcha) Challenge() (captcha.Challenge, error) {
	return captcha.Challenge{Token: "token", Image: "data:image/png;base64,"}, nil
}

func (m *mockCaptcha) Verify(token, input string) bool { return m.ok }

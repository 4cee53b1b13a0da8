// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"

	"github.com/ikunfydeos-tech/APIKey/internal/captcha"
	"github.com/ikunfydeos-tech/APIKey/internal/service"
	"github.com/ikunfydeos-tech/APIKey/internal/store"
	"github.com/ikunfydeos-tech/APIKey/models"
)

// Func-field mocks over the service interfaces. Tests set only the fields
// they exercise; unset fields return zero values or a sentinel.

type mockAuthService struct {
	registerFn    func(ctx context.Context, req models.RegisterRequest, client service.ClientInfo) (models.User, error)
	loginFn       func(ctx context.Context, req models.LoginRequest, client service.ClientInfo) (models.User, error)
	createTokenFn func(ctx context.Context, user models.User) (models.Token, error)
	parseTokenFn  func(ctx context.Context, tokenString string) (models.Token, error)
	userFn        func(ctx context.Context, userID int64) (models.User, error)

	changePasswordFn func(ctx context.Context, userID int64, req models.ChangePasswordRequest) error
	deleteAccountFn  func(ctx context.Context, userID int64, password string, client service.ClientInfo) error
}

func (m *mockAuthService) Register(ctx context.Context, req models.RegisterRequest, client service.ClientInfo) (models.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, req, client)
	}
	return models.User{}, service.ErrInvalidDataProvided
}

func (m *mockAuthService) Login(ctx context.Context, req models.LoginRequest, client service.ClientInfo) (models.User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, req, client)
	}
	return models.User{}, service.ErrInvalidCredentials
}

func (m *mockAuthService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	if m.createTokenFn != nil {
		return m.createTokenFn(ctx, user)
	}
	return models.Token{SignedString: "signed-token"}, nil
}

func (m *mockAuthService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	if m.parseTokenFn != nil {
		return m.parseTokenFn(ctx, tokenString)
	}
	return models.Token{}, service.ErrTokenIsExpiredOrInvalid
}

func (m *mockAuthService) User(ctx context.Context, userID int64) (models.User, error) {
	if m.userFn != nil {
		return m.userFn(ctx, userID)
	}
	return models.User{}, store.ErrUserNotFound
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID int64, req models.ChangePasswordRequest) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(ctx, userID, req)
	}
	return nil
}

func (m *mockAuthService) DeleteAccount(ctx context.Context, userID int64, password string, client service.ClientInfo) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(ctx, userID, password, client)
	}
	return nil
}

func (m *mockAuthService) LoginHistory(ctx context.Context, userID int64, limit, offset int) ([]models.LoginHistory, int64, error) {
	return nil, 0, nil
}

func (m *mockAuthService) Logs(ctx context.Context, userID int64, filter store.LogFilter) ([]models.LogEntry, int64, error) {
	return nil, 0, nil
}

func (m *mockAuthService) LogActions(ctx context.Context, userID int64) ([]string, error) {
	return nil, nil
}

type mockKeyService struct {
	createFn func(ctx context.Context, user models.User, req models.CreateKeyRequest, client service.ClientInfo) (models.APIKey, error)
	listFn   func(ctx context.Context, userID int64, filter store.KeyFilter) ([]models.APIKey, int64, error)
	revealFn func(ctx context.Context, userID, keyID int64, client service.ClientInfo) (models.APIKey, string, error)
	deleteFn func(ctx context.Context, userID, keyID int64, client service.ClientInfo) error
}

func (m *mockKeyService) Create(ctx context.Context, user models.User, req models.CreateKeyRequest, client service.ClientInfo) (models.APIKey, error) {
	if m.createFn != nil {
		return m.createFn(ctx, user, req, client)
	}
	return models.APIKey{}, service.ErrInvalidDataProvided
}

func (m *mockKeyService) List(ctx context.Context, userID int64, filter store.KeyFilter) ([]models.APIKey, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, filter)
	}
	return nil, 0, nil
}

func (m *mockKeyService) Reveal(ctx context.Context, userID, keyID int64, client service.ClientInfo) (models.APIKey, string, error) {
	if m.revealFn != nil {
		return m.revealFn(ctx, userID, keyID, client)
	}
	return models.APIKey{}, "", store.ErrKeyNotFound
}

func (m *mockKeyService) Update(ctx context.Context, userID, keyID int64, req models.UpdateKeyRequest, client service.ClientInfo) (models.APIKey, error) {
	return models.APIKey{}, store.ErrKeyNotFound
}

func (m *mockKeyService) Delete(ctx context.Context, userID, keyID int64, client service.ClientInfo) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, keyID, client)
	}
	return nil
}

func (m *mockKeyService) Limits(ctx context.Context, user models.User) (models.KeyLimitsResponse, error) {
	return models.KeyLimitsResponse{}, nil
}

func (m *mockKeyService) Probe(ctx context.Context, userID, keyID int64) (models.KeyProbeResponse, error) {
	return models.KeyProbeResponse{}, nil
}

func (m *mockKeyService) VisibleProviders(ctx context.Context, userID int64) ([]models.Provider, error) {
	return nil, nil
}

func (m *mockKeyService) CreateCustomProvider(ctx context.Context, userID int64, req models.CreateCustomProviderRequest) (models.Provider, error) {
	return models.Provider{}, nil
}

func (m *mockKeyService) DeleteCustomProvider(ctx context.Context, userID, providerID int64) error {
	return nil
}

func (m *mockKeyService) Models(ctx context.Context) ([]models.APIModel, error) {
	return nil, nil
}

func (m *mockKeyService) ModelsByProvider(ctx context.Context, providerID int64) ([]models.APIModel, error) {
	return nil, nil
}

type mockTOTPService struct {
	statusFn func(ctx context.Context, userID int64) (models.TOTPStatusResponse, error)
}

func (m *mockTOTPService) Status(ctx context.Context, userID int64) (models.TOTPStatusResponse, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx, userID)
	}
	return models.TOTPStatusResponse{}, nil
}

func (m *mockTOTPService) Enroll(ctx context.Context, user models.User) (models.TOTPEnrollmentResponse, error) {
	return models.TOTPEnrollmentResponse{}, nil
}

func (m *mockTOTPService) Activate(ctx context.Context, userID int64, code string) error {
	return nil
}

func (m *mockTOTPService) Verify(ctx context.Context, userID int64, code string) error {
	return nil
}

func (m *mockTOTPService) BeginRotation(ctx context.Context, user models.User) (models.TOTPEnrollmentResponse, error) {
	return models.TOTPEnrollmentResponse{}, nil
}

func (m *mockTOTPService) ConfirmRotation(ctx context.Context, userID int64, req models.TOTPRotateConfirmRequest) error {
	return nil
}

func (m *mockTOTPService) Disable(ctx context.Context, user models.User, req models.TOTPDisableRequest) error {
	return nil
}

func (m *mockTOTPService) BackupCodes(ctx context.Context, userID int64) (models.BackupCodesResponse, error) {
	return models.BackupCodesResponse{}, nil
}

type mockMembershipService struct {
	handleFn func(ctx context.Context, event models.PaymentWebhookRequest) (string, error)
}

func (m *mockMembershipService) HandlePaymentEvent(ctx context.Context, event models.PaymentWebhookRequest) (string, error) {
	if m.handleFn != nil {
		return m.handleFn(ctx, event)
	}
	return service.WebhookIgnored, nil
}

func (m *mockMembershipService) Status(ctx context.Context, user models.User) models.MembershipStatusResponse {
	return models.MembershipStatusResponse{Tier: user.MembershipTier}
}

func (m *mockMembershipService) SweepExpired(ctx context.Context) (int, error) {
	return 0, nil
}

type mockAdminService struct {
	overviewFn   func(ctx context.Context) (models.AdminOverviewResponse, error)
	deleteUserFn func(ctx context.Context, actor models.User, userID int64) error
}

func (m *mockAdminService) Overview(ctx context.Context) (models.AdminOverviewResponse, error) {
	if m.overviewFn != nil {
		return m.overviewFn(ctx)
	}
	return models.AdminOverviewResponse{}, nil
}

func (m *mockAdminService) RegistrationTrend(ctx context.Context, days int) ([]models.TrendPoint, error) {
	return nil, nil
}

func (m *mockAdminService) ListUsers(ctx context.Context, filter store.UserFilter) ([]models.User, int64, error) {
	return nil, 0, nil
}

func (m *mockAdminService) UserDetail(ctx context.Context, userID int64) (models.User, error) {
	return models.User{}, store.ErrUserNotFound
}

func (m *mockAdminService) UpdateUserRole(ctx context.Context, actor models.User, userID int64, role string) error {
	return nil
}

func (m *mockAdminService) UpdateUserStatus(ctx context.Context, actor models.User, userID int64, active bool) error {
	return nil
}

func (m *mockAdminService) DeleteUser(ctx context.Context, actor models.User, userID int64) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(ctx, actor, userID)
	}
	return nil
}

func (m *mockAdminService) ListProviders(ctx context.Context) ([]models.Provider, error) {
	return nil, nil
}

func (m *mockAdminService) CreateProvider(ctx context.Context, req models.ProviderRequest) (models.Provider, error) {
	return models.Provider{}, nil
}

func (m *mockAdminService) UpdateProvider(ctx context.Context, providerID int64, req models.ProviderRequest) error {
	return nil
}

func (m *mockAdminService) SetProviderActive(ctx context.Context, providerID int64, active bool) error {
	return nil
}

func (m *mockAdminService) DeleteProvider(ctx context.Context, providerID int64) error {
	return nil
}

func (m *mockAdminService) ListModels(ctx context.Context) ([]models.APIModel, error) {
	return nil, nil
}

func (m *mockAdminService) CreateModel(ctx context.Context, req models.APIModelRequest) (models.APIModel, error) {
	return models.APIModel{}, nil
}

func (m *mockAdminService) UpdateModel(ctx context.Context, modelID int64, req models.APIModelRequest) error {
	return nil
}

func (m *mockAdminService) DeleteModel(ctx context.Context, modelID int64) error {
	return nil
}

// mockCaptchaService returns a fixed challenge.
type mockCaptchaService struct {
	err error
}

func (m *mockCaptchaService) Challenge() (captcha.Challenge, error) {
	if m.err != nil {
		return captcha.Challenge{}, m.err
	}
	return captcha.Challenge{Token: "captcha-token", Image: "data:image/png;base64,AAAA"}, nil
}

func (m *mockCaptchaService) Verify(token, input string) bool {
	return token == "captcha-token"
}

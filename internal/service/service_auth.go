// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/ikunfydeos-tech/APIKey/internal/captcha"
	"github.com/ikunfydeos-tech/APIKey/internal/config"
	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/store"
	"github.com/ikunfydeos-tech/APIKey/internal/totp"
	"github.com/ikunfydeos-tech/APIKey/internal/utils"
	"github.com/ikunfydeos-tech/APIKey/models"
)

// Login security policy.
const (
	lockoutThreshold = 5
	lockoutDuration  = 30 * time.Minute
	minPasswordLen   = 8
	maxUsernameLen   = 64
)

// authService is the concrete implementation of AuthService.
//
// On login the lockout window is evaluated lazily against locked_until:
// there is no background unlock job, and a correct password during the
// window is still rejected. All authentication failures collapse into
// ErrInvalidCredentials so the response does not reveal which factor
// failed.
type authService struct {
	userRepository store.UserRepository
	totpRepository store.TOTPRepository
	audit          auditRecorder
	captcha        captcha.Service

	// requireCaptcha forces CAPTCHA verification on register and login.
	// In development a missing token is tolerated, but a present token
	// is still verified.
	requireCaptcha bool

	tokenSignKey  string
	tokenIssuer   string
	tokenDuration time.Duration

	logger *logger.Logger
}

// NewAuthService constructs an AuthService wired to the given repositories
// and populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewAuthService(
	userRepository store.UserRepository,
	totpRepository store.TOTPRepository,
	auditRepository store.AuditRepository,
	captchaService captcha.Service,
	cfg config.App,
	logger *logger.Logger,
) AuthService {
	return &authService{
		userRepository: userRepository,
		totpRepository: totpRepository,
		audit:          auditRecorder{auditRepository: auditRepository},
		captcha:        captchaService,
		requireCaptcha: cfg.IsProduction(),
		tokenSignKey:   cfg.TokenSignKey,
		tokenIssuer:    cfg.TokenIssuer,
		tokenDuration:  cfg.TokenDuration,
		logger:         logger,
	}
}

// Register creates a new account.
//
// Returns the persisted user (with a server-assigned UserID) or:
//   - ErrInvalidDataProvided for missing/overlong username or invalid email.
//   - ErrWeakPassword when the password is shorter than the policy minimum.
//   - ErrInvalidCredentials when CAPTCHA verification fails.
//   - store.ErrUserAlreadyExists (wrapped) when the username is taken.
func (a *authService) Register(ctx context.Context, req models.RegisterRequest, client ClientInfo) (models.User, error) {
	log := logger.FromContext(ctx)

	if req.Username == "" || len(req.Username) > maxUsernameLen {
		return models.User{}, ErrInvalidDataProvided
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return models.User{}, ErrInvalidDataProvided
	}
	if len(req.Password) < minPasswordLen {
		return models.User{}, ErrWeakPassword
	}
	if err := a.verifyCaptcha(req.CaptchaToken, req.CaptchaInput); err != nil {
		return models.User{}, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Err(err).Str("func", "*authService.Register").Msg("password hashing failed")
		return models.User{}, fmt.Errorf("password hashing failed: %w", err)
	}

	registered, err := a.userRepository.Create(ctx, models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		log.Err(err).Str("username", req.Username).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	a.audit.record(ctx, registered.UserID, ActionRegister, models.LogStatusSuccess, "", client.IPAddress)

	return registered, nil
}

// Login authenticates an existing user through every configured gate:
// CAPTCHA, lockout window, password, and (when enabled) TOTP.
//
// Each failed password or TOTP attempt increments the counter; the fifth
// consecutive failure locks the account for thirty minutes. A successful
// login resets the counter and records last_login.
func (a *authService) Login(ctx context.Context, req models.LoginRequest, client ClientInfo) (models.User, error) {
	log := logger.FromContext(ctx)

	if req.Username == "" || req.Password == "" {
		return models.User{}, ErrInvalidCredentials
	}
	if err := a.verifyCaptcha(req.CaptchaToken, req.CaptchaInput); err != nil {
		return models.User{}, err
	}

	user, err := a.userRepository.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		log.Err(err).Str("username", req.Username).Msg("user lookup failed")
		return models.User{}, fmt.Errorf("user lookup failed: %w", err)
	}

	if !user.IsActive {
		return models.User{}, ErrAccountDisabled
	}
	if user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
		return models.User{}, ErrAccountLocked
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return models.User{}, a.failLogin(ctx, user, client)
	}

	if err := a.checkSecondFactor(ctx, user.UserID, req.TOTPCode); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return models.User{}, a.failLogin(ctx, user, client)
		}
		return models.User{}, err
	}

	if err := a.userRepository.ResetLoginSecurity(ctx, user.UserID); err != nil {
		log.Err(err).Int64("userID", user.UserID).Msg("resetting login security failed")
	}
	a.recordHistory(ctx, user.UserID, client, true)
	a.audit.record(ctx, user.UserID, ActionLogin, models.LogStatusSuccess, "", client.IPAddress)

	return user, nil
}

// failLogin registers one failed attempt and returns the uniform
// credential error, or ErrAccountLocked when this attempt crossed the
// threshold.
func (a *authService) failLogin(ctx context.Context, user models.User, client ClientInfo) error {
	log := logger.FromContext(ctx)

	attempts, err := a.userRepository.RecordLoginFailure(ctx, user.UserID, lockoutThreshold, lockoutDuration)
	if err != nil {
		log.Err(err).Int64("userID", user.UserID).Msg("recording login failure failed")
	}
	a.recordHistory(ctx, user.UserID, client, false)
	a.audit.record(ctx, user.UserID, ActionLogin, models.LogStatusFailure, "", client.IPAddress)

	if attempts >= lockoutThreshold {
		return ErrAccountLocked
	}
	return ErrInvalidCredentials
}

// checkSecondFactor verifies the TOTP code when the account has an enabled
// configuration. Accounts without TOTP pass through untouched.
func (a *authService) checkSecondFactor(ctx context.Context, userID int64, code string) error {
	cfg, err := a.totpRepository.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrTOTPNotFound) {
			return nil
		}
		return fmt.Errorf("totp lookup failed: %w", err)
	}
	if !cfg.IsEnabled {
		return nil
	}

	if code == "" {
		return ErrTOTPRequired
	}

	ok, err := totp.ValidateCode(cfg.Secret, code, totp.DefaultWindow)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	return nil
}

func (a *authService) verifyCaptcha(token, input string) error {
	if a.captcha == nil {
		return nil
	}
	if token == "" && input == "" && !a.requireCaptcha {
		return nil
	}
	if !a.captcha.Verify(token, input) {
		return ErrInvalidCredentials
	}
	return nil
}

func (a *authService) recordHistory(ctx context.Context, userID int64, client ClientInfo, success bool) {
	log := logger.FromContext(ctx)

	err := a.audit.auditRepository.InsertLoginHistory(ctx, models.LoginHistory{
		UserID:    userID,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		Success:   success,
	})
	if err != nil {
		log.Err(err).Int64("userID", userID).Msg("login history write failed")
	}
}

// CreateToken issues a signed JWT for the given user.
func (a *authService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, user.UserID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string. Any validation failure
// (expired, wrong issuer, malformed, bad signature) is normalised to
// ErrTokenIsExpiredOrInvalid so callers do not inspect low-level JWT
// errors.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}

// User loads the account by id for context injection in the auth
// middleware.
func (a *authService) User(ctx context.Context, userID int64) (models.User, error) {
	user, err := a.userRepository.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("user lookup failed: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the current password and stores a new hash
// subject to the same length policy as registration.
func (a *authService) ChangePassword(ctx context.Context, userID int64, req models.ChangePasswordRequest) error {
	log := logger.FromContext(ctx)

	if len(req.NewPassword) < minPasswordLen {
		return ErrWeakPassword
	}

	user, err := a.userRepository.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user lookup failed: %w", err)
	}
	if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		log.Err(err).Str("func", "*authService.ChangePassword").Msg("password hashing failed")
		return fmt.Errorf("password hashing failed: %w", err)
	}

	if err := a.userRepository.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("password update failed: %w", err)
	}

	a.audit.record(ctx, userID, ActionChangePassword, models.LogStatusSuccess, "", "")

	return nil
}

// DeleteAccount removes the caller's account after a password
// confirmation. Keys, TOTP state, logs, and history cascade with the row.
func (a *authService) DeleteAccount(ctx context.Context, userID int64, password string, client ClientInfo) error {
	user, err := a.userRepository.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user lookup failed: %w", err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return ErrInvalidCredentials
	}

	a.audit.record(ctx, userID, ActionDeleteAccount, models.LogStatusSuccess, "", client.IPAddress)

	if err := a.userRepository.Delete(ctx, userID); err != nil {
		return fmt.Errorf("account deletion failed: %w", err)
	}

	return nil
}

// LoginHistory pages the caller's authentication attempts.
func (a *authService) LoginHistory(ctx context.Context, userID int64, limit, offset int) ([]models.LoginHistory, int64, error) {
	return a.audit.auditRepository.ListLoginHistory(ctx, userID, limit, offset)
}

// Logs pages the caller's operation audit records.
func (a *authService) Logs(ctx context.Context, userID int64, filter store.LogFilter) ([]models.LogEntry, int64, error) {
	return a.audit.auditRepository.ListLogs(ctx, userID, filter)
}

// LogActions lists the distinct action names present in the caller's log.
func (a *authService) LogActions(ctx context.Context, userID int64) ([]string, error) {
	return a.audit.auditRepository.DistinctActions(ctx, userID)
}

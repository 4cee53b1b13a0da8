// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikunfydeos-tech/APIKey/internal/config"
	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/store"
	"github.com/ikunfydeos-tech/APIKey/internal/totp"
	"github.com/ikunfydeos-tech/APIKey/internal/utils"
	"github.com/ikunfydeos-tech/APIKey/models"
)

func testAppConfig() config.App {
	return config.App{
		Environment:   config.EnvDevelopment,
		TokenSignKey:  "test-sign-key",
		TokenIssuer:   "api-key-vault",
		TokenDuration: time.Hour,
	}
}

func newTestAuthService(users *mockUserRepo, totps *mockTOTPRepo, audit *mockAuditRepo, cap *mockCaptcha) AuthService {
	if users == nil {
		users = &mockUserRepo{}
	}
	if totps == nil {
		totps = &mockTOTPRepo{}
	}
	if audit == nil {
		audit = &mockAuditRepo{}
	}
	var capSvc *mockCaptcha
	if cap != nil {
		capSvc = cap
	} else {
		capSvc = &mockCaptcha{ok: true}
	}
	return NewAuthService(users, totps, audit, capSvc, testAppConfig(), logger.Nop())
}

func storedUser(t *testing.T, password string) models.User {
	t.Helper()

	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return models.User{
		UserID:         1,
		Username:       "alice",
		Email:          "alice@example.com",
		PasswordHash:   hash,
		Role:           models.RoleUser,
		MembershipTier: models.TierFree,
		IsActive:       true,
	}
}

func TestAuthService_Register(t *testing.T) {
	t.Run("valid registration creates the user", func(t *testing.T) {
		var created models.User
		users := &mockUserRepo{
			createFn: func(ctx context.Context, user models.User) (models.User, error) {
				user.UserID = 1
				created = user
				return user, nil
			},
		}
		svc := newTestAuthService(users, nil, nil, nil)

		registered, err := svc.Register(context.Background(), models.RegisterRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "correct horse",
		}, ClientInfo{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), registered.UserID)
		assert.NotEqual(t, "correct horse", created.PasswordHash)
		assert.True(t, utils.CheckPassword(created.PasswordHash, "correct horse"))
	})

	t.Run("short password is rejected", func(t *testing.T) {
		svc := newTestAuthService(nil, nil, nil, nil)

		_, err := svc.Register(context.Background(), models.RegisterRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "short",
		}, ClientInfo{})
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("invalid email is rejected", func(t *testing.T) {
		svc := newTestAuthService(nil, nil, nil, nil)

		_, err := svc.Register(context.Background(), models.RegisterRequest{
			Username: "alice",
			Email:    "not-an-email",
			Password: "correct horse",
		}, ClientInfo{})
		assert.ErrorIs(t, err, ErrInvalidDataProvided)
	})

	t.Run("failed captcha is indistinguishable from bad credentials", func(t *testing.T) {
		svc := newTestAuthService(nil, nil, nil, &mockCaptcha{ok: false})

		_, err := svc.Register(context.Background(), models.RegisterRequest{
			Username:     "alice",
			Email:        "alice@example.com",
			Password:     "correct horse",
			CaptchaToken: "tok",
			CaptchaInput: "WRONG",
		}, ClientInfo{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("unknown user and wrong password yield the same error", func(t *testing.T) {
		user := storedUser(t, "correct horse")
		users := &mockUserRepo{
			findByUsernameFn: func(ctx context.Context, username string) (models.User, error) {
				if username == "alice" {
					return user, nil
				}
				return models.User{}, store.ErrUserNotFound
			},
		}
		svc := newTestAuthService(users, nil, nil, nil)

		_, errUnknown := svc.Login(context.Background(), models.LoginRequest{
			Username: "ghost", Password: "whatever1",
		}, ClientInfo{})
		_, errWrongPass := svc.Login(context.Background(), models.LoginRequest{
			Username: "alice", Password: "wrong password",
		}, ClientInfo{})

		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	})

	t.Run("locked account rejects even the correct password", func(t *testing.T) {
		user := storedUser(t, "correct horse")
		lockedUntil := time.Now().Add(10 * time.Minute)
		user.LockedUntil = &lockedUntil
		users := &mockUserRepo{
			findByUsernameFn: func(ctx context.Context, username string) (models.User, error) {
				return user, nil
			},
		}
		svc := newTestAuthService(users, nil, nil, nil)

		_, err := svc.Login(context.Background(), models.LoginRequest{
			Username: "alice", Password: "correct horse",
		}, ClientInfo{})
		assert.ErrorIs(t, err, ErrAccountLocked)
	})

	t.Run("expired lock window admits the correct password", func(t *testing.T) {
		user := storedUser(t, "correct horse")
		lockedUntil := time.Now().Add(-time.Minute)
		user.LockedUntil = &lockedUntil
		reset := false
		users := &mockUserRepo{
			findByUsernameFn: func(ctx context.Context, username string) (models.User, error) {
				return user, nil
			},
			resetLoginSecurityFn: func(ctx context.Context, userID int64) error {
				reset = true
				return nil
			},
		}
		svc := newTestAuthService(users, nil, nil, nil)

		logged, err := svc.Login(context.Background(), models.LoginRequest{
			Username: "alice", Password: "correct horse",
		}, ClientInfo{})
		require.NoError(t, err)
		assert.Equal(t, user.UserID, logged.UserID)
		assert.True(t, reset)
	})

	t.Run("disabled account is rejected before the password check", func(t *testing.T) {
		user := storedUser(t, "correct horse")
		user.IsActive = false
		users := &mockUserRepo{
			findByUsernameFn: func(ctx context.Context, username string) (models.User, error) {
				return user, nil
			},
		}
		svc := newTestAuthService(users, nil, nil, nil)

		_, err := svc.Login(context.Background(), models.LoginRequest{
			Username: "alice", Password: "correct horse",
		}, ClientInfo{})
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})

	t.Run("threshold failure locks the account", func(t *testing.T) {
		user := storedUser(t, "correct horse")
		users := &mockUserRepo{
			findByUsernameFn: func(ctx context.Context, username string) (models.User, error) {
				return user, nil
			},
			recordLoginFailureFn: func(ctx context.Context, userID int64, threshold int, lockFor time.Duration) (int, error) {
				assert.Equal(t, 5, threshold)
				assert.Equal(t, 30*time.Minute, lockFor)
				return 5, nil
			},
		}
		svc := newTestAuthService(users, nil, nil, nil)

		_, err := svc.Login(context.Background(), models.LoginRequest{
			Username: "alice", Password: "wrong password",
		}, ClientInfo{})
		assert.ErrorIs(t, err, ErrAccountLocked)
	})

	t.Run("enabled totp demands a code", func(t *testing.T) {
		user := storedUser(t, "correct horse")
		secret, err := totp.GenerateSecret()
		require.NoError(t, err)

		users := &mockUserRepo{
			findByUsernameFn: func(ctx context.Context, username string) (models.User, error) {
				return user, nil
			},
		}
		totps := &mockTOTPRepo{
			findByUserFn: func(ctx context.Context, userID int64) (models.TOTPConfig, error) {
				return models.TOTPConfig{UserID: userID, Secret: secret, IsEnabled: true}, nil
			},
		}
		svc := newTestAuthService(users, totps, nil, nil)

		_, err = svc.Login(context.Background(), models.LoginRequest{
			Username: "alice", Password: "correct horse",
		}, ClientInfo{})
		assert.ErrorIs(t, err, ErrTOTPRequired)

		_, err = svc.Login(context.Background(), models.LoginRequest{
			Username: "alice", Password: "correct horse", TOTPCode: "000000",
		}, ClientInfo{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		code, err := totp.GenerateCode(secret)
		require.NoError(t, err)
		logged, err := svc.Login(context.Background(), models.LoginRequest{
			Username: "alice", Password: "correct horse", TOTPCode: code,
		}, ClientInfo{})
		require.NoError(t, err)
		assert.Equal(t, user.UserID, logged.UserID)
	})

	t.Run("login attempts are recorded in history", func(t *testing.T) {
		user := storedUser(t, "correct horse")
		var history []models.LoginHistory
		users := &mockUserRepo{
			findByUsernameFn: func(ctx context.Context, username string) (models.User, error) {
				return user, nil
			},
		}
		audit := &mockAuditRepo{
			insertLoginHistoryFn: func(ctx context.Context, record models.LoginHistory) error {
				history = append(history, record)
				return nil
			},
		}
		svc := newTestAuthService(users, nil, audit, nil)

		_, _ = svc.Login(context.Background(), models.LoginRequest{
			Username: "alice", Password: "wrong password",
		}, ClientInfo{IPAddress: "203.0.113.7"})
		_, err := svc.Login(context.Background(), models.LoginRequest{
			Username: "alice", Password: "correct horse",
		}, ClientInfo{IPAddress: "203.0.113.7"})
		require.NoError(t, err)

		require.Len(t, history, 2)
		assert.False(t, history[0].Success)
		assert.True(t, history[1].Success)
		assert.Equal(t, "203.0.113.7", history[0].IPAddress)
	})
}

func TestAuthService_TokenLifecycle(t *testing.T) {
	svc := newTestAuthService(nil, nil, nil, nil)
	user := models.User{UserID: 42}

	token, err := svc.CreateToken(context.Background(), user)
	require.NoError(t, err)
	require.NotEmpty(t, token.SignedString)

	parsed, err := svc.ParseToken(context.Background(), token.SignedString)
	require.NoError(t, err)
	assert.Equal(t, int64(42), parsed.UserID)

	_, err = svc.ParseToken(context.Background(), token.SignedString+"tampered")
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}

func TestAuthService_ChangePassword(t *testing.T) {
	user := storedUser(t, "correct horse")

	t.Run("wrong current password is rejected", func(t *testing.T) {
		users := &mockUserRepo{
			findByIDFn: func(ctx context.Context, userID int64) (models.User, error) {
				return user, nil
			},
		}
		svc := newTestAuthService(users, nil, nil, nil)

		err := svc.ChangePassword(context.Background(), 1, models.ChangePasswordRequest{
			CurrentPassword: "wrong password",
			NewPassword:     "new password!",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("valid change stores a fresh hash", func(t *testing.T) {
		var stored string
		users := &mockUserRepo{
			findByIDFn: func(ctx context.Context, userID int64) (models.User, error) {
				return user, nil
			},
			updatePasswordFn: func(ctx context.Context, userID int64, hash string) error {
				stored = hash
				return nil
			},
		}
		svc := newTestAuthService(users, nil, nil, nil)

		err := svc.ChangePassword(context.Background(), 1, models.ChangePasswordRequest{
			CurrentPassword: "correct horse",
			NewPassword:     "new password!",
		})
		require.NoError(t, err)
		assert.True(t, utils.CheckPassword(stored, "new password!"))
	})
}

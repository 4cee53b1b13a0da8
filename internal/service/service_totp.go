// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/store"
	"github.com/ikunfydeos-tech/APIKey/internal/totp"
	"github.com/ikunfydeos-tech/APIKey/internal/utils"
	"github.com/ikunfydeos-tech/APIKey/models"
)

const backupCodeCount = 8

// totpService is the concrete implementation of TOTPService.
//
// Rotation is a two-step protocol: BeginRotation issues a candidate secret
// without persisting anything, and ConfirmRotation commits it only after
// the caller proves possession of both the old and the new secret. An
// aborted or failed confirmation leaves the stored secret untouched.
type totpService struct {
	totpRepository store.TOTPRepository
	issuer         string
	logger         *logger.Logger
}

// NewTOTPService constructs a TOTPService. issuer labels enrollments in
// authenticator apps.
func NewTOTPService(totpRepository store.TOTPRepository, issuer string, logger *logger.Logger) TOTPService {
	return &totpService{
		totpRepository: totpRepository,
		issuer:         issuer,
		logger:         logger,
	}
}

// Status reports whether the caller has a configuration and whether it is
// activated.
func (s *totpService) Status(ctx context.Context, userID int64) (models.TOTPStatusResponse, error) {
	cfg, err := s.totpRepository.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrTOTPNotFound) {
			return models.TOTPStatusResponse{}, nil
		}
		return models.TOTPStatusResponse{}, fmt.Errorf("totp lookup failed: %w", err)
	}

	return models.TOTPStatusResponse{Enrolled: true, Enabled: cfg.IsEnabled}, nil
}

// Enroll generates a fresh secret and stores it deactivated. Re-enrolling
// over a not-yet-activated secret replaces it; an enabled configuration
// must be disabled first.
func (s *totpService) Enroll(ctx context.Context, user models.User) (models.TOTPEnrollmentResponse, error) {
	existing, err := s.totpRepository.FindByUser(ctx, user.UserID)
	if err == nil && existing.IsEnabled {
		return models.TOTPEnrollmentResponse{}, ErrTOTPAlreadyEnabled
	}
	if err != nil && !errors.Is(err, store.ErrTOTPNotFound) {
		return models.TOTPEnrollmentResponse{}, fmt.Errorf("totp lookup failed: %w", err)
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return models.TOTPEnrollmentResponse{}, fmt.Errorf("secret generation failed: %w", err)
	}

	if _, err := s.totpRepository.Upsert(ctx, user.UserID, secret); err != nil {
		return models.TOTPEnrollmentResponse{}, fmt.Errorf("totp enrollment failed: %w", err)
	}

	return s.enrollmentMaterial(user.Username, secret)
}

// Activate flips the configuration to enabled after one valid code proves
// the authenticator holds the secret.
func (s *totpService) Activate(ctx context.Context, userID int64, code string) error {
	cfg, err := s.totpRepository.FindByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("totp lookup failed: %w", err)
	}
	if cfg.IsEnabled {
		return ErrTOTPAlreadyEnabled
	}

	ok, err := totp.ValidateCode(cfg.Secret, code, totp.DefaultWindow)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	if err := s.totpRepository.SetEnabled(ctx, userID, true); err != nil {
		return fmt.Errorf("totp activation failed: %w", err)
	}

	return nil
}

// Verify rechecks a code against the enabled configuration. Used for
// sensitive-operation step-up after login.
func (s *totpService) Verify(ctx context.Context, userID int64, code string) error {
	cfg, err := s.totpRepository.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrTOTPNotFound) {
			return ErrTOTPNotEnabled
		}
		return fmt.Errorf("totp lookup failed: %w", err)
	}
	if !cfg.IsEnabled {
		return ErrTOTPNotEnabled
	}

	ok, err := totp.ValidateCode(cfg.Secret, code, totp.DefaultWindow)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	return nil
}

// BeginRotation issues a candidate secret for an enabled configuration.
// Nothing is persisted: the candidate lives only in the response until
// ConfirmRotation commits it.
func (s *totpService) BeginRotation(ctx context.Context, user models.User) (models.TOTPEnrollmentResponse, error) {
	cfg, err := s.totpRepository.FindByUser(ctx, user.UserID)
	if err != nil {
		if errors.Is(err, store.ErrTOTPNotFound) {
			return models.TOTPEnrollmentResponse{}, ErrTOTPNotEnabled
		}
		return models.TOTPEnrollmentResponse{}, fmt.Errorf("totp lookup failed: %w", err)
	}
	if !cfg.IsEnabled {
		return models.TOTPEnrollmentResponse{}, ErrTOTPNotEnabled
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return models.TOTPEnrollmentResponse{}, fmt.Errorf("secret generation failed: %w", err)
	}

	return s.enrollmentMaterial(user.Username, secret)
}

// ConfirmRotation swaps the stored secret for the candidate. Both codes
// must be valid: OldCode against the stored secret, NewCode against the
// candidate. Any failure aborts before the swap, so the old secret keeps
// working.
func (s *totpService) ConfirmRotation(ctx context.Context, userID int64, req models.TOTPRotateConfirmRequest) error {
	if req.NewSecret == "" {
		return ErrInvalidDataProvided
	}

	cfg, err := s.totpRepository.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrTOTPNotFound) {
			return ErrTOTPNotEnabled
		}
		return fmt.Errorf("totp lookup failed: %w", err)
	}
	if !cfg.IsEnabled {
		return ErrTOTPNotEnabled
	}

	oldOK, err := totp.ValidateCode(cfg.Secret, req.OldCode, totp.DefaultWindow)
	if err != nil || !oldOK {
		return ErrInvalidCredentials
	}
	newOK, err := totp.ValidateCode(req.NewSecret, req.NewCode, totp.DefaultWindow)
	if err != nil || !newOK {
		return ErrInvalidCredentials
	}

	if err := s.totpRepository.ReplaceSecret(ctx, userID, req.NewSecret); err != nil {
		return fmt.Errorf("totp rotation failed: %w", err)
	}

	return nil
}

// Disable removes the configuration after the caller confirms with both
// the account password and a valid code.
func (s *totpService) Disable(ctx context.Context, user models.User, req models.TOTPDisableRequest) error {
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return ErrInvalidCredentials
	}

	if err := s.Verify(ctx, user.UserID, req.Code); err != nil {
		return err
	}

	if err := s.totpRepository.Delete(ctx, user.UserID); err != nil {
		return fmt.Errorf("totp disable failed: %w", err)
	}

	return nil
}

// BackupCodes issues fresh one-time recovery codes. They are returned once
// and not stored server-side.
func (s *totpService) BackupCodes(ctx context.Context, userID int64) (models.BackupCodesResponse, error) {
	if err := s.requireEnabled(ctx, userID); err != nil {
		return models.BackupCodesResponse{}, err
	}

	codes, err := totp.GenerateBackupCodes(backupCodeCount)
	if err != nil {
		return models.BackupCodesResponse{}, fmt.Errorf("backup code generation failed: %w", err)
	}

	return models.BackupCodesResponse{Codes: codes}, nil
}

func (s *totpService) requireEnabled(ctx context.Context, userID int64) error {
	cfg, err := s.totpRepository.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrTOTPNotFound) {
			return ErrTOTPNotEnabled
		}
		return fmt.Errorf("totp lookup failed: %w", err)
	}
	if !cfg.IsEnabled {
		return ErrTOTPNotEnabled
	}
	return nil
}

func (s *totpService) enrollmentMaterial(account, secret string) (models.TOTPEnrollmentResponse, error) {
	uri, err := totp.EnrollmentURI(s.issuer, account, secret)
	if err != nil {
		return models.TOTPEnrollmentResponse{}, fmt.Errorf("enrollment uri generation failed: %w", err)
	}
	qr, err := totp.EnrollmentQR(uri)
	if err != nil {
		return models.TOTPEnrollmentResponse{}, fmt.Errorf("enrollment qr generation failed: %w", err)
	}

	return models.TOTPEnrollmentResponse{Secret: secret, URI: uri, QRCode: qr}, nil
}

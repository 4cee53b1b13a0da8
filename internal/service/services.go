// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/ikunfydeos-tech/APIKey/internal/captcha"
	"github.com/ikunfydeos-tech/APIKey/internal/config"
	"github.com/ikunfydeos-tech/APIKey/internal/crypto"
	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/store"
)

// Services bundles every business-layer service for handler wiring.
type Services struct {
	AuthService       AuthService
	KeyService        KeyService
	TOTPService       TOTPService
	MembershipService MembershipService
	AdminService      AdminService
}

func NewServices(
	repos *store.Repositories,
	cipher crypto.Cipher,
	captchaService captcha.Service,
	cfg *config.StructuredConfig,
	logger *logger.Logger,
) *Services {
	return &Services{
		AuthService: NewAuthService(
			repos.UserRepository, repos.TOTPRepository, repos.AuditRepository,
			captchaService, cfg.App, logger),
		KeyService: NewKeyService(
			repos.KeyRepository, repos.ProviderRepository, repos.AuditRepository,
			cipher, logger),
		TOTPService:       NewTOTPService(repos.TOTPRepository, cfg.App.TokenIssuer, logger),
		MembershipService: NewMembershipService(repos.UserRepository, repos.AuditRepository, cfg.App, cfg.Payment, logger),
		AdminService:      NewAdminService(repos.UserRepository, repos.KeyRepository, repos.ProviderRepository, logger),
	}
}

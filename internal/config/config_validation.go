// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"time"
)

// Development fallbacks. Only applied outside production; validate()
// refuses to start production with any of them missing.
const (
	defaultHTTPAddress    = "localhost:8080"
	defaultTokenIssuer    = "api-key-vault"
	defaultTokenDuration  = 24 * time.Hour
	defaultRequestTimeout = 30 * time.Second
	defaultSweepInterval  = 24 * time.Hour
	defaultCaptchaTTL     = 5 * time.Minute

	devMasterSecret   = "dev-master-secret-do-not-use"
	devEncryptionSalt = "dev-salt-16bytes"
	devTokenSignKey   = "dev-token-sign-key"
	devCaptchaKey     = "dev-captcha-sign-key"
)

// applyDefaults fills zero-valued fields after all sources are merged.
// Secrets are defaulted only in development; production must provide them
// explicitly and fails validation otherwise.
func (cfg *StructuredConfig) applyDefaults() {
	if cfg.App.Environment == "" {
		cfg.App.Environment = EnvDevelopment
	}
	if cfg.App.TokenIssuer == "" {
		cfg.App.TokenIssuer = defaultTokenIssuer
	}
	if cfg.App.TokenDuration == 0 {
		cfg.App.TokenDuration = defaultTokenDuration
	}
	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = defaultHTTPAddress
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Security.CaptchaTTL == 0 {
		cfg.Security.CaptchaTTL = defaultCaptchaTTL
	}
	if cfg.Workers.MembershipSweepInterval == 0 {
		cfg.Workers.MembershipSweepInterval = defaultSweepInterval
	}

	if !cfg.App.IsProduction() {
		if cfg.Security.MasterSecret == "" {
			cfg.Security.MasterSecret = devMasterSecret
		}
		if cfg.Security.EncryptionSalt == "" {
			cfg.Security.EncryptionSalt = devEncryptionSalt
		}
		if cfg.App.TokenSignKey == "" {
			cfg.App.TokenSignKey = devTokenSignKey
		}
		if cfg.Security.CaptchaSignKey == "" {
			cfg.Security.CaptchaSignKey = devCaptchaKey
		}
	}
}

// validate checks that the final merged [StructuredConfig] satisfies all
// startup invariants. In production every secret must be present and the
// salt exactly 16 bytes; violations are collected so the operator sees the
// full list in one failed start instead of one per restart.
func (cfg *StructuredConfig) validate() error {
	var errs []error

	if cfg.Storage.DB.DSN == "" {
		errs = append(errs, ErrMissingDSN)
	}

	if cfg.Security.EncryptionSalt != "" && len(cfg.Security.EncryptionSalt) != 16 {
		errs = append(errs, ErrInvalidEncryptionSalt)
	}

	if cfg.App.IsProduction() {
		if cfg.Security.MasterSecret == "" {
			errs = append(errs, ErrMissingMasterSecret)
		}
		if cfg.Security.EncryptionSalt == "" {
			errs = append(errs, ErrInvalidEncryptionSalt)
		}
		if cfg.App.TokenSignKey == "" {
			errs = append(errs, ErrMissingTokenSignKey)
		}
		if cfg.Security.CaptchaSignKey == "" {
			errs = append(errs, ErrMissingCaptchaSignKey)
		}
		if cfg.Payment.WebhookToken == "" {
			errs = append(errs, ErrMissingWebhookToken)
		}
	}

	return errors.Join(errs...)
}

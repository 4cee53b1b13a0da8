// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"strings"

	"github.com/ikunfydeos-tech/APIKey/internal/adminpath"
	"github.com/ikunfydeos-tech/APIKey/internal/captcha"
	"github.com/ikunfydeos-tech/APIKey/internal/config"
	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/service"
)

type Handler struct {
	services *service.Services
	captcha  captcha.Service

	// adminPath is the per-process obfuscated admin location. It is
	// generated at startup and never persisted.
	adminPath adminpath.State

	publicBaseURL string
	production    bool

	logger *logger.Logger
}

func NewHandler(
	services *service.Services,
	captchaService captcha.Service,
	adminPath adminpath.State,
	cfg *config.StructuredConfig,
	logger *logger.Logger,
) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:      services,
		captcha:       captchaService,
		adminPath:     adminPath,
		publicBaseURL: strings.TrimRight(cfg.Server.PublicBaseURL, "/"),
		production:    cfg.App.IsProduction(),
		logger:        logger,
	}
}

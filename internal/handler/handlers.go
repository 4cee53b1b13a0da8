// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import (
	"github.com/ikunfydeos-tech/APIKey/internal/adminpath"
	"github.com/ikunfydeos-tech/APIKey/internal/captcha"
	"github.com/ikunfydeos-tech/APIKey/internal/config"
	"github.com/ikunfydeos-tech/APIKey/internal/handler/http"
	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(
	services *service.Services,
	captchaService captcha.Service,
	adminPath adminpath.State,
	cfg *config.StructuredConfig,
	logger *logger.Logger,
) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.Server.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{
		HTTP: http.NewHandler(services, captchaService, adminPath, cfg, logger),
	}, nil
}

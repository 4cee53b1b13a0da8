// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"

	"github.com/ikunfydeos-tech/APIKey/internal/adminpath"
	"github.com/ikunfydeos-tech/APIKey/internal/captcha"
	"github.com/ikunfydeos-tech/APIKey/internal/config"
	"github.com/ikunfydeos-tech/APIKey/internal/crypto"
	"github.com/ikunfydeos-tech/APIKey/internal/handler"
	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/server"
	"github.com/ikunfydeos-tech/APIKey/internal/service"
	"github.com/ikunfydeos-tech/APIKey/internal/store"
	"github.com/ikunfydeos-tech/APIKey/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("apikey-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx := context.Background()

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	cipher, err := crypto.NewCipher(crypto.DeriveKey(cfg.Security.MasterSecret, []byte(cfg.Security.EncryptionSalt)))
	if err != nil {
		log.Fatal().Err(err).Msg("error building key cipher")
	}

	// The admin location is generated once per process and lives only in
	// memory. This log line is the operator's copy.
	adminPath, err := adminpath.New(cfg.Security.AdminPathLength)
	if err != nil {
		log.Fatal().Err(err).Msg("error generating admin path")
	}
	log.Info().Str("page", adminPath.PagePath()).Msg("admin console location for this process")

	captchaService := captcha.NewService(cfg.Security.CaptchaSignKey, cfg.Security.CaptchaTTL)

	repositories := store.NewRepositories(db, log)
	services := service.NewServices(repositories, cipher, captchaService, cfg, log)

	handlers, err := handler.NewHandlers(services, captchaService, adminPath, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	background := workers.NewWorkers(
		workers.NewMembershipSweeper(services.MembershipService, cfg.Workers.MembershipSweepInterval, log),
	)
	background.Start(ctx)
	defer background.Stop()

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}

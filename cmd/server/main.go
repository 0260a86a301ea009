// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package main

import (
	"context"
	"fmt"

	"github.com/strixun/edge-core/internal/config"
	handler "github.com/strixun/edge-core/internal/handler/http"
	"github.com/strixun/edge-core/internal/integrity"
	"github.com/strixun/edge-core/internal/logger"
	"github.com/strixun/edge-core/internal/server"
	"github.com/strixun/edge-core/internal/service"
	"github.com/strixun/edge-core/internal/store"
	"github.com/strixun/edge-core/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("edge-core-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Str("environment", cfg.App.Environment).Str("address", cfg.Server.HTTPAddress).Msg("received configs")

	kv, err := store.NewBoltKV(cfg.Storage.BoltPath)
	if err != nil {
		log.Fatal().Err(err).Msg("error opening kv store")
	}
	defer func() {
		if closeErr := kv.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("error closing kv store")
		}
	}()

	entities := store.NewEntityStore(kv)
	sender := service.NewHTTPEmailSender(cfg.Email, log)
	services := service.NewServices(entities, sender, cfg.App, log)

	var signer *integrity.Signer
	if cfg.App.IntegrityKeyphrase != "" {
		signer = integrity.NewSigner(cfg.App.IntegrityKeyphrase)
	}

	handlers := handler.NewHandler(services, signer, cfg, log)

	srv, err := server.NewServer(handlers.InitRoutes(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	backgroundWorkers := workers.NewWorkers(context.Background(), kv, cfg.Workers, log)
	backgroundWorkers.Run()

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

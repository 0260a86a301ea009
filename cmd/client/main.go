// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package main

import (
	"context"
	"fmt"

	"github.com/strixun/edge-core/internal/client"
	"github.com/strixun/edge-core/internal/config"
	"github.com/strixun/edge-core/internal/logger"
	"github.com/strixun/edge-core/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("edge-core-client")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	api := client.New(client.Config{
		ServiceName:        cfg.App.ServiceName,
		Environment:        cfg.App.Environment,
		ServiceKey:         cfg.App.ServiceAPIKey,
		IntegrityKeyphrase: cfg.App.IntegrityKeyphrase,
		RequestTimeout:     cfg.Client.RequestTimeout,
		MaxConcurrent:      cfg.Client.MaxConcurrent,
		Features: client.Features{
			Deduplication:  true,
			Queue:          true,
			CircuitBreaker: true,
			Retry:          true,
			Cache:          true,
		},
	}, log)

	resp, err := api.Do(context.Background(), client.Request{Path: "/health"})
	if err != nil {
		log.Fatal().Err(err).Msg("health check failed")
	}

	var health models.HealthResponse
	if err := resp.Decode(&health); err != nil {
		log.Fatal().Err(err).Msg("decode health response")
	}

	log.Info().Str("service", health.Service).Str("status", health.Status).Msg("service reachable")
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

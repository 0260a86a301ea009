// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-c/-config json file path with configs
//	-environment environment name (development, test, production)
//	-jwt-secret JWT signing secret
//	-token-issuer token issuer name
//	-token-duration token duration (e.g., "7h")
//	-integrity-keyphrase service-mesh HMAC keyphrase
//	-bolt-path bbolt database file path
//	-request-timeout request timeout (e.g., "30s", "1m")
func ParseFlags() *StructuredConfig {
	var serverAddress string
	var jsonConfigPath string
	var environment string
	var jwtSecret string
	var tokenIssuer string
	var tokenDuration time.Duration
	var integrityKeyphrase string
	var boltPath string
	var requestTimeout time.Duration

	flag.StringVar(&serverAddress, "a", "", "Net address host:port")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&environment, "environment", "", "Environment name")
	flag.StringVar(&jwtSecret, "jwt-secret", "", "JWT signing secret")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 7h)")
	flag.StringVar(&integrityKeyphrase, "integrity-keyphrase", "", "Service-mesh HMAC keyphrase")
	flag.StringVar(&boltPath, "bolt-path", "", "bbolt database file path")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			Environment:        environment,
			JWTSecret:          jwtSecret,
			TokenIssuer:        tokenIssuer,
			TokenDuration:      tokenDuration,
			IntegrityKeyphrase: integrityKeyphrase,
		},
		Storage: Storage{
			BoltPath: boltPath,
		},
		Server: Server{
			HTTPAddress:    serverAddress,
			RequestTimeout: requestTimeout,
		},
		JSONFilePath: jsonConfigPath,
	}
}

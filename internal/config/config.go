// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package config

import (
	"time"
)

// Environment names recognised by the fleet. Anything in the local-dev set
// forces localhost service URLs regardless of env-var overrides.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvDev         = "dev"
	EnvProduction  = "production"
)

// TestEmailKeyPrefix marks an email vendor key as a test sentinel. The OTP
// debug echo is only enabled when the key carries this prefix AND the
// environment is development or test.
const TestEmailKeyPrefix = "test_"

// StructuredConfig is the top-level configuration container for an edge-core
// worker. It aggregates all sub-configurations and is populated by merging
// values from environment variables, command-line flags, and an optional
// JSON file.
type StructuredConfig struct {
	// App holds trust-plane settings: JWT signing, network integrity,
	// service key, admin allow-list, CORS and cookie scope.
	App App

	// Email holds the delivery vendor settings behind the EmailSender port.
	Email Email

	// Storage holds the KV backend settings.
	Storage Storage

	// Server holds network address and timeout settings for the HTTP server.
	Server Server

	// Client holds defaults for the outbound API client.
	Client Client

	// Workers holds configuration for background worker processes.
	Workers Workers

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values that control security and
// token lifecycle.
type App struct {
	// ServiceName identifies this worker in logs, /health and service URLs.
	// Env: SERVICE_NAME
	ServiceName string `env:"SERVICE_NAME" envDefault:"auth"`

	// Environment selects development, test or production behaviour.
	// Env: ENVIRONMENT
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// JWTSecret signs and verifies every issued JWT. Mandatory, at least
	// 32 bytes; startup fails otherwise.
	// Env: JWT_SECRET
	JWTSecret string `env:"JWT_SECRET"`

	// TokenIssuer is the "iss" claim embedded in every issued JWT.
	// Env: TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER" envDefault:"strixun-auth"`

	// TokenDuration controls the session and JWT lifetime.
	// Env: TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION" envDefault:"7h"`

	// IntegrityKeyphrase is the shared HMAC secret of the service mesh.
	// Mandatory for service-to-service traffic; must be identical across
	// cooperating services.
	// Env: NETWORK_INTEGRITY_KEYPHRASE
	IntegrityKeyphrase string `env:"NETWORK_INTEGRITY_KEYPHRASE"`

	// ServiceAPIKey, when set, lets cooperating services authenticate with
	// the X-Service-Key header instead of a JWT.
	// Env: SERVICE_API_KEY
	ServiceAPIKey string `env:"SERVICE_API_KEY"`

	// SuperAdminEmails lists the accounts granted isSuperAdmin at login.
	// Env: SUPER_ADMIN_EMAILS (comma-separated)
	SuperAdminEmails []string `env:"SUPER_ADMIN_EMAILS"`

	// AllowedOrigins is the CORS origin allow-list. A wildcard entry is
	// honoured in development and test only.
	// Env: ALLOWED_ORIGINS (comma-separated)
	AllowedOrigins []string `env:"ALLOWED_ORIGINS"`

	// CookieDomain is the apex domain for the SSO auth cookie
	// (e.g. ".idling.app").
	// Env: COOKIE_DOMAIN
	CookieDomain string `env:"COOKIE_DOMAIN"`

	// Version is the semantic version string of the running worker.
	// Env: VERSION
	Version string `env:"VERSION"`
}

// Email holds the settings for the HTTP email delivery vendor.
type Email struct {
	// APIKey authenticates against the vendor. Keys starting with
	// [TestEmailKeyPrefix] switch the sender into test mode.
	// Env: EMAIL_API_KEY
	APIKey string `env:"EMAIL_API_KEY"`

	// From is the sender address used for OTP mail.
	// Env: EMAIL_FROM
	From string `env:"EMAIL_FROM"`

	// BaseURL points at the vendor's send endpoint.
	// Env: EMAIL_API_URL
	BaseURL string `env:"EMAIL_API_URL"`
}

// Storage holds the KV backend settings.
type Storage struct {
	// BoltPath is the path of the bbolt database file backing the KV store.
	// Env: STORAGE_BOLT_PATH
	BoltPath string `env:"STORAGE_BOLT_PATH" envDefault:"edge-core.db"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the TCP address on which the HTTP server listens,
	// in "host:port" format (e.g. "0.0.0.0:8080").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0:8080"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request before the server cancels it.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"30s"`
}

// Client holds defaults for the outbound API client.
type Client struct {
	// RequestTimeout bounds a single outbound request.
	// Env: CLIENT_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"CLIENT_REQUEST_TIMEOUT" envDefault:"15s"`

	// MaxConcurrent caps the request queue's in-flight requests.
	// Env: CLIENT_MAX_CONCURRENT
	MaxConcurrent int `env:"CLIENT_MAX_CONCURRENT" envDefault:"6"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// SweepInterval is how often the expiry sweeper scans for dead OTP,
	// session and blacklist records.
	// Env: WORKERS_SWEEP_INTERVAL
	SweepInterval time.Duration `env:"WORKERS_SWEEP_INTERVAL" envDefault:"5m"`
}

// IsLocalDev reports whether the environment forces localhost service URLs.
// Local-dev detection takes precedence over env-var URL overrides to keep
// dev processes from accidentally reaching production.
func (a App) IsLocalDev() bool {
	switch a.Environment {
	case EnvDevelopment, EnvTest, EnvDev, "":
		return true
	}
	return false
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (first non-zero value wins):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			JWTSecret:          "0123456789abcdef0123456789abcdef",
			IntegrityKeyphrase: "mesh-keyphrase",
			Environment:        EnvTest,
		},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().validate())

	t.Run("short jwt secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.JWTSecret = "too-short"
		assert.ErrorIs(t, cfg.validate(), ErrInvalidJWTSecret)
	})

	t.Run("missing keyphrase", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.IntegrityKeyphrase = ""
		assert.ErrorIs(t, cfg.validate(), ErrMissingIntegrityKeyphrase)
	})

	t.Run("unknown environment", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.Environment = "staging"
		assert.ErrorIs(t, cfg.validate(), ErrInvalidEnvironment)
	})

	t.Run("empty environment counts as local dev", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.Environment = ""
		assert.NoError(t, cfg.validate())
	})
}

func TestIsLocalDev(t *testing.T) {
	for _, env := range []string{EnvDevelopment, EnvTest, EnvDev, ""} {
		assert.True(t, App{Environment: env}.IsLocalDev(), "env %q", env)
	}
	assert.False(t, App{Environment: EnvProduction}.IsLocalDev())
}

func TestParseJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"app": {
			"service_name": "auth",
			"environment": "production",
			"jwt_secret": "0123456789abcdef0123456789abcdef",
			"token_duration": "7h",
			"integrity_keyphrase": "mesh-keyphrase",
			"super_admin_emails": ["admin@example.com"]
		},
		"server": {
			"http_address": "0.0.0.0:9090",
			"request_timeout": "45s"
		},
		"workers": {
			"sweep_interval": "2m"
		}
	}`), 0o600))

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "auth", cfg.App.ServiceName)
	assert.Equal(t, EnvProduction, cfg.App.Environment)
	assert.Equal(t, 7*time.Hour, cfg.App.TokenDuration)
	assert.Equal(t, []string{"admin@example.com"}, cfg.App.SuperAdminEmails)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.HTTPAddress)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Workers.SweepInterval)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`"90s"`), &d))
	assert.Equal(t, 90*time.Second, time.Duration(d))

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, time.Duration(d))

	assert.Error(t, json.Unmarshal([]byte(`"not-a-duration"`), &d))

	raw, err := json.Marshal(Duration(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, `"1m0s"`, string(raw))
}

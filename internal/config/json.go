// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and
// string-friendly durations for the optional config file source.
type StructuredJSONConfig struct {
	App struct {
		ServiceName        string   `json:"service_name"`
		Environment        string   `json:"environment"`
		JWTSecret          string   `json:"jwt_secret"`
		TokenIssuer        string   `json:"token_issuer"`
		TokenDuration      Duration `json:"token_duration"`
		IntegrityKeyphrase string   `json:"integrity_keyphrase"`
		ServiceAPIKey      string   `json:"service_api_key"`
		SuperAdminEmails   []string `json:"super_admin_emails"`
		AllowedOrigins     []string `json:"allowed_origins"`
		CookieDomain       string   `json:"cookie_domain"`
	} `json:"app,omitempty"`

	Email struct {
		APIKey  string `json:"api_key"`
		From    string `json:"from"`
		BaseURL string `json:"base_url"`
	} `json:"email,omitempty"`

	Storage struct {
		BoltPath string `json:"bolt_path"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Workers struct {
		SweepInterval Duration `json:"sweep_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			ServiceName:        jsonCfg.App.ServiceName,
			Environment:        jsonCfg.App.Environment,
			JWTSecret:          jsonCfg.App.JWTSecret,
			TokenIssuer:        jsonCfg.App.TokenIssuer,
			TokenDuration:      time.Duration(jsonCfg.App.TokenDuration),
			IntegrityKeyphrase: jsonCfg.App.IntegrityKeyphrase,
			ServiceAPIKey:      jsonCfg.App.ServiceAPIKey,
			SuperAdminEmails:   jsonCfg.App.SuperAdminEmails,
			AllowedOrigins:     jsonCfg.App.AllowedOrigins,
			CookieDomain:       jsonCfg.App.CookieDomain,
		},
		Email: Email{
			APIKey:  jsonCfg.Email.APIKey,
			From:    jsonCfg.Email.From,
			BaseURL: jsonCfg.Email.BaseURL,
		},
		Storage: Storage{
			BoltPath: jsonCfg.Storage.BoltPath,
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Workers: Workers{
			SweepInterval: time.Duration(jsonCfg.Workers.SweepInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

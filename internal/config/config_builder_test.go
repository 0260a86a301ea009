// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigBuilder_LayerPrecedence(t *testing.T) {
	b := newConfigBuilder()
	b.layers = append(b.layers,
		validConfig(),
		&StructuredConfig{App: App{ServiceName: "from-json", TokenIssuer: "issuer-from-json"}},
	)
	b.layers[0].App.ServiceName = "from-env"

	cfg, err := b.build()
	require.NoError(t, err)

	// The earlier layer wins; later layers only fill the gaps.
	assert.Equal(t, "from-env", cfg.App.ServiceName)
	assert.Equal(t, "issuer-from-json", cfg.App.TokenIssuer)
}

func TestConfigBuilder_SourceErrorAbortsBuild(t *testing.T) {
	b := newConfigBuilder()
	b.err = errors.New("bad source")

	_, err := b.build()
	assert.ErrorContains(t, err, "bad source")
}

func TestConfigBuilder_WithJSONSkipsWhenNoFileNamed(t *testing.T) {
	b := newConfigBuilder()
	b.layers = append(b.layers, validConfig())

	b.withJSON()

	assert.NoError(t, b.err)
	assert.Len(t, b.layers, 1)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package config

import (
	"errors"
	"fmt"

	"dario.cat/mergo"
)

// configBuilder collects partial configs from the supported sources as
// layers. Merge order is precedence order: a layer only fills fields the
// layers before it left zero, so environment beats flags beats JSON.
type configBuilder struct {
	layers []*StructuredConfig
	err    error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{layers: make([]*StructuredConfig, 0, 4)}
}

// build merges the collected layers and validates the result. Source
// errors collected along the way abort the build.
func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("collecting config sources: %w", b.err)
	}

	merged := new(StructuredConfig)
	for _, layer := range b.layers {
		if err := mergo.Merge(merged, layer); err != nil {
			return nil, fmt.Errorf("merging config layers: %w", err)
		}
	}

	return merged, merged.validate()
}

func (b *configBuilder) withEnv() *configBuilder {
	layer := new(StructuredConfig)
	if err := parseEnv(layer); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.layers = append(b.layers, layer)
	return b
}

func (b *configBuilder) withFlags() *configBuilder {
	b.layers = append(b.layers, ParseFlags())
	return b
}

// withJSON loads the file layer when an earlier layer named a config file.
// No file named means no layer, not an error.
func (b *configBuilder) withJSON() *configBuilder {
	var path string
	for _, layer := range b.layers {
		if layer.JSONFilePath != "" {
			path = layer.JSONFilePath
		}
	}
	if path == "" {
		return b
	}

	layer, err := parseJSON(path)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.layers = append(b.layers, layer)
	return b
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var displayNamePattern = regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+[0-9]{1,2}$`)

func TestGenerateDisplayName_Shape(t *testing.T) {
	for i := 0; i < 50; i++ {
		name, err := GenerateDisplayName()
		require.NoError(t, err)
		assert.Regexp(t, displayNamePattern, name)
	}
}

func TestGenerateDisplayName_Varies(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		name, err := GenerateDisplayName()
		require.NoError(t, err)
		seen[name] = struct{}{}
	}

	// 24 adjectives x 24 animals x 100 numbers; 50 draws all landing on one
	// name would mean the sampler is broken.
	assert.Greater(t, len(seen), 1)
}

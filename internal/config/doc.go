// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

// Package config loads and validates worker configuration from environment
// variables, command-line flags and an optional JSON file. Sources are merged
// with first-non-zero-wins semantics; see GetStructuredConfig.
package config

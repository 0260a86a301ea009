// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package models

import "time"

// Migration status values. A run finishes as failed iff ErrorCount > 0.
const (
	MigrationRunning   = "running"
	MigrationCompleted = "completed"
	MigrationFailed    = "failed"
)

// MigrationErrorLimit caps how many per-key error strings are retained on a
// MigrationRecord; further errors only increment ErrorCount.
const MigrationErrorLimit = 20

// MigrationRecord tracks the progress of one legacy-key migration run.
// Stored at migration:{id}.
type MigrationRecord struct {
	ID      string `json:"id"`
	Service string `json:"service"`
	Prefix  string `json:"prefix"`
	DryRun  bool   `json:"dryRun"`

	Status         string   `json:"status"`
	ProcessedCount int      `json:"processedCount"`
	ErrorCount     int      `json:"errorCount"`
	Errors         []string `json:"errors,omitempty"`

	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

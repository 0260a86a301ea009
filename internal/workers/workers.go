// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package workers

import (
	"context"

	"github.com/strixun/edge-core/internal/config"
	"github.com/strixun/edge-core/internal/logger"
	"github.com/strixun/edge-core/internal/store"
)

// Workers aggregates the background workers of a worker process.
type Workers struct {
	workers []Worker
}

// NewWorkers wires the stock worker set: the expiry sweeper.
func NewWorkers(ctx context.Context, kv store.KVStore, cfg config.Workers, logger *logger.Logger) *Workers {
	return &Workers{
		workers: []Worker{
			NewSweeper(ctx, kv, cfg.SweepInterval, logger),
		},
	}
}

// Run starts every worker.
func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}

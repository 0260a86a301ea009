// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package workers

import (
	"context"
	"time"

	"github.com/strixun/edge-core/internal/logger"
	"github.com/strixun/edge-core/internal/store"
)

// sweepPrefixes are the key families holding expiring records: OTP
// challenges, sessions, jti blacklist entries and rate-limit buckets.
var sweepPrefixes = []string{
	"auth:otp:",
	"auth:session:",
	"auth:blacklist:",
	"rl:",
}

// sweepPageSize caps one List page during a sweep pass.
const sweepPageSize = 500

// Sweeper periodically touches every key under the expiring prefixes. The
// KV store deletes expired entries lazily on read, so a touch is all the
// reclamation takes; the sweeper turns "deleted on next touch" into a
// bounded wait even for keys nobody reads again.
type Sweeper struct {
	ctx      context.Context
	kv       store.KVStore
	interval time.Duration
	logger   *logger.Logger
}

// NewSweeper constructs a sweeper that stops when ctx is cancelled.
func NewSweeper(ctx context.Context, kv store.KVStore, interval time.Duration, logger *logger.Logger) *Sweeper {
	return &Sweeper{ctx: ctx, kv: kv, interval: interval, logger: logger}
}

// Run starts the sweep loop in its own goroutine.
func (s *Sweeper) Run() {
	go s.loop()
}

func (s *Sweeper) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info().Msg("sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	start := time.Now()
	touched := 0

	for _, prefix := range sweepPrefixes {
		n, err := s.sweepPrefix(prefix)
		if err != nil {
			s.logger.Err(err).Str("prefix", prefix).Msg("sweep of prefix failed")
			continue
		}
		touched += n
	}

	s.logger.Info().
		Int("touched", touched).
		Dur("duration", time.Since(start)).
		Msg("sweep pass finished")
}

func (s *Sweeper) sweepPrefix(prefix string) (int, error) {
	touched := 0
	cursor := ""
	for {
		page, err := s.kv.List(s.ctx, store.ListOptions{Prefix: prefix, Cursor: cursor, Limit: sweepPageSize})
		if err != nil {
			return touched, err
		}

		for _, key := range page.Keys {
			// Reading an expired key is what deletes it.
			if _, _, err := s.kv.Get(s.ctx, key); err != nil {
				return touched, err
			}
			touched++
		}

		if page.Complete {
			return touched, nil
		}
		cursor = page.Cursor
	}
}

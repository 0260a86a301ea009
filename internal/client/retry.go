// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"
)

// retryableStatuses are the only statuses worth retrying; everything else
// is a deterministic answer.
var retryableStatuses = map[int]bool{
	408: true,
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// sendWithRetry wraps send in exponential backoff when the retry feature
// is on. A Retry-After header extends the wait before the next attempt;
// exhausted retries surface the last response rather than an error.
func (c *APIClient) sendWithRetry(ctx context.Context, req Request) (*Response, error) {
	if !c.cfg.Features.Retry {
		return c.send(ctx, req)
	}

	attempts := c.cfg.RetryMaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	baseDelay := c.cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = 250 * time.Millisecond
	}

	var resp *Response
	backoff := retry.WithMaxRetries(uint64(attempts), retry.NewExponential(baseDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := c.send(ctx, req)
		if err != nil {
			return retry.RetryableError(err)
		}
		resp = r

		if retryableStatuses[r.Status] {
			if wait := parseRetryAfter(r.Header.Get("Retry-After")); wait > 0 {
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return retry.RetryableError(fmt.Errorf("retryable status %d", r.Status))
		}
		return nil
	})

	if err != nil {
		if resp != nil && retryableStatuses[resp.Status] {
			return resp, nil
		}
		return nil, err
	}
	return resp, nil
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package client

import "context"

// Rollback undoes a local optimistic mutation.
type Rollback func()

// DoOptimistic applies the caller's local mutation immediately, sends the
// request, and rolls the mutation back when the request fails or the
// server rejects it.
func (c *APIClient) DoOptimistic(ctx context.Context, req Request, apply func() Rollback) (*Response, error) {
	var rollback Rollback
	if c.cfg.Features.OptimisticUpdates && apply != nil {
		rollback = apply()
	}

	resp, err := c.Do(ctx, req)
	if rollback != nil && (err != nil || resp.Status >= 400) {
		rollback()
	}
	return resp, err
}

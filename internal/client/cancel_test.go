// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelRegistry_Cancel(t *testing.T) {
	r := newCancelRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	r.register("req_1", cancel)

	require.True(t, r.cancel("req_1"))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	assert.False(t, r.cancel("req_1"), "already cancelled")
	assert.False(t, r.cancel("unknown"))
}

func TestCancelRegistry_DropForgetsWithoutCancelling(t *testing.T) {
	r := newCancelRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	r.register("req_1", cancel)
	r.drop("req_1")

	assert.NoError(t, ctx.Err())
	assert.False(t, r.cancel("req_1"))
}

func TestCancelRegistry_CancelAll(t *testing.T) {
	r := newCancelRegistry()

	ctxA, cancelA := context.WithCancel(context.Background())
	ctxB, cancelB := context.WithCancel(context.Background())
	r.register("a", cancelA)
	r.register("b", cancelB)

	r.cancelAll()

	assert.ErrorIs(t, ctxA.Err(), context.Canceled)
	assert.ErrorIs(t, ctxB.Err(), context.Canceled)
	assert.False(t, r.cancel("a"))
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package models

import "time"

// RateBucket is a sliding-window counter stored at rl:{bucket}:{subject}.
// Requests holds the timestamps of accepted requests inside the current
// window; entries older than the window are pruned on every touch. The KV
// record carries a TTL of twice the window so abandoned buckets age out.
type RateBucket struct {
	Requests []time.Time `json:"requests"`
	ResetAt  time.Time   `json:"resetAt"`
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package models

import "time"

// DataRequest status values. Pending requests move to approved, rejected or
// expired; only the target customer may approve or reject.
const (
	DataRequestPending  = "pending"
	DataRequestApproved = "approved"
	DataRequestRejected = "rejected"
	DataRequestExpired  = "expired"
)

// DataRequest is a custodial re-disclosure grant: a super-admin asks for a
// sensitive field of a target customer, the target approves, and the
// requester receives a per-request key that unlocks the outer stage of the
// two-stage envelope.
type DataRequest struct {
	RequestID        string `json:"requestId"`
	RequesterID      string `json:"requesterId"`
	TargetCustomerID string `json:"targetCustomerId"`

	// DataType names the field being disclosed (e.g. "email").
	DataType string `json:"dataType"`

	Status string `json:"status"`

	// RequestKey is the stage-2 key, encrypted to the requester's token.
	// Empty until the request is approved.
	RequestKey string `json:"requestKey,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the grant is past its expiry.
func (d DataRequest) Expired(now time.Time) bool {
	return !now.Before(d.ExpiresAt)
}

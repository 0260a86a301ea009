// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package store

import "fmt"

// Visibility levels understood by the visible-access rule.
const (
	VisibilityPublic   = "public"
	VisibilityUnlisted = "unlisted"
	VisibilityPrivate  = "private"
)

// Actions named in access assertions, used only for error detail.
const (
	ActionRead   = "read"
	ActionModify = "modify"
	ActionDelete = "delete"
)

// AccessContext identifies the caller for access-rule evaluation.
// Ownership is logical: it is expressed by customerId fields on entities,
// never by the storage keys themselves.
type AccessContext struct {
	CustomerID string
	IsAdmin    bool
}

// Owned is an entity with a logical owner.
type Owned interface {
	OwnerID() string
}

// Visible is an owned entity that additionally declares a visibility level.
type Visible interface {
	Owned
	VisibilityLevel() string
}

// CanAccessOwned reports whether ctx may access e under the ownership rule:
// admins always, otherwise only the owner.
func CanAccessOwned(e Owned, ctx AccessContext) bool {
	if ctx.IsAdmin {
		return true
	}
	return ctx.CustomerID != "" && e.OwnerID() == ctx.CustomerID
}

// CanAccessVisible reports whether ctx may see e: public and unlisted
// entities are visible to anyone; everything else falls back to the
// ownership rule.
func CanAccessVisible(e Visible, ctx AccessContext) bool {
	switch e.VisibilityLevel() {
	case VisibilityPublic, VisibilityUnlisted:
		return true
	}
	return CanAccessOwned(e, ctx)
}

// CanModify reports whether ctx may modify or delete e. Anonymous contexts
// can never modify, even public entities.
func CanModify(e Owned, ctx AccessContext) bool {
	if ctx.CustomerID == "" && !ctx.IsAdmin {
		return false
	}
	return CanAccessOwned(e, ctx)
}

// AssertAccess enforces the rule for the given action, returning a wrapped
// [ErrForbidden] on denial. Maps to HTTP 403 at the boundary.
func AssertAccess(e Owned, ctx AccessContext, action string) error {
	allowed := false
	switch action {
	case ActionModify, ActionDelete:
		allowed = CanModify(e, ctx)
	default:
		if v, ok := e.(Visible); ok {
			allowed = CanAccessVisible(v, ctx)
		} else {
			allowed = CanAccessOwned(e, ctx)
		}
	}

	if !allowed {
		return fmt.Errorf("%w: %s", ErrForbidden, action)
	}
	return nil
}

// FilterOwned returns the entities of list accessible to ctx under the
// ownership rule, preserving input order.
func FilterOwned[T Owned](list []T, ctx AccessContext) []T {
	out := make([]T, 0, len(list))
	for _, e := range list {
		if CanAccessOwned(e, ctx) {
			out = append(out, e)
		}
	}
	return out
}

// FilterVisible returns the entities of list visible to ctx, preserving
// input order.
func FilterVisible[T Visible](list []T, ctx AccessContext) []T {
	out := make([]T, 0, len(list))
	for _, e := range list {
		if CanAccessVisible(e, ctx) {
			out = append(out, e)
		}
	}
	return out
}

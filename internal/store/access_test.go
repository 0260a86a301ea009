// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type ownedThing struct {
	owner string
}

func (o ownedThing) OwnerID() string { return o.owner }

type visibleThing struct {
	owner      string
	visibility string
}

func (v visibleThing) OwnerID() string         { return v.owner }
func (v visibleThing) VisibilityLevel() string { return v.visibility }

func TestCanAccessOwned(t *testing.T) {
	thing := ownedThing{owner: "cust_1"}

	assert.True(t, CanAccessOwned(thing, AccessContext{CustomerID: "cust_1"}))
	assert.False(t, CanAccessOwned(thing, AccessContext{CustomerID: "cust_2"}))
	assert.False(t, CanAccessOwned(thing, AccessContext{}))
	assert.True(t, CanAccessOwned(thing, AccessContext{IsAdmin: true}))
}

func TestCanAccessVisible(t *testing.T) {
	tests := []struct {
		name       string
		visibility string
		ctx        AccessContext
		want       bool
	}{
		{"public to anonymous", VisibilityPublic, AccessContext{}, true},
		{"unlisted to anonymous", VisibilityUnlisted, AccessContext{}, true},
		{"private to stranger", VisibilityPrivate, AccessContext{CustomerID: "cust_2"}, false},
		{"private to owner", VisibilityPrivate, AccessContext{CustomerID: "cust_1"}, true},
		{"private to admin", VisibilityPrivate, AccessContext{IsAdmin: true}, true},
		{"unknown visibility falls back to ownership", "weird", AccessContext{CustomerID: "cust_2"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thing := visibleThing{owner: "cust_1", visibility: tt.visibility}
			assert.Equal(t, tt.want, CanAccessVisible(thing, tt.ctx))
		})
	}
}

func TestCanModify_AnonymousNeverModifies(t *testing.T) {
	thing := ownedThing{owner: "cust_1"}

	assert.False(t, CanModify(thing, AccessContext{}))
	assert.True(t, CanModify(thing, AccessContext{CustomerID: "cust_1"}))
	assert.False(t, CanModify(thing, AccessContext{CustomerID: "cust_2"}))
	assert.True(t, CanModify(thing, AccessContext{IsAdmin: true}))
}

func TestAssertAccess(t *testing.T) {
	thing := visibleThing{owner: "cust_1", visibility: VisibilityPublic}

	assert.NoError(t, AssertAccess(thing, AccessContext{}, ActionRead))
	assert.ErrorIs(t, AssertAccess(thing, AccessContext{}, ActionModify), ErrForbidden)
	assert.ErrorIs(t, AssertAccess(thing, AccessContext{CustomerID: "cust_2"}, ActionDelete), ErrForbidden)
	assert.NoError(t, AssertAccess(thing, AccessContext{CustomerID: "cust_1"}, ActionModify))
}

func TestFilterOwnedAndVisible(t *testing.T) {
	owned := []ownedThing{{owner: "cust_1"}, {owner: "cust_2"}, {owner: "cust_1"}}
	assert.Len(t, FilterOwned(owned, AccessContext{CustomerID: "cust_1"}), 2)
	assert.Len(t, FilterOwned(owned, AccessContext{IsAdmin: true}), 3)

	visible := []visibleThing{
		{owner: "cust_1", visibility: VisibilityPrivate},
		{owner: "cust_2", visibility: VisibilityPublic},
	}
	got := FilterVisible(visible, AccessContext{CustomerID: "cust_3"})
	assert.Len(t, got, 1)
	assert.Equal(t, "cust_2", got[0].OwnerID())
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package models

// Email visibility preference values.
const (
	EmailVisibilityPrivate = "private"
	EmailVisibilityPublic  = "public"
)

// RoleSuperAdmin grants the /admin/* surface independent of the
// SUPER_ADMIN_EMAILS allow-list.
const RoleSuperAdmin = "super-admin"

// CustomerPreferences holds the customer's privacy toggles. Email is only
// disclosed to third parties when both the visibility value and ShowEmail
// permit it.
type CustomerPreferences struct {
	EmailVisibility    string `json:"emailVisibility"`
	ShowEmail          bool   `json:"showEmail"`
	ShowProfilePicture bool   `json:"showProfilePicture"`
}

// Customer is the profile entity stored at customer:profile:{customerId}.
//
// Email is the plaintext address and stays server-side unless the privacy
// preferences allow disclosure; EmailHash is the lookup surrogate used by
// the by-email index.
type Customer struct {
	CustomerID string `json:"customerId"`

	Email     string `json:"email,omitempty"`
	EmailHash string `json:"emailHash"`

	DisplayName        string   `json:"displayName"`
	DisplayNameHistory []string `json:"displayNameHistory,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`

	Preferences CustomerPreferences `json:"preferences"`

	Plan   string   `json:"plan,omitempty"`
	Tier   string   `json:"tier,omitempty"`
	Status string   `json:"status,omitempty"`
	Flairs []string `json:"flairs,omitempty"`
	Roles  []string `json:"roles,omitempty"`
}

// OwnerID identifies the customer as the owner of their own profile.
func (c Customer) OwnerID() string { return c.CustomerID }

// HasRole reports whether the customer carries the given role.
func (c Customer) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PublicView strips fields the privacy preferences withhold. The plaintext
// email survives only with public visibility and ShowEmail set.
func (c Customer) PublicView() Customer {
	view := c
	view.EmailHash = ""
	if c.Preferences.EmailVisibility != EmailVisibilityPublic || !c.Preferences.ShowEmail {
		view.Email = ""
	}
	return view
}

// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

/*
Package session implements the gateway's viewer session layer.

It defines the session entity, the token persistence contract, and the
single authoritative store that owns login/logout/update mutations and the
startup rehydration sequence.

# Architecture

There is exactly one session store implementation and one persistence key
namespace. Every consumer (route guard evaluation, community actions,
profile handlers) reads through the same accessor; no duplicate session
bookkeeping exists anywhere else in the gateway.
*/
package session

import (
	"time"

	"github.com/farmlink/gateway/internal/platform/sec"
)

// # Domain Entities

// User represents the marketplace account attached to a session.
//
// The gateway never writes this record itself; it mirrors what the backend
// returns from its account endpoints.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Role        sec.Role  `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserPatch carries partial profile fields for an update.
//
// Nil pointers mean "leave unchanged".
type UserPatch struct {
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Bio         *string `json:"bio,omitempty"`
}

// apply merges the non-nil patch fields into the user.
func (patch UserPatch) apply(user *User) {
	if patch.DisplayName != nil {
		user.DisplayName = *patch.DisplayName
	}
	if patch.AvatarURL != nil {
		user.AvatarURL = *patch.AvatarURL
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
}

// Snapshot is a read-only view of one viewer's session.
//
// IsAuthenticated is derived, never stored: it is true exactly when both
// the user and the token are present.
type Snapshot struct {
	User            *User  `json:"user"`
	Token           string `json:"-"`
	IsAuthenticated bool   `json:"is_authenticated"`
	// Loading is true until the rehydration sequence has settled.
	// Dependent decisions (route guarding, action gating) should wait
	// for it to turn false.
	Loading bool `json:"loading"`
}

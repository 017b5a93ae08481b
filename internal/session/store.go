// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package session

import (
	"context"
	"errors"
)

// ErrNoToken is returned by [TokenStorage.Get] when no token is persisted
// under the viewer's key.
var ErrNoToken = errors.New("session: no persisted token")

// TokenStorage is the persistence contract for viewer tokens.
//
// # Contract
//
// One fixed namespace per deployment; one entry per viewer key. Get returns
// [ErrNoToken] for an absent or expired entry. Implementations exist for
// Redis (volatile tier, entries lapse on their own TTL) and
// PostgreSQL (durable tier, entries survive until removed).
type TokenStorage interface {
	// Get returns the persisted token for the viewer key.
	Get(ctx context.Context, viewerKey string) (string, error)

	// Set persists the token under the viewer key, replacing any
	// previous value.
	Set(ctx context.Context, viewerKey string, token string) error

	// Remove deletes the persisted token. Removing an absent entry is
	// not an error.
	Remove(ctx context.Context, viewerKey string) error
}

// # External Collaborators
//
// Both are backed by the marketplace API in production and by fakes in
// tests. They are function types rather than interfaces because each has
// exactly one method.

// UserFetcher resolves the account belonging to a bearer token.
type UserFetcher func(ctx context.Context, token string) (*User, error)

// TokenRefresher exchanges an expired-but-refreshable token for a new one.
//
// The rehydration sequence calls it at most once; there is deliberately no
// refresh loop anywhere in the gateway.
type TokenRefresher func(ctx context.Context, token string) (string, error)

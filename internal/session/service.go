// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package session

import (
	"context"
	"log/slog"
	"sync"
)

// Store owns one viewer's session state.
//
// # Concurrency
//
// All mutations are serialized by an internal mutex. Rehydration runs the
// collaborator calls with the lock released so a slow backend cannot block
// snapshot reads, and re-checks its epoch before applying the outcome so a
// login or logout issued mid-rehydration wins.
type Store struct {
	mu sync.Mutex

	viewerKey string
	storage   TokenStorage
	fetchUser UserFetcher
	refresh   TokenRefresher
	logger    *slog.Logger

	user    *User
	token   string
	loading bool

	// epoch invalidates an in-flight rehydration when an explicit
	// mutation lands first.
	epoch uint64
}

// NewStore constructs a Store for one viewer key.
//
// The store starts empty and settled; call [Store.Rehydrate] to restore a
// persisted session.
func NewStore(viewerKey string, storage TokenStorage, fetchUser UserFetcher, refresh TokenRefresher, logger *slog.Logger) *Store {
	return &Store{
		viewerKey: viewerKey,
		storage:   storage,
		fetchUser: fetchUser,
		refresh:   refresh,
		logger:    logger,
	}
}

// Snapshot returns the current session view.
func (store *Store) Snapshot() Snapshot {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.snapshotLocked()
}

func (store *Store) snapshotLocked() Snapshot {
	var user *User
	if store.user != nil {
		copied := *store.user
		user = &copied
	}

	return Snapshot{
		User:            user,
		Token:           store.token,
		IsAuthenticated: store.user != nil && store.token != "",
		Loading:         store.loading,
	}
}

// SetAuth installs a freshly authenticated session.
//
// User, token, and the derived authenticated flag change together; a reader
// can never observe a half-applied login. The token is persisted so the
// session survives a gateway restart.
//
// Persistence failure is logged but does not fail the login; the in-memory
// session still works for this process lifetime.
func (store *Store) SetAuth(ctx context.Context, user *User, token string) Snapshot {
	store.mu.Lock()
	store.epoch++
	store.user = user
	store.token = token
	store.loading = false
	snapshot := store.snapshotLocked()
	store.mu.Unlock()

	if user != nil && token != "" {
		if err := store.storage.Set(ctx, store.viewerKey, token); err != nil {
			store.logger.Warn("session_persist_failed", slog.Any("error", err))
		}
	}

	return snapshot
}

// Logout clears the session and removes the persisted token.
func (store *Store) Logout(ctx context.Context) Snapshot {
	store.mu.Lock()
	store.epoch++
	store.user = nil
	store.token = ""
	store.loading = false
	snapshot := store.snapshotLocked()
	store.mu.Unlock()

	if err := store.storage.Remove(ctx, store.viewerKey); err != nil {
		store.logger.Warn("session_remove_failed", slog.Any("error", err))
	}

	return snapshot
}

// UpdateUser merges partial profile fields into the current user.
//
// It is a silent no-op when no user is set, so callers do not need to guard.
func (store *Store) UpdateUser(patch UserPatch) Snapshot {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.user != nil {
		patch.apply(store.user)
	}

	return store.snapshotLocked()
}

// Rehydrate reconstructs the session from the persisted token.
//
// # Sequence
//
//  1. Load the persisted token; none means a settled logged-out session.
//  2. Resolve the user via the user-fetch collaborator.
//  3. On failure, invoke the token-refresh collaborator exactly once,
//     persist the replacement, and resolve the user again.
//  4. If that also fails, clear everything including the persisted token.
//
// The sequence is strictly sequential and never loops. Failures settle into
// a logged-out session; no error escapes. Loading is true from entry until
// the outcome (success or final failure) is applied, so dependent reads can
// wait for the session to settle.
func (store *Store) Rehydrate(ctx context.Context) Snapshot {
	store.mu.Lock()
	store.epoch++
	rehydrationEpoch := store.epoch
	store.loading = true
	store.mu.Unlock()

	outcomeUser, outcomeToken := store.resolve(ctx)

	store.mu.Lock()
	defer store.mu.Unlock()

	// A login or logout landed while we were talking to the backend;
	// its state wins over the rehydration outcome.
	if store.epoch != rehydrationEpoch {
		return store.snapshotLocked()
	}

	store.user = outcomeUser
	store.token = outcomeToken
	store.loading = false
	return store.snapshotLocked()
}

// resolve runs the fetch → refresh-once → refetch ladder and returns the
// session fields to install. A (nil, "") return means logged out.
func (store *Store) resolve(ctx context.Context) (*User, string) {
	token, err := store.storage.Get(ctx, store.viewerKey)
	if err != nil {
		if err != ErrNoToken {
			store.logger.Warn("session_storage_read_failed", slog.Any("error", err))
		}
		return nil, ""
	}

	user, err := store.fetchUser(ctx, token)
	if err == nil {
		store.logger.Info("session_rehydrated", slog.String("user_id", user.ID))
		return user, token
	}

	// One refresh attempt, no loop.
	freshToken, refreshErr := store.refresh(ctx, token)
	if refreshErr != nil {
		store.logger.Info("session_rehydration_failed", slog.Any("error", err))
		store.clearPersisted(ctx)
		return nil, ""
	}

	if persistErr := store.storage.Set(ctx, store.viewerKey, freshToken); persistErr != nil {
		store.logger.Warn("session_persist_failed", slog.Any("error", persistErr))
	}

	user, err = store.fetchUser(ctx, freshToken)
	if err != nil {
		store.logger.Info("session_rehydration_failed", slog.Any("error", err))
		store.clearPersisted(ctx)
		return nil, ""
	}

	store.logger.Info("session_rehydrated_after_refresh", slog.String("user_id", user.ID))
	return user, freshToken
}

// clearPersisted best-effort removes the persisted token after a failed
// rehydration so the dead token is not retried on the next startup.
func (store *Store) clearPersisted(ctx context.Context) {
	if err := store.storage.Remove(ctx, store.viewerKey); err != nil {
		store.logger.Warn("session_remove_failed", slog.Any("error", err))
	}
}

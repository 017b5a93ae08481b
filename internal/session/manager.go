// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/farmlink/gateway/internal/platform/constants"
)

// Manager hands out the authoritative per-viewer session store.
//
// # Single Source of Truth
//
// Exactly one Store exists per viewer key at a time; every handler that
// touches session state goes through Get. A viewer returning after a
// gateway restart gets a fresh Store that rehydrates itself from the
// persisted token before first use.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*managedStore

	storage   TokenStorage
	fetchUser UserFetcher
	refresh   TokenRefresher
	logger    *slog.Logger
}

type managedStore struct {
	store    *Store
	lastSeen time.Time
}

// NewManager constructs a Manager and starts its idle-entry sweeper.
//
// The sweeper only drops in-memory Store instances; persisted tokens are
// untouched, so an evicted viewer simply rehydrates on return.
func NewManager(ctx context.Context, storage TokenStorage, fetchUser UserFetcher, refresh TokenRefresher, logger *slog.Logger) *Manager {
	manager := &Manager{
		entries:   make(map[string]*managedStore),
		storage:   storage,
		fetchUser: fetchUser,
		refresh:   refresh,
		logger:    logger,
	}

	go manager.sweep(ctx)

	return manager
}

// Get returns the viewer's session store, creating and rehydrating it on
// first sight.
//
// Rehydration blocks until settled, so callers never observe a loading
// session from this path.
func (manager *Manager) Get(ctx context.Context, viewerKey string) *Store {
	manager.mu.Lock()
	entry, ok := manager.entries[viewerKey]
	if ok {
		entry.lastSeen = time.Now()
		manager.mu.Unlock()
		return entry.store
	}

	store := NewStore(viewerKey, manager.storage, manager.fetchUser, manager.refresh, manager.logger)
	manager.entries[viewerKey] = &managedStore{store: store, lastSeen: time.Now()}
	manager.mu.Unlock()

	store.Rehydrate(ctx)
	return store
}

// sweep drops stores that have not been touched within the idle TTL.
func (manager *Manager) sweep(ctx context.Context) {
	ticker := time.NewTicker(constants.ViewStateCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			manager.mu.Lock()
			for key, entry := range manager.entries {
				if time.Since(entry.lastSeen) > constants.ViewStateIdleTTL {
					delete(manager.entries, key)
				}
			}
			manager.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package session

import (
	"context"
	"sync"
)

// MemoryTokenStorage implements TokenStorage on a process-local map.
//
// It backs unit tests and local development without Redis/Postgres.
type MemoryTokenStorage struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemoryTokenStorage creates an empty in-memory TokenStorage.
func NewMemoryTokenStorage() *MemoryTokenStorage {
	return &MemoryTokenStorage{tokens: make(map[string]string)}
}

// Get returns the stored token or ErrNoToken.
func (storage *MemoryTokenStorage) Get(_ context.Context, viewerKey string) (string, error) {
	storage.mu.RLock()
	defer storage.mu.RUnlock()

	token, ok := storage.tokens[viewerKey]
	if !ok {
		return "", ErrNoToken
	}
	return token, nil
}

// Set stores the token under the viewer key.
func (storage *MemoryTokenStorage) Set(_ context.Context, viewerKey string, token string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()

	storage.tokens[viewerKey] = token
	return nil
}

// Remove deletes the entry if present.
func (storage *MemoryTokenStorage) Remove(_ context.Context, viewerKey string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()

	delete(storage.tokens, viewerKey)
	return nil
}

// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenKeyPrefix is the single fixed namespace for persisted viewer tokens.
const tokenKeyPrefix = "session:token:"

// RedisTokenStorage implements TokenStorage on Redis.
//
// This is the volatile tier: entries carry a TTL, so an abandoned session
// lapses on its own without a cleanup job.
type RedisTokenStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTokenStorage creates a Redis-backed TokenStorage.
func NewRedisTokenStorage(client *redis.Client, ttl time.Duration) *RedisTokenStorage {
	return &RedisTokenStorage{client: client, ttl: ttl}
}

/*
Get retrieves the persisted token for a viewer key.

Description: Returns ErrNoToken if the entry is absent or its TTL lapsed.

Parameters:
  - ctx: context.Context
  - viewerKey: string

Returns:
  - string: The persisted token
  - error: ErrNoToken or connectivity errors
*/
func (storage *RedisTokenStorage) Get(ctx context.Context, viewerKey string) (string, error) {

	// Use constants for key prefix
	key := tokenKeyPrefix + viewerKey

	// Get the token from Redis
	token, err := storage.client.Get(ctx, key).Result()

	// Handle errors
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("redis_session_get_failed: %w", err)
	}

	// Return the token
	return token, nil
}

/*
Set persists a token for the viewer key, refreshing the TTL.

Parameters:
  - ctx: context.Context
  - viewerKey: string
  - token: string

Returns:
  - error: Storage failures
*/
func (storage *RedisTokenStorage) Set(ctx context.Context, viewerKey string, token string) error {

	// Use constants for key prefix
	key := tokenKeyPrefix + viewerKey

	// Set the token with TTL
	if err := storage.client.Set(ctx, key, token, storage.ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
Remove deletes the persisted token for the viewer key.

Parameters:
  - ctx: context.Context
  - viewerKey: string

Returns:
  - error: Deletion failures
*/
func (storage *RedisTokenStorage) Remove(ctx context.Context, viewerKey string) error {

	// Use constants for key prefix
	key := tokenKeyPrefix + viewerKey

	// Delete the token from Redis
	if err := storage.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis_session_remove_failed: %w", err)
	}

	// Return nil on success
	return nil
}

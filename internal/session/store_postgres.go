// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmlink/gateway/internal/platform/database/schema"
	"github.com/farmlink/gateway/internal/platform/dberr"
)

// PostgresTokenStorage implements TokenStorage on PostgreSQL.
//
// This is the durable tier: entries survive gateway and device restarts
// until explicitly removed by logout or a failed rehydration.
type PostgresTokenStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresTokenStorage creates a Postgres-backed TokenStorage.
func NewPostgresTokenStorage(pool *pgxpool.Pool) *PostgresTokenStorage {
	return &PostgresTokenStorage{pool: pool}
}

// Get returns the persisted token for the viewer key, or ErrNoToken.
func (storage *PostgresTokenStorage) Get(ctx context.Context, viewerKey string) (string, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		schema.Session.Token,
		schema.Session.Table, schema.Session.ViewerKey,
	)

	var token string
	err := storage.pool.QueryRow(ctx, query, viewerKey).Scan(&token)
	if err != nil {
		// Absence is a normal state for first-time viewers, not a failure.
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoToken
		}
		return "", dberr.Wrap(err)
	}

	return token, nil
}

// Set upserts the token for the viewer key.
func (storage *PostgresTokenStorage) Set(ctx context.Context, viewerKey string, token string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, now())
		ON CONFLICT (%s)
		DO UPDATE SET %s = EXCLUDED.%s, %s = now()`,
		schema.Session.Table,
		schema.Session.ViewerKey, schema.Session.Token, schema.Session.UpdatedAt,
		schema.Session.ViewerKey,
		schema.Session.Token, schema.Session.Token, schema.Session.UpdatedAt,
	)

	if _, err := storage.pool.Exec(ctx, query, viewerKey, token); err != nil {
		return dberr.Wrap(err)
	}

	return nil
}

// Remove deletes the persisted token. Absent rows are not an error.
func (storage *PostgresTokenStorage) Remove(ctx context.Context, viewerKey string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = $1`,
		schema.Session.Table, schema.Session.ViewerKey,
	)

	if _, err := storage.pool.Exec(ctx, query, viewerKey); err != nil {
		return dberr.Wrap(err)
	}

	return nil
}

// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/farmlink/gateway/internal/platform/ctxkey"
	"github.com/farmlink/gateway/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithViewer returns a new context with the decoded bearer payload attached.
func WithViewer(ctx context.Context, payload *sec.TokenPayload) context.Context {
	return context.WithValue(ctx, ctxkey.KeyViewer, payload)
}

// GetViewer retrieves the [*sec.TokenPayload] from the [context.Context].
// Returns nil for anonymous requests.
func GetViewer(ctx context.Context) *sec.TokenPayload {
	payload, ok := ctx.Value(ctxkey.KeyViewer).(*sec.TokenPayload)
	if !ok {
		return nil
	}
	return payload
}

// WithBearer returns a new context carrying the raw bearer token.
//
// The raw token travels alongside the decoded payload because proxied
// backend calls must forward it verbatim. The backend, not the gateway,
// is the authorization authority.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyBearer, token)
}

// GetBearer retrieves the raw bearer token from the context.
// Returns an empty string for anonymous requests.
func GetBearer(ctx context.Context) string {
	token, _ := ctx.Value(ctxkey.KeyBearer).(string)
	return token
}

// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

// Package middleware provides the HTTP middleware chain for the FarmLink gateway.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, AuthZ/AuthN, Rate Limiting, and CORS.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/farmlink/gateway/internal/platform/apperr"
	"github.com/farmlink/gateway/internal/platform/ctxutil"
	"github.com/farmlink/gateway/internal/platform/respond"
	"github.com/farmlink/gateway/internal/platform/sec"
)

// DecodeBearer extracts the bearer token from the Authorization header and
// attaches its decoded payload to the request context.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, the request proceeds as anonymous.
//  3. If present, decode the payload (no signature verification; the
//     marketplace backend re-checks authorization on every proxied call).
//  4. Inject [*sec.TokenPayload] into the request context for downstream use.
//
// Decode failures and expired tokens are silent: the request simply proceeds
// as anonymous. This mirrors how the guard treats an unreadable token as
// "no valid session" rather than an error.
func DecodeBearer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Check ───────────────────────────────────────────────
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				next.ServeHTTP(writer, request)
				return
			}

			// The raw token is forwarded on proxied calls regardless of
			// whether it decodes; the backend is the one verifying it.
			ctx := ctxutil.WithBearer(request.Context(), parts[1])

			// ── 3. Payload Decode (silent on failure) ─────────────────────────
			payload, err := sec.Decode(parts[1])
			if err != nil || payload.Expired(time.Now()) {
				next.ServeHTTP(writer, request.WithContext(ctx))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx = ctxutil.WithViewer(ctx, &payload)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireSession blocks requests that carry no decodable bearer token.
//
// # Usage
//
// Must be registered in the router AFTER [DecodeBearer].
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetViewer(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests whose viewer does not carry the given role.
//
// # Usage
//
// Must be registered in the router AFTER [DecodeBearer]. It automatically
// implies [RequireSession] so you don't need to mount both.
//
// Note this is advisory gating for the gateway's own endpoints; the backend
// independently enforces role checks on every protected upstream call.
func RequireRole(role sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			viewer := ctxutil.GetViewer(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if viewer == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if viewer.Role != role && viewer.Role != sec.RoleAdmin {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

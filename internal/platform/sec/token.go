// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

// Package sec handles bearer-token interpretation for the gateway.
//
// # Architecture
//
// The gateway never mints or verifies tokens. Tokens are issued and signature
// checked by the marketplace backend; the gateway only *reads* the claim
// payload to route viewers to the right pages. Because decode output drives
// UX navigation and nothing else, parsing is deliberately unverified; real
// authorization is re-checked by the backend on every proxied request.
package sec

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrDecode is returned when a bearer token cannot be parsed into claims.
//
// Callers are expected to treat it as "no valid session" rather than
// surfacing it to the viewer.
var ErrDecode = errors.New("sec: token payload could not be decoded")

// TokenPayload is the claim set the gateway reads from a bearer token.
type TokenPayload struct {
	// Role is the viewer's marketplace role ("farmer", "buyer", "admin").
	Role Role
	// Subject is the viewer's account identifier.
	Subject string
	// Expiry is when the token stops being usable.
	Expiry time.Time
}

// Expired reports whether the payload's expiry has passed.
//
// A zero Expiry is treated as expired: the backend always stamps 'exp', so a
// token without one did not come from it.
func (p TokenPayload) Expired(now time.Time) bool {
	return p.Expiry.IsZero() || !now.Before(p.Expiry)
}

// backendClaims mirrors the claim names the backend puts in its JWTs.
type backendClaims struct {
	jwt.RegisteredClaims

	Role string `json:"role"`
}

// parser is shared; ParseUnverified does not touch key material so this is safe.
var parser = jwt.NewParser()

// Decode extracts the routing payload from a raw bearer token.
//
// # Flow
//  1. Parse the JWT structure without signature verification.
//  2. Pull role, subject, and expiry from the claim set.
//
// It returns [ErrDecode] for anything that is not a well-formed token.
// Signature validity is intentionally not checked here (see package doc).
func Decode(rawToken string) (TokenPayload, error) {
	if rawToken == "" {
		return TokenPayload{}, ErrDecode
	}

	var claims backendClaims
	if _, _, err := parser.ParseUnverified(rawToken, &claims); err != nil {
		return TokenPayload{}, ErrDecode
	}

	payload := TokenPayload{
		Role:    Role(claims.Role),
		Subject: claims.Subject,
	}
	if claims.ExpiresAt != nil {
		payload.Expiry = claims.ExpiresAt.Time
	}

	return payload, nil
}

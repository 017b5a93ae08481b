// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package session

import (
	"context"

	"github.com/farmlink/gateway/internal/platform/backend"
)

// # Backend Collaborators
//
// Production wiring for the two collaborator function types: both delegate
// to the marketplace API. Wrapped here so the rest of the package stays
// wire-format agnostic.

// accountEnvelope mirrors the backend's {data: user} account response.
type accountEnvelope struct {
	Data User `json:"data"`
}

// refreshEnvelope mirrors the backend's token refresh response.
type refreshEnvelope struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// BackendUserFetcher resolves the account behind a token via GET /auth/me.
func BackendUserFetcher(client *backend.Client) UserFetcher {
	return func(ctx context.Context, token string) (*User, error) {
		var envelope accountEnvelope
		if err := client.Get(ctx, "/auth/me", nil, token, &envelope); err != nil {
			return nil, err
		}
		return &envelope.Data, nil
	}
}

// BackendTokenRefresher exchanges a token via POST /auth/refresh.
func BackendTokenRefresher(client *backend.Client) TokenRefresher {
	return func(ctx context.Context, token string) (string, error) {
		var envelope refreshEnvelope
		if err := client.Post(ctx, "/auth/refresh", token, nil, &envelope); err != nil {
			return "", err
		}
		return envelope.Data.Token, nil
	}
}

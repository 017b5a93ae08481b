// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

/*
Package backend is the gateway's HTTP client for the marketplace REST API.

All marketplace data (products, community posts, replies, resources, user
accounts) lives behind that API; the gateway holds no copy of it. This
package is the single place where outbound HTTP happens.

Error Mapping:

  - Transport failures (DNS, refused connection, timeout) → [apperr.Network].
  - Non-2xx backend responses → [apperr.Upstream] carrying the backend's
    status and its {error} message when present.

No retry or backoff happens here. Callers that want retry semantics (there
is exactly one: the session store's single token-refresh attempt) implement
them explicitly on top.
*/
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/farmlink/gateway/internal/platform/apperr"
	"github.com/farmlink/gateway/internal/platform/constants"
	"github.com/farmlink/gateway/internal/platform/ctxutil"
)

// maxErrorBodyBytes caps how much of an upstream error body is read.
const maxErrorBodyBytes = 4 << 10

// Client issues JSON requests against the marketplace backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New constructs a Client for the given base URL.
//
// The timeout applies per request; when it fires the call fails as a
// network error like any other transport failure.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// errorEnvelope mirrors the backend's JSON error shape.
type errorEnvelope struct {
	Error string `json:"error"`
}

// Get issues a GET request and decodes the JSON response into out.
//
// A nil out discards the body. An empty bearer sends the request anonymously.
func (client *Client) Get(ctx context.Context, path string, query url.Values, bearer string, out any) error {
	return client.do(ctx, http.MethodGet, path, query, bearer, nil, out)
}

// Post issues a POST request with a JSON body and decodes the response into out.
func (client *Client) Post(ctx context.Context, path string, bearer string, body any, out any) error {
	return client.do(ctx, http.MethodPost, path, nil, bearer, body, out)
}

// Put issues a PUT request with a JSON body and decodes the response into out.
func (client *Client) Put(ctx context.Context, path string, bearer string, body any, out any) error {
	return client.do(ctx, http.MethodPut, path, nil, bearer, body, out)
}

// Delete issues a DELETE request, discarding any response body.
func (client *Client) Delete(ctx context.Context, path string, bearer string) error {
	return client.do(ctx, http.MethodDelete, path, nil, bearer, nil, nil)
}

// do builds, sends, and decodes one backend call.
func (client *Client) do(ctx context.Context, method, path string, query url.Values, bearer string, body any, out any) error {
	endpoint := client.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperr.Internal(fmt.Errorf("backend: encode request body: %w", err))
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apperr.Internal(fmt.Errorf("backend: build request: %w", err))
	}

	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+bearer)
	}

	// Propagate the inbound correlation ID so backend logs line up with
	// gateway logs; mint one for calls made outside a request (rehydration).
	requestID := ctxutil.GetRequestID(ctx)
	if requestID == "" {
		requestID = newRequestID()
	}
	request.Header.Set(constants.HeaderXRequestID, requestID)

	response, err := client.httpClient.Do(request)
	if err != nil {
		client.logger.Warn("backend_unreachable",
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return apperr.Network(err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return client.upstreamError(response, method, path)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return apperr.Network(fmt.Errorf("backend: decode response: %w", err))
	}

	return nil
}

// upstreamError converts a non-2xx backend response into an [apperr.Upstream].
//
// The backend's own {error} message is passed through verbatim when present.
func (client *Client) upstreamError(response *http.Response, method, path string) error {
	var envelope errorEnvelope
	raw, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyBytes))
	_ = json.Unmarshal(raw, &envelope)

	client.logger.Warn("backend_request_failed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", response.StatusCode),
	)

	return apperr.Upstream(response.StatusCode, envelope.Error)
}

// newRequestID mints a UUIDv7 correlation ID, falling back to v4 on
// entropy trouble.
func newRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.New().String()
}

// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/farmlink/gateway/internal/platform/apperr"
	"github.com/farmlink/gateway/internal/platform/ctxutil"
	"github.com/farmlink/gateway/pkg/pagelist"
)

// bearerFrom pulls the viewer's raw token out of the request context so
// protected list endpoints see the same identity the viewer presented.
func bearerFrom(ctx context.Context) string {
	return ctxutil.GetBearer(ctx)
}

// listPayload mirrors the backend's {items, total} list envelope.
//
// Items stays raw so one decode path serves every resource type.
type listPayload struct {
	Items json.RawMessage `json:"items"`
	Total int             `json:"total"`
}

// FetchList builds a [pagelist.FetchFunc] for a backend list endpoint.
//
// # Wire Mapping
//
// The page request becomes query parameters: "page", "limit", and one
// parameter per filter key (empty filter values are omitted). The response
// is expected in the backend's standard {items, total} shape.
//
// The returned function satisfies the FetchFunc contract: stateless, no
// retries, failures reported as [apperr.Network] / [apperr.Upstream].
func FetchList[T any](client *Client, path string) pagelist.FetchFunc[T] {
	return func(ctx context.Context, req pagelist.PageRequest) (pagelist.PageResult[T], error) {
		query := url.Values{}
		query.Set("page", strconv.Itoa(req.Page))
		query.Set("limit", strconv.Itoa(req.Limit))
		for key, value := range req.Filters {
			if value != "" {
				query.Set(key, value)
			}
		}

		var payload listPayload
		if err := client.Get(ctx, path, query, bearerFrom(ctx), &payload); err != nil {
			return pagelist.PageResult[T]{}, err
		}

		var items []T
		if len(payload.Items) > 0 {
			if err := json.Unmarshal(payload.Items, &items); err != nil {
				return pagelist.PageResult[T]{}, apperr.Network(fmt.Errorf("backend: decode %s items: %w", path, err))
			}
		}

		return pagelist.PageResult[T]{Items: items, Total: payload.Total}, nil
	}
}

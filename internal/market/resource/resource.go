// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

// Package resource serves the farming knowledge-base listings.
package resource

import (
	"github.com/farmlink/gateway/internal/platform/backend"
	"github.com/farmlink/gateway/pkg/pagelist"
	"github.com/farmlink/gateway/pkg/searchterm"
)

// Resource is one knowledge-base article or guide.
type Resource struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Topic     string `json:"topic"`
	MediaURL  string `json:"media_url,omitempty"`
	CreatedAt string `json:"created_at"`
}

// # Filter Keys

const (
	FilterQuery = "q"
	FilterTopic = "topic"
)

// ListPageSize is the fixed page size of the resource list.
const ListPageSize = 10

// NewFetcher binds the backend's /resources endpoint into a page fetcher.
func NewFetcher(client *backend.Client) pagelist.FetchFunc[Resource] {
	return backend.FetchList[Resource](client, "/resources")
}

// NormalizeFilters canonicalizes raw resource-page filters.
func NormalizeFilters(raw map[string]string) map[string]string {
	filters := map[string]string{}

	if q := searchterm.Normalize(raw[FilterQuery]); q != "" {
		filters[FilterQuery] = q
	}
	if topic := raw[FilterTopic]; topic != "" {
		filters[FilterTopic] = topic
	}

	return filters
}

// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

/*
Package product serves the marketplace catalogue listings.

The catalogue lives entirely in the marketplace backend; this package binds
its /products list endpoint into the gateway's paginated list machinery and
normalizes the filters the storefront sends.
*/
package product

import (
	"github.com/farmlink/gateway/internal/platform/backend"
	"github.com/farmlink/gateway/pkg/pagelist"
	"github.com/farmlink/gateway/pkg/query"
	"github.com/farmlink/gateway/pkg/searchterm"
)

// # Domain Entities

// Product is one marketplace listing.
type Product struct {
	ID          string  `json:"id"`
	SellerID    string  `json:"seller_id"`
	SellerName  string  `json:"seller_name"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url,omitempty"`
	InStock     bool    `json:"in_stock"`
	CreatedAt   string  `json:"created_at"`
}

// # Filter Keys

const (
	FilterQuery    = "q"
	FilterCategory = "category"
	FilterMinPrice = "min_price"
	FilterMaxPrice = "max_price"
)

// ListPageSize is the fixed page size of the catalogue list.
const ListPageSize = 12

// NewFetcher binds the backend's /products endpoint into a page fetcher.
func NewFetcher(client *backend.Client) pagelist.FetchFunc[Product] {
	return backend.FetchList[Product](client, "/products")
}

// NormalizeFilters canonicalizes raw storefront filters.
//
// The search text goes through the same normalization as every other list
// so equivalent queries hit identical backend requests; numeric bounds that
// do not parse are dropped rather than passed through.
func NormalizeFilters(raw map[string]string) map[string]string {
	filters := map[string]string{}

	if q := searchterm.Normalize(raw[FilterQuery]); q != "" {
		filters[FilterQuery] = q
	}
	if category := raw[FilterCategory]; category != "" {
		filters[FilterCategory] = category
	}
	for _, key := range []string{FilterMinPrice, FilterMaxPrice} {
		if value := raw[key]; value != "" && query.Decimal(value) {
			filters[key] = value
		}
	}

	return filters
}

// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

/*
Package pagelist implements page-based list retrieval with "load more"
accumulation semantics.

Every browsable list in the FarmLink web experience (marketplace products,
community posts, post replies, knowledge resources) follows the same shape:
one page of items at a time, a server-authoritative total, filters that reset
the list, and a load-more action that appends the next page. Instead of
re-implementing that bookkeeping per list, this package provides:

  - FetchFunc: the contract for retrieving a single page of a resource.
  - Controller: the stateful owner of one list's accumulation, paging,
    filter, loading, and error state.

# Contract

A FetchFunc is a pure request/response call. It holds no state, performs no
retries, and reports failures as errors (typically [apperr.Network] or
[apperr.Upstream]). Everything stateful lives in the Controller.
*/
package pagelist

import "context"

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 20
	// MaxLimit is the upper bound for items per page to prevent system abuse.
	MaxLimit = 100
)

// PageRequest describes one page of a filtered list.
type PageRequest struct {
	// Page is 1-indexed.
	Page int
	// Limit is the page size. Fixed per list instance.
	Limit int
	// Filters is the active filter set (query text, category, tag, ...).
	// Empty values mean the filter is not applied.
	Filters map[string]string
}

// PageResult is a single page of items plus the authoritative total.
type PageResult[T any] struct {
	// Items holds at most Limit entries, in server order.
	Items []T
	// Total is the count across all pages for the current filter set,
	// not just the items in this page.
	Total int
}

// FetchFunc retrieves one page of a resource list.
//
// Implementations must be stateless and side-effect free; the Controller
// owns all bookkeeping. No retry or backoff happens at this layer.
type FetchFunc[T any] func(ctx context.Context, req PageRequest) (PageResult[T], error)

// ClampLimit normalizes a requested page size into the allowed range.
func ClampLimit(limit int) int {
	if limit < 1 || limit > MaxLimit {
		return DefaultLimit
	}
	return limit
}

// cloneFilters copies a filter map so controller state cannot be mutated
// through a caller-retained reference.
func cloneFilters(filters map[string]string) map[string]string {
	if filters == nil {
		return map[string]string{}
	}
	clone := make(map[string]string, len(filters))
	for key, value := range filters {
		clone[key] = value
	}
	return clone
}

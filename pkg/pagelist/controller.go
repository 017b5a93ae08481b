// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package pagelist

import (
	"context"
	"sync"
)

// State is a read-only snapshot of a list at a point in time.
//
// It is what handlers serialize for the web client. Exactly one of the three
// viewer-facing conditions holds at a time: Loading, Error non-empty, or a
// settled result (possibly with zero items, which is "empty", not an error).
type State[T any] struct {
	// Items is the accumulated item sequence, in arrival order.
	Items []T `json:"items"`
	// Total is the server-reported count across all pages for the
	// current filter set.
	Total int `json:"total"`
	// Page is the index of the last successfully loaded page (1-indexed).
	Page int `json:"page"`
	// Limit is the fixed page size of this list.
	Limit int `json:"limit"`
	// Filters is the filter set the accumulated items belong to.
	Filters map[string]string `json:"filters"`
	// Loading reports whether a fetch is outstanding.
	Loading bool `json:"loading"`
	// Error is the viewer-facing failure message of the last settled
	// fetch, empty on success.
	Error string `json:"error,omitempty"`
	// HasMore reports whether a further load-more would fetch anything.
	HasMore bool `json:"has_more"`
}

// Controller owns the pagination, filter, and accumulation bookkeeping for
// one list instance.
//
// # Concurrency
//
// All state transitions are serialized by an internal mutex; the fetch
// itself runs with the lock released so slow pages never block snapshot
// reads or superseding resets. Each controller instance is independent;
// there is no shared lock across lists.
//
// # Supersede semantics
//
// Every Reset invalidates whatever fetch is still in flight via a request
// generation counter. A stale result that lands after a newer request was
// issued is discarded silently; only the most recently issued request may
// apply its result. This is result-discarding, not cancellation; the
// underlying HTTP call is left to finish on its own.
type Controller[T any] struct {
	mu sync.Mutex

	fetch FetchFunc[T]
	limit int

	items   []T
	total   int
	page    int
	filters map[string]string
	loading bool
	errMsg  string

	// generation stamps each issued request; results with a stale stamp
	// are dropped.
	generation uint64
}

// New constructs a Controller around a fetch function with a fixed page size.
func New[T any](fetch FetchFunc[T], limit int) *Controller[T] {
	return &Controller[T]{
		fetch:   fetch,
		limit:   ClampLimit(limit),
		filters: map[string]string{},
	}
}

// Snapshot returns a copy of the current list state.
func (controller *Controller[T]) Snapshot() State[T] {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.snapshotLocked()
}

func (controller *Controller[T]) snapshotLocked() State[T] {
	items := make([]T, len(controller.items))
	copy(items, controller.items)

	return State[T]{
		Items:   items,
		Total:   controller.total,
		Page:    controller.page,
		Limit:   controller.limit,
		Filters: cloneFilters(controller.filters),
		Loading: controller.loading,
		Error:   controller.errMsg,
		HasMore: len(controller.items) < controller.total,
	}
}

// Reset replaces the filter set and reloads the list from page 1.
//
// # Flow
//  1. Accumulated items are cleared immediately and the page pointer
//     returns to 1, so a failed fetch leaves an empty list, not a stale one.
//  2. Any in-flight fetch for this controller is superseded.
//  3. On success the first page replaces the accumulation and the server
//     total is adopted. On failure the error message is recorded.
//
// Fetch failures never escape; they settle into [State.Error]. The returned
// snapshot reflects the list after this request settled (or was superseded).
func (controller *Controller[T]) Reset(ctx context.Context, filters map[string]string) State[T] {
	controller.mu.Lock()
	controller.generation++
	requestGeneration := controller.generation

	controller.items = nil
	controller.page = 1
	controller.filters = cloneFilters(filters)
	controller.loading = true
	controller.errMsg = ""

	request := PageRequest{
		Page:    1,
		Limit:   controller.limit,
		Filters: cloneFilters(controller.filters),
	}
	controller.mu.Unlock()

	result, err := controller.fetch(ctx, request)

	controller.mu.Lock()
	defer controller.mu.Unlock()

	// A newer request was issued while this one was in flight. Its result
	// is stale: drop it without touching state. The newer request owns the
	// loading flag now.
	if requestGeneration != controller.generation {
		return controller.snapshotLocked()
	}

	controller.loading = false

	if err != nil {
		controller.errMsg = err.Error()
		controller.items = nil
		// The old filter set's total must not gate load-more for the new
		// one. With no page loaded there is nothing to page past; the only
		// way forward is retrying this same request.
		controller.total = 0
		return controller.snapshotLocked()
	}

	controller.items = result.Items
	controller.total = normalizeTotal(result.Total, len(result.Items))
	return controller.snapshotLocked()
}

// LoadMore fetches the next page and appends it to the accumulation.
//
// It is a no-op while a fetch is outstanding, and once every item the server
// reports is already accumulated. The gate lives here, not in views, so an
// extra empty-page request can never be issued.
//
// The page pointer only advances after a successful fetch; a failed
// load-more leaves the accumulation untouched and records the error so the
// viewer can retry the same page.
func (controller *Controller[T]) LoadMore(ctx context.Context) State[T] {
	controller.mu.Lock()

	if controller.loading || len(controller.items) >= controller.total {
		defer controller.mu.Unlock()
		return controller.snapshotLocked()
	}

	requestGeneration := controller.generation
	controller.loading = true
	controller.errMsg = ""

	request := PageRequest{
		Page:    controller.page + 1,
		Limit:   controller.limit,
		Filters: cloneFilters(controller.filters),
	}
	controller.mu.Unlock()

	result, err := controller.fetch(ctx, request)

	controller.mu.Lock()
	defer controller.mu.Unlock()

	// Superseded by a Reset issued mid-flight.
	if requestGeneration != controller.generation {
		return controller.snapshotLocked()
	}

	controller.loading = false

	if err != nil {
		controller.errMsg = err.Error()
		return controller.snapshotLocked()
	}

	controller.items = append(controller.items, result.Items...)
	controller.page = request.Page
	// The server is authoritative for the total on every call.
	controller.total = normalizeTotal(result.Total, len(controller.items))
	return controller.snapshotLocked()
}

// Refresh re-issues the current filter set from page 1.
//
// Used after a create/mutate action when the caller wants server truth
// rather than an optimistic local update.
func (controller *Controller[T]) Refresh(ctx context.Context) State[T] {
	controller.mu.Lock()
	filters := cloneFilters(controller.filters)
	controller.mu.Unlock()

	return controller.Reset(ctx, filters)
}

// PrependLocal inserts a just-created item at the head of the accumulation
// and bumps the total, without a server round trip.
//
// Callers must only invoke this after the create action confirmed success;
// a failed create performs no local mutation.
func (controller *Controller[T]) PrependLocal(item T) State[T] {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	controller.items = append([]T{item}, controller.items...)
	controller.total++
	return controller.snapshotLocked()
}

// normalizeTotal guards the accumulated-never-exceeds-total invariant
// against a misreporting server.
func normalizeTotal(total, accumulated int) int {
	if total < accumulated {
		return accumulated
	}
	return total
}

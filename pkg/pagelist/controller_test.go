// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package pagelist_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmlink/gateway/pkg/pagelist"
)

// pageServer fakes a backend list endpoint over a fixed item catalogue.
//
// It records every request it receives so tests can assert on fetch counts
// and the exact pages requested.
type pageServer struct {
	mu       sync.Mutex
	items    []string
	requests []pagelist.PageRequest
	failNext error
}

func newPageServer(count int) *pageServer {
	server := &pageServer{}
	for i := 1; i <= count; i++ {
		server.items = append(server.items, fmt.Sprintf("item-%02d", i))
	}
	return server
}

func (server *pageServer) fetch(_ context.Context, req pagelist.PageRequest) (pagelist.PageResult[string], error) {
	server.mu.Lock()
	defer server.mu.Unlock()

	server.requests = append(server.requests, req)

	if server.failNext != nil {
		err := server.failNext
		server.failNext = nil
		return pagelist.PageResult[string]{}, err
	}

	start := (req.Page - 1) * req.Limit
	if start > len(server.items) {
		start = len(server.items)
	}
	end := start + req.Limit
	if end > len(server.items) {
		end = len(server.items)
	}

	return pagelist.PageResult[string]{
		Items: append([]string{}, server.items[start:end]...),
		Total: len(server.items),
	}, nil
}

func (server *pageServer) requestCount() int {
	server.mu.Lock()
	defer server.mu.Unlock()
	return len(server.requests)
}

/*
TestController_ResetLoadsFirstPage verifies the initial load path.
*/
func TestController_ResetLoadsFirstPage(t *testing.T) {
	server := newPageServer(23)
	controller := pagelist.New(server.fetch, 10)

	state := controller.Reset(context.Background(), nil)

	assert.Len(t, state.Items, 10)
	assert.Equal(t, 23, state.Total)
	assert.Equal(t, 1, state.Page)
	assert.True(t, state.HasMore)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
}

/*
TestController_LoadMoreAccumulates walks a 23-item list in pages of 10 and
verifies the accumulation grows 10, 20, 23 with a final short page.
*/
func TestController_LoadMoreAccumulates(t *testing.T) {
	server := newPageServer(23)
	controller := pagelist.New(server.fetch, 10)
	ctx := context.Background()

	controller.Reset(ctx, nil)

	// 1. Second page appends in order.
	state := controller.LoadMore(ctx)
	assert.Len(t, state.Items, 20)
	assert.Equal(t, 2, state.Page)
	assert.Equal(t, "item-11", state.Items[10])
	assert.True(t, state.HasMore)

	// 2. Final page is short; the list is now complete.
	state = controller.LoadMore(ctx)
	assert.Len(t, state.Items, 23)
	assert.Equal(t, 3, state.Page)
	assert.False(t, state.HasMore)

	// 3. Everything is accumulated: a further load-more must not fetch.
	before := server.requestCount()
	state = controller.LoadMore(ctx)
	assert.Len(t, state.Items, 23)
	assert.Equal(t, before, server.requestCount())
}

/*
TestController_ResetClearsAccumulation verifies that changing filters drops
previously accumulated pages and restarts at page 1.
*/
func TestController_ResetClearsAccumulation(t *testing.T) {
	server := newPageServer(23)
	controller := pagelist.New(server.fetch, 10)
	ctx := context.Background()

	controller.Reset(ctx, nil)
	controller.LoadMore(ctx)

	state := controller.Reset(ctx, map[string]string{"q": "tomato"})

	assert.Len(t, state.Items, 10)
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, "tomato", state.Filters["q"])

	// The fetch saw the new filter set on page 1.
	server.mu.Lock()
	last := server.requests[len(server.requests)-1]
	server.mu.Unlock()
	assert.Equal(t, 1, last.Page)
	assert.Equal(t, "tomato", last.Filters["q"])
}

/*
TestController_LoadMoreFailureKeepsItems verifies a failed page load leaves
the accumulation intact, records the error, and allows a retry of the same
page.
*/
func TestController_LoadMoreFailureKeepsItems(t *testing.T) {
	server := newPageServer(23)
	controller := pagelist.New(server.fetch, 10)
	ctx := context.Background()

	controller.Reset(ctx, nil)

	server.mu.Lock()
	server.failNext = errors.New("upstream unavailable")
	server.mu.Unlock()

	state := controller.LoadMore(ctx)
	assert.Len(t, state.Items, 10)
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, "upstream unavailable", state.Error)

	// Retry fetches page 2 again, not page 3.
	state = controller.LoadMore(ctx)
	assert.Len(t, state.Items, 20)
	assert.Equal(t, 2, state.Page)
	assert.Empty(t, state.Error)
}

/*
TestController_ResetFailureLeavesEmptyList verifies a failed reset settles
into an empty errored list rather than keeping stale items.
*/
func TestController_ResetFailureLeavesEmptyList(t *testing.T) {
	server := newPageServer(23)
	controller := pagelist.New(server.fetch, 10)
	ctx := context.Background()

	controller.Reset(ctx, nil)

	server.mu.Lock()
	server.failNext = errors.New("boom")
	server.mu.Unlock()

	state := controller.Reset(ctx, map[string]string{"q": "x"})
	assert.Empty(t, state.Items)
	assert.Equal(t, "boom", state.Error)
	assert.False(t, state.Loading)
}

/*
TestController_ResetFailureResetsTotal verifies that a failed reset under new
filters does not inherit the previous filter set's total. With page 1 never
loaded there is nothing to page past: load-more must not fetch page 2, and
recovery goes through re-issuing the reset.
*/
func TestController_ResetFailureResetsTotal(t *testing.T) {
	server := newPageServer(23)
	controller := pagelist.New(server.fetch, 10)
	ctx := context.Background()

	controller.Reset(ctx, map[string]string{"q": "maize"})

	server.mu.Lock()
	server.failNext = errors.New("boom")
	server.mu.Unlock()

	// 1. The failed reset settles empty with no total carried over.
	state := controller.Reset(ctx, map[string]string{"q": "beans"})
	assert.Zero(t, state.Total)
	assert.False(t, state.HasMore)
	assert.Equal(t, "boom", state.Error)

	// 2. Load-more has nothing to page past and must not fetch.
	before := server.requestCount()
	state = controller.LoadMore(ctx)
	assert.Empty(t, state.Items)
	assert.Equal(t, before, server.requestCount())

	// 3. Retrying the reset starts the new filter set from page 1.
	state = controller.Reset(ctx, map[string]string{"q": "beans"})
	assert.Equal(t, "item-01", state.Items[0])
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, 23, state.Total)

	server.mu.Lock()
	last := server.requests[len(server.requests)-1]
	server.mu.Unlock()
	assert.Equal(t, 1, last.Page)
	assert.Equal(t, "beans", last.Filters["q"])
}

/*
TestController_StaleResultDiscarded verifies the supersede semantics: when
a second reset is issued while the first is still in flight, the first
result is dropped and the list reflects only the second.
*/
func TestController_StaleResultDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	slowThenFast := func(_ context.Context, req pagelist.PageRequest) (pagelist.PageResult[string], error) {
		if req.Filters["q"] == "slow" {
			once.Do(func() { close(started) })
			<-release
			return pagelist.PageResult[string]{Items: []string{"stale-A", "stale-B"}, Total: 2}, nil
		}
		return pagelist.PageResult[string]{Items: []string{"fresh"}, Total: 1}, nil
	}

	controller := pagelist.New(slowThenFast, 10)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		controller.Reset(ctx, map[string]string{"q": "slow"})
	}()

	// Wait until the slow fetch is actually in flight before superseding it.
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("slow fetch never started")
	}

	state := controller.Reset(ctx, map[string]string{"q": "fresh"})
	assert.Equal(t, []string{"fresh"}, state.Items)

	// Let the stale fetch land; it must not disturb the settled state.
	close(release)
	wg.Wait()

	final := controller.Snapshot()
	assert.Equal(t, []string{"fresh"}, final.Items)
	assert.Equal(t, 1, final.Total)
	assert.Equal(t, "fresh", final.Filters["q"])
	assert.False(t, final.Loading)
}

/*
TestController_LoadMoreWhileLoadingIsNoOp verifies the in-flight gate: a
load-more issued while another fetch is outstanding performs no fetch.
*/
func TestController_LoadMoreWhileLoadingIsNoOp(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var fetches int
	var mu sync.Mutex
	var once sync.Once

	blocking := func(_ context.Context, req pagelist.PageRequest) (pagelist.PageResult[string], error) {
		mu.Lock()
		fetches++
		mu.Unlock()
		if req.Page == 2 {
			once.Do(func() { close(started) })
			<-release
		}
		return pagelist.PageResult[string]{Items: []string{"a", "b"}, Total: 6}, nil
	}

	controller := pagelist.New(blocking, 2)
	ctx := context.Background()
	controller.Reset(ctx, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		controller.LoadMore(ctx)
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("load-more never started")
	}

	// This call observes loading=true and must return without fetching.
	controller.LoadMore(ctx)

	mu.Lock()
	count := fetches
	mu.Unlock()
	assert.Equal(t, 2, count)

	close(release)
	wg.Wait()
}

/*
TestController_PrependLocal verifies the optimistic insert: the new item
leads the list and the total grows without any fetch.
*/
func TestController_PrependLocal(t *testing.T) {
	server := newPageServer(5)
	controller := pagelist.New(server.fetch, 10)
	controller.Reset(context.Background(), nil)

	before := server.requestCount()
	state := controller.PrependLocal("item-new")

	assert.Equal(t, "item-new", state.Items[0])
	assert.Len(t, state.Items, 6)
	assert.Equal(t, 6, state.Total)
	assert.Equal(t, before, server.requestCount())
}

/*
TestController_TotalNeverBelowAccumulated verifies the guard against a
server that reports a total smaller than what is already accumulated.
*/
func TestController_TotalNeverBelowAccumulated(t *testing.T) {
	misreporting := func(_ context.Context, req pagelist.PageRequest) (pagelist.PageResult[string], error) {
		return pagelist.PageResult[string]{
			Items: []string{"a", "b", "c"},
			Total: 1,
		}, nil
	}

	controller := pagelist.New(misreporting, 3)
	state := controller.Reset(context.Background(), nil)

	assert.GreaterOrEqual(t, state.Total, len(state.Items))
	assert.False(t, state.HasMore)
}

/*
TestController_SnapshotIsolation verifies that mutating a snapshot does not
leak back into controller state.
*/
func TestController_SnapshotIsolation(t *testing.T) {
	server := newPageServer(3)
	controller := pagelist.New(server.fetch, 10)
	controller.Reset(context.Background(), map[string]string{"q": "a"})

	state := controller.Snapshot()
	state.Items[0] = "mutated"
	state.Filters["q"] = "mutated"

	fresh := controller.Snapshot()
	assert.Equal(t, "item-01", fresh.Items[0])
	assert.Equal(t, "a", fresh.Filters["q"])
}

/*
TestController_RefreshKeepsFilters verifies refresh re-issues page 1 under
the filter set already in place.
*/
func TestController_RefreshKeepsFilters(t *testing.T) {
	server := newPageServer(23)
	controller := pagelist.New(server.fetch, 10)
	ctx := context.Background()

	controller.Reset(ctx, map[string]string{"q": "melon"})
	controller.LoadMore(ctx)

	state := controller.Refresh(ctx)
	assert.Len(t, state.Items, 10)
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, "melon", state.Filters["q"])
}

/*
TestClampLimit verifies page size normalization bounds.
*/
func TestClampLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{"in_range", 12, 12},
		{"zero", 0, pagelist.DefaultLimit},
		{"negative", -4, pagelist.DefaultLimit},
		{"above_max", pagelist.MaxLimit + 1, pagelist.DefaultLimit},
		{"at_max", pagelist.MaxLimit, pagelist.MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, pagelist.ClampLimit(tt.limit))
		})
	}
}

/*
TestController_EmptyResult verifies that zero matches settle as an empty
list with no error.
*/
func TestController_EmptyResult(t *testing.T) {
	server := newPageServer(0)
	controller := pagelist.New(server.fetch, 10)

	state := controller.Reset(context.Background(), map[string]string{"q": "nomatch"})

	require.NotNil(t, state.Items)
	assert.Empty(t, state.Items)
	assert.Zero(t, state.Total)
	assert.Empty(t, state.Error)
	assert.False(t, state.HasMore)
}

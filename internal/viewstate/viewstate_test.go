// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package viewstate_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmlink/gateway/internal/viewstate"
	"github.com/farmlink/gateway/pkg/pagelist"
	"github.com/farmlink/gateway/pkg/searchterm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingFetch counts fetches and remembers the filters each one carried.
type recordingFetch struct {
	mu      sync.Mutex
	filters []map[string]string
}

func (recorder *recordingFetch) fetch(_ context.Context, req pagelist.PageRequest) (pagelist.PageResult[string], error) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()

	recorder.filters = append(recorder.filters, req.Filters)
	return pagelist.PageResult[string]{Items: []string{"x"}, Total: 1}, nil
}

func (recorder *recordingFetch) seen() []map[string]string {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	return append([]map[string]string{}, recorder.filters...)
}

// newTestRegistry builds a registry with one static list backed by the
// recorder and search-term normalization on "q".
func newTestRegistry(t *testing.T, recorder *recordingFetch, searchDelay time.Duration) *viewstate.Registry {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	definitions := map[string]viewstate.Definition{
		"products": {
			New: func() viewstate.ListHandle {
				return viewstate.NewHandle(pagelist.New(recorder.fetch, 10))
			},
			Normalize: func(raw map[string]string) map[string]string {
				filters := map[string]string{}
				if q := searchterm.Normalize(raw["q"]); q != "" {
					filters["q"] = q
				}
				return filters
			},
		},
	}

	return viewstate.NewRegistry(ctx, definitions, nil, searchDelay, testLogger())
}

/*
TestRegistry_HandleIsPerViewer verifies each viewer gets an independent
controller for the same list name, and the same viewer gets the same one
back.
*/
func TestRegistry_HandleIsPerViewer(t *testing.T) {
	recorder := &recordingFetch{}
	registry := newTestRegistry(t, recorder, time.Minute)

	first, err := registry.Handle("viewer-a", "products")
	require.NoError(t, err)

	again, err := registry.Handle("viewer-a", "products")
	require.NoError(t, err)
	assert.Same(t, first, again)

	other, err := registry.Handle("viewer-b", "products")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

/*
TestRegistry_UnknownListFails verifies addressing an undefined list is a
not-found error, not a silently created list.
*/
func TestRegistry_UnknownListFails(t *testing.T) {
	recorder := &recordingFetch{}
	registry := newTestRegistry(t, recorder, time.Minute)

	_, err := registry.Handle("viewer-a", "unicorns")
	assert.Error(t, err)

	err = registry.Search("viewer-a", "unicorns", map[string]string{"q": "x"})
	assert.Error(t, err)
}

/*
TestRegistry_SearchDebounces verifies a keystroke burst produces exactly
one reset carrying the last value, normalized.
*/
func TestRegistry_SearchDebounces(t *testing.T) {
	recorder := &recordingFetch{}
	registry := newTestRegistry(t, recorder, 30*time.Millisecond)

	for _, value := range []string{"T", "To", "Tom", "TOMA", "  Tomáto "} {
		require.NoError(t, registry.Search("viewer-a", "products", map[string]string{"q": value}))
		time.Sleep(2 * time.Millisecond)
	}

	// Nothing fetches while input is still arriving.
	assert.Empty(t, recorder.seen())

	time.Sleep(120 * time.Millisecond)

	seen := recorder.seen()
	require.Len(t, seen, 1)
	assert.Equal(t, "tomato", seen[0]["q"])
}

/*
TestRegistry_SearchThenSnapshot verifies the settled search result is
visible through the same handle the search targeted.
*/
func TestRegistry_SearchThenSnapshot(t *testing.T) {
	recorder := &recordingFetch{}
	registry := newTestRegistry(t, recorder, 10*time.Millisecond)

	require.NoError(t, registry.Search("viewer-a", "products", map[string]string{"q": "maize"}))
	time.Sleep(80 * time.Millisecond)

	handle, err := registry.Handle("viewer-a", "products")
	require.NoError(t, err)

	state, ok := handle.Snapshot().(pagelist.State[string])
	require.True(t, ok)
	assert.Equal(t, "maize", state.Filters["q"])
	assert.Equal(t, []string{"x"}, state.Items)
}

/*
TestRegistry_ForgetDropsStateAndPendingSearches verifies logout-style
eviction: pending debounced searches never fire and the next handle is a
fresh controller.
*/
func TestRegistry_ForgetDropsStateAndPendingSearches(t *testing.T) {
	recorder := &recordingFetch{}
	registry := newTestRegistry(t, recorder, 30*time.Millisecond)

	handle, err := registry.Handle("viewer-a", "products")
	require.NoError(t, err)

	require.NoError(t, registry.Search("viewer-a", "products", map[string]string{"q": "pending"}))
	registry.Forget("viewer-a")

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, recorder.seen())

	fresh, err := registry.Handle("viewer-a", "products")
	require.NoError(t, err)
	assert.NotSame(t, handle, fresh)
}

/*
TestControllerFor verifies typed recovery of the controller behind a
handle, including the wrong-type case.
*/
func TestControllerFor(t *testing.T) {
	handle := viewstate.NewHandle(pagelist.New(
		func(context.Context, pagelist.PageRequest) (pagelist.PageResult[string], error) {
			return pagelist.PageResult[string]{}, nil
		}, 10))

	controller, ok := viewstate.ControllerFor[string](handle)
	require.True(t, ok)
	require.NotNil(t, controller)

	_, ok = viewstate.ControllerFor[int](handle)
	assert.False(t, ok)
}

/*
TestReplyListNames verifies the dynamic reply-list name round trip.
*/
func TestReplyListNames(t *testing.T) {
	name := viewstate.ReplyList("post-7")
	assert.Equal(t, "replies:post-7", name)

	postID, ok := viewstate.ReplyListPostID(name)
	require.True(t, ok)
	assert.Equal(t, "post-7", postID)

	_, ok = viewstate.ReplyListPostID("products")
	assert.False(t, ok)

	_, ok = viewstate.ReplyListPostID("replies:")
	assert.False(t, ok)
}

/*
TestRegistry_DynamicDefinition verifies the dynamic resolver path used by
per-post reply lists.
*/
func TestRegistry_DynamicDefinition(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := &recordingFetch{}
	dynamic := func(name string) (viewstate.Definition, bool) {
		if _, ok := viewstate.ReplyListPostID(name); !ok {
			return viewstate.Definition{}, false
		}
		return viewstate.Definition{
			New: func() viewstate.ListHandle {
				return viewstate.NewHandle(pagelist.New(recorder.fetch, 20))
			},
			Normalize: func(raw map[string]string) map[string]string { return raw },
		}, true
	}

	registry := viewstate.NewRegistry(ctx, nil, dynamic, time.Minute, testLogger())

	handle, err := registry.Handle("viewer-a", viewstate.ReplyList("post-9"))
	require.NoError(t, err)

	state := handle.Reset(context.Background(), nil).(pagelist.State[string])
	assert.Equal(t, []string{"x"}, state.Items)

	_, err = registry.Handle("viewer-a", "not-a-list")
	assert.Error(t, err)
}

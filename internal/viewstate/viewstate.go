// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

/*
Package viewstate holds each viewer's server-side list state.

Every browsing device (identified by its device cookie) gets its own set of
list controllers and search debouncers, created lazily on first use and
swept after a period of inactivity. The registry is the only place where
list names map to concrete controllers; handlers address lists purely by
name.

Well-known list names are "products", "posts", and "resources". Reply lists
are addressed dynamically as "replies:<postID>".
*/
package viewstate

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/farmlink/gateway/internal/platform/apperr"
	"github.com/farmlink/gateway/internal/platform/constants"
	"github.com/farmlink/gateway/pkg/debounce"
	"github.com/farmlink/gateway/pkg/pagelist"
)

// # List Names

const (
	ListProducts  = "products"
	ListPosts     = "posts"
	ListResources = "resources"

	// replyListPrefix addresses one post's reply list: "replies:<postID>".
	replyListPrefix = "replies:"
)

// ListHandle is the type-erased face of a [pagelist.Controller].
//
// The registry stores heterogeneous controllers under one map; handlers
// serialize whatever state the handle returns without caring about the
// item type.
type ListHandle interface {
	Reset(ctx context.Context, filters map[string]string) any
	LoadMore(ctx context.Context) any
	Refresh(ctx context.Context) any
	Snapshot() any
}

// Handle adapts a typed controller to [ListHandle] while keeping the typed
// controller reachable for callers that need it (optimistic prepends).
type Handle[T any] struct {
	controller *pagelist.Controller[T]
}

// NewHandle wraps a typed controller.
func NewHandle[T any](controller *pagelist.Controller[T]) *Handle[T] {
	return &Handle[T]{controller: controller}
}

// Controller exposes the underlying typed controller.
func (handle *Handle[T]) Controller() *pagelist.Controller[T] {
	return handle.controller
}

func (handle *Handle[T]) Reset(ctx context.Context, filters map[string]string) any {
	return handle.controller.Reset(ctx, filters)
}

func (handle *Handle[T]) LoadMore(ctx context.Context) any {
	return handle.controller.LoadMore(ctx)
}

func (handle *Handle[T]) Refresh(ctx context.Context) any {
	return handle.controller.Refresh(ctx)
}

func (handle *Handle[T]) Snapshot() any {
	return handle.controller.Snapshot()
}

// ControllerFor recovers the typed controller behind a handle.
//
// Returns false when the handle holds a different item type.
func ControllerFor[T any](handle ListHandle) (*pagelist.Controller[T], bool) {
	typed, ok := handle.(*Handle[T])
	if !ok {
		return nil, false
	}
	return typed.Controller(), true
}

// Definition describes how to build and filter one named list.
type Definition struct {
	// New constructs a fresh handle for one viewer.
	New func() ListHandle
	// Normalize canonicalizes raw filter input before it reaches the
	// controller (search term folding, numeric validation).
	Normalize func(raw map[string]string) map[string]string
}

// DynamicResolver maps a dynamic list name (one not in the static
// definition table) to a definition. Returns false for unknown names.
type DynamicResolver func(name string) (Definition, bool)

// viewerState is everything the registry holds for one device.
type viewerState struct {
	handles    map[string]ListHandle
	debouncers map[string]*debounce.Debouncer[map[string]string]
	lastSeen   time.Time
}

// Registry owns per-viewer view state.
//
// Idle viewers are evicted on a background ticker; eviction drops only the
// in-memory list state, never a persisted session token.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*viewerState

	definitions map[string]Definition
	dynamic     DynamicResolver

	searchDelay time.Duration
	logger      *slog.Logger
}

// NewRegistry constructs a Registry and starts its idle sweeper.
//
// The sweeper stops when ctx is cancelled.
func NewRegistry(ctx context.Context, definitions map[string]Definition, dynamic DynamicResolver, searchDelay time.Duration, logger *slog.Logger) *Registry {
	registry := &Registry{
		entries:     make(map[string]*viewerState),
		definitions: definitions,
		dynamic:     dynamic,
		searchDelay: searchDelay,
		logger:      logger,
	}

	go registry.sweep(ctx)

	return registry
}

// Handle returns the viewer's controller for the named list, creating it
// on first use.
//
// Unknown list names fail with a not-found error.
func (registry *Registry) Handle(viewerKey, name string) (ListHandle, error) {
	definition, ok := registry.resolve(name)
	if !ok {
		return nil, apperr.NotFound("Unknown list")
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	state := registry.touchLocked(viewerKey)
	handle, ok := state.handles[name]
	if !ok {
		handle = definition.New()
		state.handles[name] = handle
	}

	return handle, nil
}

// Normalize runs the named list's filter canonicalization.
func (registry *Registry) Normalize(name string, raw map[string]string) (map[string]string, error) {
	definition, ok := registry.resolve(name)
	if !ok {
		return nil, apperr.NotFound("Unknown list")
	}
	return definition.Normalize(raw), nil
}

// Search feeds one keystroke's worth of filter input into the viewer's
// debouncer for the named list.
//
// Nothing fetches until the input goes quiet for the configured delay.
// When it does, the last submitted filter set is normalized and applied as
// a reset; earlier submissions within the window are discarded unseen.
func (registry *Registry) Search(viewerKey, name string, raw map[string]string) error {
	definition, ok := registry.resolve(name)
	if !ok {
		return apperr.NotFound("Unknown list")
	}

	registry.mu.Lock()
	state := registry.touchLocked(viewerKey)
	debouncer, ok := state.debouncers[name]
	if !ok {
		handle, exists := state.handles[name]
		if !exists {
			handle = definition.New()
			state.handles[name] = handle
		}

		// The reset runs after the originating request already returned,
		// so it carries its own context rather than the request's.
		debouncer = debounce.New(registry.searchDelay, func(filters map[string]string) {
			handle.Reset(context.Background(), definition.Normalize(filters))
		})
		state.debouncers[name] = debouncer
	}
	registry.mu.Unlock()

	debouncer.Trigger(raw)
	return nil
}

// Forget drops one viewer's entire view state. Used on logout so the next
// page the viewer sees is fetched fresh.
func (registry *Registry) Forget(viewerKey string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.evictLocked(viewerKey)
}

// resolve finds the definition for a list name, static table first.
func (registry *Registry) resolve(name string) (Definition, bool) {
	if definition, ok := registry.definitions[name]; ok {
		return definition, true
	}
	if registry.dynamic != nil {
		return registry.dynamic(name)
	}
	return Definition{}, false
}

// touchLocked fetches or creates the viewer's state and stamps it live.
func (registry *Registry) touchLocked(viewerKey string) *viewerState {
	state, ok := registry.entries[viewerKey]
	if !ok {
		state = &viewerState{
			handles:    make(map[string]ListHandle),
			debouncers: make(map[string]*debounce.Debouncer[map[string]string]),
		}
		registry.entries[viewerKey] = state
	}

	state.lastSeen = time.Now()
	return state
}

// sweep evicts viewers idle past the TTL, same shape as the rate limiter's
// client sweep.
func (registry *Registry) sweep(ctx context.Context) {
	ticker := time.NewTicker(constants.ViewStateCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			registry.mu.Lock()
			cutoff := time.Now().Add(-constants.ViewStateIdleTTL)
			for viewerKey, state := range registry.entries {
				if state.lastSeen.Before(cutoff) {
					registry.evictLocked(viewerKey)
				}
			}
			registry.mu.Unlock()
		}
	}
}

// evictLocked removes one viewer, stopping any pending debouncers first.
func (registry *Registry) evictLocked(viewerKey string) {
	state, ok := registry.entries[viewerKey]
	if !ok {
		return
	}

	for _, debouncer := range state.debouncers {
		debouncer.Stop()
	}
	delete(registry.entries, viewerKey)

	registry.logger.Debug("viewstate_evicted",
		slog.String("viewer_key", viewerKey),
	)
}

// ReplyList builds the dynamic list name for one post's replies.
func ReplyList(postID string) string {
	return replyListPrefix + postID
}

// ReplyListPostID extracts the post ID from a reply list name.
//
// Returns false when the name is not a reply list.
func ReplyListPostID(name string) (string, bool) {
	postID, ok := strings.CutPrefix(name, replyListPrefix)
	if !ok || postID == "" {
		return "", false
	}
	return postID, true
}

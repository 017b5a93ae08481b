// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmlink/gateway/internal/platform/sec"
	"github.com/farmlink/gateway/internal/session"
)

// testLogger discards output; session logging is exercised, not asserted.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBackend scripts the user-fetch and token-refresh collaborators and
// counts how often each is invoked.
type fakeBackend struct {
	mu sync.Mutex

	userByToken map[string]*session.User
	refreshTo   string
	refreshErr  error

	fetchCalls   int
	refreshCalls int
}

func (backend *fakeBackend) fetchUser(_ context.Context, token string) (*session.User, error) {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	backend.fetchCalls++
	if user, ok := backend.userByToken[token]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, errors.New("token rejected")
}

func (backend *fakeBackend) refresh(_ context.Context, token string) (string, error) {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	backend.refreshCalls++
	if backend.refreshErr != nil {
		return "", backend.refreshErr
	}
	return backend.refreshTo, nil
}

func (backend *fakeBackend) calls() (fetch, refresh int) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	return backend.fetchCalls, backend.refreshCalls
}

func testUser() *session.User {
	return &session.User{
		ID:       "user-1",
		Username: "ama",
		Email:    "ama@example.com",
		Role:     sec.RoleFarmer,
	}
}

func newTestStore(backend *fakeBackend, storage session.TokenStorage) *session.Store {
	return session.NewStore("viewer-1", storage, backend.fetchUser, backend.refresh, testLogger())
}

/*
TestStore_AuthenticatedIsDerived walks the full mutation surface and checks
that the authenticated flag always equals "user present and token present".
*/
func TestStore_AuthenticatedIsDerived(t *testing.T) {
	backend := &fakeBackend{}
	store := newTestStore(backend, session.NewMemoryTokenStorage())
	ctx := context.Background()

	// 1. Fresh store: logged out.
	snapshot := store.Snapshot()
	assert.False(t, snapshot.IsAuthenticated)
	assert.Nil(t, snapshot.User)

	// 2. Login: both present, authenticated.
	snapshot = store.SetAuth(ctx, testUser(), "token-abc")
	assert.True(t, snapshot.IsAuthenticated)
	require.NotNil(t, snapshot.User)
	assert.Equal(t, "user-1", snapshot.User.ID)
	assert.Equal(t, "token-abc", snapshot.Token)

	// 3. Profile update: still authenticated.
	name := "Ama K."
	snapshot = store.UpdateUser(session.UserPatch{DisplayName: &name})
	assert.True(t, snapshot.IsAuthenticated)
	assert.Equal(t, "Ama K.", snapshot.User.DisplayName)

	// 4. Logout: both cleared together.
	snapshot = store.Logout(ctx)
	assert.False(t, snapshot.IsAuthenticated)
	assert.Nil(t, snapshot.User)
	assert.Empty(t, snapshot.Token)
}

/*
TestStore_SetAuthWithoutTokenIsNotAuthenticated verifies that a user with
no token never reads as authenticated.
*/
func TestStore_SetAuthWithoutTokenIsNotAuthenticated(t *testing.T) {
	backend := &fakeBackend{}
	store := newTestStore(backend, session.NewMemoryTokenStorage())

	snapshot := store.SetAuth(context.Background(), testUser(), "")
	assert.False(t, snapshot.IsAuthenticated)
}

/*
TestStore_UpdateUserWithoutSessionIsNoOp verifies the silent no-op when no
user is logged in.
*/
func TestStore_UpdateUserWithoutSessionIsNoOp(t *testing.T) {
	backend := &fakeBackend{}
	store := newTestStore(backend, session.NewMemoryTokenStorage())

	name := "Ghost"
	snapshot := store.UpdateUser(session.UserPatch{DisplayName: &name})

	assert.Nil(t, snapshot.User)
	assert.False(t, snapshot.IsAuthenticated)
}

/*
TestStore_UpdateUserPartialMerge verifies nil patch fields leave existing
values untouched.
*/
func TestStore_UpdateUserPartialMerge(t *testing.T) {
	backend := &fakeBackend{}
	store := newTestStore(backend, session.NewMemoryTokenStorage())
	ctx := context.Background()

	user := testUser()
	user.DisplayName = "Ama"
	user.Bio = "Growing heirloom maize."
	store.SetAuth(ctx, user, "token-abc")

	bio := "Updated bio"
	snapshot := store.UpdateUser(session.UserPatch{Bio: &bio})

	assert.Equal(t, "Ama", snapshot.User.DisplayName)
	assert.Equal(t, "Updated bio", snapshot.User.Bio)
}

/*
TestStore_RehydrateHappyPath verifies a persisted valid token restores the
session without any refresh.
*/
func TestStore_RehydrateHappyPath(t *testing.T) {
	storage := session.NewMemoryTokenStorage()
	require.NoError(t, storage.Set(context.Background(), "viewer-1", "token-good"))

	backend := &fakeBackend{
		userByToken: map[string]*session.User{"token-good": testUser()},
	}
	store := newTestStore(backend, storage)

	snapshot := store.Rehydrate(context.Background())

	assert.True(t, snapshot.IsAuthenticated)
	assert.False(t, snapshot.Loading)
	assert.Equal(t, "user-1", snapshot.User.ID)

	fetches, refreshes := backend.calls()
	assert.Equal(t, 1, fetches)
	assert.Zero(t, refreshes)
}

/*
TestStore_RehydrateNoTokenSettlesLoggedOut verifies an absent persisted
token yields a settled anonymous session with no backend traffic.
*/
func TestStore_RehydrateNoTokenSettlesLoggedOut(t *testing.T) {
	backend := &fakeBackend{}
	store := newTestStore(backend, session.NewMemoryTokenStorage())

	snapshot := store.Rehydrate(context.Background())

	assert.False(t, snapshot.IsAuthenticated)
	assert.False(t, snapshot.Loading)

	fetches, refreshes := backend.calls()
	assert.Zero(t, fetches)
	assert.Zero(t, refreshes)
}

/*
TestStore_RehydrateRefreshesOnce verifies the stale-token path: fetch
fails, one refresh succeeds, the refetched user lands and the new token is
persisted.
*/
func TestStore_RehydrateRefreshesOnce(t *testing.T) {
	ctx := context.Background()
	storage := session.NewMemoryTokenStorage()
	require.NoError(t, storage.Set(ctx, "viewer-1", "token-stale"))

	backend := &fakeBackend{
		userByToken: map[string]*session.User{"token-fresh": testUser()},
		refreshTo:   "token-fresh",
	}
	store := newTestStore(backend, storage)

	snapshot := store.Rehydrate(ctx)

	assert.True(t, snapshot.IsAuthenticated)
	assert.Equal(t, "token-fresh", snapshot.Token)

	fetches, refreshes := backend.calls()
	assert.Equal(t, 2, fetches)
	assert.Equal(t, 1, refreshes)

	persisted, err := storage.Get(ctx, "viewer-1")
	require.NoError(t, err)
	assert.Equal(t, "token-fresh", persisted)
}

/*
TestStore_RehydrateRefreshFailureClearsEverything verifies the dead-token
path: fetch fails, the single refresh fails, the session settles logged out
and the persisted token is gone. No second refresh is ever attempted.
*/
func TestStore_RehydrateRefreshFailureClearsEverything(t *testing.T) {
	ctx := context.Background()
	storage := session.NewMemoryTokenStorage()
	require.NoError(t, storage.Set(ctx, "viewer-1", "token-dead"))

	backend := &fakeBackend{refreshErr: errors.New("refresh rejected")}
	store := newTestStore(backend, storage)

	snapshot := store.Rehydrate(ctx)

	assert.False(t, snapshot.IsAuthenticated)
	assert.Nil(t, snapshot.User)
	assert.False(t, snapshot.Loading)

	fetches, refreshes := backend.calls()
	assert.Equal(t, 1, fetches)
	assert.Equal(t, 1, refreshes)

	_, err := storage.Get(ctx, "viewer-1")
	assert.ErrorIs(t, err, session.ErrNoToken)
}

/*
TestStore_RehydrateRefetchFailureClearsEverything verifies that a refresh
which succeeds but yields a token the backend still rejects ends logged
out, with exactly one refresh attempt.
*/
func TestStore_RehydrateRefetchFailureClearsEverything(t *testing.T) {
	ctx := context.Background()
	storage := session.NewMemoryTokenStorage()
	require.NoError(t, storage.Set(ctx, "viewer-1", "token-stale"))

	backend := &fakeBackend{refreshTo: "token-still-bad"}
	store := newTestStore(backend, storage)

	snapshot := store.Rehydrate(ctx)

	assert.False(t, snapshot.IsAuthenticated)

	fetches, refreshes := backend.calls()
	assert.Equal(t, 2, fetches)
	assert.Equal(t, 1, refreshes)

	_, err := storage.Get(ctx, "viewer-1")
	assert.ErrorIs(t, err, session.ErrNoToken)
}

/*
TestStore_LoginDuringRehydrationWins verifies the epoch guard: a login that
lands while rehydration is talking to the backend is not overwritten by the
rehydration outcome.
*/
func TestStore_LoginDuringRehydrationWins(t *testing.T) {
	ctx := context.Background()
	storage := session.NewMemoryTokenStorage()
	require.NoError(t, storage.Set(ctx, "viewer-1", "token-old"))

	fetchEntered := make(chan struct{})
	release := make(chan struct{})

	staleUser := &session.User{ID: "stale-user", Role: sec.RoleBuyer}
	slowFetch := func(_ context.Context, token string) (*session.User, error) {
		close(fetchEntered)
		<-release
		copied := *staleUser
		return &copied, nil
	}
	refresh := func(_ context.Context, token string) (string, error) {
		return "", errors.New("unexpected refresh")
	}

	store := session.NewStore("viewer-1", storage, slowFetch, refresh, testLogger())

	done := make(chan session.Snapshot, 1)
	go func() {
		done <- store.Rehydrate(ctx)
	}()

	<-fetchEntered

	// A fresh login lands while the rehydration fetch is blocked.
	freshUser := testUser()
	store.SetAuth(ctx, freshUser, "token-new")

	close(release)
	settled := <-done

	// The rehydration outcome was discarded; the login state stands.
	assert.Equal(t, "user-1", settled.User.ID)
	assert.Equal(t, "token-new", settled.Token)

	final := store.Snapshot()
	assert.Equal(t, "user-1", final.User.ID)
	assert.True(t, final.IsAuthenticated)
}

/*
TestStore_SnapshotIsolation verifies that mutating a returned snapshot's
user does not change store state.
*/
func TestStore_SnapshotIsolation(t *testing.T) {
	backend := &fakeBackend{}
	store := newTestStore(backend, session.NewMemoryTokenStorage())
	store.SetAuth(context.Background(), testUser(), "token-abc")

	snapshot := store.Snapshot()
	snapshot.User.Username = "tampered"

	assert.Equal(t, "ama", store.Snapshot().User.Username)
}

/*
TestManager_GetRehydratesOnFirstSight verifies the manager creates one
store per viewer key and that the first Get already reflects the persisted
session.
*/
func TestManager_GetRehydratesOnFirstSight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage := session.NewMemoryTokenStorage()
	require.NoError(t, storage.Set(ctx, "viewer-9", "token-good"))

	backend := &fakeBackend{
		userByToken: map[string]*session.User{"token-good": testUser()},
	}
	manager := session.NewManager(ctx, storage, backend.fetchUser, backend.refresh, testLogger())

	store := manager.Get(ctx, "viewer-9")
	snapshot := store.Snapshot()
	assert.True(t, snapshot.IsAuthenticated)

	// Second Get returns the same store without re-rehydrating.
	again := manager.Get(ctx, "viewer-9")
	assert.Same(t, store, again)

	fetches, _ := backend.calls()
	assert.Equal(t, 1, fetches)
}

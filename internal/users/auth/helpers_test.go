// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/inkwell/internal/platform/apperr"
	"github.com/taibuivan/inkwell/internal/platform/sec"
	"github.com/taibuivan/inkwell/internal/users/auth"
)

const (
	testAccessSecret  = "access-secret-access-secret-0123456789"
	testRefreshSecret = "refresh-secret-refresh-secret-0123456789"
)

// # Clock

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_760_000_000, 0)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestIssuer(t *testing.T, clock *testClock) *sec.TokenIssuer {
	t.Helper()
	codec, err := sec.NewTokenCodec(testAccessSecret, testRefreshSecret, "inkwell.test", sec.WithClock(clock.Now))
	require.NoError(t, err)
	return sec.NewTokenIssuer(codec, 10*time.Hour, 7*24*time.Hour)
}

// # In-memory fakes

type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[string]*auth.User)}
}

func (repository *memoryUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user, ok := repository.users[email]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (repository *memoryUserRepository) Create(_ context.Context, user *auth.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, exists := repository.users[user.Email]; exists {
		return apperr.Conflict("Email is already registered")
	}
	clone := *user
	repository.users[user.Email] = &clone
	return nil
}

func (repository *memoryUserRepository) Delete(email string) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	delete(repository.users, email)
}

type memoryIdentityCache struct {
	mu         sync.Mutex
	identities map[string]sec.Identity
}

func newMemoryIdentityCache() *memoryIdentityCache {
	return &memoryIdentityCache{identities: make(map[string]sec.Identity)}
}

func (cache *memoryIdentityCache) Get(_ context.Context, email string) (*sec.Identity, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	identity, ok := cache.identities[email]
	if !ok {
		return nil, auth.ErrIdentityNotCached
	}
	return &identity, nil
}

func (cache *memoryIdentityCache) Set(_ context.Context, identity sec.Identity) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.identities[identity.Email] = identity
	return nil
}

func (cache *memoryIdentityCache) Delete(_ context.Context, email string) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	delete(cache.identities, email)
	return nil
}

// # Mocks

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type mockIdentityCache struct {
	mock.Mock
}

func (m *mockIdentityCache) Get(ctx context.Context, email string) (*sec.Identity, error) {
	args := m.Called(ctx, email)
	identity, _ := args.Get(0).(*sec.Identity)
	return identity, args.Error(1)
}

func (m *mockIdentityCache) Set(ctx context.Context, identity sec.Identity) error {
	return m.Called(ctx, identity).Error(0)
}

func (m *mockIdentityCache) Delete(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// mustHash hashes with bcrypt for fixtures.
func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	return hash
}

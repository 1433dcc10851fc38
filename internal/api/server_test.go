// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/inkwell/internal/api"
	"github.com/taibuivan/inkwell/internal/client/apiclient"
	"github.com/taibuivan/inkwell/internal/client/session"
	"github.com/taibuivan/inkwell/internal/platform/apperr"
	"github.com/taibuivan/inkwell/internal/platform/sec"
	"github.com/taibuivan/inkwell/internal/users/account"
	"github.com/taibuivan/inkwell/internal/users/auth"
)

// # In-memory Storage

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// users satisfies both the auth and the account repositories.
type users struct {
	mu      sync.Mutex
	byEmail map[string]*auth.User
}

func (u *users) Create(_ context.Context, user *auth.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.byEmail[user.Email]; ok {
		return apperr.Conflict("Email is already registered")
	}
	stored := *user
	u.byEmail[user.Email] = &stored
	return nil
}

func (u *users) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if user, ok := u.byEmail[email]; ok {
		found := *user
		return &found, nil
	}
	return nil, apperr.NotFound("User")
}

func (u *users) FindByID(_ context.Context, id string) (*auth.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.byEmail {
		if user.ID == id {
			found := *user
			return &found, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (u *users) UpdateDisplayName(_ context.Context, id, displayName string) (*auth.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.byEmail {
		if user.ID == id {
			user.DisplayName = displayName
			updated := *user
			return &updated, nil
		}
	}
	return nil, apperr.NotFound("User")
}

// noCache always misses, so refresh resolves identities from the repository.
type noCache struct{}

func (noCache) Get(context.Context, string) (*sec.Identity, error) { return nil, auth.ErrIdentityNotCached }
func (noCache) Set(context.Context, sec.Identity) error           { return nil }
func (noCache) Delete(context.Context, string) error              { return nil }

// # Fixture

type fixture struct {
	server *httptest.Server
	clock  *clock
	store  *session.Store
	client *apiclient.Client
	expiry atomic.Int32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{clock: &clock{now: time.Unix(1_760_000_000, 0)}}

	codec, err := sec.NewTokenCodec(
		"access-secret-access-secret-0123456789",
		"refresh-secret-refresh-secret-0123456789",
		"inkwell.test",
		sec.WithClock(f.clock.Now),
	)
	require.NoError(t, err)
	issuer := sec.NewTokenIssuer(codec, 10*time.Hour, 7*24*time.Hour)

	repository := &users{byEmail: make(map[string]*auth.User)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{}, logger)

	router := api.NewRouter(logger, api.Options{}, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(auth.NewService(repository, noCache{}, issuer), issuer, auth.CookiePolicy{}),
		Account:   account.NewHandler(account.NewService(repository, noCache{}), issuer),
	})

	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)

	f.store = session.NewStore(session.NewMemoryPersister(nil), session.WithClock(f.clock.Now))
	require.NoError(t, f.store.InitializeAuth(context.Background()))

	f.client = apiclient.New(f.server.URL, f.store, apiclient.OnSessionExpired(func() { f.expiry.Add(1) }))
	return f
}

func (f *fixture) rawMe(t *testing.T, token string) int {
	t.Helper()
	request, err := http.NewRequest(http.MethodGet, f.server.URL+"/api/users/me", nil)
	require.NoError(t, err)
	request.Header.Set("Authorization", "Bearer "+token)

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	response.Body.Close()
	return response.StatusCode
}

/*
TestSessionLifecycle drives the client against the real router from signup to
session expiry.
*/
func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 1. Signup, then a duplicate
	profile, err := f.client.Signup(ctx, "a@x.com", "password1", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", profile.Email)

	_, err = f.client.Signup(ctx, "A@x.com", "password2", "Imposter")
	var apiError *apiclient.APIError
	require.ErrorAs(t, err, &apiError)
	assert.Equal(t, http.StatusBadRequest, apiError.StatusCode)
	assert.Equal(t, "CONFLICT", apiError.Code)

	// 2. Wrong password leaves the store untouched
	_, err = f.client.Login(ctx, "a@x.com", "wrong-password")
	require.ErrorAs(t, err, &apiError)
	assert.Equal(t, http.StatusUnauthorized, apiError.StatusCode)
	assert.Equal(t, session.StateUnauthenticated, f.store.State())

	// 3. Login then an immediate protected call
	_, err = f.client.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	me, err := f.client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, me.ID)
	assert.Equal(t, "Ada", me.DisplayName)

	// 4. Access token expires; the next call refreshes transparently
	stale := f.store.AccessToken()
	f.clock.Advance(10 * time.Hour)
	assert.True(t, f.store.IsTokenExpired())

	me, err = f.client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, me.ID)
	assert.NotEqual(t, stale, f.store.AccessToken())
	assert.False(t, f.store.IsTokenExpired())

	// 5. Refresh token expires; the session ends once
	f.clock.Advance(7 * 24 * time.Hour)

	_, err = f.client.Me(ctx)
	assert.ErrorIs(t, err, apiclient.ErrUnauthenticated)
	assert.Equal(t, int32(1), f.expiry.Load())
	assert.Equal(t, session.StateUnauthenticated, f.store.State())
}

/*
TestLogout_TokenStillValid documents that logout does not revoke the access token.
*/
func TestLogout_TokenStillValid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.client.Signup(ctx, "a@x.com", "password1", "Ada")
	require.NoError(t, err)
	_, err = f.client.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	token := f.store.AccessToken()
	f.client.Logout(ctx)

	assert.Equal(t, session.StateUnauthenticated, f.store.State())
	assert.Equal(t, http.StatusOK, f.rawMe(t, token))

	f.clock.Advance(10 * time.Hour)
	assert.Equal(t, http.StatusUnauthorized, f.rawMe(t, token))
}

/*
TestExpiredRefresh_ClearsCookies checks the cookie side of a rejected refresh.
*/
func TestExpiredRefresh_ClearsCookies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.client.Signup(ctx, "a@x.com", "password1", "Ada")
	require.NoError(t, err)
	_, err = f.client.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	f.clock.Advance(7*24*time.Hour + time.Second)

	request, err := http.NewRequest(http.MethodPost, f.server.URL+"/api/auth/refresh", nil)
	require.NoError(t, err)
	request.AddCookie(&http.Cookie{Name: "refreshToken", Value: f.store.RefreshToken()})

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)

	cleared := map[string]bool{}
	for _, cookie := range response.Cookies() {
		cleared[cookie.Name] = cookie.MaxAge < 0
	}
	assert.Equal(t, map[string]bool{"accessToken": true, "refreshToken": true}, cleared)
}

/*
TestProfileUpdate_ReflectedAfterRefresh verifies a rename reaches the next access token.
*/
func TestProfileUpdate_ReflectedAfterRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.client.Signup(ctx, "a@x.com", "password1", "Ada")
	require.NoError(t, err)
	_, err = f.client.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	updated, err := f.client.UpdateDisplayName(ctx, "Countess")
	require.NoError(t, err)
	assert.Equal(t, "Countess", updated.DisplayName)

	f.clock.Advance(10 * time.Hour)
	_, err = f.client.Me(ctx)
	require.NoError(t, err)

	identity, err := session.IdentityFromToken(f.store.AccessToken())
	require.NoError(t, err)
	assert.Equal(t, "Countess", identity.DisplayName)
}

/*
TestRouter_Infrastructure covers the health endpoints and unknown routes.
*/
func TestRouter_Infrastructure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(context.Context) error { return nil },
		CheckCache:    func(context.Context) error { return errors.New("connection refused") },
	}, logger)

	router := api.NewRouter(logger, api.Options{}, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(nil, nil, auth.CookiePolicy{}),
		Account:   account.NewHandler(nil, nil),
	})

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"liveness", "/health", http.StatusOK, `"alive"`},
		{"readiness_degraded", "/ready", http.StatusServiceUnavailable, `"degraded"`},
		{"unknown_route", "/nope", http.StatusNotFound, `"NOT_FOUND"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.wantBody)
		})
	}
}

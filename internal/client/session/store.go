// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session holds the client-side authentication state.

A [Store] is created once per process and injected wherever the session is
read or changed. It survives restarts through a [Persister].

State machine:

	StateUninitialized ──InitializeAuth──▶ StateUnauthenticated | StateAuthenticated
	StateUnauthenticated ──Login──▶ StateAuthenticated
	StateAuthenticated ──Logout──▶ StateUnauthenticated
*/
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/inkwell/internal/platform/sec"
)

var (
	// ErrEmptyToken is returned when a mutation would leave the store without an access token.
	ErrEmptyToken = errors.New("session: empty access token")

	// ErrNotAuthenticated is returned when tokens are updated on a logged-out store.
	ErrNotAuthenticated = errors.New("session: not authenticated")

	// ErrTokenChanged is returned by [Store.CompareAndUpdateTokens] when the
	// access token is no longer the expected one.
	ErrTokenChanged = errors.New("session: access token changed")
)

// State is the coarse authentication state of a [Store].
type State int

const (
	StateUninitialized State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (state State) String() string {
	switch state {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "uninitialized"
	}
}

// TokenPair carries the tokens returned by login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is a point-in-time copy of the store.
//
// IsAuthenticated is always equal to AccessToken != "".
type Session struct {
	Identity          *sec.Identity
	AccessToken       string
	RefreshToken      string
	IsAuthenticated   bool
	IsAuthInitialized bool
}

// Store is the single source of truth for the client session.
type Store struct {
	mu          sync.RWMutex
	identity    *sec.Identity
	access      string
	refresh     string
	initialized bool

	initOnce sync.Once

	// ioMu orders persister calls the same way mutations are ordered, without
	// holding mu during I/O.
	ioMu      sync.Mutex
	persister Persister
	logger    *slog.Logger
	now       func() time.Time

	listenersMu sync.Mutex
	listeners   map[int]func(Session)
	nextID      int
}

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the logger used for persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(store *Store) { store.logger = logger }
}

// WithClock overrides the time source used by [Store.IsTokenExpired].
func WithClock(now func() time.Time) Option {
	return func(store *Store) { store.now = now }
}

// NewStore builds an empty, uninitialized store backed by persister.
func NewStore(persister Persister, opts ...Option) *Store {
	store := &Store{
		persister: persister,
		logger:    slog.Default(),
		now:       time.Now,
		listeners: make(map[int]func(Session)),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// # Lifecycle

/*
InitializeAuth loads the persisted session.

Description: Runs at most once. The store is marked initialized even when
loading fails; it then stays unauthenticated and only the first caller sees
the error.
*/
func (store *Store) InitializeAuth(ctx context.Context) error {
	var err error
	store.initOnce.Do(func() {
		err = store.initialize(ctx)
	})
	return err
}

func (store *Store) initialize(ctx context.Context) error {
	var loadErr error
	record, err := store.load(ctx)

	store.mu.Lock()
	switch {
	case err == nil && record.AccessToken != "" && store.access == "":
		store.identity = cloneIdentity(record.Identity)
		store.access = record.AccessToken
		store.refresh = record.RefreshToken
	case err != nil && !errors.Is(err, ErrNoSession):
		loadErr = fmt.Errorf("session_initialize_failed: %w", err)
	}
	store.initialized = true
	snapshot := store.snapshotLocked()
	store.mu.Unlock()

	store.notify(snapshot)
	return loadErr
}

func (store *Store) load(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	store.ioMu.Lock()
	defer store.ioMu.Unlock()
	return store.persister.Load()
}

// Login replaces the whole session and persists it.
//
// The in-memory session is updated even when persisting fails; the error is returned.
func (store *Store) Login(pair TokenPair, identity sec.Identity) error {
	if pair.AccessToken == "" {
		return ErrEmptyToken
	}

	store.mu.Lock()
	store.identity = cloneIdentity(&identity)
	store.access = pair.AccessToken
	store.refresh = pair.RefreshToken
	return store.saveAndUnlock()
}

// UpdateTokens swaps in new tokens after a refresh. An empty refresh token keeps the current one.
//
// A logged-out store stays logged out: only Login starts a session.
func (store *Store) UpdateTokens(pair TokenPair) error {
	return store.updateTokens(pair, func(string) error { return nil })
}

/*
CompareAndUpdateTokens applies pair only while the access token is still expected.

Description: Used to land a refresh that was started with expected. Returns
[ErrNotAuthenticated] if the session ended meanwhile and [ErrTokenChanged] if
another login or refresh replaced the token.
*/
func (store *Store) CompareAndUpdateTokens(expected string, pair TokenPair) error {
	return store.updateTokens(pair, func(current string) error {
		if current != expected {
			return ErrTokenChanged
		}
		return nil
	})
}

func (store *Store) updateTokens(pair TokenPair, check func(current string) error) error {
	if pair.AccessToken == "" {
		return ErrEmptyToken
	}

	store.mu.Lock()
	if store.access == "" {
		store.mu.Unlock()
		return ErrNotAuthenticated
	}
	if err := check(store.access); err != nil {
		store.mu.Unlock()
		return err
	}

	store.access = pair.AccessToken
	if pair.RefreshToken != "" {
		store.refresh = pair.RefreshToken
	}
	return store.saveAndUnlock()
}

// Logout clears the session in memory and on disk. Persistence failures are logged.
func (store *Store) Logout() {
	store.mu.Lock()
	store.clearAndUnlock()
}

// ExpireSession logs out only if expected is still the current access token.
// It reports whether the session was ended by this call.
func (store *Store) ExpireSession(expected string) bool {
	store.mu.Lock()
	if store.access == "" || store.access != expected {
		store.mu.Unlock()
		return false
	}
	store.clearAndUnlock()
	return true
}

// saveAndUnlock persists the current state. It must be called with mu held
// and releases it before any I/O.
func (store *Store) saveAndUnlock() error {
	record := Record{
		Identity:     cloneIdentity(store.identity),
		AccessToken:  store.access,
		RefreshToken: store.refresh,
	}
	snapshot := store.snapshotLocked()

	store.ioMu.Lock()
	store.mu.Unlock()
	err := store.persister.Save(record)
	store.ioMu.Unlock()

	store.notify(snapshot)

	if err != nil {
		store.logger.Warn("session_persist_failed", slog.Any("error", err))
		return fmt.Errorf("session_persist_failed: %w", err)
	}
	return nil
}

// clearAndUnlock wipes the session. It must be called with mu held.
func (store *Store) clearAndUnlock() {
	store.identity = nil
	store.access = ""
	store.refresh = ""
	snapshot := store.snapshotLocked()

	store.ioMu.Lock()
	store.mu.Unlock()
	if err := store.persister.Clear(); err != nil {
		store.logger.Warn("session_clear_failed", slog.Any("error", err))
	}
	store.ioMu.Unlock()

	store.notify(snapshot)
}

// # Readers

// Snapshot returns a copy of the whole session.
func (store *Store) Snapshot() Session {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.snapshotLocked()
}

func (store *Store) snapshotLocked() Session {
	return Session{
		Identity:          cloneIdentity(store.identity),
		AccessToken:       store.access,
		RefreshToken:      store.refresh,
		IsAuthenticated:   store.access != "",
		IsAuthInitialized: store.initialized,
	}
}

// State reports the coarse authentication state.
func (store *Store) State() State {
	store.mu.RLock()
	defer store.mu.RUnlock()

	switch {
	case store.access != "":
		return StateAuthenticated
	case store.initialized:
		return StateUnauthenticated
	default:
		return StateUninitialized
	}
}

// AccessToken returns the current access token, or "" when logged out.
func (store *Store) AccessToken() string {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.access
}

// RefreshToken returns the current refresh token, or "".
func (store *Store) RefreshToken() string {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.refresh
}

// Identity returns a copy of the current identity, or nil.
func (store *Store) Identity() *sec.Identity {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return cloneIdentity(store.identity)
}

// IsAuthenticated reports whether the store holds an access token. It says
// nothing about expiry; see [Store.IsTokenExpired].
func (store *Store) IsAuthenticated() bool {
	return store.AccessToken() != ""
}

// IsAuthInitialized reports whether [Store.InitializeAuth] has completed.
func (store *Store) IsAuthInitialized() bool {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.initialized
}

/*
IsTokenExpired reports whether the access token is at or past its exp claim.

Description: Recomputed on every call. A missing or undecodable token counts
as expired. The signature is not checked; only the server can do that.
*/
func (store *Store) IsTokenExpired() bool {
	expiresAt, err := TokenExpiry(store.AccessToken())
	if err != nil {
		return true
	}
	return !store.now().Before(expiresAt)
}

// # Subscriptions

// Subscribe registers fn to receive a snapshot after every mutation.
func (store *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	store.listenersMu.Lock()
	id := store.nextID
	store.nextID++
	store.listeners[id] = fn
	store.listenersMu.Unlock()

	return func() {
		store.listenersMu.Lock()
		delete(store.listeners, id)
		store.listenersMu.Unlock()
	}
}

func (store *Store) notify(snapshot Session) {
	store.listenersMu.Lock()
	listeners := make([]func(Session), 0, len(store.listeners))
	for _, fn := range store.listeners {
		listeners = append(listeners, fn)
	}
	store.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

// # Token Decoding

// TokenExpiry decodes the exp claim of a JWT without verifying it.
func TokenExpiry(token string) (time.Time, error) {
	claims, err := decode(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("session: token has no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}

// IdentityFromToken reads the identity carried by an access token without verifying it.
func IdentityFromToken(token string) (sec.Identity, error) {
	claims, err := decode(token)
	if err != nil {
		return sec.Identity{}, err
	}
	return *claims.Identity(), nil
}

func decode(token string) (*sec.Claims, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	claims := &sec.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("session_token_decode_failed: %w", err)
	}
	return claims, nil
}

func cloneIdentity(identity *sec.Identity) *sec.Identity {
	if identity == nil {
		return nil
	}
	clone := *identity
	return &clone
}

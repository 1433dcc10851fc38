// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apiclient is the HTTP client for the Inkwell API.

Every request carries the access token held by a [session.Store]. When the
server answers 401, the client refreshes the access token and replays the
request once. Concurrent 401s share a single refresh call.
*/
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/taibuivan/inkwell/internal/client/session"
	"github.com/taibuivan/inkwell/internal/platform/constants"
)

// ErrUnauthenticated means the session could not be used or renewed.
var ErrUnauthenticated = errors.New("apiclient: unauthenticated")

const (
	refreshFlightKey = "refresh"
	refreshPath      = "/api/auth/refresh"
)

// APIError is a non-2xx response decoded from the server envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("apiclient: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Client sends authenticated requests and coordinates token refreshes.
type Client struct {
	baseURL string
	http    *http.Client
	store   *session.Store
	logger  *slog.Logger

	refreshTimeout   time.Duration
	logoutTimeout    time.Duration
	onSessionExpired func()

	flight singleflight.Group
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(client *Client) { client.http = httpClient }
}

// WithLogger sets the logger for refresh and session events. Defaults to [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) { client.logger = logger }
}

// WithRefreshTimeout bounds the refresh call. A timed-out refresh ends the session.
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(client *Client) { client.refreshTimeout = timeout }
}

// WithLogoutTimeout bounds the server call made by [Client.Logout].
func WithLogoutTimeout(timeout time.Duration) Option {
	return func(client *Client) { client.logoutTimeout = timeout }
}

// OnSessionExpired registers a hook run once per failed refresh, after the store is cleared.
func OnSessionExpired(fn func()) Option {
	return func(client *Client) { client.onSessionExpired = fn }
}

// New builds a client for the API rooted at baseURL.
func New(baseURL string, store *session.Store, opts ...Option) *Client {
	client := &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		http:           &http.Client{Timeout: constants.ClientRequestTimeout},
		store:          store,
		logger:         slog.Default(),
		refreshTimeout: constants.ClientRequestTimeout,
		logoutTimeout:  constants.ClientLogoutTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Store returns the session store the client reads tokens from.
func (client *Client) Store() *session.Store {
	return client.store
}

// NewRequest builds a request for path relative to the base URL. A non-nil body is sent as JSON.
func (client *Client) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("apiclient_encode_failed: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		request.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}
	return request, nil
}

// # Request Pipeline

/*
Do sends request with the current access token.

Description: On a 401 the request waits for a shared refresh and is replayed
once with the new token. A replay that is rejected again, or a failed refresh,
returns [ErrUnauthenticated]. Responses other than 401 are returned as is and
the caller must close the body.
*/
func (client *Client) Do(ctx context.Context, request *http.Request) (*http.Response, error) {
	payload, err := bufferBody(request)
	if err != nil {
		return nil, err
	}

	sentWith := client.store.AccessToken()

	response, err := client.send(ctx, request, payload, sentWith)
	if err != nil {
		return nil, err
	}
	if response.StatusCode != http.StatusUnauthorized {
		return response, nil
	}
	discard(response)

	fresh, err := client.refresh(ctx, sentWith)
	if err != nil {
		return nil, err
	}

	// The refresh outlives the caller; the replay does not.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	response, err = client.send(ctx, request, payload, fresh)
	if err != nil {
		return nil, err
	}
	if response.StatusCode == http.StatusUnauthorized {
		discard(response)
		client.logger.Warn("replay_rejected", slog.String("path", request.URL.Path))
		return nil, ErrUnauthenticated
	}

	return response, nil
}

func (client *Client) send(ctx context.Context, original *http.Request, payload []byte, token string) (*http.Response, error) {
	request := original.Clone(ctx)
	request.Body = nil
	if payload != nil {
		request.Body = io.NopCloser(bytes.NewReader(payload))
		request.ContentLength = int64(len(payload))
	}

	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, constants.BearerScheme+" "+token)
	} else {
		request.Header.Del(constants.HeaderAuthorization)
	}

	response, err := client.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("apiclient_request_failed: %w", err)
	}
	return response, nil
}

// # Refresh Coordination

// refresh joins the in-flight refresh or starts one. sentWith is the token the 401 answered.
func (client *Client) refresh(ctx context.Context, sentWith string) (string, error) {
	results := client.flight.DoChan(refreshFlightKey, func() (any, error) {
		return client.refreshOnce(ctx, sentWith)
	})

	select {
	case result := <-results:
		if result.Err != nil {
			return "", result.Err
		}
		return result.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// refreshOnce runs inside the flight; at most one executes at a time.
func (client *Client) refreshOnce(ctx context.Context, sentWith string) (string, error) {
	current := client.store.AccessToken()

	// Nothing to renew, or the session already ended.
	if current == "" {
		return "", ErrUnauthenticated
	}

	// A refresh finished after this request was sent.
	if current != sentWith {
		return current, nil
	}

	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), client.refreshTimeout)
	defer cancel()

	token, err := client.postRefresh(refreshCtx, client.store.RefreshToken())
	if err != nil {
		client.logger.Info("session_expired", slog.Any("error", err))

		// Only end the session the failed refresh belonged to.
		if client.store.ExpireSession(sentWith) && client.onSessionExpired != nil {
			client.onSessionExpired()
		}
		return "", ErrUnauthenticated
	}

	// The session may have ended or been replaced while the call was in flight.
	err = client.store.CompareAndUpdateTokens(sentWith, session.TokenPair{AccessToken: token})
	switch {
	case errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, session.ErrEmptyToken):
		client.logger.Debug("refresh_discarded", slog.String("reason", "logged_out"))
		return "", ErrUnauthenticated
	case errors.Is(err, session.ErrTokenChanged):
		client.logger.Debug("refresh_discarded", slog.String("reason", "session_replaced"))
		if current := client.store.AccessToken(); current != "" {
			return current, nil
		}
		return "", ErrUnauthenticated
	case err != nil:
		client.logger.Warn("refreshed_token_not_persisted", slog.Any("error", err))
	}

	client.logger.Debug("access_token_refreshed")
	return token, nil
}

func (client *Client) postRefresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", errors.New("no refresh token")
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+refreshPath, nil)
	if err != nil {
		return "", err
	}
	request.AddCookie(&http.Cookie{Name: constants.RefreshTokenCookieName, Value: refreshToken})

	response, err := client.http.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	var data struct {
		AccessToken string `json:"accessToken"`
	}
	if err := decode(response, http.StatusOK, &data); err != nil {
		return "", err
	}
	if data.AccessToken == "" {
		return "", errors.New("refresh response without access token")
	}
	return data.AccessToken, nil
}

// # Helpers

func bufferBody(request *http.Request) ([]byte, error) {
	if request.Body == nil || request.Body == http.NoBody {
		return nil, nil
	}
	defer request.Body.Close()

	payload, err := io.ReadAll(request.Body)
	if err != nil {
		return nil, fmt.Errorf("apiclient_body_read_failed: %w", err)
	}
	return payload, nil
}

// discard drains and closes a response that will not be returned.
func discard(response *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, 64<<10))
	_ = response.Body.Close()
}

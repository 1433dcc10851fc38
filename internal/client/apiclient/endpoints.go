// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/taibuivan/inkwell/internal/client/session"
)

// Profile is the public view of an account.
type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// envelope mirrors the server's response wrapper.
type envelope[T any] struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       T      `json:"data"`
	Error      *struct {
		Code string `json:"code"`
	} `json:"error"`
}

// decode reads the envelope and fills data when the status matches want.
func decode[T any](response *http.Response, want int, data *T) error {
	body, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("apiclient_response_read_failed: %w", err)
	}

	var payload envelope[T]
	if err := json.Unmarshal(body, &payload); err != nil {
		return &APIError{StatusCode: response.StatusCode, Message: http.StatusText(response.StatusCode)}
	}

	if response.StatusCode != want {
		apiError := &APIError{StatusCode: response.StatusCode, Message: payload.Message}
		if payload.Error != nil {
			apiError.Code = payload.Error.Code
		}
		return apiError
	}

	*data = payload.Data
	return nil
}

// # Account Endpoints

// Signup creates an account. It does not log in.
func (client *Client) Signup(ctx context.Context, email, password, displayName string) (*Profile, error) {
	request, err := client.NewRequest(ctx, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":       email,
		"password":    password,
		"displayName": displayName,
	})
	if err != nil {
		return nil, err
	}

	response, err := client.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("apiclient_request_failed: %w", err)
	}
	defer response.Body.Close()

	var profile Profile
	if err := decode(response, http.StatusCreated, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

/*
Login exchanges credentials for tokens and stores the new session.

Description: The store is only written after a successful response, so a
rejected login leaves any previous state untouched.
*/
func (client *Client) Login(ctx context.Context, email, password string) (*session.Session, error) {
	request, err := client.NewRequest(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	response, err := client.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("apiclient_request_failed: %w", err)
	}
	defer response.Body.Close()

	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := decode(response, http.StatusOK, &tokens); err != nil {
		return nil, err
	}

	identity, err := session.IdentityFromToken(tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("apiclient_login_token_invalid: %w", err)
	}

	pair := session.TokenPair{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}
	if err := client.store.Login(pair, identity); err != nil {
		client.logger.Warn("session_not_persisted", slog.Any("error", err))
	}

	snapshot := client.store.Snapshot()
	return &snapshot, nil
}

// Logout tells the server, then always clears the local session.
//
// The server call is bounded by a short timeout and its outcome is ignored.
func (client *Client) Logout(ctx context.Context) {
	if token := client.store.AccessToken(); token != "" {
		logoutCtx, cancel := context.WithTimeout(ctx, client.logoutTimeout)
		client.notifyLogout(logoutCtx, token)
		cancel()
	}

	client.store.Logout()
}

func (client *Client) notifyLogout(ctx context.Context, token string) {
	request, err := client.NewRequest(ctx, http.MethodPost, "/api/auth/logout", nil)
	if err != nil {
		return
	}

	response, err := client.send(ctx, request, nil, token)
	if err != nil {
		client.logger.Debug("server_logout_failed", slog.Any("error", err))
		return
	}
	discard(response)
}

// Me returns the profile of the logged-in account.
func (client *Client) Me(ctx context.Context) (*Profile, error) {
	request, err := client.NewRequest(ctx, http.MethodGet, "/api/users/me", nil)
	if err != nil {
		return nil, err
	}

	response, err := client.Do(ctx, request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	var profile Profile
	if err := decode(response, http.StatusOK, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateDisplayName renames the logged-in account.
func (client *Client) UpdateDisplayName(ctx context.Context, displayName string) (*Profile, error) {
	request, err := client.NewRequest(ctx, http.MethodPatch, "/api/users/me", map[string]string{
		"displayName": displayName,
	})
	if err != nil {
		return nil, err
	}

	response, err := client.Do(ctx, request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	var profile Profile
	if err := decode(response, http.StatusOK, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

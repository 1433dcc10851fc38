// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/inkwell/internal/platform/apperr"
	"github.com/taibuivan/inkwell/internal/platform/constants"
	"github.com/taibuivan/inkwell/internal/platform/ctxutil"
	"github.com/taibuivan/inkwell/internal/platform/respond"
	"github.com/taibuivan/inkwell/internal/platform/sec"
)

// msgUnauthenticated is the only message a rejected caller ever sees.
const msgUnauthenticated = "Authentication required"

// TokenVerifier defines the interface needed to verify access tokens in middleware.
//
// It is satisfied by [*sec.TokenIssuer] and by test doubles.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*sec.Identity, error)
}

// Authenticate is the per-request verification gate for protected routes.
//
// # Flow
//  1. Require an 'Authorization: Bearer <token>' header.
//  2. If absent or malformed, reject with 401 without calling the verifier.
//  3. Verify the access token via [TokenVerifier].
//  4. Inject the [*sec.Identity] into the request context for downstream use.
//
// Expired and badly signed tokens produce the same response. The raw token is
// never logged.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Format Validation ──────────────────────────────────────────
			token, ok := BearerToken(request)
			if !ok {
				respond.Error(writer, request, apperr.Unauthenticated(msgUnauthenticated))
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			identity, err := verifier.VerifyAccessToken(token)
			if err != nil {
				ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "access_token_rejected")
				respond.Error(writer, request, apperr.Unauthenticated(msgUnauthenticated))
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			if recorder, ok := writer.(*statusRecorder); ok {
				recorder.identity = identity
			}

			logger := ctxutil.GetLogger(request.Context()).With(slog.String("user_id", identity.UserID))
			ctx := ctxutil.WithIdentity(request.Context(), identity)
			ctx = ctxutil.WithLogger(ctx, logger)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that carry no verified identity.
//
// # Usage
//
// Mount it on handlers that may end up outside an [Authenticate] group.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !IsAuthenticated(request.Context()) {
			respond.Error(writer, request, apperr.Unauthenticated(msgUnauthenticated))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// IsAuthenticated reports whether the gate attached an identity to ctx.
func IsAuthenticated(ctx context.Context) bool {
	return ctxutil.GetIdentity(ctx) != nil
}

// BearerToken extracts the token from an 'Authorization: Bearer <token>' header.
// The scheme is matched case-insensitively; anything else is malformed.
func BearerToken(request *http.Request) (string, bool) {
	header := request.Header.Get(constants.HeaderAuthorization)
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, constants.BearerScheme) {
		return "", false
	}

	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}

	return token, true
}

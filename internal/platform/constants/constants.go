// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuer, token lifetimes and cookie names.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	// AppName tags every log line emitted by the server.
	AppName    = "inkwell"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the default 'iss' claim in JWTs.
	AuthIssuer = "inkwell.app"

	// AccessTokenTTL is how long an access token stays valid.
	AccessTokenTTL = 10 * time.Hour

	// RefreshTokenTTL is how long a refresh token stays valid. Refresh tokens
	// are not rotated, so this window is counted from login.
	RefreshTokenTTL = 7 * 24 * time.Hour

	// AccessTokenCookieName is the name of the cookie that mirrors the access token.
	AccessTokenCookieName = "accessToken"

	// AccessTokenCookiePath scopes the access token cookie to the whole API.
	AccessTokenCookiePath = "/"

	// RefreshTokenCookieName is the name of the cookie that stores the refresh token.
	RefreshTokenCookieName = "refreshToken"

	// RefreshTokenCookiePath is the scoped path for the refresh token cookie.
	RefreshTokenCookiePath = "/api/auth"

	// MinSecretLength is the minimum byte length accepted for an HMAC signing secret.
	MinSecretLength = 32
)

// # HTTP Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderContentType   = "Content-Type"

	// BearerScheme is the Authorization scheme used for access tokens.
	BearerScheme = "Bearer"

	// ContentTypeJSON is the media type of every API payload.
	ContentTypeJSON = "application/json; charset=utf-8"
)

// # JSON Field Identifiers

const (
	FieldStatus = "status"
	FieldChecks = "checks"
)

// # Envelope Status

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixIdentity keys cached identities by canonical email.
	RedisPrefixIdentity = "auth:identity:"

	// DefaultIdentityCacheTTL bounds how stale a cached identity may be.
	DefaultIdentityCacheTTL = 15 * time.Minute
)

// # Client

const (
	// ClientRequestTimeout bounds every outbound call made by the API client,
	// including the refresh call.
	ClientRequestTimeout = 10 * time.Second

	// ClientLogoutTimeout bounds the best-effort server logout. The local
	// session is cleared regardless of the outcome.
	ClientLogoutTimeout = 2 * time.Second
)

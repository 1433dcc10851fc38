// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"

	"github.com/taibuivan/inkwell/internal/platform/sec"
)

// ErrIdentityNotCached is returned by [IdentityCache.Get] on a cache miss.
var ErrIdentityNotCached = errors.New("auth: identity not cached")

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByEmail returns the account with the given canonical email.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound, or database retrieval failures
	*/
	FindByEmail(ctx context.Context, email string) (*User, error)

	/*
		Create persists a brand-new user account.

		Returns:
		  - error: apperr.Conflict on a duplicate email, or persistence failures
	*/
	Create(ctx context.Context, user *User) error
}

// # Identity Cache

// IdentityCache stores identities keyed by canonical email so the refresh
// endpoint can mint access tokens without a database round trip.
type IdentityCache interface {
	// Get returns [ErrIdentityNotCached] on a miss.
	Get(ctx context.Context, email string) (*sec.Identity, error)
	Set(ctx context.Context, identity sec.Identity) error
	Delete(ctx context.Context, email string) error
}

// # Token Issuance

// TokenIssuer is the subset of [*sec.TokenIssuer] the service depends on.
type TokenIssuer interface {
	IssueAccessToken(identity sec.Identity) (sec.IssuedToken, error)
	IssueRefreshToken(identity sec.Identity) (sec.IssuedToken, error)
	VerifyRefreshToken(token string) (string, error)
}

// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles the profile of the authenticated user.

It is the first downstream consumer of the verification gate: every endpoint
reads the identity the gate attached to the request.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Consistency: A profile change evicts the cached identity so the next
    refresh embeds the new values.
*/
package account

import (
	"context"

	"github.com/taibuivan/inkwell/internal/users/auth"
)

// # Repository Contracts

// AccountRepository defines the persistence contract for user profiles.
type AccountRepository interface {
	/*
		FindByID retrieves a user record by its unique ID.

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(ctx context.Context, id string) (*auth.User, error)

	/*
		UpdateDisplayName changes the display name and bumps updatedat.

		Returns:
		  - *auth.User: The updated entity
		  - error: apperr.NotFound or storage failures
	*/
	UpdateDisplayName(ctx context.Context, id, displayName string) (*auth.User, error)
}

// IdentityInvalidator evicts a cached identity. It is satisfied by [auth.IdentityCache].
type IdentityInvalidator interface {
	Delete(ctx context.Context, email string) error
}

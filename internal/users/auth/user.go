// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements account enrollment and the token lifecycle endpoints.

It defines the User entity, its storage contracts, and the HTTP surface for
signup, login, refresh and logout.

# Architecture

Tokens are stateless: the server keeps no session rows. A refresh token carries
only the account email, so identity after a refresh is resolved by email through
the [IdentityCache] and then the [UserRepository].
*/
package auth

import (
	"time"

	"github.com/taibuivan/inkwell/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Inkwell platform.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string    `json:"displayName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity projects the user onto the claims embedded in an access token.
func (user *User) Identity() sec.Identity {
	return sec.Identity{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  sec.IssuedToken
	RefreshToken sec.IssuedToken
	User         *User
}

// # Field Identifiers

// Field names for validation in the authentication domain.
const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldDisplayName = "displayName"
)

// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Account Constraints

const (
	// MinPasswordLength is the shortest password accepted at signup.
	MinPasswordLength = 8

	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72

	// MaxEmailLength follows the SMTP path limit.
	MaxEmailLength = 254

	// MaxDisplayNameLength bounds the name shown next to posts and comments.
	MaxDisplayNameLength = 64
)

// # Client-facing Messages

const (
	msgInvalidCredentials = "Invalid email or password"
	msgSessionExpired     = "Session expired, please log in again"
	msgMissingRefresh     = "Missing refresh token"
	msgEmailTaken         = "Email is already registered"
)

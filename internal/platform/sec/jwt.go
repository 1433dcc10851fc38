// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. [TokenCodec] signs and verifies the two token kinds against
// two distinct secrets; [TokenIssuer] composes it with the lifetimes of each kind.
// Neither holds per-token state: verification is purely signature + expiry.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Errors

var (
	// ErrConfig is returned when the secret for a token kind is not configured.
	// It indicates a deployment mistake and is surfaced at startup.
	ErrConfig = errors.New("sec: token secret is not configured")

	// ErrInvalidSignature is returned when a token is malformed, signed with another
	// key or algorithm, or otherwise fails validation for a reason other than expiry.
	ErrInvalidSignature = errors.New("sec: token signature is invalid")

	// ErrExpired is returned when a correctly signed token is at or past its expiry.
	ErrExpired = errors.New("sec: token has expired")
)

// # Token Kinds

// TokenKind selects the secret (and claim shape) a token is signed with.
type TokenKind int

const (
	// KindAccess is the short-lived credential sent on every request.
	KindAccess TokenKind = iota + 1

	// KindRefresh is the long-lived credential used only to mint access tokens.
	KindRefresh
)

// String implements [fmt.Stringer].
func (k TokenKind) String() string {
	switch k {
	case KindAccess:
		return "access"
	case KindRefresh:
		return "refresh"
	default:
		return fmt.Sprintf("token_kind(%d)", int(k))
	}
}

// # Claims

// Identity is the verified caller attached to a request after the gate runs.
type Identity struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Claims is the payload of both token kinds.
//
// Access tokens carry the full identity. Refresh tokens carry only the email,
// so identity resolution after a refresh goes through an email lookup.
// Custom claims are abbreviated to keep the JWT payload small.
type Claims struct {
	jwt.RegisteredClaims

	UserID      string `json:"uid,omitempty"`
	Email       string `json:"eml"`
	DisplayName string `json:"dnm,omitempty"`
}

// Identity returns the identity fields embedded in the claims.
func (c *Claims) Identity() *Identity {
	return &Identity{
		UserID:      c.UserID,
		Email:       c.Email,
		DisplayName: c.DisplayName,
	}
}

// # Codec

// TokenCodec signs and verifies HS256 tokens. Each [TokenKind] has its own secret.
type TokenCodec struct {
	secrets map[TokenKind][]byte
	issuer  string
	now     func() time.Time
}

// CodecOption customizes a [TokenCodec].
type CodecOption func(*TokenCodec)

// WithClock replaces the wall clock used for iat/exp and for expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(codec *TokenCodec) {
		codec.now = now
	}
}

// NewTokenCodec creates a codec for the given secrets.
//
// It fails with [ErrConfig] if either secret is empty.
func NewTokenCodec(accessSecret, refreshSecret, issuer string, options ...CodecOption) (*TokenCodec, error) {
	if accessSecret == "" {
		return nil, fmt.Errorf("%w: %s", ErrConfig, KindAccess)
	}
	if refreshSecret == "" {
		return nil, fmt.Errorf("%w: %s", ErrConfig, KindRefresh)
	}

	codec := &TokenCodec{
		secrets: map[TokenKind][]byte{
			KindAccess:  []byte(accessSecret),
			KindRefresh: []byte(refreshSecret),
		},
		issuer: issuer,
		now:    time.Now,
	}

	for _, option := range options {
		option(codec)
	}

	return codec, nil
}

// Sign issues a token of the given kind that expires ttl from now.
// It returns the signed token and its expiry (whole-second precision).
func (codec *TokenCodec) Sign(kind TokenKind, claims Claims, ttl time.Duration) (string, time.Time, error) {
	secret, err := codec.secret(kind)
	if err != nil {
		return "", time.Time{}, err
	}

	issuedAt := jwt.NewNumericDate(codec.now())
	expiresAt := jwt.NewNumericDate(issuedAt.Add(ttl))

	claims.Issuer = codec.issuer
	claims.IssuedAt = issuedAt
	claims.ExpiresAt = expiresAt

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to sign %s token: %w", kind, err)
	}

	return signedToken, expiresAt.Time, nil
}

// Verify checks the signature first and the expiry second.
//
// A token is valid while now < exp and rejected from exp onwards. Failures
// are reported as [ErrInvalidSignature] or [ErrExpired] only.
func (codec *TokenCodec) Verify(kind TokenKind, tokenString string) (*Claims, error) {
	secret, err := codec.secret(kind)
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(codec.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	switch {
	case err == nil && token.Valid:
	case err == nil:
		return nil, ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	default:
		return nil, ErrInvalidSignature
	}

	if claims.Issuer != codec.issuer || claims.Email == "" {
		return nil, ErrInvalidSignature
	}

	return claims, nil
}

func (codec *TokenCodec) secret(kind TokenKind) ([]byte, error) {
	secret := codec.secrets[kind]
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrConfig, kind)
	}
	return secret, nil
}

// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"time"
)

// IssuedToken is a freshly signed token and the instant it stops being valid.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenIssuer mints and verifies access and refresh tokens with fixed lifetimes.
type TokenIssuer struct {
	codec      *TokenCodec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer composes a codec with the lifetime of each token kind.
func NewTokenIssuer(codec *TokenCodec, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccessToken signs an access token carrying the full identity.
func (issuer *TokenIssuer) IssueAccessToken(identity Identity) (IssuedToken, error) {
	token, expiresAt, err := issuer.codec.Sign(KindAccess, Claims{
		UserID:      identity.UserID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
	}, issuer.accessTTL)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: token, ExpiresAt: expiresAt}, nil
}

// IssueRefreshToken signs a refresh token carrying only the email.
func (issuer *TokenIssuer) IssueRefreshToken(identity Identity) (IssuedToken, error) {
	token, expiresAt, err := issuer.codec.Sign(KindRefresh, Claims{
		Email: identity.Email,
	}, issuer.refreshTTL)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: token, ExpiresAt: expiresAt}, nil
}

// VerifyAccessToken returns the identity embedded in a valid access token.
func (issuer *TokenIssuer) VerifyAccessToken(token string) (*Identity, error) {
	claims, err := issuer.codec.Verify(KindAccess, token)
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, ErrInvalidSignature
	}
	return claims.Identity(), nil
}

// VerifyRefreshToken returns the email carried by a valid refresh token.
func (issuer *TokenIssuer) VerifyRefreshToken(token string) (string, error) {
	claims, err := issuer.codec.Verify(KindRefresh, token)
	if err != nil {
		return "", err
	}
	return claims.Email, nil
}

// AccessTTL reports the lifetime of access tokens.
func (issuer *TokenIssuer) AccessTTL() time.Duration { return issuer.accessTTL }

// RefreshTTL reports the lifetime of refresh tokens.
func (issuer *TokenIssuer) RefreshTTL() time.Duration { return issuer.refreshTTL }

// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taibuivan/inkwell/internal/platform/apperr"
	"github.com/taibuivan/inkwell/internal/platform/ctxutil"
	"github.com/taibuivan/inkwell/internal/platform/sec"
	"github.com/taibuivan/inkwell/internal/platform/validate"
	"github.com/taibuivan/inkwell/pkg/uuid"
)

// Service implements account enrollment and the token lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, credential
// checks or token issuance must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	identityCache  IdentityCache
	tokenIssuer    TokenIssuer
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(userRepo UserRepository, cache IdentityCache, issuer TokenIssuer) *Service {
	return &Service{
		userRepository: userRepo,
		identityCache:  cache,
		tokenIssuer:    issuer,
	}
}

// # Registration Flow

// SignupInput holds the data required to enroll a new member.
type SignupInput struct {
	Email       string
	Password    string
	DisplayName string
}

/*
Signup validates, hashes, and persists a brand new user account.

Parameters:
  - ctx: context.Context
  - input: SignupInput

Returns:
  - *User: Created entity (the password hash never serializes)
  - error: ValidationError, Conflict (if the email exists) or storage errors
*/
func (service *Service) Signup(ctx context.Context, input SignupInput) (*User, error) {
	email := NormalizeEmail(input.Email)
	displayName := NormalizeDisplayName(input.DisplayName)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		MaxLen(FieldEmail, email, MaxEmailLength).
		Email(FieldEmail, email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength).
		Custom(FieldPassword, len(input.Password) > MaxPasswordLength, fmt.Sprintf("Maximum %d bytes", MaxPasswordLength)).
		Required(FieldDisplayName, displayName).
		MaxLen(FieldDisplayName, displayName, MaxDisplayNameLength)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Fast path for the common duplicate case. The unique index still decides races.
	_, err := service.userRepository.FindByEmail(ctx, email)
	if err == nil {
		return nil, apperr.Conflict(msgEmailTaken)
	}
	if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, fmt.Errorf("auth_service_signup_lookup_failed: %w", err)
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		DisplayName:  displayName,
	}

	if err := service.userRepository.Create(ctx, user); err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_signup_failed: %w", err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "user_signed_up", slog.String("user_id", user.ID))

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login validates user credentials and issues an access and a refresh token.

Description: Unknown emails and wrong passwords are indistinguishable to the
caller, including in bcrypt cost.

Returns:
  - *TokenPair: Both tokens with their expiries, plus the user
  - error: Unauthenticated or internal failures
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	email := NormalizeEmail(input.Email)

	user, err := service.userRepository.FindByEmail(ctx, email)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			sec.BurnPasswordCheck(input.Password)
			return nil, apperr.Unauthenticated(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthenticated(msgInvalidCredentials)
	}

	identity := user.Identity()

	accessToken, err := service.tokenIssuer.IssueAccessToken(identity)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokenIssuer.IssueRefreshToken(identity)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Warm the cache the refresh endpoint reads from.
	service.cacheIdentity(ctx, identity)

	ctxutil.GetLogger(ctx).InfoContext(ctx, "user_logged_in", slog.String("user_id", user.ID))

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// # Refresh Flow

/*
Refresh mints a new access token from a refresh token.

Description: The refresh token is verified statelessly and is not rotated; it
keeps counting down to its original expiry. The identity is resolved from the
email it carries.

Returns:
  - sec.IssuedToken: The new access token
  - error: Unauthenticated when the refresh token is missing, invalid, expired
    or names an unknown account; internal failures otherwise
*/
func (service *Service) Refresh(ctx context.Context, refreshToken string) (sec.IssuedToken, error) {
	logger := ctxutil.GetLogger(ctx)

	if refreshToken == "" {
		return sec.IssuedToken{}, apperr.Unauthenticated(msgMissingRefresh)
	}

	email, err := service.tokenIssuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, sec.ErrExpired) {
			reason = "expired"
		}
		logger.InfoContext(ctx, "refresh_rejected", slog.String("reason", reason))
		return sec.IssuedToken{}, apperr.Unauthenticated(msgSessionExpired)
	}

	identity, err := service.resolveIdentity(ctx, email)
	if err != nil {
		return sec.IssuedToken{}, err
	}

	accessToken, err := service.tokenIssuer.IssueAccessToken(*identity)
	if err != nil {
		return sec.IssuedToken{}, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	logger.InfoContext(ctx, "access_token_refreshed", slog.String("user_id", identity.UserID))

	return accessToken, nil
}

// resolveIdentity looks the email up in the cache first, then in the database.
func (service *Service) resolveIdentity(ctx context.Context, email string) (*sec.Identity, error) {
	logger := ctxutil.GetLogger(ctx)

	identity, err := service.identityCache.Get(ctx, email)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, ErrIdentityNotCached) {
		logger.WarnContext(ctx, "identity_cache_unavailable", slog.Any("error", err))
	}

	user, err := service.userRepository.FindByEmail(ctx, email)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			logger.InfoContext(ctx, "refresh_rejected", slog.String("reason", "unknown_account"))
			return nil, apperr.Unauthenticated(msgSessionExpired)
		}
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	resolved := user.Identity()
	service.cacheIdentity(ctx, resolved)

	return &resolved, nil
}

// cacheIdentity stores the identity; failures only cost a future database lookup.
func (service *Service) cacheIdentity(ctx context.Context, identity sec.Identity) {
	if err := service.identityCache.Set(ctx, identity); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "identity_cache_write_failed", slog.Any("error", err))
	}
}

// # Logout Flow

/*
Logout records a server-side logout.

Description: Tokens are stateless and there is no revocation list, so the
caller's access token stays valid until its own expiry. The transport layer
clears the cookies.
*/
func (service *Service) Logout(ctx context.Context, identity *sec.Identity) {
	ctxutil.GetLogger(ctx).InfoContext(ctx, "user_logged_out", slog.String("user_id", identity.UserID))
}

// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/inkwell/internal/platform/apperr"
	"github.com/taibuivan/inkwell/internal/platform/ctxutil"
	"github.com/taibuivan/inkwell/internal/platform/validate"
	"github.com/taibuivan/inkwell/internal/users/auth"
)

// # Service Layer

// Service orchestrates profile reads and updates for the authenticated user.
type Service struct {
	accountRepository AccountRepository
	identities        IdentityInvalidator
}

// NewService constructs a new [Service] with its dependencies.
func NewService(accountRepo AccountRepository, identities IdentityInvalidator) *Service {
	return &Service{
		accountRepository: accountRepo,
		identities:        identities,
	}
}

// # Profile Management

/*
GetProfile retrieves the private profile of a user.

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(ctx context.Context, userID string) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(ctx, userID)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return user, nil
}

// UpdateProfileInput defines the mutable subset of user profile fields.
// A nil field is left unchanged.
type UpdateProfileInput struct {
	DisplayName *string
}

/*
UpdateProfile applies a partial set of changes to the user's profile.

Description: After a successful write, the identity cached for the refresh
endpoint is evicted. Access tokens already issued keep their old claims until
they expire.

Returns:
  - *auth.User: The updated profile
  - error: ValidationError, NotFound or storage failures
*/
func (service *Service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	if input.DisplayName == nil {
		return service.GetProfile(ctx, userID)
	}

	displayName := auth.NormalizeDisplayName(*input.DisplayName)

	validator := &validate.Validator{}
	validator.Required(auth.FieldDisplayName, displayName).
		MaxLen(auth.FieldDisplayName, displayName, auth.MaxDisplayNameLength)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.accountRepository.UpdateDisplayName(ctx, userID, displayName)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("account_service_update_profile_failed: %w", err)
	}

	logger := ctxutil.GetLogger(ctx)
	if err := service.identities.Delete(ctx, user.Email); err != nil {
		logger.WarnContext(ctx, "identity_cache_evict_failed", slog.Any("error", err))
	}

	logger.InfoContext(ctx, "profile_updated", slog.String("user_id", user.ID))

	return user, nil
}

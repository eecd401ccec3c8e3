// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package account

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sentra-id/sentra/internal/platform/apperr"
	"github.com/sentra-id/sentra/internal/platform/ctxutil"
	"github.com/sentra-id/sentra/internal/users/auth"
)

// # Messages

const (
	msgBalanceRejected = "Unable to update balance"
	msgAdminNoBalance  = "Admin users cannot have an active balance"
	msgIncomplete      = "Profile is incomplete"
	msgPartialName     = "Both first name and last name must be provided"
	msgAdminNoDelete   = "Admin accounts cannot be deleted"
)

// Service implements the account management use cases.
type Service struct {
	repository Repository
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

func isNotFound(err error) bool {
	appErr := apperr.As(err)
	return appErr != nil && appErr.HTTPStatus == http.StatusNotFound
}

// # Profile

/*
GetProfile returns the caller's own profile.

Description: A profile is only readable once both name fields are set; an
incomplete profile is reported as a forbidden access rather than a partial
view.

Parameters:
  - context: context.Context
  - userID: int64

Returns:
  - *auth.User: Full profile snapshot
  - error: apperr.NotFound, apperr.Forbidden, or storage errors
*/
func (service *Service) GetProfile(context context.Context, userID int64) (*auth.User, error) {
	user, err := service.repository.FindByID(context, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}

	if !auth.ProfileComplete(user) {
		return nil, apperr.Forbidden(msgIncomplete).WithCause(auth.ErrProfileIncomplete)
	}

	return user, nil
}

// UpdateProfileInput carries a requested profile change. Nil fields are
// untouched.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
}

/*
UpdateProfile applies a name change under the all-or-nothing profile rule.

Description: Touching either name field requires both, non-empty; a partial
update is rejected and the stored profile stays unchanged. An update touching
neither field is a no-op returning the current profile.

Parameters:
  - context: context.Context
  - userID: int64
  - input: UpdateProfileInput

Returns:
  - *auth.User: The resulting profile
  - error: apperr.ValidationError, apperr.NotFound, or storage errors
*/
func (service *Service) UpdateProfile(context context.Context, userID int64, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.repository.FindByID(context, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("account_service_update_profile_failed: %w", err)
	}

	// Validate before any write so a rejected update leaves no trace.
	if err := auth.ValidateProfileUpdate(input.FirstName, input.LastName); err != nil {
		return nil, apperr.ValidationError(msgPartialName).WithCause(err)
	}
	if input.FirstName == nil && input.LastName == nil {
		return user, nil
	}

	updated, err := service.repository.UpdateNames(context, userID, *input.FirstName, *input.LastName)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_names_failed: %w", err)
	}

	return updated, nil
}

// # Balance

/*
GetBalance returns the caller's current balance.

Parameters:
  - context: context.Context
  - userID: int64

Returns:
  - int64: Current balance
  - error: apperr.NotFound or storage errors
*/
func (service *Service) GetBalance(context context.Context, userID int64) (int64, error) {
	user, err := service.repository.FindByID(context, userID)
	if err != nil {
		if isNotFound(err) {
			return 0, apperr.NotFound("User")
		}
		return 0, fmt.Errorf("account_service_get_balance_failed: %w", err)
	}

	return user.Balance, nil
}

/*
UpdateBalance applies a signed delta to an account's balance under the
standard balance policy.

Description: Admin accounts are refused outright. Accounts with incomplete
profiles and deltas that would drive the balance negative are refused with a
single uniform client message; the precise reason travels on the error cause
for logging. The write itself is a conditional atomic update, so two
concurrent spends cannot overdraw the account.

This method also implements the [auth.BalanceCreditor] contract used for the
best-effort login reward.

Parameters:
  - context: context.Context
  - userID: int64
  - delta: int64 (signed)

Returns:
  - int64: The resulting balance
  - error: apperr.NotFound, apperr.Forbidden, apperr.Rejected, or storage errors
*/
func (service *Service) UpdateBalance(context context.Context, userID int64, delta int64) (int64, error) {
	user, err := service.repository.FindByID(context, userID)
	if err != nil {
		if isNotFound(err) {
			return 0, apperr.NotFound("User")
		}
		return 0, fmt.Errorf("account_service_update_balance_failed: %w", err)
	}

	if _, err := auth.CheckBalanceDelta(user, delta); err != nil {
		switch err {
		case auth.ErrAdminBalance:
			return 0, apperr.Forbidden(msgAdminNoBalance).WithCause(err)
		default:
			// Incomplete profile and insufficient funds share one
			// client message; the cause keeps them apart in logs.
			return 0, apperr.Rejected(msgBalanceRejected).WithCause(err)
		}
	}

	newBalance, applied, err := service.repository.ApplyBalanceDelta(context, userID, delta)
	if err != nil {
		return 0, fmt.Errorf("account_service_apply_delta_failed: %w", err)
	}
	if !applied {
		// A concurrent write consumed the funds between the policy check
		// and the update.
		return 0, apperr.Rejected(msgBalanceRejected).WithCause(auth.ErrInsufficientFunds)
	}

	return newBalance, nil
}

// # Self Deletion

/*
SoftDeleteSelf logically deletes the caller's own account.

Description: Admin accounts cannot self-delete. The row is retained and the
email can later revive it through registration.

Parameters:
  - context: context.Context
  - userID: int64

Returns:
  - error: apperr.NotFound, apperr.Forbidden, or storage errors
*/
func (service *Service) SoftDeleteSelf(context context.Context, userID int64) error {
	user, err := service.repository.FindByID(context, userID)
	if err != nil {
		if isNotFound(err) {
			return apperr.NotFound("User")
		}
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	if user.Role.IsAdmin() {
		return apperr.Forbidden(msgAdminNoDelete)
	}

	deleted, err := service.repository.SoftDelete(context, userID)
	if err != nil {
		return fmt.Errorf("account_service_soft_delete_failed: %w", err)
	}
	if !deleted {
		return apperr.NotFound("User")
	}

	ctxutil.GetLogger(context).Info("account soft-deleted",
		slog.Int64("user_id", userID),
	)
	return nil
}

// # Administration

/*
ListUsers returns live accounts matching the filter, keyed by user ID.

Parameters:
  - context: context.Context
  - filter: ListFilter
  - sort: ListSort

Returns:
  - map[string]AdminUserView: Accounts keyed by decimal user ID
  - error: Storage errors
*/
func (service *Service) ListUsers(context context.Context, filter ListFilter, sort ListSort) (map[string]AdminUserView, error) {
	views, err := service.repository.List(context, filter, sort)
	if err != nil {
		return nil, fmt.Errorf("account_service_list_failed: %w", err)
	}

	result := make(map[string]AdminUserView, len(views))
	for _, view := range views {
		result[strconv.FormatInt(view.UserID, 10)] = view
	}
	return result, nil
}

/*
ListDeleted returns all soft-deleted accounts.

Parameters:
  - context: context.Context

Returns:
  - []AdminUserView: Soft-deleted accounts
  - error: Storage errors
*/
func (service *Service) ListDeleted(context context.Context) ([]AdminUserView, error) {
	views, err := service.repository.ListDeleted(context)
	if err != nil {
		return nil, fmt.Errorf("account_service_list_deleted_failed: %w", err)
	}
	return views, nil
}

/*
SetBlockStatus sets or clears the moderation block on an account.

Description: Blocking stamps the block timestamp; unblocking clears it.
Blocking does not revoke already-issued tokens; it takes effect at the next
login attempt.

Parameters:
  - context: context.Context
  - userID: int64
  - blocked: bool

Returns:
  - error: apperr.NotFound or storage errors
*/
func (service *Service) SetBlockStatus(context context.Context, userID int64, blocked bool) error {
	updated, err := service.repository.SetBlocked(context, userID, blocked)
	if err != nil {
		return fmt.Errorf("account_service_set_blocked_failed: %w", err)
	}
	if !updated {
		return apperr.NotFound("User")
	}

	ctxutil.GetLogger(context).Info("account block status changed",
		slog.Int64("user_id", userID),
		slog.Bool("blocked", blocked),
	)
	return nil
}

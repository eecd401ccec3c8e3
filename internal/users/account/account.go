// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

/*
Package account handles profile management, balances, and administration.

It provides the role-gated views over user accounts: self-service profile and
balance operations for members, and the listing, blocking and moderation
surface for administrators.

# Architecture

  - Entities: AdminUserView (DTO), filters and sort descriptors.
  - Domain: This package depends on the auth package for the User entity and
    the account policy rules.
  - Security: Role gating happens at the HTTP layer; balance and profile
    policy is enforced here regardless of caller role.
*/
package account

import (
	"context"
	"time"

	"github.com/sentra-id/sentra/internal/platform/sec"
	"github.com/sentra-id/sentra/internal/users/auth"
)

// # Domain Entities

// AdminUserView is the administrative projection of a user account.
// It omits credentials but exposes moderation state.
type AdminUserView struct {
	UserID         int64        `json:"user_id"`
	FirstName      *string      `json:"first_name"`
	LastName       *string      `json:"last_name"`
	Role           sec.UserRole `json:"role"`
	Block          bool         `json:"block"`
	BlockAt        *time.Time   `json:"block_at"`
	Balance        int64        `json:"balance"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      *time.Time   `json:"updated_at"`
	LastActivityAt *time.Time   `json:"last_activity_at"`
}

// # Listing Descriptors

// Sort field identifiers accepted by the administrative listing.
const (
	SortByID           = "id"
	SortByBalance      = "balance"
	SortByLastActivity = "last_activity_at"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListFilter narrows the administrative user listing. Nil fields are
// ignored. Name filters match as case-insensitive substrings.
type ListFilter struct {
	ID        *int64
	FirstName *string
	LastName  *string
	IsBlocked *bool
}

// ListSort describes the ordering of the administrative user listing.
// Unrecognized values fall back to ascending ID order.
type ListSort struct {
	Field string
	Order string
}

// # Repository Contract

// Repository defines the persistence contract for account management.
//
// Lookups exclude soft-deleted rows unless stated otherwise.
type Repository interface {
	/*
		FindByID retrieves a live user record by its primary key.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id int64) (*auth.User, error)

	/*
		UpdateNames sets both profile name fields and bumps the update
		timestamp.

		Parameters:
		  - context: context.Context
		  - id: int64
		  - firstName, lastName: string (both non-empty)

		Returns:
		  - *auth.User: The updated entity
		  - error: apperr.NotFound or storage failures
	*/
	UpdateNames(context context.Context, id int64, firstName, lastName string) (*auth.User, error)

	/*
		ApplyBalanceDelta atomically applies a signed delta, refusing any
		change that would drive the balance negative or touch a deleted row.

		Parameters:
		  - context: context.Context
		  - id: int64
		  - delta: int64

		Returns:
		  - int64: The resulting balance when applied
		  - bool: Whether the update was applied
		  - error: Storage failures
	*/
	ApplyBalanceDelta(context context.Context, id int64, delta int64) (int64, bool, error)

	/*
		SetBlocked updates the moderation block flag, stamping or clearing
		the block timestamp accordingly.

		Parameters:
		  - context: context.Context
		  - id: int64
		  - blocked: bool

		Returns:
		  - bool: Whether a live row was updated
		  - error: Storage failures
	*/
	SetBlocked(context context.Context, id int64, blocked bool) (bool, error)

	/*
		SoftDelete flags an account as logically deleted.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - bool: Whether a live row was updated
		  - error: Execution failures
	*/
	SoftDelete(context context.Context, id int64) (bool, error)

	/*
		List returns live accounts matching the filter, ordered by the sort
		descriptor.

		Parameters:
		  - context: context.Context
		  - filter: ListFilter
		  - sort: ListSort

		Returns:
		  - []AdminUserView: Matching accounts
		  - error: Storage failures
	*/
	List(context context.Context, filter ListFilter, sort ListSort) ([]AdminUserView, error)

	/*
		ListDeleted returns all soft-deleted accounts.

		Parameters:
		  - context: context.Context

		Returns:
		  - []AdminUserView: Soft-deleted accounts
		  - error: Storage failures
	*/
	ListDeleted(context context.Context) ([]AdminUserView, error)
}

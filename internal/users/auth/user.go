// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

/*
Package auth implements the user identity and session management layer.

It defines the core domain entity (User) and the logic for authentication,
token issuance, session validation, and the account lifecycle (registration,
revival, soft deletion).

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/sentra-id/sentra/internal/platform/sec"
)

// # Domain Entities

// User represents a registered account.
//
// # Invariants
//
//   - FirstName and LastName are either both set or both unset; no partial
//     profile is ever persisted.
//   - Balance is never negative.
//   - Admin accounts never receive balance mutations.
//   - IsDeleted rows stay in storage (soft delete) and are excluded from all
//     normal lookups; re-registering the email revives the row.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Explicitly omitted from JSON for security.

	// Optional profile fields, set together or not at all.
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`

	Role sec.UserRole `json:"role"`

	IsBlocked bool       `json:"is_blocked"`
	BlockedAt *time.Time `json:"blocked_at,omitempty"`
	IsDeleted bool       `json:"-"`

	Balance int64 `json:"balance"`

	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
	LastActivityAt *time.Time `json:"last_activity_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldOldPassword  = "old_password"
	FieldNewPassword  = "new_password"
	FieldFirstName    = "first_name"
	FieldLastName     = "last_name"
	FieldRefreshToken = "refresh_token"
)

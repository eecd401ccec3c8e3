// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package auth

import "errors"

// # Policy Sentinels
//
// These sentinel errors carry the internal reason for a policy rejection.
// They are attached to an [apperr.AppError] via WithCause so callers and logs
// can distinguish outcomes that the HTTP surface deliberately collapses into
// a single generic message. They are never serialized to clients.
var (
	ErrAccountBlocked    = errors.New("auth: account is blocked")
	ErrAccountDeleted    = errors.New("auth: account is deleted")
	ErrProfileIncomplete = errors.New("auth: profile is incomplete")
	ErrInsufficientFunds = errors.New("auth: balance would become negative")
	ErrPartialProfile    = errors.New("auth: first and last name must be set together")
	ErrAdminBalance      = errors.New("auth: admin accounts cannot hold a balance")
)

// # Account Policy

/*
CanAuthenticate reports whether an account may start or continue a session.

A blocked account is rejected before a deleted one, so an account that is both
blocked and deleted always reports the blocked reason.

Parameters:
  - user: account snapshot to evaluate.

Returns:
  - error: nil if the account may authenticate, otherwise [ErrAccountBlocked]
    or [ErrAccountDeleted].
*/
func CanAuthenticate(user *User) error {
	if user.IsBlocked {
		return ErrAccountBlocked
	}
	if user.IsDeleted {
		return ErrAccountDeleted
	}
	return nil
}

// CanHoldBalance reports whether the account may participate in balance
// operations. Admin accounts are excluded.
func CanHoldBalance(user *User) bool {
	return !user.Role.IsAdmin()
}

// ProfileComplete reports whether both profile name fields are populated.
func ProfileComplete(user *User) bool {
	return user.FirstName != nil && *user.FirstName != "" &&
		user.LastName != nil && *user.LastName != ""
}

/*
ValidateProfileUpdate checks a requested name change against the
all-or-nothing profile rule.

An update that touches neither name field is a no-op and passes. An update
that touches either field must provide both, non-empty.

Parameters:
  - firstName: requested first name, nil when the field is untouched.
  - lastName: requested last name, nil when the field is untouched.

Returns:
  - error: nil on a valid update, [ErrPartialProfile] otherwise.
*/
func ValidateProfileUpdate(firstName, lastName *string) error {
	if firstName == nil && lastName == nil {
		return nil
	}
	if firstName == nil || *firstName == "" || lastName == nil || *lastName == "" {
		return ErrPartialProfile
	}
	return nil
}

/*
CheckBalanceDelta evaluates applying a signed delta to the account balance.

Parameters:
  - user: account snapshot holding the current balance.
  - delta: signed amount to apply.

Returns:
  - int64: the resulting balance when the delta is permitted.
  - error: [ErrAdminBalance] for admin accounts, [ErrProfileIncomplete] when
    the profile names are unset, [ErrInsufficientFunds] when the result would
    be negative.
*/
func CheckBalanceDelta(user *User, delta int64) (int64, error) {
	if !CanHoldBalance(user) {
		return 0, ErrAdminBalance
	}
	if !ProfileComplete(user) {
		return 0, ErrProfileIncomplete
	}
	next := user.Balance + delta
	if next < 0 {
		return 0, ErrInsufficientFunds
	}
	return next, nil
}

// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
//
// The set is deliberately closed: roles arrive from the database as strings
// and must be matched exhaustively, never compared ad hoc.
type UserRole string

const (
	// Administrative access: account moderation, user listing, block/unblock.
	// Admin accounts never hold a balance.
	RoleAdmin UserRole = "admin"

	// Default role for standard registered users.
	RoleUser UserRole = "user"
)

// Valid reports whether the role is one of the known enumeration values.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether the role grants administrative access.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

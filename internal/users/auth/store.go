// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package auth

import (
	"context"
	"time"
)

// # Token Namespaces

// TokenNamespace separates the cache keyspaces of the two token families.
// A token stored under one namespace is invisible to lookups in the other.
type TokenNamespace string

const (
	NamespaceAccess  TokenNamespace = "access"
	NamespaceRefresh TokenNamespace = "refresh"
)

// # Storage Contracts

// UserRepository abstracts persistent storage for user accounts.
//
// Lookups exclude soft-deleted rows unless stated otherwise. Implementations
// wrap storage failures so callers can surface them as dependency errors.
type UserRepository interface {
	// FindByID returns a live account by primary key.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByEmail returns a live account by its exact stored email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByEmailAny returns an account by email including soft-deleted
	// rows, used to detect revival candidates during registration.
	FindByEmailAny(ctx context.Context, email string) (*User, error)

	// Create inserts a new account and fills in the assigned ID.
	Create(ctx context.Context, user *User) error

	// Revive reactivates a soft-deleted account in place: the stored
	// password hash is replaced and the profile, block state, balance and
	// activity timestamps are reset to their initial values.
	Revive(ctx context.Context, id int64, passwordHash string) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// TouchActivity bumps the last activity timestamp to now.
	TouchActivity(ctx context.Context, id int64) error
}

// TokenCache abstracts the shared session cache. Presence of a token in its
// namespace is what makes a session live; entries expire on their own at the
// token TTL.
//
// Cache unreachability is reported as an error, never treated as absence, so
// callers fail closed instead of silently invalidating sessions.
type TokenCache interface {
	// Put records a token as live for its holder until ttl elapses.
	Put(ctx context.Context, ns TokenNamespace, token string, userID int64, ttl time.Duration) error

	// Exists reports whether the token is currently live.
	Exists(ctx context.Context, ns TokenNamespace, token string) (bool, error)

	// Owner returns the user ID the token was issued to.
	Owner(ctx context.Context, ns TokenNamespace, token string) (int64, error)

	// Delete revokes a token. Deleting an absent token is not an error.
	Delete(ctx context.Context, ns TokenNamespace, token string) error
}

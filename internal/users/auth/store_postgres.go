// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentra-id/sentra/internal/platform/apperr"
)

// # User Repository

const userColumns = `
	id, email, password_hash, first_name, last_name, role,
	is_blocked, blocked_at, is_deleted, balance,
	created_at, updated_at, last_activity_at`

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique constraint errors.
const pgUniqueViolation = "23505"

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.IsBlocked,
		&user.BlockedAt,
		&user.IsDeleted,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastActivityAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
FindByID retrieves a live user record by its primary key.

Description: Primary key resolution for user accounts, excluding soft-deleted rows.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id int64) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE id = $1 AND is_deleted = FALSE`

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
FindByEmail retrieves a live user record by its exact stored email address.

Description: Lookup on the account table filtering out soft-deleted users. The
email is matched as stored; no case folding is applied.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE email = $1 AND is_deleted = FALSE`

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByEmailAny retrieves a user record by email, including soft-deleted rows.

Description: Used during registration to detect whether an email belongs to a
deleted account eligible for revival.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity, possibly soft-deleted
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmailAny(context context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE email = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_any_failed: %w", err)
	}

	return user, nil
}

/*
Create persists a new user record into the users.account table.

Description: Inserts the account and fills in the database-assigned ID.
A unique constraint violation on the email column is mapped to a conflict
error so concurrent registrations resolve cleanly.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate email, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (email, password_hash, role, balance, created_at, last_activity_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.LastActivityAt = &user.CreatedAt

	err := repository.pool.QueryRow(context, query,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Balance,
		user.CreatedAt,
	).Scan(&user.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperr.Conflict("A user with this email already exists")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
Revive reactivates a soft-deleted account in place.

Description: Replaces the password hash and resets profile names, block state,
balance and activity timestamps to their initial values. The primary key,
email, and original creation timestamp are retained.

Parameters:
  - context: context.Context
  - id: int64
  - passwordHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) Revive(context context.Context, id int64, passwordHash string) error {
	const query = `
		UPDATE users.account
		SET password_hash = $2,
		    is_deleted = FALSE,
		    is_blocked = FALSE,
		    blocked_at = NULL,
		    first_name = NULL,
		    last_name = NULL,
		    balance = 0,
		    updated_at = NULL,
		    last_activity_at = NULL
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_revive_failed: %w", err)
	}

	return nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - id: int64
  - passwordHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, id int64, passwordHash string) error {
	const query = `
		UPDATE users.account
		SET password_hash = $2, updated_at = $3
		WHERE id = $1 AND is_deleted = FALSE`

	_, err := repository.pool.Exec(context, query, id, passwordHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	return nil
}

/*
TouchActivity bumps the user's last activity timestamp to now.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) TouchActivity(context context.Context, id int64) error {
	const query = `
		UPDATE users.account
		SET last_activity_at = $2
		WHERE id = $1 AND is_deleted = FALSE`

	_, err := repository.pool.Exec(context, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_touch_activity_failed: %w", err)
	}

	return nil
}

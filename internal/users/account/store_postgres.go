// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package account

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentra-id/sentra/internal/platform/apperr"
	"github.com/sentra-id/sentra/internal/users/auth"
)

// # Account Repository

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const userColumns = `
	id, email, password_hash, first_name, last_name, role,
	is_blocked, blocked_at, is_deleted, balance,
	created_at, updated_at, last_activity_at`

const viewColumns = `
	id, first_name, last_name, role, is_blocked, blocked_at, balance,
	created_at, updated_at, last_activity_at`

// sortColumns whitelists the ORDER BY targets of the admin listing. Anything
// outside this map falls back to the primary key.
var sortColumns = map[string]string{
	SortByID:           "id",
	SortByBalance:      "balance",
	SortByLastActivity: "last_activity_at",
}

func scanUser(row pgx.Row) (*auth.User, error) {
	user := &auth.User{}
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

func scanView(rows pgx.Rows) (AdminUserView, error) {
	var view AdminUserView
	err := rows.Scan(
		&view.UserID,
		&view.FirstName,
		&view.LastName,
		&view.Role,
		&view.Block,
		&view.BlockAt,
		&view.Balance,
		&view.CreatedAt,
		&view.UpdatedAt,
		&view.LastActivityAt,
	)
	return view, err
}

/*
FindByID retrieves a live user record by its primary key.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *auth.User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*auth.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE id = $1 AND is_deleted = FALSE`

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_account_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
UpdateNames sets both profile name fields and bumps the update timestamp.

Parameters:
  - context: context.Context
  - id: int64
  - firstName, lastName: string

Returns:
  - *auth.User: The updated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) UpdateNames(context context.Context, id int64, firstName, lastName string) (*auth.User, error) {
	const query = `
		UPDATE users.account
		SET first_name = $2, last_name = $3, updated_at = $4
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING ` + userColumns

	user, err := scanUser(repository.pool.QueryRow(context, query, id, firstName, lastName, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_account_repo_update_names_failed: %w", err)
	}

	return user, nil
}

/*
ApplyBalanceDelta atomically applies a signed delta to the balance.

Description: The delta and the non-negativity condition are evaluated in a
single UPDATE, so concurrent spends serialize on the row and can never
overdraw. A condition failure reports applied = false without error.

Parameters:
  - context: context.Context
  - id: int64
  - delta: int64

Returns:
  - int64: The resulting balance when applied
  - bool: Whether the update was applied
  - error: Execution errors
*/
func (repository *PostgresRepository) ApplyBalanceDelta(context context.Context, id int64, delta int64) (int64, bool, error) {
	const query = `
		UPDATE users.account
		SET balance = balance + $2, updated_at = $3
		WHERE id = $1 AND is_deleted = FALSE AND balance + $2 >= 0
		RETURNING balance`

	var balance int64
	err := repository.pool.QueryRow(context, query, id, delta, time.Now()).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("postgres_account_repo_apply_delta_failed: %w", err)
	}

	return balance, true, nil
}

/*
SetBlocked updates the moderation block flag.

Description: Blocking stamps blocked_at; unblocking clears it. Both paths
bump updated_at.

Parameters:
  - context: context.Context
  - id: int64
  - blocked: bool

Returns:
  - bool: Whether a live row was updated
  - error: Execution errors
*/
func (repository *PostgresRepository) SetBlocked(context context.Context, id int64, blocked bool) (bool, error) {
	const query = `
		UPDATE users.account
		SET is_blocked = $2,
		    blocked_at = CASE WHEN $2 THEN $3 ELSE NULL END,
		    updated_at = $3
		WHERE id = $1 AND is_deleted = FALSE`

	tag, err := repository.pool.Exec(context, query, id, blocked, time.Now())
	if err != nil {
		return false, fmt.Errorf("postgres_account_repo_set_blocked_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

/*
SoftDelete flags an account as logically deleted.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - bool: Whether a live row was updated
  - error: Execution errors
*/
func (repository *PostgresRepository) SoftDelete(context context.Context, id int64) (bool, error) {
	const query = `
		UPDATE users.account
		SET is_deleted = TRUE, updated_at = $2
		WHERE id = $1 AND is_deleted = FALSE`

	tag, err := repository.pool.Exec(context, query, id, time.Now())
	if err != nil {
		return false, fmt.Errorf("postgres_account_repo_soft_delete_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

/*
List returns live accounts matching the filter, ordered by the sort
descriptor.

Description: Filters combine with AND; name filters use case-insensitive
substring matching. Sort fields and directions outside the whitelist fall
back to ascending ID order.

Parameters:
  - context: context.Context
  - filter: ListFilter
  - sort: ListSort

Returns:
  - []AdminUserView: Matching accounts
  - error: Execution errors
*/
func (repository *PostgresRepository) List(context context.Context, filter ListFilter, sort ListSort) ([]AdminUserView, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT ` + viewColumns + ` FROM users.account WHERE is_deleted = FALSE`)

	args := make([]any, 0, 4)
	addArg := func(value any) string {
		args = append(args, value)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.ID != nil {
		builder.WriteString(" AND id = " + addArg(*filter.ID))
	}
	if filter.FirstName != nil {
		builder.WriteString(" AND first_name ILIKE " + addArg("%"+*filter.FirstName+"%"))
	}
	if filter.LastName != nil {
		builder.WriteString(" AND last_name ILIKE " + addArg("%"+*filter.LastName+"%"))
	}
	if filter.IsBlocked != nil {
		builder.WriteString(" AND is_blocked = " + addArg(*filter.IsBlocked))
	}

	// Whitelisted sort column and direction only; identifiers never come
	// from user input directly.
	column, ok := sortColumns[sort.Field]
	if !ok {
		column = "id"
	}
	direction := "ASC"
	if sort.Order == SortDesc {
		direction = "DESC"
	}
	builder.WriteString(" ORDER BY " + column + " " + direction)

	rows, err := repository.pool.Query(context, builder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_account_repo_list_failed: %w", err)
	}
	defer rows.Close()

	views := make([]AdminUserView, 0)
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_account_repo_list_scan_failed: %w", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_account_repo_list_rows_failed: %w", err)
	}

	return views, nil
}

/*
ListDeleted returns all soft-deleted accounts in ascending ID order.

Parameters:
  - context: context.Context

Returns:
  - []AdminUserView: Soft-deleted accounts
  - error: Execution errors
*/
func (repository *PostgresRepository) ListDeleted(context context.Context) ([]AdminUserView, error) {
	const query = `
		SELECT ` + viewColumns + `
		FROM users.account
		WHERE is_deleted = TRUE
		ORDER BY id ASC`

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_account_repo_list_deleted_failed: %w", err)
	}
	defer rows.Close()

	views := make([]AdminUserView, 0)
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_account_repo_list_deleted_scan_failed: %w", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_account_repo_list_deleted_rows_failed: %w", err)
	}

	return views, nil
}

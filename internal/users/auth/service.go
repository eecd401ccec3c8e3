// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sentra-id/sentra/internal/platform/apperr"
	"github.com/sentra-id/sentra/internal/platform/constants"
	"github.com/sentra-id/sentra/internal/platform/ctxutil"
	"github.com/sentra-id/sentra/internal/platform/sec"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing and decoding signed tokens.
type TokenProvider interface {
	// Issue creates a signed token for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an error if signing fails.
	Issue(userID int64, timeToLive time.Duration) (string, error)

	// Decode verifies a token's signature and expiry and returns its claims.
	Decode(token string) (*sec.TokenClaims, error)
}

// BalanceCreditor applies a signed balance delta under the standard balance
// policy. It is implemented by the account service; the indirection keeps
// this package free of a dependency on it.
type BalanceCreditor interface {
	UpdateBalance(ctx context.Context, userID int64, delta int64) (int64, error)
}

// Options carries the tunable parameters of the session layer.
type Options struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// LoginReward is the balance credit granted on each successful login
	// when LoginRewardEnabled is set. The credit is best-effort: it runs
	// under the same balance policy as any other credit and a rejection or
	// failure never fails the login itself.
	LoginReward        int64
	LoginRewardEnabled bool
}

// Service implements the session and account lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, token
// issuance, or validation logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokenCache     TokenCache
	tokenProvider  TokenProvider
	creditor       BalanceCreditor
	options        Options
}

// NewService constructs a new [Service] with necessary dependencies.
// The creditor may be nil when login rewards are disabled.
func NewService(
	userRepo UserRepository,
	tokenCache TokenCache,
	tokenProv TokenProvider,
	creditor BalanceCreditor,
	options Options,
) *Service {
	return &Service{
		userRepository: userRepo,
		tokenCache:     tokenCache,
		tokenProvider:  tokenProv,
		creditor:       creditor,
		options:        options,
	}
}

// isNotFound reports whether err is a client-safe not-found outcome, as
// opposed to a storage failure that must propagate.
func isNotFound(err error) bool {
	appErr := apperr.As(err)
	return appErr != nil && appErr.HTTPStatus == http.StatusNotFound
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Email    string
	Password string
}

// RegisterResult echoes the identity of the enrolled account.
type RegisterResult struct {
	Email string `json:"email"`
}

/*
Register enrolls a new account, or revives a soft-deleted one in place.

Description: If the email belongs to a live account the registration is
rejected. If it belongs to a soft-deleted account, that row is reactivated
with the new password and a fully reset state, keeping its primary key.
Otherwise a fresh account is created.

Parameters:
  - context: context.Context
  - input: RegisterInput (pre-validated email and password)

Returns:
  - *RegisterResult: The enrolled email
  - error: apperr.Conflict for a live duplicate, or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*RegisterResult, error) {

	// Hash up front so both the create and revive paths share it.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Look up the email across live and soft-deleted rows.
	existing, err := service.userRepository.FindByEmailAny(context, input.Email)
	switch {
	case err == nil && existing.IsDeleted:
		// Revival: reactivate the row as if it were brand new.
		if err := service.userRepository.Revive(context, existing.ID, hashedPassword); err != nil {
			return nil, fmt.Errorf("auth_service_revive_failed: %w", err)
		}
		return &RegisterResult{Email: existing.Email}, nil

	case err == nil:
		return nil, apperr.Conflict(MsgEmailTaken)

	case !isNotFound(err):
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	// Construct and persist the new account. The database assigns the ID.
	user := &User{
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser,
		Balance:      0,
	}
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return &RegisterResult{Email: user.Email}, nil
}

// # Login Flow

// LoginInput holds submitted credentials.
type LoginInput struct {
	Email    string
	Password string
}

// TokenGrant is the result of a successful login.
type TokenGrant struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

/*
Login authenticates credentials and opens a new session.

Description: Enforces the account status policy, verifies the password
against the stored hash, issues an access and a refresh token, and records both
in the session cache. The caller receives a single generic unauthorized
message for every credential failure; the internal cause is attached to the
error for logging.

A login reward credit and an activity-timestamp bump run as best-effort side
effects and never fail the login.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *TokenGrant: Bearer token pair
  - error: apperr.Unauthorized, apperr.Forbidden, or dependency errors
*/
func (service *Service) Login(context context.Context, input LoginInput) (*TokenGrant, error) {

	// Resolve the account. Unknown email collapses into the generic message.
	user, err := service.userRepository.FindByEmail(context, input.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// Enforce the account status policy before checking the password. A
	// blocked or deleted account is rejected even when the password is
	// wrong. The wire message stays generic; the cause distinguishes
	// blocked from deleted internally.
	if err := CanAuthenticate(user); err != nil {
		return nil, apperr.Forbidden(MsgAccountUnavailable).WithCause(err)
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	// Best-effort side effects: reward credit and activity bump. Both are
	// detached from request cancellation so a client disconnect after the
	// response cannot abort them.
	service.grantLoginReward(context, user.ID)
	if err := service.userRepository.TouchActivity(context, user.ID); err != nil {
		ctxutil.GetLogger(context).Warn("login activity bump failed",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	// Issue both token families and record them in the session cache.
	// A cache failure here is fatal: an unrecorded token would be dead on
	// arrival at validation.
	accessToken, err := service.tokenProvider.Issue(user.ID, service.options.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_issue_access_failed: %w", err)
	}
	refreshToken, err := service.tokenProvider.Issue(user.ID, service.options.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_issue_refresh_failed: %w", err)
	}

	if err := service.tokenCache.Put(context, NamespaceAccess, accessToken, user.ID, service.options.AccessTokenTTL); err != nil {
		return nil, apperr.Dependency(err)
	}
	if err := service.tokenCache.Put(context, NamespaceRefresh, refreshToken, user.ID, service.options.RefreshTokenTTL); err != nil {
		return nil, apperr.Dependency(err)
	}

	return &TokenGrant{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    constants.BearerTokenType,
	}, nil
}

// grantLoginReward applies the configured login credit asynchronously. The
// credit runs under the standard balance policy, so it is silently rejected
// for accounts that cannot hold a balance (e.g. incomplete profiles); the
// outcome is logged and never affects the login.
func (service *Service) grantLoginReward(ctx context.Context, userID int64) {
	if !service.options.LoginRewardEnabled || service.creditor == nil {
		return
	}

	logger := ctxutil.GetLogger(ctx)
	detached := context.WithoutCancel(ctx)

	go func() {
		if _, err := service.creditor.UpdateBalance(detached, userID, service.options.LoginReward); err != nil {
			logger.Info("login reward not applied",
				slog.Int64("user_id", userID),
				slog.String("reason", err.Error()),
			)
		}
	}()
}

// # Session Validation

/*
ValidateAccess resolves a presented access token into a caller identity.

Description: A token is accepted only if all three hold: it is live in the
session cache, its signature and expiry verify, and its subject resolves to a
live account. Every failure collapses into a generic unauthorized signal. A
cache outage is a dependency error, never treated as a revoked token.

Parameters:
  - context: context.Context
  - token: string (raw bearer token)

Returns:
  - *sec.Identity: Resolved caller identity
  - error: apperr.Unauthorized or dependency errors
*/
func (service *Service) ValidateAccess(context context.Context, token string) (*sec.Identity, error) {

	// Liveness first: a revoked token fails here regardless of signature.
	live, err := service.tokenCache.Exists(context, NamespaceAccess, token)
	if err != nil {
		return nil, apperr.Dependency(err)
	}
	if !live {
		return nil, apperr.Unauthorized(MsgInvalidToken)
	}

	// Cryptographic verification of signature and expiry.
	claims, err := service.tokenProvider.Decode(token)
	if err != nil {
		return nil, apperr.Unauthorized(MsgInvalidToken).WithCause(err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperr.Unauthorized(MsgInvalidToken).WithCause(err)
	}

	// The subject must still resolve to a live account.
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized(MsgCannotValidate)
		}
		return nil, fmt.Errorf("auth_service_validate_lookup_failed: %w", err)
	}

	return &sec.Identity{
		UserID: user.ID,
		Role:   user.Role,
		Token:  token,
	}, nil
}

// # Token Refresh

// AccessGrant is the result of a refresh exchange.
type AccessGrant struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

/*
Refresh exchanges a live refresh token for a new access token.

Description: The refresh token must verify cryptographically and be live in
its own cache namespace. It stays live after the exchange, so a refresh token
can be used repeatedly until it expires or the key is dropped.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *AccessGrant: New access token
  - error: apperr.Unauthorized or dependency errors
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*AccessGrant, error) {

	claims, err := service.tokenProvider.Decode(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized(MsgInvalidRefresh).WithCause(err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperr.Unauthorized(MsgInvalidRefresh).WithCause(err)
	}

	// The token must still be live in the refresh namespace.
	live, err := service.tokenCache.Exists(context, NamespaceRefresh, refreshToken)
	if err != nil {
		return nil, apperr.Dependency(err)
	}
	if !live {
		return nil, apperr.Unauthorized(MsgInvalidRefresh)
	}

	accessToken, err := service.tokenProvider.Issue(userID, service.options.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_issue_failed: %w", err)
	}
	if err := service.tokenCache.Put(context, NamespaceAccess, accessToken, userID, service.options.AccessTokenTTL); err != nil {
		return nil, apperr.Dependency(err)
	}

	return &AccessGrant{
		AccessToken: accessToken,
		TokenType:   constants.BearerTokenType,
	}, nil
}

// # Logout

/*
Logout revokes the presented access token.

Description: Drops the access token from the session cache, ending its
session immediately. The paired refresh token is left untouched and remains
usable. Logging out an already-revoked token is a successful no-op.

Parameters:
  - context: context.Context
  - accessToken: string

Returns:
  - error: Dependency errors only
*/
func (service *Service) Logout(context context.Context, accessToken string) error {
	if err := service.tokenCache.Delete(context, NamespaceAccess, accessToken); err != nil {
		return apperr.Dependency(err)
	}
	return nil
}

// # Password Change

// ChangePasswordInput holds the data for a credential rotation.
type ChangePasswordInput struct {
	Email       string
	OldPassword string
	NewPassword string
}

/*
ChangePassword rotates an account's password after verifying the old one.

Description: The account is addressed by email and the old password must
match the stored hash. Existing sessions are not revoked; previously issued
tokens keep working until they expire.

Parameters:
  - context: context.Context
  - input: ChangePasswordInput (new password is pre-validated)

Returns:
  - error: apperr.NotFound, apperr.Unauthorized, or storage errors
*/
func (service *Service) ChangePassword(context context.Context, input ChangePasswordInput) error {

	user, err := service.userRepository.FindByEmail(context, input.Email)
	if err != nil {
		if isNotFound(err) {
			return apperr.NotFound("User")
		}
		return fmt.Errorf("auth_service_change_password_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(input.OldPassword, user.PasswordHash) {
		return apperr.Unauthorized(MsgOldPasswordWrong)
	}

	hashedPassword, err := sec.HashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}
	if err := service.userRepository.UpdatePassword(context, user.ID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_failed: %w", err)
	}

	return nil
}

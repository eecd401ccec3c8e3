// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentra-id/sentra/internal/platform/apperr"
	"github.com/sentra-id/sentra/internal/platform/sec"
)

// # Stubs

// stubUserRepository is an in-memory UserRepository for service tests.
type stubUserRepository struct {
	users  map[int64]*User
	nextID int64
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{users: make(map[int64]*User), nextID: 1}
}

func (s *stubUserRepository) FindByID(_ context.Context, id int64) (*User, error) {
	user, ok := s.users[id]
	if !ok || user.IsDeleted {
		return nil, apperr.NotFound("User")
	}
	copied := *user
	return &copied, nil
}

func (s *stubUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, user := range s.users {
		if user.Email == email && !user.IsDeleted {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (s *stubUserRepository) FindByEmailAny(_ context.Context, email string) (*User, error) {
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (s *stubUserRepository) Create(_ context.Context, user *User) error {
	user.ID = s.nextID
	s.nextID++
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *stubUserRepository) Revive(_ context.Context, id int64, passwordHash string) error {
	user, ok := s.users[id]
	if !ok {
		return apperr.NotFound("User")
	}
	user.PasswordHash = passwordHash
	user.IsDeleted = false
	user.IsBlocked = false
	user.BlockedAt = nil
	user.FirstName = nil
	user.LastName = nil
	user.Balance = 0
	user.UpdatedAt = nil
	user.LastActivityAt = nil
	return nil
}

func (s *stubUserRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	user, ok := s.users[id]
	if !ok {
		return apperr.NotFound("User")
	}
	user.PasswordHash = passwordHash
	return nil
}

func (s *stubUserRepository) TouchActivity(_ context.Context, id int64) error {
	user, ok := s.users[id]
	if !ok {
		return apperr.NotFound("User")
	}
	now := time.Now()
	user.LastActivityAt = &now
	return nil
}

// stubCreditor records balance credit attempts and optionally fails them.
type stubCreditor struct {
	calls chan int64
	fail  error
}

func (s *stubCreditor) UpdateBalance(_ context.Context, userID int64, _ int64) (int64, error) {
	s.calls <- userID
	if s.fail != nil {
		return 0, s.fail
	}
	return 100, nil
}

// # Fixtures

const testPassword = "Sup3rSecret"

func newTestService(t *testing.T, creditor BalanceCreditor, options Options) (*Service, *stubUserRepository) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	if options.AccessTokenTTL == 0 {
		options.AccessTokenTTL = 15 * time.Minute
	}
	if options.RefreshTokenTTL == 0 {
		options.RefreshTokenTTL = 24 * time.Hour
	}

	repo := newStubUserRepository()
	tokens, err := sec.NewTokenService("test-signing-secret", "sentra.id")
	require.NoError(t, err)
	service := NewService(repo, NewTokenCache(client), tokens, creditor, options)

	return service, repo
}

func seedUser(t *testing.T, repo *stubUserRepository, email string, mutate func(*User)) *User {
	t.Helper()

	hash, err := sec.HashPassword(testPassword)
	require.NoError(t, err)

	user := &User{Email: email, PasswordHash: hash, Role: sec.RoleUser, CreatedAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), user))

	stored := repo.users[user.ID]
	if mutate != nil {
		mutate(stored)
	}
	return stored
}

// # Registration

func TestRegisterNewAccount(t *testing.T) {
	service, repo := newTestService(t, nil, Options{})

	result, err := service.Register(context.Background(), RegisterInput{
		Email:    "new@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", result.Email)

	stored, err := repo.FindByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleUser, stored.Role)
	assert.NotEqual(t, testPassword, stored.PasswordHash)
}

func TestRegisterDuplicateLiveEmail(t *testing.T) {
	service, repo := newTestService(t, nil, Options{})
	seedUser(t, repo, "dup@example.com", nil)

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "dup@example.com",
		Password: testPassword,
	})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}

func TestRegisterRevivesDeletedAccount(t *testing.T) {
	service, repo := newTestService(t, nil, Options{})
	first := "Ada"
	last := "Lovelace"
	old := seedUser(t, repo, "back@example.com", func(u *User) {
		u.IsDeleted = true
		u.IsBlocked = true
		u.FirstName = &first
		u.LastName = &last
		u.Balance = 500
	})
	originalCreatedAt := old.CreatedAt

	result, err := service.Register(context.Background(), RegisterInput{
		Email:    "back@example.com",
		Password: "N3wPassword",
	})
	require.NoError(t, err)
	assert.Equal(t, "back@example.com", result.Email)

	// The row is reactivated in place: same ID, fully reset state.
	revived, err := repo.FindByEmail(context.Background(), "back@example.com")
	require.NoError(t, err)
	assert.Equal(t, old.ID, revived.ID)
	assert.False(t, revived.IsBlocked)
	assert.Nil(t, revived.FirstName)
	assert.Nil(t, revived.LastName)
	assert.Equal(t, int64(0), revived.Balance)
	assert.True(t, sec.CheckPasswordHash("N3wPassword", revived.PasswordHash))

	// Revival keeps the original creation timestamp.
	assert.True(t, revived.CreatedAt.Equal(originalCreatedAt))
}

// # Login & Validation

func TestLoginThenValidateAccess(t *testing.T) {
	service, repo := newTestService(t, nil, Options{})
	user := seedUser(t, repo, "a@example.com", nil)

	grant, err := service.Login(context.Background(), LoginInput{
		Email:    "a@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "bearer", grant.TokenType)
	assert.NotEmpty(t, grant.AccessToken)
	assert.NotEmpty(t, grant.RefreshToken)

	identity, err := service.ValidateAccess(context.Background(), grant.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, sec.RoleUser, identity.Role)
	assert.Equal(t, grant.AccessToken, identity.Token)
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	service, repo := newTestService(t, nil, Options{})
	seedUser(t, repo, "a@example.com", nil)

	// Unknown email and wrong password must be indistinguishable.
	_, errUnknown := service.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: testPassword,
	})
	_, errWrongPass := service.Login(context.Background(), LoginInput{
		Email:    "a@example.com",
		Password: "WrongPass1",
	})

	for _, err := range []error{errUnknown, errWrongPass} {
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
		assert.Equal(t, MsgInvalidCredentials, appErr.Message)
	}
}

func TestLoginBlockedAccount(t *testing.T) {
	service, repo := newTestService(t, nil, Options{})
	seedUser(t, repo, "blocked@example.com", func(u *User) { u.IsBlocked = true })

	_, err := service.Login(context.Background(), LoginInput{
		Email:    "blocked@example.com",
		Password: testPassword,
	})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusForbidden, appErr.HTTPStatus)
	assert.Equal(t, MsgAccountUnavailable, appErr.Message)

	// The wire message is generic but the cause stays distinguishable.
	assert.True(t, errors.Is(err, ErrAccountBlocked))

	// The status gate runs before the password check, so a blocked account
	// with a wrong password is still reported as unavailable, not as a
	// credential failure.
	_, err = service.Login(context.Background(), LoginInput{
		Email:    "blocked@example.com",
		Password: "not-the-password",
	})

	appErr = apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusForbidden, appErr.HTTPStatus)
	assert.True(t, errors.Is(err, ErrAccountBlocked))
}

func TestLoginRewardFailureDoesNotFailLogin(t *testing.T) {
	creditor := &stubCreditor{calls: make(chan int64, 1), fail: errors.New("credit rejected")}
	service, repo := newTestService(t, creditor, Options{
		LoginReward:        100,
		LoginRewardEnabled: true,
	})
	user := seedUser(t, repo, "a@example.com", nil)

	grant, err := service.Login(context.Background(), LoginInput{
		Email:    "a@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, grant.AccessToken)

	// The credit attempt was made, asynchronously, for the right user.
	select {
	case got := <-creditor.calls:
		assert.Equal(t, user.ID, got)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a balance credit attempt")
	}
}

func TestLoginRewardDisabled(t *testing.T) {
	creditor := &stubCreditor{calls: make(chan int64, 1)}
	service, repo := newTestService(t, creditor, Options{
		LoginReward:        100,
		LoginRewardEnabled: false,
	})
	seedUser(t, repo, "a@example.com", nil)

	_, err := service.Login(context.Background(), LoginInput{
		Email:    "a@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)

	select {
	case <-creditor.calls:
		t.Fatal("no credit attempt expected when the reward is disabled")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestValidateAccessRejectsForgedToken(t *testing.T) {
	service, _ := newTestService(t, nil, Options{})

	// Signed with a different secret, never recorded in the cache.
	forger, err := sec.NewTokenService("other-secret", "sentra.id")
	require.NoError(t, err)
	token, err := forger.Issue(1, time.Minute)
	require.NoError(t, err)

	_, err = service.ValidateAccess(context.Background(), token)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
}

// # Logout & Refresh

func TestLogoutRevokesAccessOnly(t *testing.T) {
	service, repo := newTestService(t, nil, Options{})
	seedUser(t, repo, "a@example.com", nil)

	grant, err := service.Login(context.Background(), LoginInput{
		Email:    "a@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), grant.AccessToken))

	// The access token is dead immediately.
	_, err = service.ValidateAccess(context.Background(), grant.AccessToken)
	assert.Error(t, err)

	// The paired refresh token still works.
	renewed, err := service.Refresh(context.Background(), grant.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, renewed.AccessToken)

	// Logging out again is a harmless no-op.
	assert.NoError(t, service.Logout(context.Background(), grant.AccessToken))
}

func TestRefreshIsReusable(t *testing.T) {
	service, repo := newTestService(t, nil, Options{})
	user := seedUser(t, repo, "a@example.com", nil)

	grant, err := service.Login(context.Background(), LoginInput{
		Email:    "a@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)

	first, err := service.Refresh(context.Background(), grant.RefreshToken)
	require.NoError(t, err)
	second, err := service.Refresh(context.Background(), grant.RefreshToken)
	require.NoError(t, err)

	// Each exchange yields a live access token for the same holder.
	for _, accessToken := range []string{first.AccessToken, second.AccessToken} {
		identity, err := service.ValidateAccess(context.Background(), accessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, identity.UserID)
	}
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	service, repo := newTestService(t, nil, Options{})
	seedUser(t, repo, "a@example.com", nil)

	grant, err := service.Login(context.Background(), LoginInput{
		Email:    "a@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)

	// The refresh token lives in its own namespace and must not pass
	// access validation.
	_, err = service.ValidateAccess(context.Background(), grant.RefreshToken)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
}

// # Password Change

func TestChangePassword(t *testing.T) {
	service, repo := newTestService(t, nil, Options{})
	seedUser(t, repo, "a@example.com", nil)

	err := service.ChangePassword(context.Background(), ChangePasswordInput{
		Email:       "a@example.com",
		OldPassword: testPassword,
		NewPassword: "Fresh3rSecret",
	})
	require.NoError(t, err)

	// Old password no longer works, new one does.
	_, err = service.Login(context.Background(), LoginInput{
		Email:    "a@example.com",
		Password: testPassword,
	})
	assert.Error(t, err)

	_, err = service.Login(context.Background(), LoginInput{
		Email:    "a@example.com",
		Password: "Fresh3rSecret",
	})
	assert.NoError(t, err)
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	service, repo := newTestService(t, nil, Options{})
	seedUser(t, repo, "a@example.com", nil)

	err := service.ChangePassword(context.Background(), ChangePasswordInput{
		Email:       "a@example.com",
		OldPassword: "NotThePassw0rd",
		NewPassword: "Fresh3rSecret",
	})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
}

func TestChangePasswordUnknownEmail(t *testing.T) {
	service, _ := newTestService(t, nil, Options{})

	err := service.ChangePassword(context.Background(), ChangePasswordInput{
		Email:       "ghost@example.com",
		OldPassword: testPassword,
		NewPassword: "Fresh3rSecret",
	})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}

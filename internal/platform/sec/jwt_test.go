// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentra-id/sentra/internal/platform/sec"
)

func newTestService(t *testing.T) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService("unit-test-secret", "sentra.id")
	require.NoError(t, err)
	return service
}

/*
TestTokenService_IssueAndDecode checks the happy-path round trip:
a freshly issued token decodes back to its subject.
*/
func TestTokenService_IssueAndDecode(t *testing.T) {
	service := newTestService(t)

	token, err := service.Issue(42, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Decode(token)
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

/*
TestTokenService_Decode_Expired checks that a token past its expiry claim
is rejected regardless of signature validity.
*/
func TestTokenService_Decode_Expired(t *testing.T) {
	service := newTestService(t)

	token, err := service.Issue(7, -time.Second)
	require.NoError(t, err)

	_, err = service.Decode(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestTokenService_Decode_Garbage feeds malformed inputs across trust-domain
boundaries. Decode must fail cleanly, never panic.
*/
func TestTokenService_Decode_Garbage(t *testing.T) {
	service := newTestService(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not_a_jwt", "hello world"},
		{"two_segments", "aaaa.bbbb"},
		{"binary_noise", string([]byte{0x00, 0xff, 0x13, 0x37})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Decode(tt.token)
			assert.ErrorIs(t, err, sec.ErrInvalidToken)
		})
	}
}

/*
TestTokenService_Decode_WrongSecret checks that tokens signed under a
different secret do not verify.
*/
func TestTokenService_Decode_WrongSecret(t *testing.T) {
	service := newTestService(t)

	other, err := sec.NewTokenService("a-different-secret", "sentra.id")
	require.NoError(t, err)

	token, err := other.Issue(1, time.Minute)
	require.NoError(t, err)

	_, err = service.Decode(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestTokenService_Decode_TamperedPayload flips the payload segment and
expects signature verification to fail.
*/
func TestTokenService_Decode_TamperedPayload(t *testing.T) {
	service := newTestService(t)

	token, err := service.Issue(42, time.Minute)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Swap the subject segment for a differently-signed token's payload.
	otherToken, err := service.Issue(99, time.Minute)
	require.NoError(t, err)
	otherParts := strings.Split(otherToken, ".")

	tampered := parts[0] + "." + otherParts[1] + "." + parts[2]
	_, err = service.Decode(tampered)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestHashPassword_RoundTrip verifies salted hashing plus constant-time
verification behavior.
*/
func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("Abcd1234")
	require.NoError(t, err)
	require.NotEqual(t, "Abcd1234", hash)

	assert.True(t, sec.CheckPasswordHash("Abcd1234", hash))
	assert.False(t, sec.CheckPasswordHash("abcd1234", hash))

	// Salted: same input, different outputs.
	secondHash, err := sec.HashPassword("Abcd1234")
	require.NoError(t, err)
	assert.NotEqual(t, hash, secondHash)
}

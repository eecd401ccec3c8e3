// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sentra-id/sentra/internal/platform/sec"
)

func strPtr(s string) *string { return &s }

func TestCanAuthenticate(t *testing.T) {
	tests := []struct {
		name    string
		user    *User
		wantErr error
	}{
		{
			name:    "active_account",
			user:    &User{},
			wantErr: nil,
		},
		{
			name:    "blocked_account",
			user:    &User{IsBlocked: true},
			wantErr: ErrAccountBlocked,
		},
		{
			name:    "deleted_account",
			user:    &User{IsDeleted: true},
			wantErr: ErrAccountDeleted,
		},
		{
			name:    "blocked_wins_over_deleted",
			user:    &User{IsBlocked: true, IsDeleted: true},
			wantErr: ErrAccountBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanAuthenticate(tt.user)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCanHoldBalance(t *testing.T) {
	assert.True(t, CanHoldBalance(&User{Role: sec.RoleUser}))
	assert.False(t, CanHoldBalance(&User{Role: sec.RoleAdmin}))
}

func TestProfileComplete(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want bool
	}{
		{"both_set", &User{FirstName: strPtr("Ada"), LastName: strPtr("Lovelace")}, true},
		{"both_unset", &User{}, false},
		{"first_only", &User{FirstName: strPtr("Ada")}, false},
		{"last_only", &User{LastName: strPtr("Lovelace")}, false},
		{"empty_strings", &User{FirstName: strPtr(""), LastName: strPtr("")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProfileComplete(tt.user))
		})
	}
}

func TestValidateProfileUpdate(t *testing.T) {
	tests := []struct {
		name    string
		first   *string
		last    *string
		wantErr error
	}{
		{"untouched", nil, nil, nil},
		{"both_provided", strPtr("Ada"), strPtr("Lovelace"), nil},
		{"first_only", strPtr("Ada"), nil, ErrPartialProfile},
		{"last_only", nil, strPtr("Lovelace"), ErrPartialProfile},
		{"first_empty", strPtr(""), strPtr("Lovelace"), ErrPartialProfile},
		{"last_empty", strPtr("Ada"), strPtr(""), ErrPartialProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfileUpdate(tt.first, tt.last)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCheckBalanceDelta(t *testing.T) {
	complete := &User{
		Role:      sec.RoleUser,
		FirstName: strPtr("Ada"),
		LastName:  strPtr("Lovelace"),
		Balance:   50,
	}

	tests := []struct {
		name    string
		user    *User
		delta   int64
		want    int64
		wantErr error
	}{
		{"credit", complete, 100, 150, nil},
		{"debit_within_funds", complete, -50, 0, nil},
		{"debit_below_zero", complete, -51, 0, ErrInsufficientFunds},
		{
			name:    "admin_account",
			user:    &User{Role: sec.RoleAdmin, FirstName: strPtr("A"), LastName: strPtr("B")},
			delta:   10,
			wantErr: ErrAdminBalance,
		},
		{
			name:    "incomplete_profile",
			user:    &User{Role: sec.RoleUser, Balance: 10},
			delta:   10,
			wantErr: ErrProfileIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckBalanceDelta(tt.user, tt.delta)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

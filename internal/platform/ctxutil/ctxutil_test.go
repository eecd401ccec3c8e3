// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package ctxutil_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentra-id/sentra/internal/platform/ctxutil"
	"github.com/sentra-id/sentra/internal/platform/sec"
)

/*
TestRequestID_RoundTrip verifies storing and retrieving the correlation ID.
*/
func TestRequestID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", ctxutil.GetRequestID(ctx))
}

/*
TestLogger_DefaultFallback verifies that GetLogger never returns nil.
*/
func TestLogger_DefaultFallback(t *testing.T) {
	ctx := context.Background()
	require.NotNil(t, ctxutil.GetLogger(ctx))

	custom := slog.Default().With(slog.String("test", "yes"))
	ctx = ctxutil.WithLogger(ctx, custom)
	assert.Same(t, custom, ctxutil.GetLogger(ctx))
}

/*
TestIdentity_RoundTrip verifies identity attachment and anonymous fallback.
*/
func TestIdentity_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ctxutil.GetIdentity(ctx))

	identity := &sec.Identity{UserID: 7, Role: sec.RoleUser, Token: "tok"}
	ctx = ctxutil.WithIdentity(ctx, identity)

	got := ctxutil.GetIdentity(ctx)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, sec.RoleUser, got.Role)
}

// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisTokenCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewTokenCache(client), server
}

func TestTokenCachePutExistsDelete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, NamespaceAccess, "tok-1", 42, time.Minute))

	live, err := cache.Exists(ctx, NamespaceAccess, "tok-1")
	require.NoError(t, err)
	assert.True(t, live)

	owner, err := cache.Owner(ctx, NamespaceAccess, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), owner)

	require.NoError(t, cache.Delete(ctx, NamespaceAccess, "tok-1"))

	live, err = cache.Exists(ctx, NamespaceAccess, "tok-1")
	require.NoError(t, err)
	assert.False(t, live)
}

func TestTokenCacheDeleteIsIdempotent(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	// Deleting a token that was never stored must succeed.
	assert.NoError(t, cache.Delete(ctx, NamespaceAccess, "never-stored"))
}

func TestTokenCacheNamespaceIsolation(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, NamespaceRefresh, "tok-r", 7, time.Hour))

	// The refresh token must be invisible to the access namespace.
	live, err := cache.Exists(ctx, NamespaceAccess, "tok-r")
	require.NoError(t, err)
	assert.False(t, live)

	live, err = cache.Exists(ctx, NamespaceRefresh, "tok-r")
	require.NoError(t, err)
	assert.True(t, live)
}

func TestTokenCacheUnknownNamespaceNeverMatches(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, NamespaceAccess, "tok-a", 7, time.Hour))

	// A namespace outside the enum gets its own key space, so a token
	// that is live in a real family never surfaces through it.
	live, err := cache.Exists(ctx, TokenNamespace("session"), "tok-a")
	require.NoError(t, err)
	assert.False(t, live)
}

func TestTokenCacheExpiry(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, NamespaceAccess, "tok-ttl", 9, 30*time.Second))

	server.FastForward(31 * time.Second)

	live, err := cache.Exists(ctx, NamespaceAccess, "tok-ttl")
	require.NoError(t, err)
	assert.False(t, live)

	_, err = cache.Owner(ctx, NamespaceAccess, "tok-ttl")
	assert.Error(t, err)
}

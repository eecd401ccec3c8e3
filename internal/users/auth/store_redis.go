// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sentra-id/sentra/internal/platform/apperr"
	"github.com/sentra-id/sentra/internal/platform/constants"
)

// # Token Cache

// RedisTokenCache implements the TokenCache interface using Redis.
//
// A token is live while its key exists; Redis handles expiry through the key
// TTL supplied at Put time, so revocation-by-expiry needs no sweeper.
type RedisTokenCache struct {
	client *redis.Client
}

// NewTokenCache creates a new Redis-backed TokenCache.
func NewTokenCache(client *redis.Client) *RedisTokenCache {
	return &RedisTokenCache{client: client}
}

// key maps a namespace and token to the cache key for that token family.
// An out-of-enum namespace maps to its own key space: no issuance path
// writes there, so lookups against it never match a live session.
func (cache *RedisTokenCache) key(ns TokenNamespace, token string) string {
	switch ns {
	case NamespaceAccess:
		return constants.RedisPrefixAccessToken + token
	case NamespaceRefresh:
		return constants.RedisPrefixRefreshToken + token
	default:
		return "auth:unknown_token:" + string(ns) + ":" + token
	}
}

/*
Put records a token as live for its holder until the TTL elapses.

Parameters:
  - context: context.Context
  - ns: TokenNamespace (access or refresh family)
  - token: string
  - userID: int64
  - ttl: time.Duration

Returns:
  - error: Storage failures
*/
func (cache *RedisTokenCache) Put(context context.Context, ns TokenNamespace, token string, userID int64, ttl time.Duration) error {

	// Store the holder's ID under the namespaced key with the token TTL.
	key := cache.key(ns, token)
	if err := cache.client.Set(context, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_token_cache_put_failed: %w", err)
	}

	return nil
}

/*
Exists reports whether the token is currently live.

Description: Absence means the token was revoked or expired. Connectivity
errors are returned as-is and must not be read as absence.

Parameters:
  - context: context.Context
  - ns: TokenNamespace
  - token: string

Returns:
  - bool: Liveness of the token
  - error: Connectivity errors
*/
func (cache *RedisTokenCache) Exists(context context.Context, ns TokenNamespace, token string) (bool, error) {

	// Check key presence without reading the value.
	count, err := cache.client.Exists(context, cache.key(ns, token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis_token_cache_exists_failed: %w", err)
	}

	return count > 0, nil
}

/*
Owner returns the user ID the token was issued to.

Description: Returns apperr.NotFound if the token is absent or expired.

Parameters:
  - context: context.Context
  - ns: TokenNamespace
  - token: string

Returns:
  - int64: Holder's user ID
  - error: apperr.NotFound or connectivity errors
*/
func (cache *RedisTokenCache) Owner(context context.Context, ns TokenNamespace, token string) (int64, error) {

	// Read the holder's ID from the namespaced key.
	value, err := cache.client.Get(context, cache.key(ns, token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, apperr.NotFound("Token")
		}
		return 0, fmt.Errorf("redis_token_cache_owner_failed: %w", err)
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis_token_cache_owner_corrupt_value: %w", err)
	}

	return userID, nil
}

/*
Delete revokes a token by removing its cache entry.

Description: Deleting an absent token is a no-op, keeping revocation idempotent.

Parameters:
  - context: context.Context
  - ns: TokenNamespace
  - token: string

Returns:
  - error: Deletion failures
*/
func (cache *RedisTokenCache) Delete(context context.Context, ns TokenNamespace, token string) error {

	// Del returns the number of removed keys; zero is fine here.
	if err := cache.client.Del(context, cache.key(ns, token)).Err(); err != nil {
		return fmt.Errorf("redis_token_cache_delete_failed: %w", err)
	}

	return nil
}

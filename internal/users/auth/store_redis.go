// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/inkwell/internal/platform/constants"
	"github.com/taibuivan/inkwell/internal/platform/sec"
)

// # Identity Cache

// RedisIdentityCache implements IdentityCache using Redis string keys with a TTL.
type RedisIdentityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdentityCache creates a new Redis-backed IdentityCache.
func NewIdentityCache(client *redis.Client, ttl time.Duration) *RedisIdentityCache {
	if ttl <= 0 {
		ttl = constants.DefaultIdentityCacheTTL
	}
	return &RedisIdentityCache{client: client, ttl: ttl}
}

func identityKey(email string) string {
	return constants.RedisPrefixIdentity + email
}

/*
Get returns the cached identity for an email.

Returns:
  - *sec.Identity: Cached identity
  - error: ErrIdentityNotCached on a miss, or connectivity errors
*/
func (cache *RedisIdentityCache) Get(ctx context.Context, email string) (*sec.Identity, error) {
	payload, err := cache.client.Get(ctx, identityKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrIdentityNotCached
		}
		return nil, fmt.Errorf("redis_identity_get_failed: %w", err)
	}

	identity := &sec.Identity{}
	if err := json.Unmarshal(payload, identity); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next Set.
		return nil, ErrIdentityNotCached
	}

	return identity, nil
}

// Set stores the identity under its email for the configured TTL.
func (cache *RedisIdentityCache) Set(ctx context.Context, identity sec.Identity) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("redis_identity_encode_failed: %w", err)
	}

	if err := cache.client.Set(ctx, identityKey(identity.Email), payload, cache.ttl).Err(); err != nil {
		return fmt.Errorf("redis_identity_set_failed: %w", err)
	}

	return nil
}

// Delete evicts the identity for an email. Deleting a missing key is not an error.
func (cache *RedisIdentityCache) Delete(ctx context.Context, email string) error {
	if err := cache.client.Del(ctx, identityKey(email)).Err(); err != nil {
		return fmt.Errorf("redis_identity_delete_failed: %w", err)
	}
	return nil
}

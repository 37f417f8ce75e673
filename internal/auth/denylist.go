// Package auth implements the credential and token exchange flow: login,
// registration, access token refresh, and logout.
//
// Token validity itself is stateless. Session control is layered on top as
// a denylist keyed by token id: logout denies the presented tokens, and
// every protected request consults the denylist before trusting a token.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cradle/internal/platform/redis"
)

// Denylist records revoked token ids until their natural expiry.
type Denylist interface {
	Deny(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

const denyKeyPrefix = "cradle:denylist:"

// RedisDenylist stores revoked token ids in Redis with a TTL equal to the
// remaining token lifetime, so entries expire exactly when the token does.
type RedisDenylist struct {
	client *redis.Client
}

var _ Denylist = (*RedisDenylist)(nil)

// NewRedisDenylist wraps a Redis client as a denylist.
func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

// Deny marks a token id revoked for the given duration.
func (d *RedisDenylist) Deny(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, denyKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("deny token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether a token id has been denied. An error means
// the denylist could not be consulted; callers fail closed.
func (d *RedisDenylist) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, denyKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return n > 0, nil
}

// MemoryDenylist is an in-process denylist for tests and dev runs without
// Redis. Expired entries are pruned lazily on read.
type MemoryDenylist struct {
	mu      sync.Mutex
	expires map[string]time.Time
}

var _ Denylist = (*MemoryDenylist)(nil)

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{expires: make(map[string]time.Time)}
}

func (d *MemoryDenylist) Deny(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expires[jti] = time.Now().Add(ttl)
	return nil
}

func (d *MemoryDenylist) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	expiry, ok := d.expires[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(d.expires, jti)
		return false, nil
	}
	return true, nil
}

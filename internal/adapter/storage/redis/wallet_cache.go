package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wallet-ledger-service/internal/core/domain"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// WalletCache implements ports.WalletCache using Redis. The ledger stays the
// source of truth: entries are written after committed reads, dropped on
// every mutation, and any cache failure degrades to a database read.
type WalletCache struct {
	client *goredis.Client
	prefix string
}

// NewWalletCache creates a new Redis-backed wallet read cache.
func NewWalletCache(client *goredis.Client) *WalletCache {
	return &WalletCache{
		client: client,
		prefix: "wallet:",
	}
}

// Get retrieves a cached wallet snapshot.
// Returns nil, nil if the key does not exist.
func (c *WalletCache) Get(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	val, err := c.client.Get(ctx, c.prefix+id.String()).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis wallet get: %w", err)
	}

	w := &domain.Wallet{}
	if err := json.Unmarshal(val, w); err != nil {
		return nil, fmt.Errorf("decode cached wallet: %w", err)
	}
	return w, nil
}

// Set stores a wallet snapshot with TTL.
func (c *WalletCache) Set(ctx context.Context, wallet *domain.Wallet, ttl time.Duration) error {
	raw, err := json.Marshal(wallet)
	if err != nil {
		return fmt.Errorf("encode wallet for cache: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+wallet.ID.String(), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis wallet set: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot for a wallet.
func (c *WalletCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, c.prefix+id.String()).Err(); err != nil {
		return fmt.Errorf("redis wallet invalidate: %w", err)
	}
	return nil
}

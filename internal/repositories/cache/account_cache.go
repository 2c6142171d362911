package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"payflow/internal/models"

	"github.com/redis/go-redis/v9"
)

const accountKeyPrefix = "account:"

// AccountCache is a read-through cache for account records. Entries are
// invalidated after every balance mutation, never updated in place.
type AccountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAccountCache creates an account cache with the given entry TTL.
func NewAccountCache(client *redis.Client, ttl time.Duration) *AccountCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AccountCache{client: client, ttl: ttl}
}

// GetAccount returns a cached account or an error on miss.
func (c *AccountCache) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	val, err := c.client.Get(ctx, accountKey(id)).Result()
	if err != nil {
		return nil, err
	}
	var account models.Account
	if err := json.Unmarshal([]byte(val), &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// SetAccount caches an account record.
func (c *AccountCache) SetAccount(ctx context.Context, account *models.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, accountKey(account.ID), data, c.ttl).Err()
}

// InvalidateAccount drops the cached entry for an account.
func (c *AccountCache) InvalidateAccount(ctx context.Context, id uint) error {
	return c.client.Del(ctx, accountKey(id)).Err()
}

// FlushAll clears the cache. Used on startup.
func (c *AccountCache) FlushAll(ctx context.Context) error {
	return c.client.FlushAll(ctx).Err()
}

// Close closes the underlying redis connection.
func (c *AccountCache) Close() error {
	return c.client.Close()
}

func accountKey(id uint) string {
	return fmt.Sprintf("%s%d", accountKeyPrefix, id)
}

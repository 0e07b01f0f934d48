package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/David-McSharry/quantify/internal/domain"
)

// defaultSearchTTL keeps cached responses short-lived; market prices move.
const defaultSearchTTL = 2 * time.Minute

// SearchCache implements domain.SearchCache with JSON-serialized market
// lists under a "search:" key prefix.
type SearchCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSearchCache creates a SearchCache backed by the given Client. A zero
// ttl selects the default.
func NewSearchCache(c *Client, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = defaultSearchTTL
	}
	return &SearchCache{rdb: c.Underlying(), ttl: ttl}
}

func searchKey(key string) string { return "search:" + key }

// Get retrieves a cached result set. It returns domain.ErrNotFound when the
// key does not exist or has expired.
func (sc *SearchCache) Get(ctx context.Context, key string) ([]domain.Market, error) {
	data, err := sc.rdb.Get(ctx, searchKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get search %s: %w", key, err)
	}

	var markets []domain.Market
	if err := json.Unmarshal(data, &markets); err != nil {
		return nil, fmt.Errorf("redis: unmarshal search %s: %w", key, err)
	}
	return markets, nil
}

// Set stores a result set under the cache TTL.
func (sc *SearchCache) Set(ctx context.Context, key string, markets []domain.Market) error {
	data, err := json.Marshal(markets)
	if err != nil {
		return fmt.Errorf("redis: marshal search %s: %w", key, err)
	}
	if err := sc.rdb.Set(ctx, searchKey(key), data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set search %s: %w", key, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SearchCache = (*SearchCache)(nil)

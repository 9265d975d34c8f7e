// internal/words/cache.go
package words

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/babo/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultCachePrefix namespaces the per-category pair sets.
const DefaultCachePrefix = "babo:pairs:"

// Cache keeps generated pairs in a Redis set per category so a failed generator call can
// still return something specific to the category.
type Cache struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewCache(rdb redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, prefix: DefaultCachePrefix, ttl: ttl}
}

func (c *Cache) key(category string) string {
	return c.prefix + category
}

// Remember adds the pair to its category set and refreshes the set's TTL.
func (c *Cache) Remember(ctx context.Context, pair models.WordPair) error {
	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("failed to marshal word pair: %w", err)
	}
	key := c.key(pair.Category)
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, data)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to cache pair in '%s': %w", key, err)
	}
	return nil
}

// Pair returns a random remembered pair for the category.
func (c *Cache) Pair(ctx context.Context, category string) (models.WordPair, error) {
	data, err := c.rdb.SRandMember(ctx, c.key(category)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && data == "") {
		return models.WordPair{}, ErrNoCachedPair
	}
	if err != nil {
		return models.WordPair{}, fmt.Errorf("failed to read cached pair: %w", err)
	}
	var pair models.WordPair
	if err := json.Unmarshal([]byte(data), &pair); err != nil {
		return models.WordPair{}, fmt.Errorf("invalid cached pair: %w", err)
	}
	return pair, nil
}

// Remembering wraps src so every pair it produces is also stored in the cache.
// A cache write failure is logged at warn level and does not fail the lookup.
func (c *Cache) Remembering(src Source, logger *logrus.Logger) Source {
	return SourceFunc(func(ctx context.Context, category string) (models.WordPair, error) {
		pair, err := src.Pair(ctx, category)
		if err != nil {
			return pair, err
		}
		if err := c.Remember(ctx, pair); err != nil {
			logger.WithField("category", pair.Category).WithError(err).Warn("failed to remember generated pair")
		}
		return pair, nil
	})
}

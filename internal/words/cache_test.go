package words

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/babo/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedis needs a real Redis at REDIS_ADDR; the test is skipped otherwise.
func newTestRedis(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestCacheRoundTrip(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	c := NewCache(rdb, time.Minute)
	c.prefix = "babo-test:" + uuid.NewString() + ":"

	_, err := c.Pair(ctx, "악기")
	assert.ErrorIs(t, err, ErrNoCachedPair)

	pair := models.WordPair{Category: "악기", WordA: "바이올린", WordB: "첼로"}
	require.NoError(t, c.Remember(ctx, pair))
	t.Cleanup(func() { rdb.Del(context.Background(), c.key("악기")) })

	got, err := c.Pair(ctx, "악기")
	require.NoError(t, err)
	assert.Equal(t, pair, got)

	ttl, err := rdb.TTL(ctx, c.key("악기")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestCacheRememberingStoresGeneratedPairs(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	c := NewCache(rdb, time.Minute)
	c.prefix = "babo-test:" + uuid.NewString() + ":"
	t.Cleanup(func() { rdb.Del(context.Background(), c.key("악기")) })

	gen := SourceFunc(func(_ context.Context, category string) (models.WordPair, error) {
		return models.WordPair{Category: category, WordA: "기타", WordB: "우쿨렐레"}, nil
	})
	_, err := c.Remembering(gen, logrus.New()).Pair(ctx, "악기")
	require.NoError(t, err)

	got, err := c.Pair(ctx, "악기")
	require.NoError(t, err)
	assert.Equal(t, "우쿨렐레", got.WordB)

	failing := SourceFunc(func(context.Context, string) (models.WordPair, error) {
		return models.WordPair{}, errors.New("down")
	})
	_, err = c.Remembering(failing, logrus.New()).Pair(ctx, "악기")
	assert.Error(t, err)
}

func TestCacheRememberingLogsWriteFailure(t *testing.T) {
	// nothing listens on port 1, so every cache write fails fast
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { rdb.Close() })
	logger, hook := logtest.NewNullLogger()
	c := NewCache(rdb, time.Minute)

	gen := SourceFunc(func(_ context.Context, category string) (models.WordPair, error) {
		return models.WordPair{Category: category, WordA: "기타", WordB: "우쿨렐레"}, nil
	})
	pair, err := c.Remembering(gen, logger).Pair(context.Background(), "악기")
	require.NoError(t, err)
	assert.Equal(t, "기타", pair.WordA)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "악기", entry.Data["category"])
	assert.Contains(t, entry.Data, logrus.ErrorKey)
}

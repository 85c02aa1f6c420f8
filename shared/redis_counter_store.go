package shared

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisCounterStore keeps rate-limit hit counts in Redis, one sorted set
// per key with hit timestamps as scores. Use it when several API instances
// must share one limit; a single instance does fine with the memory store.
type RedisCounterStore struct {
	client *redis.Client
}

// NewRedisCounterStore connects and verifies the server is reachable.
func NewRedisCounterStore(ctx context.Context, addr, password string, db int) (*RedisCounterStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis failed: %w", err)
	}

	return &RedisCounterStore{client: client}, nil
}

// Increment trims hits older than the window, records the new one, and
// returns the set cardinality, all in one transactional pipeline so
// concurrent instances keep a consistent count. Members carry a uuid
// because two hits can land on the same millisecond.
func (s *RedisCounterStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	now := time.Now()
	cutoff := strconv.FormatInt(now.Add(-window).UnixMilli(), 10)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", cutoff)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: uuid.NewString(),
	})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to update rate limit counter: %w", err)
	}
	return int(card.Val()), nil
}

func (s *RedisCounterStore) Close() error {
	return s.client.Close()
}

package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// MemoryWindowLog keeps hit timestamps per key in process memory.
type MemoryWindowLog struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

func NewMemoryWindowLog() *MemoryWindowLog {
	return &MemoryWindowLog{hits: make(map[string][]time.Time)}
}

func (l *MemoryWindowLog) Count(ctx context.Context, key string, now time.Time, window time.Duration) (int, time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := prune(l.hits[key], now.Add(-window))
	if len(kept) == 0 {
		delete(l.hits, key)
		return 0, time.Time{}, nil
	}
	l.hits[key] = kept
	return len(kept), kept[0], nil
}

func (l *MemoryWindowLog) Add(ctx context.Context, key string, at time.Time, window time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	hits := append(prune(l.hits[key], at.Add(-window)), at)
	l.hits[key] = hits
	return nil
}

func (l *MemoryWindowLog) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hits, key)
	return nil
}

// prune drops timestamps at or before cutoff. hits is kept in insertion order.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

// RedisWindowLog stores hits in a sorted set scored by unix milliseconds.
type RedisWindowLog struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisWindowLog(client redis.UniversalClient, prefix string) *RedisWindowLog {
	return &RedisWindowLog{client: client, prefix: prefix + "ratelimit:"}
}

func (l *RedisWindowLog) Count(ctx context.Context, key string, now time.Time, window time.Duration) (int, time.Time, error) {
	k := l.prefix + key
	cutoff := strconv.FormatInt(now.Add(-window).UnixMilli(), 10)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "-inf", cutoff)
	card := pipe.ZCard(ctx, k)
	oldest := pipe.ZRangeWithScores(ctx, k, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("redis window count: %w", err)
	}

	n := int(card.Val())
	if n == 0 || len(oldest.Val()) == 0 {
		return n, time.Time{}, nil
	}
	return n, time.UnixMilli(int64(oldest.Val()[0].Score)), nil
}

func (l *RedisWindowLog) Add(ctx context.Context, key string, at time.Time, window time.Duration) error {
	k := l.prefix + key

	pipe := l.client.TxPipeline()
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(at.UnixMilli()), Member: uuid.NewString()})
	pipe.PExpire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis window add: %w", err)
	}
	return nil
}

func (l *RedisWindowLog) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis window reset: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"pdf-slide-synth/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisKVStore implements domain.KVStore on plain Redis strings.
type RedisKVStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisKVStore(client redis.UniversalClient, prefix string) *RedisKVStore {
	return &RedisKVStore{client: client, prefix: prefix}
}

func (s *RedisKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

func (s *RedisKVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisKVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Close is a no-op; the shared client is closed by its owner.
func (s *RedisKVStore) Close() error {
	return nil
}

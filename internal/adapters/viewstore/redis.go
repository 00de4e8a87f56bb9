package viewstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/okian/daonpick/internal/domain/model"
)

// DefaultRedisHash is the hash holding one field per product code.
const DefaultRedisHash = "daonpick:views"

// RedisStore keeps counters in a single Redis hash.
type RedisStore struct {
	client *redis.Client
	hash   string
}

// NewRedisStore connects to url and checks the connection.
func NewRedisStore(ctx context.Context, url, hash string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid redis url: %w", ErrConnect, err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	return NewRedisStoreFromClient(client, hash), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, hash string) *RedisStore {
	if hash == "" {
		hash = DefaultRedisHash
	}
	return &RedisStore{client: client, hash: hash}
}

// All implements Store. Fields that do not parse as integers are skipped.
func (s *RedisStore) All(ctx context.Context) ([]model.ViewCount, error) {
	fields, err := s.client.HGetAll(ctx, s.hash).Result()
	observe("redis", "all", err)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", s.hash, err)
	}
	out := make([]model.ViewCount, 0, len(fields))
	for code, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, model.ViewCount{Code: code, Count: n})
	}
	return out, nil
}

// Increment implements Store with HINCRBY.
func (s *RedisStore) Increment(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrEmptyCode
	}
	err := s.client.HIncrBy(ctx, s.hash, code, 1).Err()
	observe("redis", "increment", err)
	if err != nil {
		return fmt.Errorf("hincrby %s: %w", code, err)
	}
	return nil
}

// Get implements ReadWriter.
func (s *RedisStore) Get(ctx context.Context, code string) (int64, error) {
	n, err := s.client.HGet(ctx, s.hash, code).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("hget %s: %w", code, err)
	}
	return n, nil
}

// Set implements ReadWriter.
func (s *RedisStore) Set(ctx context.Context, code string, n int64) error {
	if err := s.client.HSet(ctx, s.hash, code, n).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", code, err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error { return s.client.Close() }

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 3 * time.Second

// RedisSlots implements Slots with one Redis string key per slot.
type RedisSlots struct {
	client *redis.Client
}

// NewRedisSlots connects to the Redis server at addr and verifies it answers.
func NewRedisSlots(addr string) (*RedisSlots, error) {
	if addr == "" {
		return nil, errors.New("redis address is empty")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", addr, err)
	}
	return &RedisSlots{client: client}, nil
}

// NewRedisSlotsFromClient wraps an existing client. The slots own it and
// close it on Close.
func NewRedisSlotsFromClient(client *redis.Client) *RedisSlots {
	return &RedisSlots{client: client}
}

func (r *RedisSlots) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading slot %s: %w", key, err)
	}
	return value, true, nil
}

func (r *RedisSlots) Put(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	return nil
}

func (r *RedisSlots) Close() error {
	return r.client.Close()
}

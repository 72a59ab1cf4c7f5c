package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisRepository 基于 redis 的存储
type RedisRepository struct {
	client  *redis.Client
	timeout time.Duration
}

func NewRedisRepository(url string, timeout time.Duration) (*RedisRepository, error) {
	if url == "" {
		return nil, fmt.Errorf("redis url not configured")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	logrus.Infof("Redis store configured: %s", opts.Addr)
	return &RedisRepository{
		client:  redis.NewClient(opts),
		timeout: timeout,
	}, nil
}

// Get 读取键值
func (r *RedisRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	value, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

// Set 覆盖写入，不设置过期
func (r *RedisRepository) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"AssetReport/pkg/config"
)

// ErrStoreNotConfigured 未配置存储驱动
var ErrStoreNotConfigured = errors.New("config store not configured")

// Store 键值存储，只做整文档读写
type Store interface {
	// Get 读取键值，键不存在时 found 为 false
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set 整体覆盖写入
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// NewStore 按驱动创建存储
func NewStore(cfg config.StoreConfig) (Store, error) {
	timeout := time.Duration(cfg.Timeout) * time.Second

	var (
		store Store
		err   error
	)
	switch cfg.Driver {
	case "":
		return nil, ErrStoreNotConfigured
	case "memory":
		store = NewMemoryRepository()
	case "sqlite":
		var repo *SQLiteRepository
		if repo, err = NewSQLiteRepository(cfg.Path); err == nil {
			store = repo
		}
	case "redis":
		var repo *RedisRepository
		if repo, err = NewRedisRepository(cfg.URL, timeout); err == nil {
			store = repo
		}
	case "etcd":
		var repo *EtcdRepository
		if repo, err = NewEtcdRepository(cfg.EtcdEndpoints(), timeout); err == nil {
			store = repo
		}
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

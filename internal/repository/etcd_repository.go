package repository

import (
	"context"
	"time"

	"AssetReport/pkg/etcd"
)

// EtcdRepository 基于 etcd 的存储
type EtcdRepository struct {
	client *etcd.Client
}

func NewEtcdRepository(endpoints []string, timeout time.Duration) (*EtcdRepository, error) {
	client, err := etcd.NewClient(endpoints, timeout)
	if err != nil {
		return nil, err
	}
	return &EtcdRepository{client: client}, nil
}

func (r *EtcdRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, found, err := r.client.Get(ctx, key)
	if err != nil || !found {
		return nil, found, err
	}
	return []byte(value), true, nil
}

func (r *EtcdRepository) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Put(ctx, key, string(value))
}

func (r *EtcdRepository) Close() error {
	return r.client.Close()
}

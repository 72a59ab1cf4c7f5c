package etcd

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Client etcd客户端
type Client struct {
	cli       *clientv3.Client
	endpoints []string
	timeout   time.Duration
}

// NewClient 创建etcd客户端
func NewClient(endpoints []string, timeout time.Duration) (*Client, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("etcd endpoints not configured")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	logrus.Infof("[Etcd] Connected to %v", endpoints)
	return &Client{
		cli:       cli,
		endpoints: endpoints,
		timeout:   timeout,
	}, nil
}

// Put 设置键值
func (c *Client) Put(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.cli.Put(ctx, key, value)
	if err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}
	return nil
}

// Get 获取键值，键不存在时 found 为 false
func (c *Client) Get(ctx context.Context, key string) (value string, found bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.cli.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	if len(resp.Kvs) == 0 {
		return "", false, nil
	}

	return string(resp.Kvs[0].Value), true, nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	return c.cli.Close()
}

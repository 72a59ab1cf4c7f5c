package repository

import (
	"context"
	"sync"
)

// MemoryRepository 进程内存储，用于本地调试与测试
type MemoryRepository struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewMemoryRepository 创建内存仓库
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		data: make(map[string][]byte),
	}
}

// Get 读取键值
func (r *MemoryRepository) Get(_ context.Context, key string) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.data[key]
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(value), true, nil
}

// Set 写入键值
func (r *MemoryRepository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[key] = cloneBytes(value)
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}

func cloneBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

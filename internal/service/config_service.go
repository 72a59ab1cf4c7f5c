package service

import (
	"context"
	"fmt"

	"AssetReport/internal/model"
	"AssetReport/internal/repository"
	"AssetReport/pkg/json"

	"github.com/sirupsen/logrus"
)

// ConfigService 持仓配置的读写
type ConfigService struct {
	store repository.Store
	key   string
}

// NewConfigService store 为 nil 表示存储未配置，所有操作返回 ErrStoreUnavailable
func NewConfigService(store repository.Store, key string) *ConfigService {
	return &ConfigService{store: store, key: key}
}

// Available 是否已配置存储
func (s *ConfigService) Available() bool {
	return s.store != nil
}

// Load 读取配置，不存在时写入默认配置，写入失败只记录日志
func (s *ConfigService) Load(ctx context.Context) (*model.AssetConfig, error) {
	if s.store == nil {
		return nil, model.ErrStoreUnavailable("config store is not configured")
	}

	raw, found, err := s.store.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}

	if !found {
		cfg := model.DefaultAssetConfig()
		logrus.Infof("Config %s not found, initializing defaults", s.key)
		if err := s.Save(ctx, cfg); err != nil {
			logrus.Errorf("Failed to persist default config: %v", err)
		}
		return cfg, nil
	}

	var cfg model.AssetConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return &cfg, nil
}

// Save 整体覆盖写入
func (s *ConfigService) Save(ctx context.Context, cfg *model.AssetConfig) error {
	if s.store == nil {
		return model.ErrStoreUnavailable("config store is not configured")
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := s.store.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	logrus.Debugf("Config %s saved (%d holdings)", s.key, cfg.Portfolio.Len())
	return nil
}

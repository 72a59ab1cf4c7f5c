package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.ini"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Store.Driver != "" {
		t.Errorf("Expected store to be unconfigured, got %q", cfg.Store.Driver)
	}
	if cfg.Store.Key != "asset_config" {
		t.Errorf("Expected key asset_config, got %s", cfg.Store.Key)
	}
	if cfg.Provider.NewsTimeout != 15 {
		t.Errorf("Expected news timeout 15, got %d", cfg.Provider.NewsTimeout)
	}
}

func TestLoadConfig_OverridesOnlyPresentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.ini")
	content := `[server]
port = 9090

[store]
driver = sqlite
path = ./data/asset.db

[provider]
quote_timeout = 3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.Mode != "release" {
		t.Errorf("Expected default mode release, got %s", cfg.Server.Mode)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Path != "./data/asset.db" {
		t.Errorf("Unexpected store config: %+v", cfg.Store)
	}
	if cfg.Store.Key != "asset_config" {
		t.Errorf("Expected default key to survive, got %s", cfg.Store.Key)
	}
	if cfg.Provider.QuoteTimeout != 3 || cfg.Provider.FXTimeout != 10 {
		t.Errorf("Unexpected timeouts: %+v", cfg.Provider)
	}
}

func TestApplyEnv_RedisURLEnablesRedis(t *testing.T) {
	t.Setenv("KV_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("PORT", "3000")
	t.Setenv("STORE_DRIVER", "")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Store.Driver != "redis" {
		t.Errorf("Expected driver redis, got %q", cfg.Store.Driver)
	}
	if cfg.Store.URL != "redis://localhost:6379/0" {
		t.Errorf("Unexpected url %q", cfg.Store.URL)
	}
	if cfg.Server.Port != "3000" {
		t.Errorf("Expected port 3000, got %s", cfg.Server.Port)
	}
}

func TestApplyEnv_ExplicitDriverWins(t *testing.T) {
	t.Setenv("KV_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("STORE_DRIVER", "SQLite")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Store.Driver != "sqlite" {
		t.Errorf("Expected driver sqlite, got %q", cfg.Store.Driver)
	}
}

func TestEtcdEndpoints(t *testing.T) {
	s := StoreConfig{Endpoints: "127.0.0.1:2379, 127.0.0.2:2379,,"}
	got := s.EtcdEndpoints()
	if len(got) != 2 || got[0] != "127.0.0.1:2379" || got[1] != "127.0.0.2:2379" {
		t.Errorf("Unexpected endpoints %v", got)
	}
}

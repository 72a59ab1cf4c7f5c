package config

import (
	"os"
	"strings"

	"github.com/go-ini/ini"
	"github.com/sirupsen/logrus"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `ini:"server"`
	Store     StoreConfig     `ini:"store"`
	Provider  ProviderConfig  `ini:"provider"`
	RateLimit RateLimitConfig `ini:"ratelimit"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port     string `ini:"port"`      // 服务端口
	Mode     string `ini:"mode"`      // gin 运行模式: debug/release
	LogLevel string `ini:"log_level"` // 日志级别
}

// StoreConfig 配置存储
type StoreConfig struct {
	Driver    string `ini:"driver"`    // redis/etcd/sqlite/memory，为空表示未配置
	URL       string `ini:"url"`       // redis 连接串
	Endpoints string `ini:"endpoints"` // etcd地址列表，逗号分隔
	Path      string `ini:"path"`      // sqlite 文件路径
	Key       string `ini:"key"`       // 配置文档的键名
	Timeout   int    `ini:"timeout"`   // 单次读写超时（秒）
}

// ProviderConfig 上游数据源配置
type ProviderConfig struct {
	QuoteURL     string `ini:"quote_url"`
	FXURL        string `ini:"fx_url"`
	NewsURL      string `ini:"news_url"`
	Referer      string `ini:"referer"`
	UserAgent    string `ini:"user_agent"`
	QuoteTimeout int    `ini:"quote_timeout"` // 秒
	FXTimeout    int    `ini:"fx_timeout"`    // 秒
	NewsTimeout  int    `ini:"news_timeout"`  // 秒
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	PageQPS     int `ini:"page_qps"`
	PageBurst   int `ini:"page_burst"`
	UpdateQPS   int `ini:"update_qps"`
	UpdateBurst int `ini:"update_burst"`
}

// Default 内置默认配置，存储默认未配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     "8080",
			Mode:     "release",
			LogLevel: "info",
		},
		Store: StoreConfig{
			Key:     "asset_config",
			Timeout: 5,
		},
		Provider: ProviderConfig{
			QuoteURL:     "http://hq.sinajs.cn",
			FXURL:        "https://www.google.com/finance/quote/HKD-CNY",
			NewsURL:      "https://vip.stock.finance.sina.com.cn/corp/go.php/vCB_AllNewsStock/symbol",
			Referer:      "https://finance.sina.com.cn/",
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36",
			QuoteTimeout: 10,
			FXTimeout:    10,
			NewsTimeout:  15,
		},
		RateLimit: RateLimitConfig{
			PageQPS:     5,
			PageBurst:   10,
			UpdateQPS:   1,
			UpdateBurst: 3,
		},
	}
}

// LoadConfig 加载配置文件，文件不存在时使用默认配置
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()

	if filePath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		logrus.Warnf("Config file %s not found, using defaults", filePath)
		return cfg, nil
	}

	if err := ini.MapTo(cfg, filePath); err != nil {
		logrus.Errorf("Failed to load config file: %v", err)
		return nil, err
	}

	logrus.Infof("Config loaded successfully from: %s", filePath)
	return cfg, nil
}

// ApplyEnv 用环境变量覆盖配置，KV_REDIS_URL 存在且未指定驱动时启用 redis
func (c *Config) ApplyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Server.LogLevel = level
	}
	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		c.Store.Driver = strings.ToLower(driver)
	}
	if url := os.Getenv("KV_REDIS_URL"); url != "" {
		c.Store.URL = url
		if c.Store.Driver == "" {
			c.Store.Driver = "redis"
		}
	}
}

// EtcdEndpoints 拆分 etcd 地址列表
func (s *StoreConfig) EtcdEndpoints() []string {
	var endpoints []string
	for _, ep := range strings.Split(s.Endpoints, ",") {
		if ep = strings.TrimSpace(ep); ep != "" {
			endpoints = append(endpoints, ep)
		}
	}
	return endpoints
}

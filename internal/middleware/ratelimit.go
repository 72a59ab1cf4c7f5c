package middleware

import (
	"net/http"
	"sync"

	"AssetReport/pkg/common"
	"AssetReport/pkg/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// 限流器名称
const (
	LimiterPage   = "page"
	LimiterUpdate = "update"
)

// TokenBucketLimiter 令牌桶限流器
type TokenBucketLimiter struct {
	limiter *rate.Limiter
}

// NewTokenBucketLimiter 创建令牌桶限流器
// qps: 每秒允许的请求数
// burst: 允许的突发请求数
func NewTokenBucketLimiter(qps int, burst int) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		limiter: rate.NewLimiter(rate.Limit(qps), burst),
	}
}

// Allow 检查是否允许请求
func (l *TokenBucketLimiter) Allow() bool {
	return l.limiter.Allow()
}

// RateLimiters 按路由分组的限流器
type RateLimiters struct {
	limiters map[string]*TokenBucketLimiter
	mu       sync.RWMutex
}

// NewRateLimiters 根据配置创建页面与编辑接口的限流器，qps<=0 表示不限流
func NewRateLimiters(cfg config.RateLimitConfig) *RateLimiters {
	g := &RateLimiters{limiters: make(map[string]*TokenBucketLimiter)}
	g.AddLimiter(LimiterPage, cfg.PageQPS, cfg.PageBurst)
	g.AddLimiter(LimiterUpdate, cfg.UpdateQPS, cfg.UpdateBurst)
	return g
}

// AddLimiter 添加限流器
func (g *RateLimiters) AddLimiter(name string, qps int, burst int) {
	if qps <= 0 {
		return
	}
	if burst < 1 {
		burst = 1
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.limiters[name] = NewTokenBucketLimiter(qps, burst)
}

// GetLimiter 获取限流器，未配置时返回 nil
func (g *RateLimiters) GetLimiter(name string) *TokenBucketLimiter {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.limiters[name]
}

// RateLimitMiddleware 限流中间件
func RateLimitMiddleware(g *RateLimiters, name string) gin.HandlerFunc {
	limiter := g.GetLimiter(name)

	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow() {
			// 限流触发，返回429状态码
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.NewErrorResponse("Too many requests."))
			return
		}
		c.Next()
	}
}

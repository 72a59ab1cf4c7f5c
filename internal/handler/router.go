package handler

import (
	"AssetReport/internal/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter 注册路由，未匹配的路径都返回报告页面
func NewRouter(h *ReportHandler, limiters *middleware.RateLimiters) *gin.Engine {
	r := gin.Default()

	// 健康检查
	r.GET("/health", h.Health)

	pageLimit := middleware.RateLimitMiddleware(limiters, middleware.LimiterPage)
	r.GET("/", pageLimit, h.Page)
	r.POST("/api/update", middleware.RateLimitMiddleware(limiters, middleware.LimiterUpdate), h.Update)
	r.NoRoute(pageLimit, h.Page)

	return r
}

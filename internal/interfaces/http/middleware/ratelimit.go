// Package middleware 提供 HTTP 中间件
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"book-social-ai-api/internal/config"
	"book-social-ai-api/internal/infrastructure/persistence/redis"
	"book-social-ai-api/pkg/logger"
)

// RateLimit 按用户滑动窗口限流中间件。
// 限流键取请求体之外能拿到的最弱身份：user_id 查询参数，缺失时退回客户端 IP。
// 限流器故障时放行，不让 Redis 抖动放大为业务不可用。
func RateLimit(cfg config.RateLimitConfig, limiter *redis.RateLimiter) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			userID = c.ClientIP()
		}

		key := redis.BuildUserRateLimitKey(userID, c.FullPath())

		allowed, err := limiter.Allow(c.Request.Context(), key, cfg.Limit, cfg.Window)
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":     http.StatusTooManyRequests,
				"message":  "rate limit exceeded",
				"trace_id": c.GetString("trace_id"),
			})
			return
		}

		c.Next()
	}
}

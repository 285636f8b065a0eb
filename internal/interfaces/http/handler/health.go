// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"book-social-ai-api/internal/infrastructure/persistence/postgres"
	"book-social-ai-api/internal/infrastructure/persistence/redis"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	pg      *postgres.Client
	redis   *redis.Client
	version string
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(pg *postgres.Client, redisClient *redis.Client, version string) *HealthHandler {
	return &HealthHandler{
		pg:      pg,
		redis:   redisClient,
		version: version,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// Live 存活探针
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready 就绪探针：依赖全部可达才返回 200
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]*readinessCheck{
		"postgres": h.check(ctx, func(ctx context.Context) error { return h.pg.HealthCheck(ctx) }),
		"redis":    h.check(ctx, func(ctx context.Context) error { return h.redis.HealthCheck(ctx) }),
	}

	status := "ready"
	code := http.StatusOK
	for _, chk := range checks {
		if chk.Status != "ok" {
			status = "not_ready"
			code = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(code, readinessResponse{Status: status, Checks: checks})
}

func (h *HealthHandler) check(ctx context.Context, fn func(context.Context) error) *readinessCheck {
	start := time.Now()
	if err := fn(ctx); err != nil {
		return &readinessCheck{
			Status:    "down",
			Error:     err.Error(),
			LatencyMs: time.Since(start).Milliseconds(),
		}
	}
	return &readinessCheck{
		Status:    "ok",
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

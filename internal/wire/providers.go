// Package wire 提供依赖注入配置
package wire

import (
	"book-social-ai-api/internal/application/analysis"
	"book-social-ai-api/internal/application/content"
	"book-social-ai-api/internal/config"
	"book-social-ai-api/internal/domain/repository"
	"book-social-ai-api/internal/infrastructure/messaging"
	"book-social-ai-api/internal/infrastructure/persistence/postgres"
	"book-social-ai-api/internal/infrastructure/persistence/redis"
	"book-social-ai-api/internal/interfaces/http/handler"
	workflowport "book-social-ai-api/internal/workflow/port"
	"book-social-ai-api/pkg/retry"
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	return messaging.NewProducer(redisClient.Redis(), int64(cfg.Messaging.RedisStream.MaxLen))
}

// ProvideRetryTracker 提供进程级重试状态跟踪器
func ProvideRetryTracker() *retry.Tracker {
	return retry.NewTracker()
}

// ProvideOrchestrator 提供书籍分析编排器
func ProvideOrchestrator(
	completer workflowport.Completer,
	cache repository.ResultCache,
	repo repository.AnalysisRepository,
	tracker *retry.Tracker,
	cfg *config.Config,
) *analysis.Orchestrator {
	return analysis.NewOrchestrator(completer, cache, repo, tracker, cfg.Analysis, cfg.Cache.TTL)
}

// ProvideContentGenerator 提供社交内容生成器
func ProvideContentGenerator(
	completer workflowport.Completer,
	tracker *retry.Tracker,
	cfg *config.Config,
) *content.Generator {
	return content.NewGenerator(completer, tracker, cfg.Content)
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(pg *postgres.Client, redisClient *redis.Client, cfg *config.Config) *handler.HealthHandler {
	return handler.NewHealthHandler(pg, redisClient, cfg.App.Version)
}

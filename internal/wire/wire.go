//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"book-social-ai-api/internal/config"
	"book-social-ai-api/internal/domain/repository"
	"book-social-ai-api/internal/infrastructure/llm"
	"book-social-ai-api/internal/infrastructure/messaging"
	"book-social-ai-api/internal/infrastructure/persistence/postgres"
	"book-social-ai-api/internal/infrastructure/persistence/redis"
	"book-social-ai-api/internal/interfaces/http/handler"
	"book-social-ai-api/internal/interfaces/http/router"
	"book-social-ai-api/internal/workflow/chain"
	workflowport "book-social-ai-api/internal/workflow/port"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		WorkflowSet,
		ApplicationSet,
		RouterSet,
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewAnalysisRepository,
	postgres.NewContentRepository,
	postgres.NewJobRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.AnalysisRepository), new(*postgres.AnalysisRepository)),
	wire.Bind(new(repository.ContentRepository), new(*postgres.ContentRepository)),
	wire.Bind(new(repository.JobRepository), new(*postgres.JobRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(repository.ResultCache), new(*redis.Cache)),
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
)

// WorkflowSet LLM 工作流提供者集合
var WorkflowSet = wire.NewSet(
	llm.NewEinoFactory,
	chain.NewCompletionChain,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	wire.Bind(new(workflowport.Completer), new(*chain.CompletionChain)),
)

// ApplicationSet 应用服务提供者集合
var ApplicationSet = wire.NewSet(
	ProvideRetryTracker,
	ProvideOrchestrator,
	ProvideContentGenerator,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewAnalysisHandler,
	handler.NewContentHandler,
	handler.NewJobHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

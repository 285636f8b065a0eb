// Package main 异步任务执行器入口（job-worker）
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"book-social-ai-api/internal/application/analysis"
	"book-social-ai-api/internal/application/content"
	"book-social-ai-api/internal/config"
	"book-social-ai-api/internal/domain/entity"
	"book-social-ai-api/internal/domain/repository"
	"book-social-ai-api/internal/infrastructure/llm"
	"book-social-ai-api/internal/infrastructure/messaging"
	"book-social-ai-api/internal/infrastructure/persistence/postgres"
	"book-social-ai-api/internal/infrastructure/persistence/redis"
	einoobs "book-social-ai-api/internal/observability/eino"
	"book-social-ai-api/internal/workflow/chain"
	"book-social-ai-api/pkg/logger"
	"book-social-ai-api/pkg/retry"
	"book-social-ai-api/pkg/tracer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "job-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	einoobs.Init()

	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to init postgres", err)
	}
	defer func() { _ = pgClient.Close() }()

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to init redis", err)
	}
	defer func() { _ = redisClient.Close() }()

	jobRepo := postgres.NewJobRepository(pgClient)
	analysisRepo := postgres.NewAnalysisRepository(pgClient)
	contentRepo := postgres.NewContentRepository(pgClient)
	cache := redis.NewCache(redisClient)

	completer := chain.NewCompletionChain(llm.NewEinoFactory(cfg))
	tracker := retry.NewTracker()
	orchestrator := analysis.NewOrchestrator(completer, cache, analysisRepo, tracker, cfg.Analysis, cfg.Cache.TTL)
	generator := content.NewGenerator(completer, tracker, cfg.Content)

	w := &worker{
		jobRepo:      jobRepo,
		analysisRepo: analysisRepo,
		contentRepo:  contentRepo,
		cache:        cache,
		orchestrator: orchestrator,
		generator:    generator,
	}

	analysisConsumer := newConsumer(redisClient, cfg, messaging.StreamBookAnalysis, messaging.ConsumerGroupAnalysisWorker)
	analysisConsumer.RegisterHandler(messaging.MsgTypeBookAnalysis, w.handleAnalysisJob)

	contentConsumer := newConsumer(redisClient, cfg, messaging.StreamContentGen, messaging.ConsumerGroupContentWorker)
	contentConsumer.RegisterHandler(messaging.MsgTypeContentGen, w.handleContentJob)

	if err := analysisConsumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start analysis consumer", err)
	}
	if err := contentConsumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start content consumer", err)
	}

	log := logger.FromContext(ctx)
	log.Info("job-worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("job-worker shutting down")
	analysisConsumer.Stop()
	contentConsumer.Stop()
}

func newConsumer(redisClient *redis.Client, cfg *config.Config, stream messaging.Stream, group messaging.ConsumerGroup) *messaging.Consumer {
	return messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:       stream,
		Group:        group,
		ConsumerName: hostnameConsumerName(),
		BlockTimeout: cfg.Messaging.RedisStream.BlockTimeout,
		RetryLimit:   cfg.Messaging.RedisStream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})
}

// worker 消费流消息并驱动任务状态机：
// pending -> running -> completed | failed
type worker struct {
	jobRepo      *postgres.JobRepository
	analysisRepo *postgres.AnalysisRepository
	contentRepo  *postgres.ContentRepository
	cache        *redis.Cache
	orchestrator *analysis.Orchestrator
	generator    *content.Generator
}

func (w *worker) handleAnalysisJob(ctx context.Context, msg *messaging.Message) error {
	var payload messaging.AnalysisJobMessage
	if err := msg.UnmarshalPayload(&payload); err != nil {
		return err
	}

	job, err := w.jobRepo.GetByID(ctx, payload.JobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job not found: %s", payload.JobID)
	}
	if job.Status == entity.JobStatusCancelled || job.Status == entity.JobStatusCompleted {
		return nil
	}

	if err := w.jobRepo.MarkRunning(ctx, payload.JobID); err != nil {
		return err
	}
	_ = w.jobRepo.UpdateProgress(ctx, payload.JobID, 10)

	result, err := w.orchestrator.Analyze(
		ctx,
		payload.Text, payload.BookID, payload.UserID, payload.Title, payload.Author,
		&analysis.Options{
			Provider:         payload.Provider,
			ChapterSummaries: payload.ChapterSummaries,
		},
	)
	if err != nil {
		// 分析失败是终态，不抛回消费者重试：重试由编排器内部完成
		if setErr := w.jobRepo.SetResult(ctx, payload.JobID, nil, err.Error()); setErr != nil {
			return setErr
		}
		return nil
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return w.jobRepo.SetResult(ctx, payload.JobID, nil, "failed to encode analysis result")
	}
	return w.jobRepo.SetResult(ctx, payload.JobID, encoded, "")
}

func (w *worker) handleContentJob(ctx context.Context, msg *messaging.Message) error {
	var payload messaging.ContentJobMessage
	if err := msg.UnmarshalPayload(&payload); err != nil {
		return err
	}

	job, err := w.jobRepo.GetByID(ctx, payload.JobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job not found: %s", payload.JobID)
	}
	if job.Status == entity.JobStatusCancelled || job.Status == entity.JobStatusCompleted {
		return nil
	}

	record, err := w.analysisRepo.GetByBookUser(ctx, payload.BookID, payload.UserID)
	if err != nil {
		return err
	}
	if record == nil || record.Status != entity.AnalysisStatusComplete || record.Result == nil {
		if setErr := w.jobRepo.SetResult(ctx, payload.JobID, nil, "analysis not found, analyze the book first"); setErr != nil {
			return setErr
		}
		return nil
	}

	if err := w.jobRepo.MarkRunning(ctx, payload.JobID); err != nil {
		return err
	}
	_ = w.jobRepo.UpdateProgress(ctx, payload.JobID, 10)

	platforms := make([]entity.Platform, 0, len(payload.Platforms))
	for _, p := range payload.Platforms {
		platforms = append(platforms, entity.Platform(p))
	}

	variations, err := w.generator.Generate(ctx, record.Result, record.Title, payload.BookID, payload.UserID, record.Author, &content.Options{
		Platforms:           platforms,
		VariationsPerSource: payload.VariationsPerSource,
		Tone:                entity.Tone(payload.Tone),
		IncludeImages:       payload.IncludeImages,
		Provider:            payload.Provider,
	})
	if err != nil {
		if setErr := w.jobRepo.SetResult(ctx, payload.JobID, nil, err.Error()); setErr != nil {
			return setErr
		}
		return nil
	}
	_ = w.jobRepo.UpdateProgress(ctx, payload.JobID, 80)

	records := make([]*entity.ContentVariationRecord, 0, len(variations))
	for _, v := range variations {
		records = append(records, &entity.ContentVariationRecord{
			BookID:        payload.BookID,
			UserID:        payload.UserID,
			SourceType:    v.SourceType,
			SourceContent: v.SourceContent,
			Posts:         v.Posts,
		})
	}
	if err := w.contentRepo.SaveVariations(ctx, records); err != nil {
		return err
	}
	// 新变体落库，列表首页缓存作废
	if err := w.cache.Delete(ctx, repository.ContentCacheKey(payload.BookID, payload.UserID)); err != nil {
		logger.FromContext(ctx).Warn("failed to invalidate content list cache", "error", err, "book_id", payload.BookID)
	}

	encoded, err := json.Marshal(map[string]any{
		"variation_count": len(variations),
		"variations":      variations,
	})
	if err != nil {
		return w.jobRepo.SetResult(ctx, payload.JobID, nil, "failed to encode content result")
	}
	return w.jobRepo.SetResult(ctx, payload.JobID, encoded, "")
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"book-social-ai-api/internal/application/analysis"
	"book-social-ai-api/internal/config"
	"book-social-ai-api/internal/domain/entity"
	"book-social-ai-api/internal/domain/repository"
	"book-social-ai-api/internal/infrastructure/messaging"
	"book-social-ai-api/internal/interfaces/http/dto"
	apperrors "book-social-ai-api/pkg/errors"
	"book-social-ai-api/pkg/logger"
)

// AnalysisHandler 书籍分析处理器
type AnalysisHandler struct {
	orchestrator *analysis.Orchestrator
	analysisRepo repository.AnalysisRepository
	jobRepo      repository.JobRepository
	producer     *messaging.Producer
	cfg          *config.Config
}

// NewAnalysisHandler 创建书籍分析处理器
func NewAnalysisHandler(
	orchestrator *analysis.Orchestrator,
	analysisRepo repository.AnalysisRepository,
	jobRepo repository.JobRepository,
	producer *messaging.Producer,
	cfg *config.Config,
) *AnalysisHandler {
	return &AnalysisHandler{
		orchestrator: orchestrator,
		analysisRepo: analysisRepo,
		jobRepo:      jobRepo,
		producer:     producer,
		cfg:          cfg,
	}
}

// Analyze 提交书籍分析。
// 同步模式直接返回结构化结果；async=true 时入队异步执行，
// 幂等键命中已有任务则原样返回该任务。
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req dto.AnalyzeBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	provider, err := resolveProvider(h.cfg, req.Provider)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	if req.Async {
		h.enqueue(c, &req, provider)
		return
	}

	result, err := h.orchestrator.Analyze(
		c.Request.Context(),
		req.Text, req.BookID, req.UserID, req.Title, req.Author,
		&analysis.Options{
			Provider:         provider,
			ChapterSummaries: req.ChapterSummaries,
		},
	)
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.Success(c, dto.AnalysisResponse{
		BookID: req.BookID,
		UserID: req.UserID,
		Title:  req.Title,
		Author: req.Author,
		Status: entity.AnalysisStatusComplete,
		Result: result,
	})
}

// enqueue 创建异步分析任务并发布到消息流
func (h *AnalysisHandler) enqueue(c *gin.Context, req *dto.AnalyzeBookRequest, provider string) {
	ctx := c.Request.Context()

	if req.IdempotencyKey != "" {
		existing, err := h.jobRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			dto.FromError(c, err)
			return
		}
		if existing != nil {
			dto.Accepted(c, dto.NewJobResponse(existing))
			return
		}
	}

	params, err := json.Marshal(map[string]any{
		"title":             req.Title,
		"author":            req.Author,
		"provider":          provider,
		"chapter_summaries": req.ChapterSummaries,
		"text_length":       len(req.Text),
	})
	if err != nil {
		dto.InternalError(c, "failed to encode job params")
		return
	}

	job := entity.NewGenerationJob(req.BookID, req.UserID, entity.JobTypeBookAnalysis, params)
	job.IdempotencyKey = req.IdempotencyKey
	job.LLMProvider = provider
	if err := h.jobRepo.Create(ctx, job); err != nil {
		dto.FromError(c, err)
		return
	}

	_, err = h.producer.PublishAnalysisJob(ctx, &messaging.AnalysisJobMessage{
		JobID:            job.ID,
		BookID:           req.BookID,
		UserID:           req.UserID,
		Title:            req.Title,
		Author:           req.Author,
		Text:             req.Text,
		Provider:         provider,
		ChapterSummaries: req.ChapterSummaries,
		IdempotencyKey:   req.IdempotencyKey,
	})
	if err != nil {
		// 任务已落库但未入队，标记失败便于调用方重试
		logger.Error(ctx, "failed to publish analysis job", err, "job_id", job.ID)
		if setErr := h.jobRepo.SetResult(ctx, job.ID, nil, "failed to enqueue job"); setErr != nil {
			logger.Error(ctx, "failed to mark job as failed", setErr, "job_id", job.ID)
		}
		dto.ServiceUnavailable(c, "failed to enqueue analysis job")
		return
	}

	dto.Accepted(c, dto.NewJobResponse(job))
}

// Get 查询某本书最近一次分析
func (h *AnalysisHandler) Get(c *gin.Context) {
	bookID := c.Param("bookId")
	userID := c.Query("user_id")
	if userID == "" {
		dto.BadRequest(c, "user_id is required")
		return
	}

	record, err := h.analysisRepo.GetByBookUser(c.Request.Context(), bookID, userID)
	if err != nil {
		dto.FromError(c, err)
		return
	}
	if record == nil {
		dto.FromError(c, apperrors.ErrAnalysisNotFound)
		return
	}

	dto.Success(c, dto.NewAnalysisResponse(record))
}

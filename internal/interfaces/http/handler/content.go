package handler

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"

	"book-social-ai-api/internal/application/content"
	"book-social-ai-api/internal/config"
	"book-social-ai-api/internal/domain/entity"
	"book-social-ai-api/internal/domain/repository"
	"book-social-ai-api/internal/infrastructure/messaging"
	"book-social-ai-api/internal/interfaces/http/dto"
	apperrors "book-social-ai-api/pkg/errors"
	"book-social-ai-api/pkg/logger"
)

// 内容列表只缓存默认分页的首页，其余分页直查数据库
const defaultContentPageSize = 20

// ContentHandler 社交内容生成处理器
type ContentHandler struct {
	generator    *content.Generator
	analysisRepo repository.AnalysisRepository
	contentRepo  repository.ContentRepository
	jobRepo      repository.JobRepository
	cache        repository.ResultCache
	producer     *messaging.Producer
	cfg          *config.Config
}

// NewContentHandler 创建内容生成处理器
func NewContentHandler(
	generator *content.Generator,
	analysisRepo repository.AnalysisRepository,
	contentRepo repository.ContentRepository,
	jobRepo repository.JobRepository,
	cache repository.ResultCache,
	producer *messaging.Producer,
	cfg *config.Config,
) *ContentHandler {
	return &ContentHandler{
		generator:    generator,
		analysisRepo: analysisRepo,
		contentRepo:  contentRepo,
		jobRepo:      jobRepo,
		cache:        cache,
		producer:     producer,
		cfg:          cfg,
	}
}

// Generate 基于已完成的分析结果生成跨平台内容。
// 书籍尚未分析或分析未完成时返回 404，提示调用方先提交分析。
func (h *ContentHandler) Generate(c *gin.Context) {
	var req dto.GenerateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	platforms, ok := dto.ParsePlatforms(req.Platforms)
	if !ok {
		dto.BadRequest(c, "unknown platform in platforms list")
		return
	}

	provider, err := resolveProvider(h.cfg, req.Provider)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	record, err := h.analysisRepo.GetByBookUser(ctx, req.BookID, req.UserID)
	if err != nil {
		dto.FromError(c, err)
		return
	}
	if record == nil || record.Status != entity.AnalysisStatusComplete || record.Result == nil {
		dto.FromError(c, apperrors.ErrAnalysisNotFound.WithDetail("analyze the book before generating content"))
		return
	}

	if req.Async {
		h.enqueue(c, &req, provider)
		return
	}

	variations, err := h.generator.Generate(ctx, record.Result, record.Title, req.BookID, req.UserID, record.Author, &content.Options{
		Platforms:           platforms,
		VariationsPerSource: req.VariationsPerSource,
		Tone:                entity.Tone(req.Tone),
		IncludeImages:       req.IncludeImages,
		Provider:            provider,
	})
	if err != nil {
		dto.FromError(c, err)
		return
	}

	h.persistVariations(c, req.BookID, req.UserID, variations)
	h.invalidateListCache(ctx, req.BookID, req.UserID)

	dto.Success(c, dto.ContentGenerationResponse{
		BookID:     req.BookID,
		UserID:     req.UserID,
		Variations: variations,
	})
}

// persistVariations 落库生成结果。持久化失败不影响响应，结果已在响应体里。
func (h *ContentHandler) persistVariations(c *gin.Context, bookID, userID string, variations []entity.ContentVariation) {
	ctx := c.Request.Context()

	records := make([]*entity.ContentVariationRecord, 0, len(variations))
	for _, v := range variations {
		records = append(records, &entity.ContentVariationRecord{
			BookID:        bookID,
			UserID:        userID,
			SourceType:    v.SourceType,
			SourceContent: v.SourceContent,
			Posts:         v.Posts,
		})
	}

	if err := h.contentRepo.SaveVariations(ctx, records); err != nil {
		logger.Error(ctx, "failed to persist content variations", err,
			"book_id", bookID,
			"count", len(records),
		)
	}
}

// enqueue 创建异步内容生成任务并发布到消息流
func (h *ContentHandler) enqueue(c *gin.Context, req *dto.GenerateContentRequest, provider string) {
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
		"platforms":             req.Platforms,
		"tone":                  req.Tone,
		"include_images":        req.IncludeImages,
		"variations_per_source": req.VariationsPerSource,
		"provider":              provider,
	})
	if err != nil {
		dto.InternalError(c, "failed to encode job params")
		return
	}

	job := entity.NewGenerationJob(req.BookID, req.UserID, entity.JobTypeContentGen, params)
	job.IdempotencyKey = req.IdempotencyKey
	job.LLMProvider = provider
	if err := h.jobRepo.Create(ctx, job); err != nil {
		dto.FromError(c, err)
		return
	}

	_, err = h.producer.PublishContentJob(ctx, &messaging.ContentJobMessage{
		JobID:               job.ID,
		BookID:              req.BookID,
		UserID:              req.UserID,
		Platforms:           req.Platforms,
		Tone:                req.Tone,
		IncludeImages:       req.IncludeImages,
		VariationsPerSource: req.VariationsPerSource,
		Provider:            provider,
		IdempotencyKey:      req.IdempotencyKey,
	})
	if err != nil {
		logger.Error(ctx, "failed to publish content job", err, "job_id", job.ID)
		if setErr := h.jobRepo.SetResult(ctx, job.ID, nil, "failed to enqueue job"); setErr != nil {
			logger.Error(ctx, "failed to mark job as failed", setErr, "job_id", job.ID)
		}
		dto.ServiceUnavailable(c, "failed to enqueue content job")
		return
	}

	dto.Accepted(c, dto.NewJobResponse(job))
}

// cachedContentPage 内容列表首页的缓存载荷
type cachedContentPage struct {
	Items []dto.ContentVariationItem `json:"items"`
	Total int64                      `json:"total"`
}

// List 分页列出某本书已生成的内容变体。
// 默认分页的首页走 Read-Through 缓存，新生成内容时由写方失效。
func (h *ContentHandler) List(c *gin.Context) {
	bookID := c.Param("bookId")
	userID := c.Query("user_id")
	if userID == "" {
		dto.BadRequest(c, "user_id is required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	p := repository.NewPagination(page, pageSize)
	ctx := c.Request.Context()

	if h.cache != nil && p.Page == 1 && p.PageSize == defaultContentPageSize {
		if cached, ok := h.loadListPage(ctx, bookID, userID, p); ok {
			dto.SuccessWithPage(c, cached.Items, dto.NewPageMeta(p.Page, p.PageSize, int(cached.Total)))
			return
		}
	}

	records, total, err := h.contentRepo.ListByBookUser(ctx, bookID, userID, p)
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.SuccessWithPage(c, dto.NewContentVariationItems(records), dto.NewPageMeta(p.Page, p.PageSize, int(total)))
}

// loadListPage 经缓存装载列表首页，缓存故障时返回 ok=false 落回直查
func (h *ContentHandler) loadListPage(ctx context.Context, bookID, userID string, p repository.Pagination) (cachedContentPage, bool) {
	raw, err := h.cache.GetOrLoadSafe(ctx, repository.ContentCacheKey(bookID, userID), h.cfg.Cache.TTL, func() (any, error) {
		records, total, err := h.contentRepo.ListByBookUser(ctx, bookID, userID, p)
		if err != nil {
			return nil, err
		}
		return cachedContentPage{Items: dto.NewContentVariationItems(records), Total: total}, nil
	})
	if err != nil {
		logger.FromContext(ctx).Warn("content list cache unavailable, falling back to direct query", "error", err)
		return cachedContentPage{}, false
	}

	var page cachedContentPage
	if err := json.Unmarshal(raw, &page); err != nil {
		logger.FromContext(ctx).Warn("content list cache entry corrupt, falling back to direct query", "error", err)
		return cachedContentPage{}, false
	}
	return page, true
}

// invalidateListCache 新变体落库后使列表缓存失效，下一次 List 重新装载
func (h *ContentHandler) invalidateListCache(ctx context.Context, bookID, userID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Delete(ctx, repository.ContentCacheKey(bookID, userID)); err != nil {
		logger.FromContext(ctx).Warn("failed to invalidate content list cache", "error", err,
			"book_id", bookID,
		)
	}
}

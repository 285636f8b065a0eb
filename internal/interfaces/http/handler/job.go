package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"book-social-ai-api/internal/domain/repository"
	"book-social-ai-api/internal/interfaces/http/dto"
	apperrors "book-social-ai-api/pkg/errors"
)

// JobHandler 异步任务查询处理器
type JobHandler struct {
	jobRepo repository.JobRepository
}

// NewJobHandler 创建任务查询处理器
func NewJobHandler(jobRepo repository.JobRepository) *JobHandler {
	return &JobHandler{jobRepo: jobRepo}
}

// Get 查询任务状态
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobRepo.GetByID(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		dto.FromError(c, err)
		return
	}
	if job == nil {
		dto.FromError(c, apperrors.ErrJobNotFound)
		return
	}

	dto.Success(c, dto.NewJobResponse(job))
}

// ListByBook 分页列出某本书的任务
func (h *JobHandler) ListByBook(c *gin.Context) {
	bookID := c.Param("bookId")
	userID := c.Query("user_id")
	if userID == "" {
		dto.BadRequest(c, "user_id is required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	p := repository.NewPagination(page, pageSize)

	jobs, total, err := h.jobRepo.ListByBookUser(c.Request.Context(), bookID, userID, p)
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.SuccessWithPage(c, dto.NewJobResponses(jobs), dto.NewPageMeta(p.Page, p.PageSize, int(total)))
}

package dto

import (
	"time"

	"book-social-ai-api/internal/domain/entity"
)

// AnalyzeBookRequest 书籍分析请求
type AnalyzeBookRequest struct {
	// BookID 书籍标识，由调用方维护
	BookID string `json:"book_id" binding:"required,max=64"`
	// UserID 请求用户标识
	UserID string `json:"user_id" binding:"required,max=64"`
	// Title 书名
	Title string `json:"title" binding:"required,max=255"`
	// Author 作者，可为空
	Author string `json:"author" binding:"max=255"`
	// Text 书籍正文全文
	Text string `json:"text" binding:"required"`
	// Provider 指定 LLM 提供商，空值使用默认
	Provider string `json:"provider" binding:"max=32"`
	// ChapterSummaries 是否生成章节摘要，缺省跟随服务端配置
	ChapterSummaries *bool `json:"chapter_summaries"`
	// Async 为 true 时入队异步执行，立即返回任务 ID
	Async bool `json:"async"`
	// IdempotencyKey 异步模式下的幂等键，重复提交返回同一任务
	IdempotencyKey string `json:"idempotency_key" binding:"max=128"`
}

// AnalysisResponse 分析结果响应
type AnalysisResponse struct {
	BookID    string                     `json:"book_id"`
	UserID    string                     `json:"user_id"`
	Title     string                     `json:"title"`
	Author    string                     `json:"author,omitempty"`
	Status    entity.AnalysisStatus      `json:"status"`
	Result    *entity.BookAnalysisResult `json:"result,omitempty"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// NewAnalysisResponse 从持久化记录构造响应
func NewAnalysisResponse(record *entity.BookAnalysisRecord) AnalysisResponse {
	return AnalysisResponse{
		BookID:    record.BookID,
		UserID:    record.UserID,
		Title:     record.Title,
		Author:    record.Author,
		Status:    record.Status,
		Result:    record.Result,
		UpdatedAt: record.UpdatedAt,
	}
}

// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"book-social-ai-api/internal/domain/entity"
)

// AnalysisRepository 分析记录仓储接口
type AnalysisRepository interface {
	// Create 创建分析记录
	Create(ctx context.Context, record *entity.BookAnalysisRecord) error

	// GetByBookUser 按 (bookID, userID) 查找最近一条分析记录，未找到返回 nil
	GetByBookUser(ctx context.Context, bookID, userID string) (*entity.BookAnalysisRecord, error)

	// Update 更新分析记录
	Update(ctx context.Context, record *entity.BookAnalysisRecord) error
}

// ContentRepository 内容变体仓储接口
type ContentRepository interface {
	// SaveVariations 批量保存内容变体
	SaveVariations(ctx context.Context, records []*entity.ContentVariationRecord) error

	// ListByBookUser 按 (bookID, userID) 列出内容变体
	ListByBookUser(ctx context.Context, bookID, userID string, p Pagination) ([]*entity.ContentVariationRecord, int64, error)
}

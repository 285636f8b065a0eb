// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"book-social-ai-api/internal/domain/entity"
)

// AnalysisRepository 分析记录仓储实现
type AnalysisRepository struct {
	client *Client
}

// NewAnalysisRepository 创建分析记录仓储
func NewAnalysisRepository(client *Client) *AnalysisRepository {
	return &AnalysisRepository{client: client}
}

// Create 创建分析记录
func (r *AnalysisRepository) Create(ctx context.Context, record *entity.BookAnalysisRecord) error {
	ctx, span := tracer.Start(ctx, "postgres.AnalysisRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(record).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create analysis record: %w", err)
	}
	return nil
}

// GetByBookUser 按 (bookID, userID) 查找最近一条分析记录，未找到返回 nil
func (r *AnalysisRepository) GetByBookUser(ctx context.Context, bookID, userID string) (*entity.BookAnalysisRecord, error) {
	ctx, span := tracer.Start(ctx, "postgres.AnalysisRepository.GetByBookUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var record entity.BookAnalysisRecord
	err := db.Where("book_id = ? AND user_id = ?", bookID, userID).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get analysis record: %w", err)
	}
	return &record, nil
}

// Update 更新分析记录
func (r *AnalysisRepository) Update(ctx context.Context, record *entity.BookAnalysisRecord) error {
	ctx, span := tracer.Start(ctx, "postgres.AnalysisRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(record).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update analysis record: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"book-social-ai-api/internal/domain/entity"
	"book-social-ai-api/internal/domain/repository"
)

// ContentRepository 内容变体仓储实现
type ContentRepository struct {
	client *Client
}

// NewContentRepository 创建内容变体仓储
func NewContentRepository(client *Client) *ContentRepository {
	return &ContentRepository{client: client}
}

// SaveVariations 批量保存内容变体
func (r *ContentRepository) SaveVariations(ctx context.Context, records []*entity.ContentVariationRecord) error {
	ctx, span := tracer.Start(ctx, "postgres.ContentRepository.SaveVariations")
	defer span.End()

	if len(records) == 0 {
		return nil
	}

	db := getDB(ctx, r.client.db)
	if err := db.Create(records).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save content variations: %w", err)
	}
	return nil
}

// ListByBookUser 按 (bookID, userID) 列出内容变体
func (r *ContentRepository) ListByBookUser(ctx context.Context, bookID, userID string, p repository.Pagination) ([]*entity.ContentVariationRecord, int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.ContentRepository.ListByBookUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.ContentVariationRecord{}).
		Where("book_id = ? AND user_id = ?", bookID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to count content variations: %w", err)
	}

	var records []*entity.ContentVariationRecord
	if err := query.Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit()).
		Find(&records).Error; err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to list content variations: %w", err)
	}

	return records, total, nil
}

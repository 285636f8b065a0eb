package dto

import (
	"time"

	"book-social-ai-api/internal/domain/entity"
)

// GenerateContentRequest 内容生成请求。
// 要求书籍已有完成的分析结果，否则返回 404。
type GenerateContentRequest struct {
	BookID string `json:"book_id" binding:"required,max=64"`
	UserID string `json:"user_id" binding:"required,max=64"`
	// Platforms 目标平台，空值生成全部四个平台
	Platforms []string `json:"platforms" binding:"max=4"`
	// VariationsPerSource 每个素材的变体数，0 使用服务端默认
	VariationsPerSource int `json:"variations_per_source" binding:"min=0,max=5"`
	// Tone 语气：professional / casual / inspirational / educational
	Tone string `json:"tone" binding:"max=20"`
	// IncludeImages 覆盖服务端的配图开关
	IncludeImages *bool `json:"include_images"`
	// Provider 指定 LLM 提供商
	Provider string `json:"provider" binding:"max=32"`
	// Async 为 true 时入队异步执行
	Async bool `json:"async"`
	// IdempotencyKey 异步模式下的幂等键
	IdempotencyKey string `json:"idempotency_key" binding:"max=128"`
}

// ParsePlatforms 解析平台列表，遇到非法平台返回 (nil, false)
func ParsePlatforms(raw []string) ([]entity.Platform, bool) {
	if len(raw) == 0 {
		return nil, true
	}
	out := make([]entity.Platform, 0, len(raw))
	for _, p := range raw {
		platform := entity.Platform(p)
		if _, ok := entity.ConstraintFor(platform); !ok {
			return nil, false
		}
		out = append(out, platform)
	}
	return out, true
}

// ContentGenerationResponse 内容生成响应
type ContentGenerationResponse struct {
	BookID     string                    `json:"book_id"`
	UserID     string                    `json:"user_id"`
	Variations []entity.ContentVariation `json:"variations"`
}

// ContentVariationItem 持久化内容变体的列表项
type ContentVariationItem struct {
	ID            string                 `json:"id"`
	SourceType    entity.SourceType      `json:"source_type"`
	SourceContent string                 `json:"source_content"`
	Posts         []entity.GeneratedPost `json:"posts"`
	CreatedAt     time.Time              `json:"created_at"`
}

// NewContentVariationItems 从持久化记录批量构造列表项
func NewContentVariationItems(records []*entity.ContentVariationRecord) []ContentVariationItem {
	items := make([]ContentVariationItem, 0, len(records))
	for _, r := range records {
		items = append(items, ContentVariationItem{
			ID:            r.ID,
			SourceType:    r.SourceType,
			SourceContent: r.SourceContent,
			Posts:         r.Posts,
			CreatedAt:     r.CreatedAt,
		})
	}
	return items
}

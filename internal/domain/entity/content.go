package entity

import (
	"time"
)

// SourceType 生成素材类型
type SourceType string

const (
	SourceTypeQuote      SourceType = "quote"
	SourceTypeInsight    SourceType = "insight"
	SourceTypeTheme      SourceType = "theme"
	SourceTypeSummary    SourceType = "summary"
	SourceTypeDiscussion SourceType = "discussion"
)

// Tone 生成语气
type Tone string

const (
	ToneProfessional  Tone = "professional"
	ToneCasual        Tone = "casual"
	ToneInspirational Tone = "inspirational"
	ToneEducational   Tone = "educational"
)

// IsValid 检查语气标识是否合法
func (t Tone) IsValid() bool {
	switch t {
	case ToneProfessional, ToneCasual, ToneInspirational, ToneEducational:
		return true
	default:
		return false
	}
}

// GeneratedPost 单平台生成结果。
// 约定：CharacterCount/IsValid/ValidationErrors 始终由校验统一重算，
// 不允许单独赋值。
type GeneratedPost struct {
	Platform            Platform `json:"platform"`
	Content             string   `json:"content"`
	Hashtags            []string `json:"hashtags"`
	ImageURL            string   `json:"image_url,omitempty"`
	CharacterCount      int      `json:"character_count"`
	IsValid             bool     `json:"is_valid"`
	ValidationErrors    []string `json:"validation_errors"`
	EngagementPotential int      `json:"engagement_potential,omitempty"`
	Fallback            bool     `json:"fallback,omitempty"`
}

// ContentVariation 一个素材派生的跨平台帖子组。
// 约定：组内所有帖子共享同一 SourceContent/SourceType，组不为空。
type ContentVariation struct {
	ID            string          `json:"id"`
	SourceType    SourceType      `json:"source_type"`
	SourceContent string          `json:"source_content"`
	Posts         []GeneratedPost `json:"posts"`
}

// ContentVariationRecord 持久化的内容变体
type ContentVariationRecord struct {
	ID            string          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookID        string          `json:"book_id" gorm:"type:varchar(64);index:idx_content_book_user;not null"`
	UserID        string          `json:"user_id" gorm:"type:varchar(64);index:idx_content_book_user;not null"`
	SourceType    SourceType      `json:"source_type" gorm:"type:varchar(20)"`
	SourceContent string          `json:"source_content" gorm:"type:text"`
	Posts         []GeneratedPost `json:"posts" gorm:"type:jsonb;serializer:json"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (ContentVariationRecord) TableName() string {
	return "content_variations"
}

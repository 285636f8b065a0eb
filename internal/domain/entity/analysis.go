package entity

import (
	"time"
)

// AnalysisStatus 分析状态机：pending -> analyzing -> complete | failed
type AnalysisStatus string

const (
	AnalysisStatusPending   AnalysisStatus = "pending"
	AnalysisStatusAnalyzing AnalysisStatus = "analyzing"
	AnalysisStatusComplete  AnalysisStatus = "complete"
	AnalysisStatusFailed    AnalysisStatus = "failed"
)

// 缺失字段的占位值。下游据此判断字段是否真实生成，
// 不要在展示层之外改写这些常量。
const (
	PlaceholderSummary  = "Summary not yet available for this book."
	PlaceholderGenre    = "General"
	PlaceholderAudience = "General readers"
)

// ChapterSummary 单章摘要。批量生成，生成后不可变。
type ChapterSummary struct {
	ChapterNumber int      `json:"chapter_number"`
	Title         string   `json:"title,omitempty"`
	Summary       string   `json:"summary"`
	KeyPoints     []string `json:"key_points"`
}

// BookAnalysisResult 书籍分析结果。
// 约定：归一化之后所有列表字段非 nil，字符串字段非空（缺失时为占位值）。
type BookAnalysisResult struct {
	Themes           []string         `json:"themes"`
	Quotes           []string         `json:"quotes"`
	KeyInsights      []string         `json:"key_insights"`
	ChapterSummaries []ChapterSummary `json:"chapter_summaries"`
	OverallSummary   string           `json:"overall_summary"`
	Genre            string           `json:"genre"`
	TargetAudience   string           `json:"target_audience"`
	DiscussionPoints []string         `json:"discussion_points"`
}

// BookAnalysisRecord 持久化的分析记录
type BookAnalysisRecord struct {
	ID           string              `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookID       string              `json:"book_id" gorm:"type:varchar(64);index:idx_analysis_book_user;not null"`
	UserID       string              `json:"user_id" gorm:"type:varchar(64);index:idx_analysis_book_user;not null"`
	Title        string              `json:"title" gorm:"type:varchar(255)"`
	Author       string              `json:"author,omitempty" gorm:"type:varchar(255)"`
	Status       AnalysisStatus      `json:"status" gorm:"type:varchar(20);default:'pending'"`
	Result       *BookAnalysisResult `json:"result,omitempty" gorm:"type:jsonb;serializer:json"`
	ErrorMessage string              `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt    time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (BookAnalysisRecord) TableName() string {
	return "book_analyses"
}

// NewBookAnalysisRecord 创建分析记录
func NewBookAnalysisRecord(bookID, userID, title, author string) *BookAnalysisRecord {
	now := time.Now()
	return &BookAnalysisRecord{
		BookID:    bookID,
		UserID:    userID,
		Title:     title,
		Author:    author,
		Status:    AnalysisStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StartAnalyzing 进入分析中状态
func (r *BookAnalysisRecord) StartAnalyzing() {
	r.Status = AnalysisStatusAnalyzing
	r.UpdatedAt = time.Now()
}

// Complete 写入结果并进入完成状态
func (r *BookAnalysisRecord) Complete(result *BookAnalysisResult) {
	r.Status = AnalysisStatusComplete
	r.Result = result
	r.ErrorMessage = ""
	r.UpdatedAt = time.Now()
}

// Fail 记录失败原因
func (r *BookAnalysisRecord) Fail(errMsg string) {
	r.Status = AnalysisStatusFailed
	r.ErrorMessage = errMsg
	r.UpdatedAt = time.Now()
}

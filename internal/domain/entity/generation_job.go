package entity

import (
	"encoding/json"
	"time"
)

// JobType 任务类型
type JobType string

const (
	JobTypeBookAnalysis JobType = "book_analysis"
	JobTypeContentGen   JobType = "content_gen"
)

// JobStatus 任务状态
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// GenerationJob 异步生成任务
type GenerationJob struct {
	ID             string          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookID         string          `json:"book_id" gorm:"type:varchar(64);index"`
	UserID         string          `json:"user_id" gorm:"type:varchar(64);index"`
	JobType        JobType         `json:"job_type" gorm:"type:varchar(32);not null"`
	Status         JobStatus       `json:"status" gorm:"type:varchar(20);default:'pending'"`
	InputParams    json.RawMessage `json:"input_params" gorm:"type:jsonb"`
	OutputResult   json.RawMessage `json:"output_result,omitempty" gorm:"type:jsonb"`
	ErrorMessage   string          `json:"error_message,omitempty" gorm:"type:text"`
	LLMProvider    string          `json:"llm_provider,omitempty" gorm:"type:varchar(32)"`
	LLMModel       string          `json:"llm_model,omitempty" gorm:"type:varchar(64)"`
	TokensPrompt   int             `json:"tokens_prompt,omitempty"`
	TokensComplete int             `json:"tokens_completion,omitempty"`
	DurationMs     int             `json:"duration_ms,omitempty"`
	RetryCount     int             `json:"retry_count"`
	Progress       int             `json:"progress"` // 任务进度 (0-100)
	IdempotencyKey string          `json:"idempotency_key,omitempty" gorm:"type:varchar(128);index"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	StartedAt      *time.Time      `json:"started_at,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

// TableName 指定表名
func (GenerationJob) TableName() string {
	return "generation_jobs"
}

// NewGenerationJob 创建新任务
func NewGenerationJob(bookID, userID string, jobType JobType, inputParams json.RawMessage) *GenerationJob {
	return &GenerationJob{
		BookID:      bookID,
		UserID:      userID,
		JobType:     jobType,
		Status:      JobStatusPending,
		InputParams: inputParams,
		RetryCount:  0,
		CreatedAt:   time.Now(),
	}
}

// Start 开始执行任务
func (j *GenerationJob) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
}

// Complete 完成任务
func (j *GenerationJob) Complete(result json.RawMessage) {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.OutputResult = result
	j.CompletedAt = &now
	if j.StartedAt != nil {
		j.DurationMs = int(now.Sub(*j.StartedAt).Milliseconds())
	}
}

// Fail 任务失败
func (j *GenerationJob) Fail(errMsg string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.CompletedAt = &now
	if j.StartedAt != nil {
		j.DurationMs = int(now.Sub(*j.StartedAt).Milliseconds())
	}
}

// Retry 重试任务
func (j *GenerationJob) Retry() {
	j.RetryCount++
	j.Status = JobStatusPending
	j.StartedAt = nil
	j.CompletedAt = nil
	j.ErrorMessage = ""
}

// CanRetry 检查是否可以重试
func (j *GenerationJob) CanRetry(maxRetries int) bool {
	return j.RetryCount < maxRetries && j.Status == JobStatusFailed
}

// SetLLMMetrics 设置 LLM 使用指标
func (j *GenerationJob) SetLLMMetrics(provider, model string, promptTokens, completionTokens int) {
	j.LLMProvider = provider
	j.LLMModel = model
	j.TokensPrompt = promptTokens
	j.TokensComplete = completionTokens
}

// UpdateProgress 更新任务进度
func (j *GenerationJob) UpdateProgress(progress int) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	j.Progress = progress
}

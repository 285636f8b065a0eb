package dto

import (
	"encoding/json"
	"time"

	"book-social-ai-api/internal/domain/entity"
)

// JobResponse 异步任务响应
type JobResponse struct {
	ID           string           `json:"id"`
	BookID       string           `json:"book_id"`
	UserID       string           `json:"user_id"`
	JobType      entity.JobType   `json:"job_type"`
	Status       entity.JobStatus `json:"status"`
	Progress     int              `json:"progress"`
	Result       json.RawMessage  `json:"result,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	StartedAt    *time.Time       `json:"started_at,omitempty"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}

// NewJobResponse 从任务实体构造响应
func NewJobResponse(job *entity.GenerationJob) JobResponse {
	return JobResponse{
		ID:           job.ID,
		BookID:       job.BookID,
		UserID:       job.UserID,
		JobType:      job.JobType,
		Status:       job.Status,
		Progress:     job.Progress,
		Result:       job.OutputResult,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		StartedAt:    job.StartedAt,
		CompletedAt:  job.CompletedAt,
	}
}

// NewJobResponses 批量构造任务响应
func NewJobResponses(jobs []*entity.GenerationJob) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, NewJobResponse(job))
	}
	return out
}

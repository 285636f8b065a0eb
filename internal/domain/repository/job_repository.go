// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"book-social-ai-api/internal/domain/entity"
)

// JobRepository 生成任务仓储接口
type JobRepository interface {
	// Create 创建任务
	Create(ctx context.Context, job *entity.GenerationJob) error

	// GetByID 根据 ID 获取任务
	GetByID(ctx context.Context, id string) (*entity.GenerationJob, error)

	// GetByIdempotencyKey 按幂等键查找任务，未找到返回 nil
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.GenerationJob, error)

	// Update 更新任务
	Update(ctx context.Context, job *entity.GenerationJob) error

	// MarkRunning 标记任务开始执行
	MarkRunning(ctx context.Context, id string) error

	// UpdateProgress 更新任务进度
	UpdateProgress(ctx context.Context, id string, progress int) error

	// SetResult 写入任务结果或错误
	SetResult(ctx context.Context, id string, result []byte, errMsg string) error

	// ListByBookUser 列出某本书的任务
	ListByBookUser(ctx context.Context, bookID, userID string, p Pagination) ([]*entity.GenerationJob, int64, error)
}

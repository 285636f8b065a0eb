package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"book-social-ai-api/internal/domain/entity"
	"book-social-ai-api/internal/domain/repository"
)

// JobRepository 生成任务仓储实现
type JobRepository struct {
	client *Client
}

// NewJobRepository 创建任务仓储
func NewJobRepository(client *Client) *JobRepository {
	return &JobRepository{client: client}
}

// Create 创建任务
func (r *JobRepository) Create(ctx context.Context, job *entity.GenerationJob) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(job).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取任务，未找到返回 nil
func (r *JobRepository) GetByID(ctx context.Context, id string) (*entity.GenerationJob, error) {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var job entity.GenerationJob
	if err := db.First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// GetByIdempotencyKey 按幂等键查找任务，未找到返回 nil
func (r *JobRepository) GetByIdempotencyKey(ctx context.Context, key string) (*entity.GenerationJob, error) {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.GetByIdempotencyKey")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var job entity.GenerationJob
	err := db.Where("idempotency_key = ?", key).
		Order("created_at DESC").
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get job by idempotency key: %w", err)
	}
	return &job, nil
}

// Update 更新任务
func (r *JobRepository) Update(ctx context.Context, job *entity.GenerationJob) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(job).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}

// MarkRunning 标记任务开始执行
func (r *JobRepository) MarkRunning(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.MarkRunning")
	defer span.End()

	now := time.Now()
	db := getDB(ctx, r.client.db)
	err := db.Model(&entity.GenerationJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     entity.JobStatusRunning,
			"started_at": &now,
		}).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to mark job running: %w", err)
	}
	return nil
}

// UpdateProgress 更新任务进度
func (r *JobRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.UpdateProgress")
	defer span.End()

	db := getDB(ctx, r.client.db)
	err := db.Model(&entity.GenerationJob{}).
		Where("id = ?", id).
		Update("progress", progress).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update job progress: %w", err)
	}
	return nil
}

// SetResult 写入任务结果或错误
func (r *JobRepository) SetResult(ctx context.Context, id string, result []byte, errMsg string) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.SetResult")
	defer span.End()

	now := time.Now()
	updates := map[string]any{
		"completed_at": &now,
	}
	if errMsg != "" {
		updates["status"] = entity.JobStatusFailed
		updates["error_message"] = errMsg
	} else {
		updates["status"] = entity.JobStatusCompleted
		updates["output_result"] = result
		updates["progress"] = 100
	}

	db := getDB(ctx, r.client.db)
	err := db.Model(&entity.GenerationJob{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to set job result: %w", err)
	}
	return nil
}

// ListByBookUser 列出某本书的任务
func (r *JobRepository) ListByBookUser(ctx context.Context, bookID, userID string, p repository.Pagination) ([]*entity.GenerationJob, int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.ListByBookUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.GenerationJob{}).
		Where("book_id = ? AND user_id = ?", bookID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	var jobs []*entity.GenerationJob
	if err := query.Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit()).
		Find(&jobs).Error; err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, total, nil
}

package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishAnalysisJob 发布书籍分析任务
func (p *Producer) PublishAnalysisJob(ctx context.Context, job *AnalysisJobMessage) (string, error) {
	msg, err := NewMessage(job.JobID, MsgTypeBookAnalysis, job.BookID, job.UserID, job)
	if err != nil {
		return "", err
	}

	if job.IdempotencyKey != "" {
		msg.SetMetadata("idempotency_key", job.IdempotencyKey)
	}
	return p.Publish(ctx, StreamBookAnalysis, msg)
}

// PublishContentJob 发布内容生成任务
func (p *Producer) PublishContentJob(ctx context.Context, job *ContentJobMessage) (string, error) {
	msg, err := NewMessage(job.JobID, MsgTypeContentGen, job.BookID, job.UserID, job)
	if err != nil {
		return "", err
	}

	if job.IdempotencyKey != "" {
		msg.SetMetadata("idempotency_key", job.IdempotencyKey)
	}
	return p.Publish(ctx, StreamContentGen, msg)
}

// 消息类型
const (
	MsgTypeBookAnalysis = "book_analysis"
	MsgTypeContentGen   = "content_gen"
)

// AnalysisJobMessage 书籍分析任务消息
type AnalysisJobMessage struct {
	JobID    string `json:"job_id"`
	BookID   string `json:"book_id"`
	UserID   string `json:"user_id"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	Text     string `json:"text"`
	Provider string `json:"provider,omitempty"`
	// ChapterSummaries 为 nil 时跟随服务端配置
	ChapterSummaries *bool  `json:"chapter_summaries,omitempty"`
	IdempotencyKey   string `json:"idempotency_key,omitempty"`
}

// ContentJobMessage 内容生成任务消息
type ContentJobMessage struct {
	JobID     string   `json:"job_id"`
	BookID    string   `json:"book_id"`
	UserID    string   `json:"user_id"`
	Platforms []string `json:"platforms"`
	Tone      string   `json:"tone,omitempty"`
	// IncludeImages 为 nil 时跟随服务端配置
	IncludeImages       *bool  `json:"include_images,omitempty"`
	VariationsPerSource int    `json:"variations_per_source,omitempty"`
	Provider            string `json:"provider,omitempty"`
	IdempotencyKey      string `json:"idempotency_key,omitempty"`
}

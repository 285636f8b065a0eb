package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"book-social-ai-api/internal/domain/repository"
	"book-social-ai-api/pkg/metrics"
)

var cacheTracer = otel.Tracer("redis.cache")

// Cache 分析/内容结果缓存，repository.ResultCache 的 Redis 实现。
// 键由 repository.AnalysisCacheKey / ContentCacheKey 构建，
// 键首段作为指标的 kind 标签。
type Cache struct {
	client *Client
	group  singleflight.Group
}

// NewCache 创建缓存服务
func NewCache(client *Client) *Cache {
	return &Cache{
		client: client,
	}
}

// GetOrLoadSafe Read-Through 模式，使用 singleflight 防止缓存击穿。
// 并发同键请求只有一个会触发 loader，其余共享结果。
func (c *Cache) GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (any, error)) ([]byte, error) {
	ctx, span := cacheTracer.Start(ctx, "cache.GetOrLoadSafe",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	val, err := c.client.rdb.Get(ctx, key).Bytes()
	if err == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		metrics.CacheRequestsTotal.WithLabelValues(keyKind(key), "hit").Inc()
		return val, nil
	}
	if !IsNil(err) {
		span.RecordError(err)
		metrics.CacheRequestsTotal.WithLabelValues(keyKind(key), "error").Inc()
		return nil, err
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))
	metrics.CacheRequestsTotal.WithLabelValues(keyKind(key), "miss").Inc()

	result, err, shared := c.group.Do(key, func() (any, error) {
		// 可能已被并发请求填充
		val, err := c.client.rdb.Get(ctx, key).Bytes()
		if err == nil {
			return val, nil
		}

		data, err := loader()
		if err != nil {
			return nil, err
		}

		bytes, err := marshalValue(data)
		if err != nil {
			return nil, err
		}

		// 缓存写入失败不影响返回结果
		_ = c.client.rdb.Set(ctx, key, bytes, ttl).Err()
		return bytes, nil
	})

	span.SetAttributes(attribute.Bool("cache.shared", shared))

	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result.([]byte), nil
}

// Delete 删除缓存
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	ctx, span := cacheTracer.Start(ctx, "cache.Delete",
		trace.WithAttributes(attribute.Int("cache.key_count", len(keys))))
	defer span.End()

	return c.client.rdb.Del(ctx, keys...).Err()
}

// InvalidateBook 使某本书的全部缓存结果失效（重新分析时调用）
func (c *Cache) InvalidateBook(ctx context.Context, bookID string) error {
	ctx, span := cacheTracer.Start(ctx, "cache.InvalidateBook",
		trace.WithAttributes(attribute.String("cache.book_id", bookID)))
	defer span.End()

	patterns := []string{
		repository.AnalysisCacheKey(bookID, "*"),
		repository.ContentCacheKey(bookID, "*"),
	}

	for _, pattern := range patterns {
		iter := c.client.rdb.Scan(ctx, 0, pattern, 0).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			span.RecordError(err)
			return err
		}
		if len(keys) > 0 {
			if err := c.client.rdb.Del(ctx, keys...).Err(); err != nil {
				span.RecordError(err)
				return err
			}
		}
	}
	return nil
}

func marshalValue(value any) ([]byte, error) {
	if b, ok := value.([]byte); ok {
		return b, nil
	}
	bytes, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	return bytes, nil
}

func keyKind(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}

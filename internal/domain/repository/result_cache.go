// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"
)

// ResultCache 结果缓存端口。
// 缓存故障按未命中处理，失效失败记日志后忽略，均不阻断主流程。
type ResultCache interface {
	// GetOrLoadSafe Read-Through 读取：未命中时由 loader 装载并回填，
	// 并发同键请求只有一个触发 loader，其余共享结果
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (any, error)) ([]byte, error)

	// Delete 删除指定键
	Delete(ctx context.Context, keys ...string) error

	// InvalidateBook 使某本书的全部缓存结果失效（重新分析时调用）
	InvalidateBook(ctx context.Context, bookID string) error
}

// AnalysisCacheKey 构建书籍分析结果的缓存键
func AnalysisCacheKey(bookID, userID string) string {
	return "analysis:" + bookID + ":" + userID
}

// ContentCacheKey 构建内容生成结果的缓存键
func ContentCacheKey(bookID, userID string) string {
	return "content:" + bookID + ":" + userID
}

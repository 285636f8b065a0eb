// Package retry 提供带退避的通用重试原语
package retry

import (
	"context"
	"math/rand"
	"time"

	"book-social-ai-api/pkg/metrics"
)

// Config 单次调用点的重试配置
type Config struct {
	// MaxAttempts 最大尝试次数（含首次），最小为 1
	MaxAttempts int
	// BaseDelay 首次重试前的基础延迟
	BaseDelay time.Duration
	// MaxDelay 退避延迟上限
	MaxDelay time.Duration
	// Multiplier 指数退避倍率
	Multiplier float64
	// RetryIf 返回 false 时立即停止重试并传播错误；nil 表示全部重试
	RetryIf func(error) bool
	// OnRetry 每次失败后、下一次尝试前回调
	OnRetry func(attempt int, err error)
	// OnExhausted 所有尝试耗尽后、传播错误前回调
	OnExhausted func(err error)
	// Preset 预设名称，仅用于指标标签
	Preset string
}

func (c Config) normalized() Config {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = time.Minute
	}
	if c.Multiplier < 1 {
		c.Multiplier = 2
	}
	if c.Preset == "" {
		c.Preset = "custom"
	}
	return c
}

// Delay 计算第 attempt 次失败后的退避延迟（1-based），含最多 10% 抖动
func Delay(cfg Config, attempt int) time.Duration {
	cfg = cfg.normalized()
	d := cfg.BaseDelay
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * cfg.Multiplier)
		if d >= cfg.MaxDelay {
			d = cfg.MaxDelay
			break
		}
	}
	if d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}
	jitter := time.Duration(rand.Float64() * 0.1 * float64(d))
	return d + jitter
}

// Do 执行 fn，失败时按配置退避重试，耗尽后返回最后一次错误。
// tracker 可为 nil；传入时用于观测在途操作。
func Do[T any](ctx context.Context, tracker *Tracker, name string, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.normalized()

	var zero T
	opID := tracker.begin(name)
	defer tracker.finish(opID)

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		tracker.update(opID, attempt, lastErr)

		result, err := fn(ctx)
		if err == nil {
			metrics.RetryAttemptsTotal.WithLabelValues(cfg.Preset, "success").Inc()
			return result, nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts || (cfg.RetryIf != nil && !cfg.RetryIf(err)) {
			break
		}

		delay := Delay(cfg, attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}
		metrics.RetryAttemptsTotal.WithLabelValues(cfg.Preset, "retried").Inc()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	if cfg.OnExhausted != nil {
		cfg.OnExhausted(lastErr)
	}
	metrics.RetryAttemptsTotal.WithLabelValues(cfg.Preset, "exhausted").Inc()
	return zero, lastErr
}

// FailedItem 批量执行中的失败项
type FailedItem[I any] struct {
	Item I
	Err  error
}

// BatchSummary 批量执行汇总
type BatchSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// BatchResult 批量执行结果
type BatchResult[I, R any] struct {
	Successful []R
	Failed     []FailedItem[I]
	Summary    BatchSummary
}

// DoBatch 对每个条目独立执行带重试的 fn，单项失败不会中断整批。
func DoBatch[I, R any](ctx context.Context, tracker *Tracker, name string, cfg Config, items []I, fn func(ctx context.Context, item I) (R, error)) BatchResult[I, R] {
	result := BatchResult[I, R]{
		Successful: make([]R, 0, len(items)),
		Summary:    BatchSummary{Total: len(items)},
	}

	for _, item := range items {
		it := item
		r, err := Do(ctx, tracker, name, cfg, func(ctx context.Context) (R, error) {
			return fn(ctx, it)
		})
		if err != nil {
			result.Failed = append(result.Failed, FailedItem[I]{Item: it, Err: err})
			continue
		}
		result.Successful = append(result.Successful, r)
	}

	result.Summary.Successful = len(result.Successful)
	result.Summary.Failed = len(result.Failed)
	return result
}

package retry

import (
	"strings"
	"time"
)

// IsTransientError 判断是否为值得重试的瞬态错误。
// 约定：依赖错误文本匹配，上游 SDK 未暴露结构化错误类型。
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return true
	case strings.Contains(msg, "timed out"):
		return true
	case strings.Contains(msg, "rate limit"):
		return true
	case strings.Contains(msg, "too many requests"):
		return true
	case strings.Contains(msg, "429"):
		return true
	case strings.Contains(msg, "connection refused"):
		return true
	case strings.Contains(msg, "connection reset"):
		return true
	case strings.Contains(msg, "temporarily unavailable"):
		return true
	case strings.Contains(msg, "service unavailable"):
		return true
	case strings.Contains(msg, "502"), strings.Contains(msg, "503"), strings.Contains(msg, "504"):
		return true
	case strings.Contains(msg, "eof"):
		return true
	default:
		return false
	}
}

// IsDatabaseRetryableError 数据库侧更窄的重试判定
func IsDatabaseRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadlock"):
		return true
	case strings.Contains(msg, "serialization failure"):
		return true
	case strings.Contains(msg, "connection refused"):
		return true
	case strings.Contains(msg, "connection reset"):
		return true
	default:
		return false
	}
}

// AIService LLM 调用预设：较长退避，只重试瞬态错误
func AIService() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  2,
		RetryIf:     IsTransientError,
		Preset:      "ai_service",
	}
}

// Network 通用网络调用预设
func Network() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
		Multiplier:  2,
		RetryIf:     IsTransientError,
		Preset:      "network",
	}
}

// Database 数据库调用预设：只重试死锁/连接类错误
func Database() Config {
	return Config{
		MaxAttempts: 2,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    2 * time.Second,
		Multiplier:  2,
		RetryIf:     IsDatabaseRetryableError,
		Preset:      "database",
	}
}

// Quick 低延迟场景预设：快速失败
func Quick() Config {
	return Config{
		MaxAttempts: 2,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    time.Second,
		Multiplier:  2,
		RetryIf:     IsTransientError,
		Preset:      "quick",
	}
}

// Patient 长任务预设：更多尝试与更长上限
func Patient() Config {
	return Config{
		MaxAttempts: 5,
		BaseDelay:   5 * time.Second,
		MaxDelay:    2 * time.Minute,
		Multiplier:  2,
		RetryIf:     IsTransientError,
		Preset:      "patient",
	}
}

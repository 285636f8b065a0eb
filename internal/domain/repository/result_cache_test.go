package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "analysis:b1:u1", AnalysisCacheKey("b1", "u1"))
	assert.Equal(t, "content:b1:u1", ContentCacheKey("b1", "u1"))
	// 通配用户段用于按书失效的 SCAN 模式
	assert.Equal(t, "analysis:b1:*", AnalysisCacheKey("b1", "*"))
	assert.Equal(t, "content:b1:*", ContentCacheKey("b1", "*"))
}

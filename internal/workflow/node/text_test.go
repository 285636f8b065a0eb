package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateByRunes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", TruncateByRunes("abc", 10))
	assert.Equal(t, "abc", TruncateByRunes("abcdef", 3))
	assert.Equal(t, "", TruncateByRunes("abc", 0))
	assert.Equal(t, "", TruncateByRunes("abc", -1))
	// 多字节字符不被切断
	assert.Equal(t, "你好", TruncateByRunes("你好世界", 2))
}

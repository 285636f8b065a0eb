package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-social-ai-api/internal/domain/entity"
)

func TestValidatePost(t *testing.T) {
	t.Parallel()

	t.Run("valid post passes", func(t *testing.T) {
		t.Parallel()
		post := &entity.GeneratedPost{
			Platform: entity.PlatformTwitter,
			Content:  "A short post about a great book.",
			Hashtags: []string{"#Books"},
		}
		ValidatePost(post)
		assert.True(t, post.IsValid)
		assert.Empty(t, post.ValidationErrors)
		assert.Equal(t, CharacterCount(post.Content, post.Hashtags), post.CharacterCount)
	})

	t.Run("over limit reports exact overage", func(t *testing.T) {
		t.Parallel()
		post := &entity.GeneratedPost{
			Platform: entity.PlatformTwitter,
			Content:  strings.Repeat("a", 300),
		}
		ValidatePost(post)
		assert.False(t, post.IsValid)
		require.Len(t, post.ValidationErrors, 1)
		assert.Contains(t, post.ValidationErrors[0], "by 20 characters")
	})

	t.Run("too many hashtags", func(t *testing.T) {
		t.Parallel()
		post := &entity.GeneratedPost{
			Platform: entity.PlatformTwitter,
			Content:  "ok",
			Hashtags: []string{"#a", "#b", "#c", "#d", "#e", "#f"},
		}
		ValidatePost(post)
		assert.False(t, post.IsValid)
		require.Len(t, post.ValidationErrors, 1)
		assert.Contains(t, post.ValidationErrors[0], "hashtag count 6 exceeds twitter limit of 5")
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		t.Parallel()
		post := &entity.GeneratedPost{
			Platform: entity.PlatformTwitter,
			Content:  "   ",
		}
		ValidatePost(post)
		assert.False(t, post.IsValid)
		require.Len(t, post.ValidationErrors, 1)
		assert.Contains(t, post.ValidationErrors[0], "must not be empty")
	})

	t.Run("instagram and facebook have no content minimum", func(t *testing.T) {
		t.Parallel()
		for _, platform := range []entity.Platform{entity.PlatformInstagram, entity.PlatformFacebook} {
			post := &entity.GeneratedPost{
				Platform: platform,
				Hashtags: []string{"#Books", "#Reading"},
			}
			ValidatePost(post)
			assert.True(t, post.IsValid, "empty %s content within limits must validate", platform)
			assert.Empty(t, post.ValidationErrors)
		}
	})

	t.Run("linkedin enforces a minimum length", func(t *testing.T) {
		t.Parallel()
		post := &entity.GeneratedPost{
			Platform: entity.PlatformLinkedIn,
			Content:  "short",
		}
		ValidatePost(post)
		assert.False(t, post.IsValid)
		require.Len(t, post.ValidationErrors, 1)
		assert.Contains(t, post.ValidationErrors[0], "at least 10 characters")
	})

	t.Run("unknown platform is invalid", func(t *testing.T) {
		t.Parallel()
		post := &entity.GeneratedPost{
			Platform: entity.Platform("myspace"),
			Content:  "anything",
		}
		ValidatePost(post)
		assert.False(t, post.IsValid)
		require.Len(t, post.ValidationErrors, 1)
		assert.Contains(t, post.ValidationErrors[0], "unknown platform")
	})

	t.Run("nil post is a no-op", func(t *testing.T) {
		t.Parallel()
		ValidatePost(nil)
	})
}

func TestCharacterCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 9, CharacterCount("abc", []string{"#x", "#y"}))
	assert.Equal(t, 3, CharacterCount("abc", nil))
	assert.Equal(t, 0, CharacterCount("", nil))
	// 多字节字符按 rune 计数
	assert.Equal(t, 2, CharacterCount("你好", nil))
}

package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-social-ai-api/internal/domain/entity"
)

func TestParsePlatforms(t *testing.T) {
	t.Parallel()

	t.Run("empty list means all platforms", func(t *testing.T) {
		t.Parallel()
		platforms, ok := ParsePlatforms(nil)
		assert.True(t, ok)
		assert.Nil(t, platforms)
	})

	t.Run("valid names parse", func(t *testing.T) {
		t.Parallel()
		platforms, ok := ParsePlatforms([]string{"twitter", "linkedin"})
		require.True(t, ok)
		assert.Equal(t, []entity.Platform{entity.PlatformTwitter, entity.PlatformLinkedIn}, platforms)
	})

	t.Run("unknown name rejects the whole list", func(t *testing.T) {
		t.Parallel()
		platforms, ok := ParsePlatforms([]string{"twitter", "myspace"})
		assert.False(t, ok)
		assert.Nil(t, platforms)
	})
}

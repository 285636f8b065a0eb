package imagesuggest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-social-ai-api/internal/domain/entity"
)

func TestSuggest(t *testing.T) {
	t.Parallel()

	t.Run("returns at most three suggestions sorted by score", func(t *testing.T) {
		t.Parallel()
		suggestions := Suggest("A memorable quote.", entity.PlatformTwitter, entity.SourceTypeQuote, "Title", "Fantasy", nil)

		require.NotEmpty(t, suggestions)
		assert.LessOrEqual(t, len(suggestions), 3)
		for i := 1; i < len(suggestions); i++ {
			assert.GreaterOrEqual(t, suggestions[i-1].Score, suggestions[i].Score)
		}
		assert.Equal(t, "quote-card", suggestions[0].Kind)
	})

	t.Run("theme palette wins over neutral", func(t *testing.T) {
		t.Parallel()
		withTheme := Suggest("Post.", entity.PlatformTwitter, entity.SourceTypeTheme, "Title", "", []string{"Love"})
		require.NotEmpty(t, withTheme)
		assert.Equal(t, []string{"#8E2A4E", "#D96C8A", "#F2D5DC"}, withTheme[0].Palette)

		without := Suggest("Post.", entity.PlatformTwitter, entity.SourceTypeTheme, "Title", "", []string{"obscure"})
		require.NotEmpty(t, without)
		assert.Equal(t, []string{"#2F3E46", "#84A98C", "#F2F2F2"}, without[0].Palette)
	})

	t.Run("dimensions follow the platform", func(t *testing.T) {
		t.Parallel()
		square := Suggest("Post.", entity.PlatformInstagram, entity.SourceTypeSummary, "Title", "", nil)
		require.NotEmpty(t, square)
		assert.Equal(t, 1080, square[0].Width)
		assert.Equal(t, 1080, square[0].Height)

		wide := Suggest("Post.", entity.PlatformTwitter, entity.SourceTypeSummary, "Title", "", nil)
		require.NotEmpty(t, wide)
		assert.Equal(t, 1200, wide[0].Width)
		assert.Equal(t, 675, wide[0].Height)
	})

	t.Run("unknown source type uses the feature templates", func(t *testing.T) {
		t.Parallel()
		suggestions := Suggest("Post.", entity.PlatformTwitter, entity.SourceType("unknown"), "Title", "", nil)
		require.NotEmpty(t, suggestions)
		assert.Equal(t, "book-feature", suggestions[0].Kind)
	})

	t.Run("prompt mentions title and genre", func(t *testing.T) {
		t.Parallel()
		suggestions := Suggest("A striking insight.", entity.PlatformLinkedIn, entity.SourceTypeInsight, "The Long Road", "History", nil)
		require.NotEmpty(t, suggestions)
		assert.Contains(t, suggestions[0].Prompt, `"The Long Road"`)
		assert.Contains(t, suggestions[0].Prompt, "(history)")
		assert.Contains(t, suggestions[0].Prompt, "A striking insight.")
	})
}

func TestEncodeReference(t *testing.T) {
	t.Parallel()

	t.Run("deterministic for the same suggestion", func(t *testing.T) {
		t.Parallel()
		suggestions := Suggest("A quote.", entity.PlatformTwitter, entity.SourceTypeQuote, "Title", "", []string{"Love"})
		require.NotEmpty(t, suggestions)

		first := EncodeReference(suggestions[0], entity.PlatformTwitter)
		second := EncodeReference(suggestions[0], entity.PlatformTwitter)
		assert.Equal(t, first, second)
		assert.True(t, strings.HasPrefix(first, "imggen://twitter/quote-card?"), first)
	})

	t.Run("encodes style and dimensions", func(t *testing.T) {
		t.Parallel()
		ref := EncodeReference(Suggestion{
			Kind:    "quote-card",
			Style:   "minimalist",
			Palette: []string{"#111111"},
			Width:   1200,
			Height:  675,
			Prompt:  "a prompt",
		}, entity.PlatformTwitter)

		assert.Contains(t, ref, "style=minimalist")
		assert.Contains(t, ref, "w=1200")
		assert.Contains(t, ref, "h=675")
	})
}

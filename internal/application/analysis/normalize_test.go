package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-social-ai-api/internal/config"
	"book-social-ai-api/internal/domain/entity"
)

func completenessThresholds() config.CompletenessConfig {
	return config.CompletenessConfig{
		MinSummaryRunes:     50,
		MinDiscussionPoints: 1,
	}
}

func completeResult() *entity.BookAnalysisResult {
	return &entity.BookAnalysisResult{
		Themes:           []string{"Love", "Courage"},
		Quotes:           []string{"A memorable quote."},
		KeyInsights:      []string{"A sharp insight."},
		OverallSummary:   strings.Repeat("A proper summary of the whole book. ", 3),
		Genre:            "Fantasy",
		TargetAudience:   "Adult readers",
		DiscussionPoints: []string{"What did the ending mean?"},
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("nil input yields placeholders and empty lists", func(t *testing.T) {
		t.Parallel()
		out := Normalize(nil)

		assert.NotNil(t, out.Themes)
		assert.NotNil(t, out.Quotes)
		assert.NotNil(t, out.KeyInsights)
		assert.NotNil(t, out.ChapterSummaries)
		assert.NotNil(t, out.DiscussionPoints)
		assert.Equal(t, entity.PlaceholderSummary, out.OverallSummary)
		assert.Equal(t, entity.PlaceholderGenre, out.Genre)
		assert.Equal(t, entity.PlaceholderAudience, out.TargetAudience)
	})

	t.Run("existing values survive", func(t *testing.T) {
		t.Parallel()
		out := Normalize(completeResult())
		assert.Equal(t, []string{"Love", "Courage"}, out.Themes)
		assert.Equal(t, "Fantasy", out.Genre)
	})
}

func TestIsComplete(t *testing.T) {
	t.Parallel()

	t.Run("complete result passes", func(t *testing.T) {
		t.Parallel()
		assert.True(t, IsComplete(completeResult(), completenessThresholds()))
	})

	t.Run("nil result fails", func(t *testing.T) {
		t.Parallel()
		assert.False(t, IsComplete(nil, completenessThresholds()))
	})

	t.Run("placeholder summary fails", func(t *testing.T) {
		t.Parallel()
		r := completeResult()
		r.OverallSummary = entity.PlaceholderSummary
		assert.False(t, IsComplete(r, completenessThresholds()))
	})

	t.Run("short summary fails", func(t *testing.T) {
		t.Parallel()
		r := completeResult()
		r.OverallSummary = "Too short."
		assert.False(t, IsComplete(r, completenessThresholds()))
	})

	t.Run("missing quotes fails", func(t *testing.T) {
		t.Parallel()
		r := completeResult()
		r.Quotes = nil
		assert.False(t, IsComplete(r, completenessThresholds()))
	})

	t.Run("placeholder genre fails", func(t *testing.T) {
		t.Parallel()
		r := completeResult()
		r.Genre = entity.PlaceholderGenre
		assert.False(t, IsComplete(r, completenessThresholds()))
	})
}

func TestSynthesizeFromPartial(t *testing.T) {
	t.Parallel()

	t.Run("fills boilerplate fields from themes", func(t *testing.T) {
		t.Parallel()
		partial := &entity.BookAnalysisResult{
			Themes: []string{"Love", "War"},
			Genre:  "Fantasy",
		}
		out := SynthesizeFromPartial(partial, "The Long Road")

		assert.Contains(t, out.OverallSummary, "The Long Road explores")
		assert.Contains(t, out.OverallSummary, "love")
		require.Len(t, out.KeyInsights, 2)
		assert.Contains(t, out.KeyInsights[0], "love")
		assert.Equal(t, "Readers interested in fantasy.", out.TargetAudience)
		require.Len(t, out.DiscussionPoints, 2)
	})

	t.Run("never fabricates themes or quotes", func(t *testing.T) {
		t.Parallel()
		out := SynthesizeFromPartial(&entity.BookAnalysisResult{}, "Empty Book")

		assert.Empty(t, out.Themes)
		assert.Empty(t, out.Quotes)
		assert.Equal(t, entity.PlaceholderSummary, out.OverallSummary)
	})
}

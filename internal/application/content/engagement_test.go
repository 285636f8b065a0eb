package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"book-social-ai-api/internal/domain/entity"
)

func TestScoreEngagement(t *testing.T) {
	t.Parallel()

	t.Run("score stays within bounds", func(t *testing.T) {
		t.Parallel()
		posts := []*entity.GeneratedPost{
			nil,
			{Platform: entity.PlatformTwitter},
			{Platform: entity.PlatformTwitter, Content: strings.Repeat("word ", 100)},
			{Platform: entity.PlatformInstagram, Content: "Discover this! What do you think? 📚", Hashtags: []string{"#BookTwitter", "#EpicFantasy", "#AmReading"}},
		}
		for _, post := range posts {
			score := ScoreEngagement(post)
			assert.GreaterOrEqual(t, score, 1)
			assert.LessOrEqual(t, score, 5)
		}
	})

	t.Run("rich post scores high", func(t *testing.T) {
		t.Parallel()
		post := &entity.GeneratedPost{
			Platform: entity.PlatformTwitter,
			Content:  "What makes a story stay with you long after the final page? Discover the answer in this sweeping tale of love and loss today.",
			Hashtags: []string{"#BookTwitter", "#EpicFantasy", "#AmReading"},
		}
		assert.GreaterOrEqual(t, ScoreEngagement(post), 4)
	})

	t.Run("empty post scores the floor", func(t *testing.T) {
		t.Parallel()
		post := &entity.GeneratedPost{Platform: entity.PlatformTwitter, Content: ""}
		assert.Equal(t, 1, ScoreEngagement(post))
	})

	t.Run("question beats the same post without one", func(t *testing.T) {
		t.Parallel()
		base := "An absorbing family saga set across three generations in a small coastal town"
		plain := &entity.GeneratedPost{Platform: entity.PlatformTwitter, Content: base + "."}
		asking := &entity.GeneratedPost{Platform: entity.PlatformTwitter, Content: base + "?"}
		assert.GreaterOrEqual(t, ScoreEngagement(asking), ScoreEngagement(plain))
	})

	t.Run("generic hashtags score below specific ones", func(t *testing.T) {
		t.Parallel()
		assert.Greater(t,
			hashtagQuality([]string{"#EpicFantasy", "#FamilySaga", "#BookTwitter"}),
			hashtagQuality([]string{"#books", "#reading", "#mustread"}),
		)
	})
}

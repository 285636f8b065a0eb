package hashtag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-social-ai-api/internal/domain/entity"
)

func richAnalysis() *entity.BookAnalysisResult {
	return &entity.BookAnalysisResult{
		Themes: []string{"Love", "Courage", "Identity"},
		Genre:  "Fantasy",
	}
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	t.Run("draws candidates from every pool", func(t *testing.T) {
		t.Parallel()
		candidates := Suggest(richAnalysis(), "The Long Road", "J. Doe", entity.PlatformInstagram, entity.SourceTypeQuote)

		categories := make(map[Category]bool)
		for _, c := range candidates {
			categories[c.Category] = true
		}
		for _, want := range []Category{CategoryBook, CategoryGenre, CategoryTheme, CategoryPlatform, CategoryEngagement} {
			assert.True(t, categories[want], "missing category %s", want)
		}
	})

	t.Run("tags carry no hash prefix and no spaces", func(t *testing.T) {
		t.Parallel()
		candidates := Suggest(richAnalysis(), "The Long Road", "J. Doe", entity.PlatformTwitter, entity.SourceTypeTheme)
		require.NotEmpty(t, candidates)
		for _, c := range candidates {
			assert.False(t, strings.HasPrefix(c.Tag, "#"), c.Tag)
			assert.NotContains(t, c.Tag, " ")
		}
	})

	t.Run("deduplicates case-insensitively", func(t *testing.T) {
		t.Parallel()
		candidates := Suggest(richAnalysis(), "Love", "", entity.PlatformTwitter, entity.SourceTypeQuote)
		seen := make(map[string]bool)
		for _, c := range candidates {
			key := strings.ToLower(c.Tag)
			assert.False(t, seen[key], "duplicate tag %s", c.Tag)
			seen[key] = true
		}
	})

	t.Run("known genre expands to curated tags", func(t *testing.T) {
		t.Parallel()
		candidates := Suggest(richAnalysis(), "Title", "", entity.PlatformTwitter, entity.SourceTypeQuote)
		tags := make([]string, 0, len(candidates))
		for _, c := range candidates {
			tags = append(tags, c.Tag)
		}
		assert.Contains(t, tags, "EpicFantasy")
	})

	t.Run("nil analysis still yields platform and engagement pools", func(t *testing.T) {
		t.Parallel()
		candidates := Suggest(nil, "Title", "", entity.PlatformLinkedIn, entity.SourceTypeInsight)
		assert.NotEmpty(t, candidates)
	})

	t.Run("relevance is sorted descending", func(t *testing.T) {
		t.Parallel()
		candidates := Suggest(richAnalysis(), "Title", "Author", entity.PlatformFacebook, entity.SourceTypeSummary)
		for i := 1; i < len(candidates); i++ {
			assert.GreaterOrEqual(t, candidates[i-1].Relevance, candidates[i].Relevance)
		}
	})
}

func TestSelectOptimal(t *testing.T) {
	t.Parallel()

	t.Run("stays within the platform budget", func(t *testing.T) {
		t.Parallel()
		candidates := Suggest(richAnalysis(), "The Long Road", "J. Doe", entity.PlatformTwitter, entity.SourceTypeQuote)
		picked := SelectOptimal(candidates, entity.PlatformTwitter)

		constraint, _ := entity.ConstraintFor(entity.PlatformTwitter)
		assert.LessOrEqual(t, len(picked), constraint.HashtagLimit)
		assert.NotEmpty(t, picked)
		for _, tag := range picked {
			assert.True(t, strings.HasPrefix(tag, "#"), tag)
		}
	})

	t.Run("rich input spans multiple categories", func(t *testing.T) {
		t.Parallel()
		candidates := Suggest(richAnalysis(), "The Long Road", "J. Doe", entity.PlatformInstagram, entity.SourceTypeQuote)
		picked := SelectOptimal(candidates, entity.PlatformInstagram)

		byTag := make(map[string]Category, len(candidates))
		for _, c := range candidates {
			byTag["#"+c.Tag] = c.Category
		}
		categories := make(map[Category]bool)
		for _, tag := range picked {
			categories[byTag[tag]] = true
		}
		assert.GreaterOrEqual(t, len(categories), 2, "no single category may monopolize the budget")
	})

	t.Run("backfills budget when quotas run out", func(t *testing.T) {
		t.Parallel()
		// 只有一个类别的候选，配额之外靠回填用满预算
		candidates := []Candidate{
			{Tag: "A", Category: CategoryTheme, Relevance: 0.9},
			{Tag: "B", Category: CategoryTheme, Relevance: 0.8},
			{Tag: "C", Category: CategoryTheme, Relevance: 0.7},
			{Tag: "D", Category: CategoryTheme, Relevance: 0.6},
			{Tag: "E", Category: CategoryTheme, Relevance: 0.5},
		}
		picked := SelectOptimal(candidates, entity.PlatformTwitter)
		assert.Equal(t, []string{"#A", "#B", "#C", "#D", "#E"}, picked)
	})

	t.Run("empty candidates yield empty result", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, SelectOptimal(nil, entity.PlatformTwitter))
	})

	t.Run("unknown platform yields empty result", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, SelectOptimal([]Candidate{{Tag: "A", Category: CategoryBook, Relevance: 1}}, entity.Platform("myspace")))
	})
}

package content

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-social-ai-api/internal/config"
	"book-social-ai-api/internal/domain/entity"
	wfmodel "book-social-ai-api/internal/workflow/model"
)

// stubCompleter 固定返回同一段文本或同一个错误
type stubCompleter struct {
	mu    sync.Mutex
	calls int
	text  string
	err   error
}

func (s *stubCompleter) Complete(_ context.Context, _ *wfmodel.CompletionInput) (*wfmodel.CompletionOutput, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &wfmodel.CompletionOutput{Text: s.text}, nil
}

func testContentConfig() config.ContentConfig {
	return config.ContentConfig{
		VariationsPerSource: 1,
		DefaultTone:         "professional",
		IncludeImages:       true,
		MaxRetries:          1,
	}
}

func richAnalysis() *entity.BookAnalysisResult {
	return &entity.BookAnalysisResult{
		Themes:         []string{"Love"},
		Quotes:         []string{"We were all meant for something greater."},
		Genre:          "Fantasy",
		OverallSummary: "A sweeping fantasy saga about love and sacrifice.",
	}
}

func TestGeneratorGenerate(t *testing.T) {
	t.Parallel()

	t.Run("successful generation uses model output", func(t *testing.T) {
		t.Parallel()
		completer := &stubCompleter{text: "A compelling post about this remarkable book."}
		g := NewGenerator(completer, nil, testContentConfig())

		variations, err := g.Generate(context.Background(), richAnalysis(), "The Long Road", "book-1", "user-1", "J. Doe", &Options{
			Platforms: []entity.Platform{entity.PlatformTwitter},
		})

		require.NoError(t, err)
		require.NotEmpty(t, variations)
		for _, v := range variations {
			require.Len(t, v.Posts, 1)
			post := v.Posts[0]
			assert.False(t, post.Fallback)
			assert.Equal(t, "A compelling post about this remarkable book.", post.Content)
			assert.Equal(t, entity.PlatformTwitter, post.Platform)
			assert.NotEmpty(t, post.Hashtags)
		}
	})

	t.Run("exhausted retries fall back to deterministic content", func(t *testing.T) {
		t.Parallel()
		completer := &stubCompleter{err: errors.New("model rejected the request")}
		g := NewGenerator(completer, nil, testContentConfig())

		variations, err := g.Generate(context.Background(), richAnalysis(), "The Long Road", "book-1", "user-1", "J. Doe", &Options{
			Platforms: []entity.Platform{entity.PlatformTwitter, entity.PlatformLinkedIn},
		})

		require.NoError(t, err, "generation must not surface per-post failures")
		require.NotEmpty(t, variations)
		for _, v := range variations {
			require.Len(t, v.Posts, 2)
			for _, post := range v.Posts {
				assert.True(t, post.Fallback)
				assert.True(t, post.IsValid, "fallback content must be publishable: %v", post.ValidationErrors)
				assert.NotEmpty(t, post.Content)
			}
		}
	})

	t.Run("blank model output also falls back", func(t *testing.T) {
		t.Parallel()
		completer := &stubCompleter{text: "   \n  "}
		g := NewGenerator(completer, nil, testContentConfig())

		variations, err := g.Generate(context.Background(), richAnalysis(), "Title", "book-1", "user-1", "", &Options{
			Platforms: []entity.Platform{entity.PlatformTwitter},
		})

		require.NoError(t, err)
		require.NotEmpty(t, variations)
		assert.True(t, variations[0].Posts[0].Fallback)
	})

	t.Run("dimensions are sources times variations", func(t *testing.T) {
		t.Parallel()
		completer := &stubCompleter{text: "Generated post text."}
		g := NewGenerator(completer, nil, testContentConfig())

		// quote + theme + summary = 3 个素材
		analysis := richAnalysis()
		variations, err := g.Generate(context.Background(), analysis, "Title", "book-1", "user-1", "", &Options{
			Platforms:           []entity.Platform{entity.PlatformTwitter},
			VariationsPerSource: 2,
		})

		require.NoError(t, err)
		assert.Len(t, variations, 6)
		for _, v := range variations {
			assert.NotEmpty(t, v.ID)
			assert.NotEmpty(t, v.SourceContent)
		}
	})

	t.Run("empty analysis yields no variations", func(t *testing.T) {
		t.Parallel()
		g := NewGenerator(&stubCompleter{text: "x"}, nil, testContentConfig())

		variations, err := g.Generate(context.Background(), nil, "Title", "book-1", "user-1", "", nil)
		require.NoError(t, err)
		assert.Empty(t, variations)
	})

	t.Run("image reference set when platform supports images", func(t *testing.T) {
		t.Parallel()
		completer := &stubCompleter{text: "A fine post about the book."}
		g := NewGenerator(completer, nil, testContentConfig())

		variations, err := g.Generate(context.Background(), richAnalysis(), "Title", "book-1", "user-1", "", &Options{
			Platforms: []entity.Platform{entity.PlatformInstagram},
		})

		require.NoError(t, err)
		require.NotEmpty(t, variations)
		post := variations[0].Posts[0]
		assert.True(t, strings.HasPrefix(post.ImageURL, "imggen://instagram/"))
	})

	t.Run("images disabled via options", func(t *testing.T) {
		t.Parallel()
		completer := &stubCompleter{text: "A fine post about the book."}
		g := NewGenerator(completer, nil, testContentConfig())

		off := false
		variations, err := g.Generate(context.Background(), richAnalysis(), "Title", "book-1", "user-1", "", &Options{
			Platforms:     []entity.Platform{entity.PlatformInstagram},
			IncludeImages: &off,
		})

		require.NoError(t, err)
		require.NotEmpty(t, variations)
		assert.Empty(t, variations[0].Posts[0].ImageURL)
	})
}

func TestCollectSources(t *testing.T) {
	t.Parallel()

	t.Run("caps each source pool", func(t *testing.T) {
		t.Parallel()
		analysis := &entity.BookAnalysisResult{
			Quotes:      []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7"},
			KeyInsights: []string{"i1", "i2", "i3", "i4"},
			Themes:      []string{"t1", "t2", "t3", "t4"},
		}
		sources := collectSources(analysis)
		// 引用 5 + 洞见 3 + 主题 3
		assert.Len(t, sources, 11)
	})

	t.Run("placeholder summary is not a source", func(t *testing.T) {
		t.Parallel()
		sources := collectSources(&entity.BookAnalysisResult{
			OverallSummary: entity.PlaceholderSummary,
		})
		assert.Empty(t, sources)
	})
}

package analysis

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-social-ai-api/internal/config"
	"book-social-ai-api/internal/domain/entity"
	"book-social-ai-api/internal/domain/repository"
	wfmodel "book-social-ai-api/internal/workflow/model"
	apperrors "book-social-ai-api/pkg/errors"
)

// fakeCompleter 按 PromptID 返回预置响应并统计调用次数
type fakeCompleter struct {
	mu        sync.Mutex
	calls     int
	responses map[string]string
}

func (f *fakeCompleter) Complete(_ context.Context, in *wfmodel.CompletionInput) (*wfmodel.CompletionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &wfmodel.CompletionOutput{Text: f.responses[in.PromptID]}, nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) GetOrLoadSafe(_ context.Context, key string, _ time.Duration, loader func() (any, error)) ([]byte, error) {
	f.mu.Lock()
	raw, ok := f.entries[key]
	f.mu.Unlock()
	if ok {
		return raw, nil
	}

	value, err := loader()
	if err != nil {
		return nil, err
	}
	raw, err = json.Marshal(value)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.entries[key] = raw
	f.mu.Unlock()
	return raw, nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func (f *fakeCache) InvalidateBook(_ context.Context, bookID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.entries {
		if strings.HasPrefix(key, "analysis:"+bookID+":") || strings.HasPrefix(key, "content:"+bookID+":") {
			delete(f.entries, key)
		}
	}
	return nil
}

func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok
}

type fakeAnalysisRepo struct {
	mu      sync.Mutex
	records map[string]*entity.BookAnalysisRecord
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{records: make(map[string]*entity.BookAnalysisRecord)}
}

func (f *fakeAnalysisRepo) key(bookID, userID string) string {
	return bookID + ":" + userID
}

func (f *fakeAnalysisRepo) Create(_ context.Context, record *entity.BookAnalysisRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[f.key(record.BookID, record.UserID)] = record
	return nil
}

func (f *fakeAnalysisRepo) GetByBookUser(_ context.Context, bookID, userID string) (*entity.BookAnalysisRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[f.key(bookID, userID)], nil
}

func (f *fakeAnalysisRepo) Update(_ context.Context, record *entity.BookAnalysisRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[f.key(record.BookID, record.UserID)] = record
	return nil
}

func cannedResponses() map[string]string {
	return map[string]string{
		"themes_v1":          `["Love", "Courage", "Sacrifice"]`,
		"quotes_v1":          `["We were all meant for something greater."]`,
		"insights_v1":        `["Loss and growth are inseparable in this story."]`,
		"overall_summary_v1": "A sweeping story about love and courage in wartime, following two families across three decades of upheaval.",
		"genre_audience_v1":  `{"genre": "Historical Fiction", "target_audience": "Adult readers of literary fiction"}`,
		"discussion_v1":      `["What does the ending suggest about forgiveness?"]`,
	}
}

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		MaxChunkSize:           2000,
		MinTextLength:          10,
		ChapterBatchSize:       3,
		MaxFallbackSections:    5,
		EnableChapterSummaries: false,
		Completeness: config.CompletenessConfig{
			MinSummaryRunes:     50,
			MinDiscussionPoints: 1,
		},
	}
}

const sampleText = "A long enough book text for analysis. It has several sentences and covers the whole story from beginning to end."

func TestOrchestratorAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("successful analysis populates all fields", func(t *testing.T) {
		t.Parallel()
		completer := &fakeCompleter{responses: cannedResponses()}
		repo := newFakeAnalysisRepo()
		o := NewOrchestrator(completer, newFakeCache(), repo, nil, testAnalysisConfig(), time.Hour)

		result, err := o.Analyze(context.Background(), sampleText, "book-1", "user-1", "The Long Road", "J. Doe", nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"Love", "Courage", "Sacrifice"}, result.Themes)
		assert.Len(t, result.Quotes, 1)
		assert.Len(t, result.KeyInsights, 1)
		assert.Equal(t, "Historical Fiction", result.Genre)
		assert.Equal(t, "Adult readers of literary fiction", result.TargetAudience)
		assert.Contains(t, result.OverallSummary, "sweeping story")
		assert.Len(t, result.DiscussionPoints, 1)
		assert.NotNil(t, result.ChapterSummaries)

		record, err := repo.GetByBookUser(context.Background(), "book-1", "user-1")
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, entity.AnalysisStatusComplete, record.Status)
	})

	t.Run("second call hits the cache without touching the model", func(t *testing.T) {
		t.Parallel()
		completer := &fakeCompleter{responses: cannedResponses()}
		o := NewOrchestrator(completer, newFakeCache(), newFakeAnalysisRepo(), nil, testAnalysisConfig(), time.Hour)

		_, err := o.Analyze(context.Background(), sampleText, "book-2", "user-1", "Title", "", nil)
		require.NoError(t, err)
		firstCalls := completer.callCount()
		require.Positive(t, firstCalls)

		result, err := o.Analyze(context.Background(), sampleText, "book-2", "user-1", "Title", "", nil)
		require.NoError(t, err)
		assert.Equal(t, firstCalls, completer.callCount(), "cached result must not trigger new completions")
		assert.Equal(t, []string{"Love", "Courage", "Sacrifice"}, result.Themes)
	})

	t.Run("complete persisted result is reused", func(t *testing.T) {
		t.Parallel()
		completer := &fakeCompleter{responses: cannedResponses()}
		repo := newFakeAnalysisRepo()
		record := entity.NewBookAnalysisRecord("book-3", "user-1", "Title", "")
		full := completeResult()
		record.Complete(full)
		require.NoError(t, repo.Create(context.Background(), record))

		o := NewOrchestrator(completer, newFakeCache(), repo, nil, testAnalysisConfig(), time.Hour)
		result, err := o.Analyze(context.Background(), sampleText, "book-3", "user-1", "Title", "", nil)

		require.NoError(t, err)
		assert.Equal(t, full.Themes, result.Themes)
		assert.Zero(t, completer.callCount())
	})

	t.Run("partial history with insufficient text is synthesized", func(t *testing.T) {
		t.Parallel()
		completer := &fakeCompleter{responses: cannedResponses()}
		repo := newFakeAnalysisRepo()
		record := entity.NewBookAnalysisRecord("book-4", "user-1", "The Long Road", "")
		record.Complete(&entity.BookAnalysisResult{Themes: []string{"Love"}, Genre: "Fantasy"})
		require.NoError(t, repo.Create(context.Background(), record))

		o := NewOrchestrator(completer, newFakeCache(), repo, nil, testAnalysisConfig(), time.Hour)
		result, err := o.Analyze(context.Background(), "tiny", "book-4", "user-1", "The Long Road", "", nil)

		require.NoError(t, err)
		assert.Zero(t, completer.callCount())
		assert.Equal(t, []string{"Love"}, result.Themes)
		assert.Contains(t, result.OverallSummary, "The Long Road explores")
	})

	t.Run("short text fails without retrying", func(t *testing.T) {
		t.Parallel()
		completer := &fakeCompleter{responses: cannedResponses()}
		o := NewOrchestrator(completer, newFakeCache(), newFakeAnalysisRepo(), nil, testAnalysisConfig(), time.Hour)

		_, err := o.Analyze(context.Background(), "short", "book-5", "user-1", "Title", "", nil)

		require.Error(t, err)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeInsufficientText, appErr.Code)
		assert.Zero(t, completer.callCount())
	})

	t.Run("fresh analysis invalidates stale book caches", func(t *testing.T) {
		t.Parallel()
		cache := newFakeCache()
		cache.entries[repository.ContentCacheKey("book-7", "user-1")] = []byte(`{"items":[],"total":0}`)
		cache.entries[repository.AnalysisCacheKey("book-7", "user-2")] = []byte(`{}`)
		completer := &fakeCompleter{responses: cannedResponses()}
		o := NewOrchestrator(completer, cache, newFakeAnalysisRepo(), nil, testAnalysisConfig(), time.Hour)

		_, err := o.Analyze(context.Background(), sampleText, "book-7", "user-1", "Title", "", nil)

		require.NoError(t, err)
		assert.True(t, cache.has(repository.AnalysisCacheKey("book-7", "user-1")), "fresh result must be cached")
		assert.False(t, cache.has(repository.ContentCacheKey("book-7", "user-1")), "derived content cache must be cleared")
		assert.False(t, cache.has(repository.AnalysisCacheKey("book-7", "user-2")), "stale sibling analysis entries must be cleared")
	})

	t.Run("input errors are not cached", func(t *testing.T) {
		t.Parallel()
		cache := newFakeCache()
		completer := &fakeCompleter{responses: cannedResponses()}
		o := NewOrchestrator(completer, cache, newFakeAnalysisRepo(), nil, testAnalysisConfig(), time.Hour)

		_, err := o.Analyze(context.Background(), "short", "book-8", "user-1", "Title", "", nil)

		require.Error(t, err)
		assert.False(t, cache.has(repository.AnalysisCacheKey("book-8", "user-1")))
	})

	t.Run("extraction failure marker is a permanent input error", func(t *testing.T) {
		t.Parallel()
		completer := &fakeCompleter{responses: cannedResponses()}
		o := NewOrchestrator(completer, newFakeCache(), newFakeAnalysisRepo(), nil, testAnalysisConfig(), time.Hour)

		text := "[Extraction failed: the uploaded file could not be read as text.]"
		_, err := o.Analyze(context.Background(), text, "book-6", "user-1", "Title", "", nil)

		require.Error(t, err)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeExtractionMarker, appErr.Code)
		assert.Zero(t, completer.callCount())
	})
}

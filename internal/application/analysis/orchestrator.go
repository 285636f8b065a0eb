package analysis

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"book-social-ai-api/internal/config"
	"book-social-ai-api/internal/domain/entity"
	"book-social-ai-api/internal/domain/repository"
	wfmodel "book-social-ai-api/internal/workflow/model"
	"book-social-ai-api/internal/workflow/node"
	workflowport "book-social-ai-api/internal/workflow/port"
	workflowprompt "book-social-ai-api/internal/workflow/prompt"
	apperrors "book-social-ai-api/pkg/errors"
	"book-social-ai-api/pkg/logger"
	"book-social-ai-api/pkg/metrics"
	"book-social-ai-api/pkg/retry"
)

var tracer = otel.Tracer("application.analysis")

// 已知的文本提取失败标记，命中即视为永久性输入错误
var extractionFailureMarkers = []string{
	"[extraction failed",
	"could not extract text",
	"text extraction failed",
	"unable to extract",
}

// Options 单次分析的可选参数
type Options struct {
	// Provider 指定 LLM 提供商，空值用默认
	Provider string
	// ChapterSummaries 覆盖配置中的章节摘要开关
	ChapterSummaries *bool
}

// Orchestrator 书籍分析编排器。
// 状态机：pending -> analyzing -> complete | failed。
type Orchestrator struct {
	completer workflowport.Completer
	cache     repository.ResultCache
	repo      repository.AnalysisRepository
	tracker   *retry.Tracker
	cfg       config.AnalysisConfig
	cacheTTL  time.Duration
}

// NewOrchestrator 创建分析编排器。tracker 由调用方持有，可为 nil。
func NewOrchestrator(
	completer workflowport.Completer,
	cache repository.ResultCache,
	repo repository.AnalysisRepository,
	tracker *retry.Tracker,
	cfg config.AnalysisConfig,
	cacheTTL time.Duration,
) *Orchestrator {
	return &Orchestrator{
		completer: completer,
		cache:     cache,
		repo:      repo,
		tracker:   tracker,
		cfg:       cfg,
		cacheTTL:  cacheTTL,
	}
}

// Analyze 对整本书执行多阶段分析并返回结构化结果。
// 缓存走 Read-Through + singleflight：命中直接返回，未命中装载并回填，
// 并发同键请求只触发一次分析。历史完整结果直接复用；
// 残缺历史结果 + 文本不足时走合成降级路径。
func (o *Orchestrator) Analyze(ctx context.Context, text, bookID, userID, title, author string, opts *Options) (*entity.BookAnalysisResult, error) {
	ctx, span := tracer.Start(ctx, "analysis.Analyze")
	span.SetAttributes(
		attribute.String("book_id", bookID),
		attribute.String("user_id", userID),
	)
	defer span.End()

	ctx = logger.WithContext(ctx, logger.BookIDKey, bookID)
	ctx = logger.WithContext(ctx, logger.UserIDKey, userID)
	log := logger.FromContext(ctx)

	if opts == nil {
		opts = &Options{}
	}

	if o.cache == nil {
		return o.analyze(ctx, text, bookID, userID, title, author, opts)
	}

	var fresh *entity.BookAnalysisResult
	raw, err := o.cache.GetOrLoadSafe(ctx, repository.AnalysisCacheKey(bookID, userID), o.cacheTTL, func() (any, error) {
		result, err := o.analyze(ctx, text, bookID, userID, title, author, opts)
		if err != nil {
			return nil, err
		}
		fresh = result
		return result, nil
	})
	if err != nil {
		if fresh == nil && !apperrors.IsAppError(err) {
			// 缓存层故障按未命中处理，直接计算
			log.Warn("analysis cache unavailable, computing directly", "error", err)
			return o.analyze(ctx, text, bookID, userID, title, author, opts)
		}
		return nil, err
	}
	if fresh != nil {
		return fresh, nil
	}

	metrics.AnalysisTotal.WithLabelValues("cache_hit").Inc()
	var result entity.BookAnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Warn("analysis cache entry corrupt, recomputing", "error", err)
		return o.analyze(ctx, text, bookID, userID, title, author, opts)
	}
	return &result, nil
}

// analyze 执行完整分析流程：历史复用、降级合成、输入校验与全新抽取
func (o *Orchestrator) analyze(ctx context.Context, text, bookID, userID, title, author string, opts *Options) (*entity.BookAnalysisResult, error) {
	log := logger.FromContext(ctx)
	started := time.Now()

	// 1. 历史结果
	record, err := o.repo.GetByBookUser(ctx, bookID, userID)
	if err != nil {
		// 持久层故障按未命中处理
		log.Warn("analysis lookup failed, treating as miss", "error", err)
		record = nil
	}
	if record != nil && record.Result != nil {
		if IsComplete(record.Result, o.cfg.Completeness) {
			log.Info("reusing complete persisted analysis")
			metrics.AnalysisTotal.WithLabelValues("persisted_hit").Inc()
			return record.Result, nil
		}
		if utf8.RuneCountInString(strings.TrimSpace(text)) < o.cfg.MinTextLength {
			log.Warn("partial persisted analysis and insufficient text, synthesizing best-effort result")
			synthesized := SynthesizeFromPartial(record.Result, title)
			metrics.AnalysisTotal.WithLabelValues("synthesized").Inc()
			return &synthesized, nil
		}
	}

	// 2. 输入校验，永久性问题不重试
	if err := o.validateInput(text); err != nil {
		metrics.AnalysisTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	if record == nil {
		record = entity.NewBookAnalysisRecord(bookID, userID, title, author)
		if err := o.repo.Create(ctx, record); err != nil {
			log.Warn("failed to create analysis record", "error", err)
		}
	}
	record.StartAnalyzing()
	if err := o.repo.Update(ctx, record); err != nil {
		log.Warn("failed to update analysis record", "error", err)
	}

	// 全新分析会改变派生结果，先清掉这本书的陈旧缓存（含内容列表缓存）
	if o.cache != nil {
		if err := o.cache.InvalidateBook(ctx, bookID); err != nil {
			log.Warn("failed to invalidate stale book cache", "error", err)
		}
	}

	result, err := o.runExtraction(ctx, text, title, author, opts)
	if err != nil {
		record.Fail(err.Error())
		if uerr := o.repo.Update(ctx, record); uerr != nil {
			log.Warn("failed to persist failed analysis record", "error", uerr)
		}
		metrics.AnalysisTotal.WithLabelValues("failure").Inc()
		metrics.AnalysisDuration.WithLabelValues("failure").Observe(time.Since(started).Seconds())
		return nil, apperrors.Wrap(err, apperrors.CodeAnalysisFailed, "book analysis failed")
	}

	record.Complete(result)
	if err := o.repo.Update(ctx, record); err != nil {
		log.Warn("failed to persist completed analysis record", "error", err)
	}

	metrics.AnalysisTotal.WithLabelValues("success").Inc()
	metrics.AnalysisDuration.WithLabelValues("success").Observe(time.Since(started).Seconds())
	log.Info("book analysis completed",
		"themes", len(result.Themes),
		"quotes", len(result.Quotes),
		"chapters", len(result.ChapterSummaries),
		"duration", time.Since(started),
	)
	return result, nil
}

// validateInput 校验源文本，失败是致命的输入错误
func (o *Orchestrator) validateInput(text string) error {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < o.cfg.MinTextLength {
		return apperrors.ErrInsufficientText.WithDetail(
			"text must be at least " + strconv.Itoa(o.cfg.MinTextLength) + " characters")
	}
	lowered := strings.ToLower(trimmed)
	for _, marker := range extractionFailureMarkers {
		if strings.Contains(lowered, marker) {
			return apperrors.ErrExtractionMarker
		}
	}
	return nil
}

// runExtraction 执行分块与并发抽取，组装归一化结果
func (o *Orchestrator) runExtraction(ctx context.Context, text, title, author string, opts *Options) (*entity.BookAnalysisResult, error) {
	chunks := SplitText(text, o.cfg.MaxChunkSize)
	metrics.AnalysisChunkCount.Observe(float64(len(chunks)))

	// 抽取素材跨分块取样（开头 + 中段 + 结尾），控制在单块预算内
	excerpt := sampleExcerpt(chunks, o.cfg.MaxChunkSize)
	vars := map[string]any{
		"book_title": title,
		"author":     orUnknown(author),
		"text":       excerpt,
	}

	var (
		themes, quotes, insights, discussion []string
		summary, genre, audience             string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		parsed, err := o.extract(gctx, "analysis.themes", workflowprompt.PromptThemesV1, vars, opts.Provider)
		if err != nil {
			return err
		}
		themes = parsed.StringItems()
		return nil
	})
	g.Go(func() error {
		parsed, err := o.extract(gctx, "analysis.quotes", workflowprompt.PromptQuotesV1, vars, opts.Provider)
		if err != nil {
			return err
		}
		quotes = parsed.StringItems()
		return nil
	})
	g.Go(func() error {
		parsed, err := o.extract(gctx, "analysis.insights", workflowprompt.PromptInsightsV1, vars, opts.Provider)
		if err != nil {
			return err
		}
		insights = parsed.StringItems()
		return nil
	})
	g.Go(func() error {
		parsed, err := o.extract(gctx, "analysis.summary", workflowprompt.PromptOverallSummaryV1, vars, opts.Provider)
		if err != nil {
			return err
		}
		summary = firstNonEmpty(parsed.StringItems())
		return nil
	})
	g.Go(func() error {
		parsed, err := o.extract(gctx, "analysis.genre_audience", workflowprompt.PromptGenreAudienceV1, vars, opts.Provider)
		if err != nil {
			return err
		}
		genre = parsed.StringField("genre")
		audience = parsed.StringField("target_audience", "audience")
		return nil
	})
	g.Go(func() error {
		parsed, err := o.extract(gctx, "analysis.discussion", workflowprompt.PromptDiscussionV1, vars, opts.Provider)
		if err != nil {
			return err
		}
		discussion = parsed.StringItems()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var chapterSummaries []entity.ChapterSummary
	if o.chapterSummariesEnabled(opts) {
		chapterSummaries = o.summarizeChapters(ctx, text, title, opts.Provider)
	}

	result := Normalize(&entity.BookAnalysisResult{
		Themes:           themes,
		Quotes:           quotes,
		KeyInsights:      insights,
		ChapterSummaries: chapterSummaries,
		OverallSummary:   strings.TrimSpace(summary),
		Genre:            strings.TrimSpace(genre),
		TargetAudience:   strings.TrimSpace(audience),
		DiscussionPoints: discussion,
	})
	return &result, nil
}

// summarizeChapters 分批并发生成章节摘要。
// 批内并发数 = ChapterBatchSize，批间固定停顿是对上游限流的礼貌节流。
// 单章失败只丢弃该章，不影响整体分析。
func (o *Orchestrator) summarizeChapters(ctx context.Context, text, title, provider string) []entity.ChapterSummary {
	log := logger.FromContext(ctx)
	sections := DetectSections(text, o.cfg.MaxChunkSize, o.cfg.MaxFallbackSections)

	batchSize := o.cfg.ChapterBatchSize
	if batchSize < 1 {
		batchSize = 3
	}

	summaries := make([]entity.ChapterSummary, len(sections))
	done := make([]bool, len(sections))

	for start := 0; start < len(sections); start += batchSize {
		end := start + batchSize
		if end > len(sections) {
			end = len(sections)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			idx := i
			section := sections[i]
			g.Go(func() error {
				cs, err := o.summarizeSection(gctx, section, title, provider)
				if err != nil {
					log.Warn("chapter summary failed, skipping chapter",
						"chapter", section.Number, "error", err)
					return nil
				}
				summaries[idx] = cs
				done[idx] = true
				return nil
			})
		}
		// handlers 自行吞掉错误，Wait 只会因 ctx 取消而返回
		if err := g.Wait(); err != nil {
			break
		}

		if end < len(sections) && o.cfg.ChapterBatchPause > 0 {
			select {
			case <-ctx.Done():
				return collectDone(summaries, done)
			case <-time.After(o.cfg.ChapterBatchPause):
			}
		}
	}

	return collectDone(summaries, done)
}

func (o *Orchestrator) summarizeSection(ctx context.Context, section Section, title, provider string) (entity.ChapterSummary, error) {
	parsed, err := o.extract(ctx, "analysis.chapter_summary", workflowprompt.PromptChapterSummaryV1, map[string]any{
		"book_title":     title,
		"chapter_number": section.Number,
		"text":           node.TruncateByRunes(section.Text, o.cfg.MaxChunkSize),
	}, provider)
	if err != nil {
		return entity.ChapterSummary{}, err
	}

	cs := entity.ChapterSummary{
		ChapterNumber: section.Number,
		Title:         section.Title,
		KeyPoints:     []string{},
	}
	if t := parsed.StringField("title"); t != "" {
		cs.Title = t
	}
	cs.Summary = parsed.StringField("summary")
	if cs.Summary == "" {
		cs.Summary = firstNonEmpty(parsed.StringItems())
	}
	if points, ok := fieldStrings(parsed, "key_points"); ok {
		cs.KeyPoints = points
	}
	return cs, nil
}

// extract 执行单次带重试的抽取调用并宽松解析
func (o *Orchestrator) extract(ctx context.Context, workflow string, promptID workflowprompt.PromptID, vars map[string]any, provider string) (node.ParsedResponse, error) {
	out, err := retry.Do(ctx, o.tracker, workflow, retry.AIService(), func(ctx context.Context) (*wfmodel.CompletionOutput, error) {
		return o.completer.Complete(ctx, &wfmodel.CompletionInput{
			Workflow: workflow,
			PromptID: string(promptID),
			Vars:     vars,
			Provider: provider,
		})
	})
	if err != nil {
		return node.ParsedResponse{}, err
	}
	return node.ParseLoose(out.Text), nil
}

func (o *Orchestrator) chapterSummariesEnabled(opts *Options) bool {
	if opts != nil && opts.ChapterSummaries != nil {
		return *opts.ChapterSummaries
	}
	return o.cfg.EnableChapterSummaries
}

func collectDone(summaries []entity.ChapterSummary, done []bool) []entity.ChapterSummary {
	out := make([]entity.ChapterSummary, 0, len(summaries))
	for i, ok := range done {
		if ok {
			out = append(out, summaries[i])
		}
	}
	return out
}

// fieldStrings 从对象形态的解析结果中取字符串列表字段
func fieldStrings(p node.ParsedResponse, key string) ([]string, bool) {
	if p.Kind != node.KindObject {
		return nil, false
	}
	raw, ok := p.Object[key]
	if !ok {
		return nil, false
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out, true
}

func firstNonEmpty(items []string) string {
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			return strings.TrimSpace(item)
		}
	}
	return ""
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return strings.TrimSpace(s)
}

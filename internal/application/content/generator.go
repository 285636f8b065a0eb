package content

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"book-social-ai-api/internal/application/hashtag"
	"book-social-ai-api/internal/application/imagesuggest"
	"book-social-ai-api/internal/config"
	"book-social-ai-api/internal/domain/entity"
	wfmodel "book-social-ai-api/internal/workflow/model"
	workflowport "book-social-ai-api/internal/workflow/port"
	workflowprompt "book-social-ai-api/internal/workflow/prompt"
	"book-social-ai-api/pkg/logger"
	"book-social-ai-api/pkg/metrics"
	"book-social-ai-api/pkg/retry"
)

var tracer = otel.Tracer("application.content")

// 素材数量上限：引用 5、洞见 3、主题 3、讨论点 2，摘要单独 1
const (
	maxQuoteSources      = 5
	maxInsightSources    = 3
	maxThemeSources      = 3
	maxDiscussionSources = 2

	// baseTemperature 首个变体的生成温度，此后每个变体 +temperatureStep 提升词汇多样性
	baseTemperature float32 = 0.7
	temperatureStep float32 = 0.1

	// sourceConcurrency 素材级并发上限
	sourceConcurrency = 4
)

// Options 单次内容生成的可选参数
type Options struct {
	// Platforms 目标平台，空值用全部四个
	Platforms []entity.Platform
	// VariationsPerSource 每个素材的变体数，<=0 用配置默认
	VariationsPerSource int
	// Tone 语气，非法值用配置默认
	Tone entity.Tone
	// IncludeImages 覆盖配置中的配图开关
	IncludeImages *bool
	// Provider 指定 LLM 提供商
	Provider string
}

// Generator 社交内容生成器。
// 单个平台/变体的失败绝不中断整批：重试耗尽后换用确定性替代文案。
type Generator struct {
	completer workflowport.Completer
	tracker   *retry.Tracker
	cfg       config.ContentConfig
}

// NewGenerator 创建内容生成器。tracker 由调用方持有，可为 nil。
func NewGenerator(completer workflowport.Completer, tracker *retry.Tracker, cfg config.ContentConfig) *Generator {
	return &Generator{
		completer: completer,
		tracker:   tracker,
		cfg:       cfg,
	}
}

// source 一条用于生成的素材
type source struct {
	kind    entity.SourceType
	content string
}

// Generate 基于分析结果生成跨平台内容变体。
// 维度：素材 × 变体数 × 平台；调用方始终拿到完整、已校验的帖子集合。
func (g *Generator) Generate(ctx context.Context, analysis *entity.BookAnalysisResult, title, bookID, userID, author string, opts *Options) ([]entity.ContentVariation, error) {
	ctx, span := tracer.Start(ctx, "content.Generate")
	span.SetAttributes(
		attribute.String("book_id", bookID),
		attribute.String("user_id", userID),
	)
	defer span.End()

	ctx = logger.WithContext(ctx, logger.BookIDKey, bookID)
	ctx = logger.WithContext(ctx, logger.UserIDKey, userID)

	opts = g.normalizeOptions(opts)
	sources := collectSources(analysis)
	if len(sources) == 0 {
		return []entity.ContentVariation{}, nil
	}

	variationsPerSource := opts.VariationsPerSource
	total := len(sources) * variationsPerSource
	variations := make([]entity.ContentVariation, total)

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(sourceConcurrency)

	for si, src := range sources {
		for v := 0; v < variationsPerSource; v++ {
			idx := si*variationsPerSource + v
			src := src
			v := v
			eg.Go(func() error {
				variations[idx] = g.generateVariation(egctx, analysis, src, v, title, author, opts)
				return nil
			})
		}
	}
	// 变体内部自行降级，这里只可能因 ctx 取消而出错
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return variations, nil
}

// generateVariation 为一条素材生成一个跨平台变体。
// 组内所有帖子共享同一 SourceContent/SourceType。
func (g *Generator) generateVariation(ctx context.Context, analysis *entity.BookAnalysisResult, src source, variationIdx int, title, author string, opts *Options) entity.ContentVariation {
	variation := entity.ContentVariation{
		ID:            uuid.NewString(),
		SourceType:    src.kind,
		SourceContent: src.content,
		Posts:         make([]entity.GeneratedPost, 0, len(opts.Platforms)),
	}

	temperature := baseTemperature + temperatureStep*float32(variationIdx)

	for _, platform := range opts.Platforms {
		post := g.generatePost(ctx, analysis, src, platform, temperature, title, author, opts)
		variation.Posts = append(variation.Posts, post)
	}
	return variation
}

// generatePost 生成单个平台的帖子，重试耗尽时落到替代文案
func (g *Generator) generatePost(ctx context.Context, analysis *entity.BookAnalysisResult, src source, platform entity.Platform, temperature float32, title, author string, opts *Options) entity.GeneratedPost {
	log := logger.FromContext(ctx)
	started := time.Now()

	constraint, _ := entity.ConstraintFor(platform)
	hashtags := hashtag.SelectOptimal(
		hashtag.Suggest(analysis, title, author, platform, src.kind),
		platform,
	)

	post := entity.GeneratedPost{
		Platform: platform,
		Hashtags: hashtags,
	}

	temp := temperature
	out, err := retry.Do(ctx, g.tracker, "content.post_gen", g.retryConfig(), func(ctx context.Context) (*wfmodel.CompletionOutput, error) {
		return g.completer.Complete(ctx, &wfmodel.CompletionInput{
			Workflow: "content.post_gen",
			PromptID: string(workflowprompt.PromptPostGenV1),
			Vars: map[string]any{
				"book_title":     title,
				"author":         orUnknown(author),
				"platform":       string(platform),
				"max_length":     constraint.MaxLength,
				"optimal_min":    constraint.OptimalMinLength,
				"optimal_max":    constraint.OptimalMaxLength,
				"tone":           string(opts.Tone),
				"source_type":    string(src.kind),
				"source_content": src.content,
			},
			Provider:    opts.Provider,
			Temperature: &temp,
		})
	})

	if err != nil || out == nil || strings.TrimSpace(out.Text) == "" {
		// 刻意不向调用方暴露失败：替代文案保证每个平台都有可发布的帖子
		log.Warn("post generation exhausted retries, substituting fallback content",
			"platform", platform,
			"source_type", src.kind,
			"error", err,
		)
		metrics.ContentFallbackTotal.WithLabelValues(string(platform), string(src.kind)).Inc()
		metrics.ContentGenerationTotal.WithLabelValues(string(platform), "fallback").Inc()

		budget := constraint.MaxLength - hashtagSuffixRunes(hashtags)
		post.Content = BuildFallback(src.kind, src.content, title, author, budget)
		post.Fallback = true
	} else {
		metrics.ContentGenerationTotal.WithLabelValues(string(platform), "generated").Inc()
		post.Content = strings.TrimSpace(out.Text)
	}
	metrics.ContentGenerationDuration.WithLabelValues(string(platform)).Observe(time.Since(started).Seconds())

	if g.imagesEnabled(opts) && constraint.ImageSupported {
		suggestions := imagesuggest.Suggest(post.Content, platform, src.kind, title, analysisGenre(analysis), analysisThemes(analysis))
		if len(suggestions) > 0 {
			post.ImageURL = imagesuggest.EncodeReference(suggestions[0], platform)
		}
	}

	ValidatePost(&post)
	post.EngagementPotential = ScoreEngagement(&post)
	return post
}

func (g *Generator) retryConfig() retry.Config {
	cfg := retry.AIService()
	if g.cfg.MaxRetries > 0 {
		cfg.MaxAttempts = g.cfg.MaxRetries
	}
	return cfg
}

func (g *Generator) normalizeOptions(opts *Options) *Options {
	out := Options{}
	if opts != nil {
		out = *opts
	}
	if len(out.Platforms) == 0 {
		out.Platforms = entity.AllPlatforms
	}
	if out.VariationsPerSource <= 0 {
		out.VariationsPerSource = g.cfg.VariationsPerSource
	}
	if out.VariationsPerSource <= 0 {
		out.VariationsPerSource = 2
	}
	if !out.Tone.IsValid() {
		if t := entity.Tone(g.cfg.DefaultTone); t.IsValid() {
			out.Tone = t
		} else {
			out.Tone = entity.ToneProfessional
		}
	}
	return &out
}

func (g *Generator) imagesEnabled(opts *Options) bool {
	if opts != nil && opts.IncludeImages != nil {
		return *opts.IncludeImages
	}
	return g.cfg.IncludeImages
}

// collectSources 从分析结果中选出限量素材
func collectSources(analysis *entity.BookAnalysisResult) []source {
	if analysis == nil {
		return nil
	}

	var sources []source
	appendCapped := func(kind entity.SourceType, items []string, limit int) {
		for i, item := range items {
			if i == limit {
				break
			}
			if strings.TrimSpace(item) == "" {
				continue
			}
			sources = append(sources, source{kind: kind, content: strings.TrimSpace(item)})
		}
	}

	appendCapped(entity.SourceTypeQuote, analysis.Quotes, maxQuoteSources)
	appendCapped(entity.SourceTypeInsight, analysis.KeyInsights, maxInsightSources)
	appendCapped(entity.SourceTypeTheme, analysis.Themes, maxThemeSources)
	if s := strings.TrimSpace(analysis.OverallSummary); s != "" && s != entity.PlaceholderSummary {
		sources = append(sources, source{kind: entity.SourceTypeSummary, content: s})
	}
	appendCapped(entity.SourceTypeDiscussion, analysis.DiscussionPoints, maxDiscussionSources)

	return sources
}

func hashtagSuffixRunes(hashtags []string) int {
	if len(hashtags) == 0 {
		return 0
	}
	return len([]rune(" " + strings.Join(hashtags, " ")))
}

func analysisGenre(analysis *entity.BookAnalysisResult) string {
	if analysis == nil {
		return ""
	}
	return analysis.Genre
}

func analysisThemes(analysis *entity.BookAnalysisResult) []string {
	if analysis == nil {
		return nil
	}
	return analysis.Themes
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return strings.TrimSpace(s)
}

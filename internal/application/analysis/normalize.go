package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"book-social-ai-api/internal/config"
	"book-social-ai-api/internal/domain/entity"
)

// Normalize 把可能残缺的分析结果补齐为完整结果。
// 默认值表：列表字段 -> 空列表；OverallSummary/Genre/TargetAudience -> 占位常量。
// 纯函数，不做 I/O。
func Normalize(partial *entity.BookAnalysisResult) entity.BookAnalysisResult {
	var out entity.BookAnalysisResult
	if partial != nil {
		out = *partial
	}

	if out.Themes == nil {
		out.Themes = []string{}
	}
	if out.Quotes == nil {
		out.Quotes = []string{}
	}
	if out.KeyInsights == nil {
		out.KeyInsights = []string{}
	}
	if out.ChapterSummaries == nil {
		out.ChapterSummaries = []entity.ChapterSummary{}
	}
	if out.DiscussionPoints == nil {
		out.DiscussionPoints = []string{}
	}
	if strings.TrimSpace(out.OverallSummary) == "" {
		out.OverallSummary = entity.PlaceholderSummary
	}
	if strings.TrimSpace(out.Genre) == "" {
		out.Genre = entity.PlaceholderGenre
	}
	if strings.TrimSpace(out.TargetAudience) == "" {
		out.TargetAudience = entity.PlaceholderAudience
	}
	return out
}

// IsComplete 判定一份历史分析结果是否完整到可以直接复用：
// 核心列表均非空、摘要超过阈值且不是占位值、genre/audience 已生成、
// 讨论点达到最少数量。
func IsComplete(result *entity.BookAnalysisResult, thresholds config.CompletenessConfig) bool {
	if result == nil {
		return false
	}
	if len(result.Themes) == 0 || len(result.Quotes) == 0 || len(result.KeyInsights) == 0 {
		return false
	}
	summary := strings.TrimSpace(result.OverallSummary)
	if summary == entity.PlaceholderSummary || utf8.RuneCountInString(summary) < thresholds.MinSummaryRunes {
		return false
	}
	if strings.TrimSpace(result.Genre) == "" || result.Genre == entity.PlaceholderGenre {
		return false
	}
	if strings.TrimSpace(result.TargetAudience) == "" || result.TargetAudience == entity.PlaceholderAudience {
		return false
	}
	minPoints := thresholds.MinDiscussionPoints
	if minPoints < 1 {
		minPoints = 1
	}
	return len(result.DiscussionPoints) >= minPoints
}

// SynthesizeFromPartial 基于残缺的历史结果合成尽力而为的完整结果。
// 只允许用模板补 insights/summary/audience 一类的样板字段，
// 绝不捏造 themes/quotes —— 这是刻意的降级路径，不是静默成功。
func SynthesizeFromPartial(partial *entity.BookAnalysisResult, title string) entity.BookAnalysisResult {
	out := Normalize(partial)

	if len(out.KeyInsights) == 0 && len(out.Themes) > 0 {
		insights := make([]string, 0, len(out.Themes))
		for _, theme := range out.Themes {
			insights = append(insights, fmt.Sprintf("Explores the theme of %s.", strings.ToLower(theme)))
		}
		out.KeyInsights = insights
	}

	if out.OverallSummary == entity.PlaceholderSummary && len(out.Themes) > 0 {
		out.OverallSummary = fmt.Sprintf(
			"%s explores %s.",
			strings.TrimSpace(title),
			joinNatural(out.Themes, 3),
		)
	}

	if out.TargetAudience == entity.PlaceholderAudience && out.Genre != entity.PlaceholderGenre {
		out.TargetAudience = fmt.Sprintf("Readers interested in %s.", strings.ToLower(out.Genre))
	}

	if len(out.DiscussionPoints) == 0 && len(out.Themes) > 0 {
		points := make([]string, 0, 2)
		for _, theme := range out.Themes {
			points = append(points, fmt.Sprintf("How does the book's treatment of %s relate to your own experience?", strings.ToLower(theme)))
			if len(points) == 2 {
				break
			}
		}
		out.DiscussionPoints = points
	}

	return out
}

// joinNatural 取前 n 个元素连成自然语言列举
func joinNatural(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	lowered := make([]string, len(items))
	for i, item := range items {
		lowered[i] = strings.ToLower(strings.TrimSpace(item))
	}
	switch len(lowered) {
	case 0:
		return ""
	case 1:
		return lowered[0]
	default:
		return strings.Join(lowered[:len(lowered)-1], ", ") + " and " + lowered[len(lowered)-1]
	}
}

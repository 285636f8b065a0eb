// Package imagesuggest 实现配图建议：纯函数，不调用任何外部服务。
package imagesuggest

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"book-social-ai-api/internal/domain/entity"
)

// Suggestion 单条配图建议描述
type Suggestion struct {
	// Kind 模板标识，如 quote-card / infographic
	Kind string `json:"kind"`
	// Style 视觉风格
	Style string `json:"style"`
	// Palette 配色方案
	Palette []string `json:"palette"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	// Prompt 交给图像生成器的文字描述
	Prompt string  `json:"prompt"`
	Score  float64 `json:"score"`
}

// 主题 -> 配色查找表，未命中用中性色
var themePalettes = map[string][]string{
	"love":       {"#8E2A4E", "#D96C8A", "#F2D5DC"},
	"nature":     {"#1F4D2E", "#5C8A4E", "#CFE3C2"},
	"war":        {"#2B2B2B", "#7A1F1F", "#C9B79C"},
	"technology": {"#0B2545", "#1B6CA8", "#9AD1D4"},
	"family":     {"#6B4226", "#C98B4B", "#F2E2C4"},
	"identity":   {"#3D2B56", "#8460A8", "#D9CCE8"},
	"power":      {"#1A1A2E", "#9E2B25", "#D4AF37"},
	"loss":       {"#2F3E46", "#6C7A80", "#CAD2C5"},
	"courage":    {"#9E2B25", "#E07A5F", "#F4F1DE"},
}

var neutralPalette = []string{"#2F3E46", "#84A98C", "#F2F2F2"}

// 平台 -> 推荐尺寸
var platformDimensions = map[entity.Platform][2]int{
	entity.PlatformTwitter:   {1200, 675},
	entity.PlatformInstagram: {1080, 1080},
	entity.PlatformLinkedIn:  {1200, 627},
	entity.PlatformFacebook:  {1200, 630},
}

type template struct {
	kind  string
	style string
	score float64
}

// 素材类型 -> 候选模板，池内分值递减即为排序依据
var templatesBySource = map[entity.SourceType][]template{
	entity.SourceTypeQuote: {
		{kind: "quote-card", style: "minimalist", score: 1.0},
		{kind: "quote-card", style: "artistic", score: 0.9},
		{kind: "quote-card", style: "modern", score: 0.8},
	},
	entity.SourceTypeInsight: {
		{kind: "concept", style: "clean", score: 1.0},
		{kind: "infographic", style: "flat", score: 0.85},
	},
	entity.SourceTypeTheme: {
		{kind: "atmosphere", style: "abstract", score: 1.0},
		{kind: "atmosphere", style: "photographic", score: 0.85},
	},
	entity.SourceTypeSummary: {
		{kind: "book-feature", style: "editorial", score: 1.0},
		{kind: "book-feature", style: "collage", score: 0.8},
	},
	entity.SourceTypeDiscussion: {
		{kind: "question-card", style: "bold", score: 1.0},
		{kind: "question-card", style: "playful", score: 0.8},
	},
}

// Suggest 为一条帖子生成至多 3 条按分值排序的配图建议。
// 调用方取第一条并用 EncodeReference 换成不透明引用。
func Suggest(content string, platform entity.Platform, sourceType entity.SourceType, title, genre string, themes []string) []Suggestion {
	templates, ok := templatesBySource[sourceType]
	if !ok {
		templates = templatesBySource[entity.SourceTypeSummary]
	}

	palette := paletteFor(themes)
	dims, ok := platformDimensions[platform]
	if !ok {
		dims = [2]int{1200, 675}
	}

	out := make([]Suggestion, 0, 3)
	for _, t := range templates {
		out = append(out, Suggestion{
			Kind:    t.kind,
			Style:   t.style,
			Palette: palette,
			Width:   dims[0],
			Height:  dims[1],
			Prompt:  buildPrompt(t, content, title, genre),
			Score:   t.score,
		})
		if len(out) == 3 {
			break
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// EncodeReference 把建议编码为不透明引用。
// 纯函数：同一建议始终得到同一引用，由下游渲染服务自行解析。
func EncodeReference(s Suggestion, platform entity.Platform) string {
	q := url.Values{}
	q.Set("style", s.Style)
	q.Set("w", strconv.Itoa(s.Width))
	q.Set("h", strconv.Itoa(s.Height))
	q.Set("palette", strings.Join(s.Palette, ","))
	q.Set("prompt", s.Prompt)
	return fmt.Sprintf("imggen://%s/%s?%s", platform, s.Kind, q.Encode())
}

func paletteFor(themes []string) []string {
	for _, theme := range themes {
		key := strings.ToLower(strings.TrimSpace(theme))
		if palette, ok := themePalettes[key]; ok {
			return palette
		}
	}
	return neutralPalette
}

func buildPrompt(t template, content, title, genre string) string {
	excerpt := strings.TrimSpace(content)
	if len([]rune(excerpt)) > 140 {
		excerpt = string([]rune(excerpt)[:140])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s visual for the book %q", t.style, t.kind, strings.TrimSpace(title))
	if genre != "" && genre != entity.PlaceholderGenre {
		fmt.Fprintf(&b, " (%s)", strings.ToLower(genre))
	}
	if excerpt != "" {
		fmt.Fprintf(&b, ", centered on: %s", excerpt)
	}
	return b.String()
}

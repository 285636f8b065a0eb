package content

import (
	"math"
	"strings"
	"unicode/utf8"

	"book-social-ai-api/internal/domain/entity"
)

// 行动号召关键词，小写匹配
var ctaKeywords = []string{
	"discover", "learn", "check out", "find out", "join",
	"share", "read more", "don't miss", "explore", "grab your copy",
	"tell us", "what do you think", "comment below",
}

// 过于宽泛的标签会拉低标签质量分
var genericHashtags = map[string]bool{
	"#books":     true,
	"#book":      true,
	"#reading":   true,
	"#read":      true,
	"#mustread":  true,
	"#goodreads": true,
}

// ScoreEngagement 计算 1-5 的互动潜力分。
// 确定性的结构特征加权模型，不依赖外部调用：
// 基础分 1，提问 +0.8，行动号召 +0.6，emoji +0.4，
// 长度落在平台最优区间 +0.7，0.5×标签质量，0.4×可读性，四舍五入并夹取到 [1,5]。
func ScoreEngagement(post *entity.GeneratedPost) int {
	if post == nil {
		return 1
	}

	score := 1.0
	content := post.Content

	if strings.ContainsAny(content, "?？") {
		score += 0.8
	}
	if containsCTA(content) {
		score += 0.6
	}
	if containsEmoji(content) {
		score += 0.4
	}
	if constraint, ok := entity.ConstraintFor(post.Platform); ok {
		n := utf8.RuneCountInString(content)
		if n >= constraint.OptimalMinLength && n <= constraint.OptimalMaxLength {
			score += 0.7
		}
	}
	score += 0.5 * hashtagQuality(post.Hashtags)
	score += 0.4 * readability(content)

	rounded := int(math.Round(score))
	if rounded < 1 {
		rounded = 1
	}
	if rounded > 5 {
		rounded = 5
	}
	return rounded
}

func containsCTA(content string) bool {
	lowered := strings.ToLower(content)
	for _, kw := range ctaKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func containsEmoji(content string) bool {
	for _, r := range content {
		if (r >= 0x1F300 && r <= 0x1FAFF) ||
			(r >= 0x2600 && r <= 0x27BF) ||
			(r >= 0x1F000 && r <= 0x1F2FF) {
			return true
		}
	}
	return false
}

// hashtagQuality ∈ [0,1]：标签数量落在 [3,8] 加分，
// 非泛化标签占比越高越好。
func hashtagQuality(hashtags []string) float64 {
	if len(hashtags) == 0 {
		return 0
	}

	quality := 0.2
	if len(hashtags) >= 3 && len(hashtags) <= 8 {
		quality = 0.5
	}

	specific := 0
	for _, tag := range hashtags {
		if !genericHashtags[strings.ToLower(tag)] {
			specific++
		}
	}
	quality += 0.5 * float64(specific) / float64(len(hashtags))

	if quality > 1 {
		quality = 1
	}
	return quality
}

// readability 按平均句长分档：10-15 词最优，8-18 词可接受，其余偏低
func readability(content string) float64 {
	sentences := strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	totalWords := 0
	sentenceCount := 0
	for _, s := range sentences {
		words := len(strings.Fields(s))
		if words == 0 {
			continue
		}
		totalWords += words
		sentenceCount++
	}
	if sentenceCount == 0 {
		return 0.4
	}

	avg := float64(totalWords) / float64(sentenceCount)
	switch {
	case avg >= 10 && avg <= 15:
		return 1.0
	case avg >= 8 && avg <= 18:
		return 0.7
	default:
		return 0.4
	}
}

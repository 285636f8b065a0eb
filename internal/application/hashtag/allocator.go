// Package hashtag 实现按类别配额的话题标签分配。
package hashtag

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"book-social-ai-api/internal/domain/entity"
)

// Category 候选标签的来源类别
type Category string

const (
	CategoryBook       Category = "book"
	CategoryGenre      Category = "genre"
	CategoryTheme      Category = "theme"
	CategoryPlatform   Category = "platform"
	CategoryEngagement Category = "engagement"
)

// Candidate 一个候选标签。Relevance 在池内随位置单调递减。
type Candidate struct {
	Tag       string
	Category  Category
	Relevance float64
}

// 类别配额占平台预算的比例
var categoryShare = map[Category]float64{
	CategoryBook:       0.20,
	CategoryGenre:      0.20,
	CategoryTheme:      0.30,
	CategoryPlatform:   0.20,
	CategoryEngagement: 0.10,
}

// 池内基准分，类别间用于粗排
var poolBase = map[Category]float64{
	CategoryBook:       1.00,
	CategoryGenre:      0.90,
	CategoryTheme:      0.85,
	CategoryPlatform:   0.70,
	CategoryEngagement: 0.55,
}

var genreTags = map[string][]string{
	"fiction":         {"Fiction", "LiteraryFiction", "FictionBooks"},
	"nonfiction":      {"NonFiction", "RealStories"},
	"mystery":         {"Mystery", "Thriller", "WhoDunIt"},
	"romance":         {"Romance", "RomanceBooks", "LoveStory"},
	"science fiction": {"SciFi", "ScienceFiction", "SFF"},
	"fantasy":         {"Fantasy", "FantasyBooks", "EpicFantasy"},
	"self-help":       {"SelfHelp", "PersonalGrowth", "SelfImprovement"},
	"business":        {"BusinessBooks", "Entrepreneurship", "Leadership"},
	"biography":       {"Biography", "TrueStory", "Memoir"},
	"history":         {"History", "HistoryBooks", "HistoryLovers"},
	"philosophy":      {"Philosophy", "DeepThoughts", "BigIdeas"},
	"psychology":      {"Psychology", "HumanBehavior", "MindScience"},
}

var themeTags = map[string][]string{
	"love":       {"Love", "Relationships"},
	"friendship": {"Friendship", "Connection"},
	"loss":       {"Grief", "Healing"},
	"identity":   {"Identity", "SelfDiscovery"},
	"power":      {"Power", "Ambition"},
	"family":     {"Family", "FamilySaga"},
	"war":        {"War", "Conflict"},
	"nature":     {"Nature", "Wilderness"},
	"technology": {"Technology", "FutureTech"},
	"justice":    {"Justice", "SocialChange"},
	"growth":     {"Growth", "Transformation"},
	"courage":    {"Courage", "Resilience"},
}

var platformTags = map[entity.Platform][]string{
	entity.PlatformTwitter:   {"BookTwitter", "AmReading"},
	entity.PlatformInstagram: {"Bookstagram", "BookLover", "ReadersOfInstagram", "BookishLife"},
	entity.PlatformLinkedIn:  {"ProfessionalDevelopment", "LifelongLearning", "BusinessReading"},
	entity.PlatformFacebook:  {"BookClub", "ReadingCommunity"},
}

var contentTypeTags = map[entity.SourceType][]string{
	entity.SourceTypeQuote:      {"BookQuotes", "QOTD"},
	entity.SourceTypeInsight:    {"BookInsights", "KeyTakeaways"},
	entity.SourceTypeTheme:      {"BookThemes"},
	entity.SourceTypeSummary:    {"BookSummary", "WhatToRead"},
	entity.SourceTypeDiscussion: {"BookDiscussion", "BookClubQuestions"},
}

var engagementTags = []string{"Books", "Reading", "BookRecommendations", "MustRead"}

// Suggest 从六个独立候选池生成带类别与相关度的候选列表：
// 书名/作者、类型、主题（取前 3 个）、平台惯例、素材类型、通用互动标签。
func Suggest(analysis *entity.BookAnalysisResult, title, author string, platform entity.Platform, contentType entity.SourceType) []Candidate {
	var out []Candidate
	seen := make(map[string]bool)

	add := func(category Category, tags ...string) {
		base := poolBase[category]
		for i, tag := range tags {
			cleaned := sanitizeTag(tag)
			if cleaned == "" {
				continue
			}
			key := strings.ToLower(cleaned)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Candidate{
				Tag:       cleaned,
				Category:  category,
				Relevance: base - 0.05*float64(i),
			})
		}
	}

	// 书名与作者
	bookPool := make([]string, 0, 3)
	if t := camelize(title); t != "" {
		bookPool = append(bookPool, t, t+"Book")
	}
	if a := camelize(author); a != "" {
		bookPool = append(bookPool, a)
	}
	add(CategoryBook, bookPool...)

	// 类型
	if analysis != nil {
		genre := strings.ToLower(strings.TrimSpace(analysis.Genre))
		if tags, ok := genreTags[genre]; ok {
			add(CategoryGenre, tags...)
		} else if genre != "" && analysis.Genre != entity.PlaceholderGenre {
			add(CategoryGenre, camelize(analysis.Genre))
		}

		// 主题，最多取前 3 个
		themePool := make([]string, 0, 6)
		for i, theme := range analysis.Themes {
			if i == 3 {
				break
			}
			key := strings.ToLower(strings.TrimSpace(theme))
			if tags, ok := themeTags[key]; ok {
				themePool = append(themePool, tags...)
			} else if t := camelize(theme); t != "" {
				themePool = append(themePool, t)
			}
		}
		add(CategoryTheme, themePool...)
	}

	// 平台惯例
	add(CategoryPlatform, platformTags[platform]...)

	// 素材类型与通用互动标签共用 engagement 类别，素材类型排前
	engagementPool := append(append([]string{}, contentTypeTags[contentType]...), engagementTags...)
	add(CategoryEngagement, engagementPool...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Relevance > out[j].Relevance
	})
	return out
}

// SelectOptimal 在平台预算内选出最终标签列表（带 # 前缀）。
// 先按类别配额（约 20/20/30/20/10）取各类别内相关度最高者，
// 再用剩余预算不分类别回填，保证没有类别垄断、预算不浪费。
func SelectOptimal(candidates []Candidate, platform entity.Platform) []string {
	constraint, ok := entity.ConstraintFor(platform)
	if !ok || constraint.HashtagLimit <= 0 || len(candidates) == 0 {
		return []string{}
	}
	budget := constraint.HashtagLimit

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Relevance > sorted[j].Relevance
	})

	quota := make(map[Category]int, len(categoryShare))
	for category, share := range categoryShare {
		quota[category] = int(math.Round(share * float64(budget)))
	}

	picked := make([]string, 0, budget)
	used := make(map[int]bool, budget)
	taken := make(map[Category]int, len(categoryShare))

	for i, c := range sorted {
		if len(picked) == budget {
			break
		}
		if taken[c.Category] >= quota[c.Category] {
			continue
		}
		taken[c.Category]++
		used[i] = true
		picked = append(picked, "#"+c.Tag)
	}

	// 回填：配额取完仍有预算时按相关度补齐
	for i, c := range sorted {
		if len(picked) == budget {
			break
		}
		if used[i] {
			continue
		}
		picked = append(picked, "#"+c.Tag)
	}

	return picked
}

// sanitizeTag 去掉非字母数字字符，保留原有大小写
func sanitizeTag(tag string) string {
	var b strings.Builder
	for _, r := range tag {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// camelize 把多词短语转为首字母大写的连写标签
func camelize(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, word := range words {
		runes := []rune(word)
		b.WriteRune(unicode.ToUpper(runes[0]))
		b.WriteString(string(runes[1:]))
	}
	return b.String()
}

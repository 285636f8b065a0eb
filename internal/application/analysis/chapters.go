package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Section 一段待摘要的章节文本
type Section struct {
	Number int
	Title  string
	Text   string
}

// 章节边界模式，按优先级排列，首个命中 >=2 次的模式生效
var chapterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?mi)^\s*chapter\s+(\d+|[ivxlc]+)\b[^\n]*$`),
	regexp.MustCompile(`(?mi)^\s*part\s+(\d+|[ivxlc]+)\b[^\n]*$`),
	regexp.MustCompile(`(?m)^\s*(\d+)[.)]\s+\S[^\n]*$`),
}

// DetectSections 识别章节边界并切出章节文本。
// 无模式命中且文本超过 fallbackThreshold 时退化为定长顺序分段（上限 maxSections）；
// 文本不长则整体作为单一章节。
func DetectSections(text string, fallbackThreshold, maxSections int) []Section {
	for _, pattern := range chapterPatterns {
		matches := pattern.FindAllStringIndex(text, -1)
		if len(matches) < 2 {
			continue
		}
		sections := make([]Section, 0, len(matches))
		for i, m := range matches {
			end := len(text)
			if i+1 < len(matches) {
				end = matches[i+1][0]
			}
			body := strings.TrimSpace(text[m[0]:end])
			title := strings.TrimSpace(text[m[0]:m[1]])
			sections = append(sections, Section{
				Number: i + 1,
				Title:  title,
				Text:   body,
			})
		}
		return sections
	}

	if utf8.RuneCountInString(text) <= fallbackThreshold {
		return []Section{{Number: 1, Text: strings.TrimSpace(text)}}
	}

	return fallbackSections(text, fallbackThreshold, maxSections)
}

// fallbackSections 无章节标记时按定长切段，段落数不超过 maxSections
func fallbackSections(text string, sectionSize, maxSections int) []Section {
	if maxSections < 1 {
		maxSections = 1
	}
	runes := []rune(text)
	total := len(runes)
	if sectionSize < 1 {
		sectionSize = total
	}

	count := (total + sectionSize - 1) / sectionSize
	if count > maxSections {
		count = maxSections
		sectionSize = (total + count - 1) / count
	}

	sections := make([]Section, 0, count)
	for i := 0; i < count; i++ {
		start := i * sectionSize
		end := start + sectionSize
		if end > total {
			end = total
		}
		body := strings.TrimSpace(string(runes[start:end]))
		if body == "" {
			continue
		}
		sections = append(sections, Section{
			Number: len(sections) + 1,
			Text:   body,
		})
	}
	return sections
}

// Package analysis 实现书籍分析编排：分块、并发抽取、归一化与缓存。
package analysis

import (
	"strings"
	"unicode/utf8"

	"book-social-ai-api/internal/workflow/node"
)

// SplitText 把任意长度文本切分为不超过 maxChunkSize 字符的有序分块。
// 在句子边界（. ! ?）切分，贪心装填：下一句放不下时开新块。
// 单句超长时独占一个超限块，绝不截断句中内容。
func SplitText(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		return []string{text}
	}
	if utf8.RuneCountInString(text) <= maxChunkSize {
		return []string{text}
	}

	sentences := splitSentences(text)
	chunks := make([]string, 0, utf8.RuneCountInString(text)/maxChunkSize+1)

	var current strings.Builder
	currentRunes := 0
	for _, sentence := range sentences {
		n := utf8.RuneCountInString(sentence)
		if currentRunes > 0 && currentRunes+n > maxChunkSize {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
			currentRunes = 0
		}
		current.WriteString(sentence)
		currentRunes += n
	}
	if currentRunes > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

// sampleExcerpt 在 maxRunes 预算内从有序分块组装抽取素材。
// 单块直接返回；多块时开头占一半预算，中段与结尾各占四分之一，
// 让长书的主题/金句素材覆盖全书而不是只来自开篇。
func sampleExcerpt(chunks []string, maxRunes int) string {
	if len(chunks) == 0 {
		return ""
	}
	if len(chunks) == 1 || maxRunes <= 0 {
		return chunks[0]
	}

	headBudget := maxRunes / 2
	sideBudget := maxRunes / 4

	parts := []string{node.TruncateByRunes(chunks[0], headBudget)}
	if len(chunks) > 2 {
		parts = append(parts, node.TruncateByRunes(chunks[len(chunks)/2], sideBudget))
	}
	parts = append(parts, node.TruncateByRunes(chunks[len(chunks)-1], sideBudget))
	return strings.Join(parts, "\n\n")
}

// splitSentences 按句末标点切分，标点保留在句子尾部
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i, r := range runes {
		if r == '.' || r == '!' || r == '?' {
			// 连续标点（如 "?!"）归入同一句
			if i+1 < len(runes) && isSentenceEnd(runes[i+1]) {
				continue
			}
			sentences = append(sentences, string(runes[start:i+1]))
			start = i + 1
		}
	}
	if start < len(runes) {
		tail := string(runes[start:])
		if strings.TrimSpace(tail) != "" {
			sentences = append(sentences, tail)
		}
	}
	if len(sentences) == 0 {
		return []string{text}
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

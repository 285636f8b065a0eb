package content

import (
	"fmt"
	"strings"

	"book-social-ai-api/internal/domain/entity"
	"book-social-ai-api/internal/workflow/node"
)

// BuildFallback 在生成调用耗尽重试后，直接从素材构造确定性的替代文案。
// maxRunes 是正文可用预算（平台上限减去标签后缀），
// 超出时截断素材本身而不是模板框架，保证结果始终可发布。
func BuildFallback(sourceType entity.SourceType, sourceContent, title, author string, maxRunes int) string {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	excerpt := strings.TrimSpace(sourceContent)

	var frame string
	switch sourceType {
	case entity.SourceTypeQuote:
		if author != "" {
			frame = fmt.Sprintf("\"%%s\" — %s, %s", author, title)
		} else {
			frame = fmt.Sprintf("\"%%s\" — %s", title)
		}
	case entity.SourceTypeInsight:
		frame = fmt.Sprintf("Key takeaway from %s: %%s", title)
	case entity.SourceTypeTheme:
		frame = fmt.Sprintf("%s explores %%s. A thought-provoking read.", title)
	case entity.SourceTypeDiscussion:
		frame = fmt.Sprintf("%%s Share your thoughts after reading %s.", title)
	default:
		if author != "" {
			frame = fmt.Sprintf("%s by %s: %%s", title, author)
		} else {
			frame = fmt.Sprintf("%s: %%s", title)
		}
	}

	return fitExcerpt(frame, excerpt, maxRunes)
}

// fitExcerpt 把素材填进模板，超预算时截断素材并加省略号
func fitExcerpt(frame, excerpt string, maxRunes int) string {
	frameLen := len([]rune(strings.Replace(frame, "%s", "", 1)))
	available := maxRunes - frameLen
	if available < 1 {
		// 预算连模板都装不下时退回纯素材截断
		return node.TruncateByRunes(excerpt, maxRunes)
	}

	if len([]rune(excerpt)) > available {
		if available > 1 {
			excerpt = node.TruncateByRunes(excerpt, available-1) + "…"
		} else {
			excerpt = node.TruncateByRunes(excerpt, available)
		}
	}
	return fmt.Sprintf(frame, excerpt)
}

// Package content 实现面向各社交平台的内容生成、校验与评分。
package content

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"book-social-ai-api/internal/domain/entity"
	"book-social-ai-api/pkg/metrics"
)

// ValidatePost 依据平台约束重算帖子的 CharacterCount / IsValid / ValidationErrors。
// 三个字段永远一起重算，调用方不得单独赋值。
func ValidatePost(post *entity.GeneratedPost) {
	if post == nil {
		return
	}

	constraint, ok := entity.ConstraintFor(post.Platform)
	if !ok {
		post.IsValid = false
		post.ValidationErrors = []string{fmt.Sprintf("unknown platform: %s", post.Platform)}
		return
	}

	post.CharacterCount = CharacterCount(post.Content, post.Hashtags)
	errs := make([]string, 0, 2)

	if post.CharacterCount > constraint.MaxLength {
		overage := post.CharacterCount - constraint.MaxLength
		errs = append(errs, fmt.Sprintf(
			"content exceeds %s limit of %d by %d characters",
			post.Platform, constraint.MaxLength, overage,
		))
	}

	if len(post.Hashtags) > constraint.HashtagLimit {
		errs = append(errs, fmt.Sprintf(
			"hashtag count %d exceeds %s limit of %d",
			len(post.Hashtags), post.Platform, constraint.HashtagLimit,
		))
	}

	contentRunes := utf8.RuneCountInString(strings.TrimSpace(post.Content))
	if contentRunes < constraint.MinContentRunes {
		if constraint.MinContentRunes == 1 {
			errs = append(errs, fmt.Sprintf("%s post content must not be empty", post.Platform))
		} else {
			errs = append(errs, fmt.Sprintf(
				"%s post content must be at least %d characters, got %d",
				post.Platform, constraint.MinContentRunes, contentRunes,
			))
		}
	}

	post.ValidationErrors = errs
	post.IsValid = len(errs) == 0

	result := "valid"
	if !post.IsValid {
		result = "invalid"
	}
	metrics.ContentValidationTotal.WithLabelValues(string(post.Platform), result).Inc()
}

// CharacterCount 计算帖子的有效字符数：
// 正文长度，加上非空标签时的 " tag1 tag2..." 渲染后缀长度。
func CharacterCount(content string, hashtags []string) int {
	count := utf8.RuneCountInString(content)
	if len(hashtags) > 0 {
		count += utf8.RuneCountInString(" " + strings.Join(hashtags, " "))
	}
	return count
}

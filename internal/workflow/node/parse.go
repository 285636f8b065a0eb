package node

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Kind 解析结果的形态
type Kind int

const (
	// KindList 字符串/对象列表
	KindList Kind = iota + 1
	// KindObject 单个对象
	KindObject
	// KindText 未能结构化的原始文本
	KindText
)

// ParsedResponse 模型输出的宽松解析结果。
// 三种形态互斥：KindList 用 Items，KindObject 用 Object，KindText 用 Text。
type ParsedResponse struct {
	Kind   Kind
	Items  []any
	Object map[string]any
	Text   string
}

var (
	fencedBlockRe  = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n?(.*?)```")
	bulletPrefixRe = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
)

// ParseLoose 从模型输出中恢复结构化数据，永不失败。
// 策略按宽松程度递增依次尝试，首个成功者生效：
// 直接 JSON -> 围栏代码块 -> 首个数组字面量 -> 首个对象字面量 ->
// 按行拆分 -> 整体包装为单元素列表。
// 顺序不可调换：能解析为干净数组的输出绝不能落到按行拆分。
func ParseLoose(raw string) ParsedResponse {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ParsedResponse{Kind: KindList, Items: []any{}}
	}

	// (a) 直接解析
	if p, ok := tryJSON(trimmed); ok {
		return p
	}

	// (b) 剥离围栏代码块后解析内部
	if m := fencedBlockRe.FindStringSubmatch(trimmed); len(m) == 2 {
		if p, ok := tryJSON(strings.TrimSpace(m[1])); ok {
			return p
		}
	}

	// (c) 截取首个顶层数组字面量
	if p, ok := tryDelimited(trimmed, '[', ']'); ok {
		return p
	}

	// (d) 截取首个顶层对象字面量
	if p, ok := tryDelimited(trimmed, '{', '}'); ok {
		return p
	}

	// (e) 多行文本按行拆分，剥掉列表前缀
	if strings.Contains(trimmed, "\n") && !strings.HasPrefix(trimmed, "[") {
		lines := strings.Split(trimmed, "\n")
		items := make([]any, 0, len(lines))
		for _, line := range lines {
			cleaned := strings.TrimSpace(bulletPrefixRe.ReplaceAllString(line, ""))
			if cleaned == "" {
				continue
			}
			items = append(items, cleaned)
		}
		if len(items) > 0 {
			return ParsedResponse{Kind: KindList, Items: items}
		}
	}

	// (f) 兜底：整段文本作为单元素内容透传。
	// 这是已知的降级路径，调用方通过 StringItems 仍能拿到单元素列表。
	return ParsedResponse{Kind: KindText, Text: trimmed}
}

// tryJSON 尝试把文本整体解析为 JSON 数组或对象
func tryJSON(s string) (ParsedResponse, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return ParsedResponse{}, false
	}
	switch val := v.(type) {
	case []any:
		return ParsedResponse{Kind: KindList, Items: val}, true
	case map[string]any:
		return ParsedResponse{Kind: KindObject, Object: val}, true
	default:
		// 标量 JSON 对下游没有结构化价值，交给后续策略
		return ParsedResponse{}, false
	}
}

// tryDelimited 截取首个 open..最后一个 close 之间的片段并解析
func tryDelimited(s string, open, close byte) (ParsedResponse, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return ParsedResponse{}, false
	}
	return tryJSON(s[start : end+1])
}

// StringItems 把解析结果强制转为字符串列表。
// KindObject 返回空列表；KindText 返回单元素列表。
func (p ParsedResponse) StringItems() []string {
	switch p.Kind {
	case KindList:
		out := make([]string, 0, len(p.Items))
		for _, item := range p.Items {
			s := coerceString(item)
			if s == "" {
				continue
			}
			out = append(out, s)
		}
		return out
	case KindText:
		if p.Text == "" {
			return []string{}
		}
		return []string{p.Text}
	default:
		return []string{}
	}
}

// ObjectItems 把列表中的对象元素提取出来
func (p ParsedResponse) ObjectItems() []map[string]any {
	if p.Kind == KindObject {
		return []map[string]any{p.Object}
	}
	if p.Kind != KindList {
		return nil
	}
	out := make([]map[string]any, 0, len(p.Items))
	for _, item := range p.Items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// StringField 从对象形态中按候选键依次取第一个非空字符串字段
func (p ParsedResponse) StringField(keys ...string) string {
	if p.Kind != KindObject {
		return ""
	}
	for _, key := range keys {
		if v, ok := p.Object[key]; ok {
			if s := coerceString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case map[string]any:
		// 对象元素优先取常见文本字段
		for _, key := range []string{"text", "content", "value", "quote", "theme", "insight"} {
			if s, ok := val[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	default:
		return ""
	}
}

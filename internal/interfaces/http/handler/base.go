// Package handler 提供 HTTP 请求处理器
package handler

import (
	"fmt"
	"strings"

	"book-social-ai-api/internal/config"
)

// resolveProvider 解析 LLM Provider。
// 空值落回默认提供商，未配置的提供商直接拒绝。
func resolveProvider(cfg *config.Config, provider string) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("server config not configured")
	}

	p := strings.TrimSpace(provider)
	if p == "" {
		p = strings.TrimSpace(cfg.LLM.DefaultProvider)
	}
	if p == "" {
		return "", fmt.Errorf("llm provider not specified")
	}
	if len(p) > 32 {
		return "", fmt.Errorf("llm provider too long")
	}

	if _, ok := cfg.LLM.Providers[p]; !ok {
		return "", fmt.Errorf("llm provider not found: %s", p)
	}
	return p, nil
}

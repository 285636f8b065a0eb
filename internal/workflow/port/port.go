package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	wfmodel "book-social-ai-api/internal/workflow/model"
)

// ChatModelFactory 定义工作流层对 LLM ChatModel 的最小依赖（port）。
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}

// Completer 定义上层应用对生成式文本能力的最小依赖（port）。
// 实现方不保证可靠性，调用方自行决定重试与解析策略。
type Completer interface {
	Complete(ctx context.Context, in *wfmodel.CompletionInput) (*wfmodel.CompletionOutput, error)
}

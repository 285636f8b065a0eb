package chain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"

	einoobs "book-social-ai-api/internal/observability/eino"
	wfmodel "book-social-ai-api/internal/workflow/model"
	workflowport "book-social-ai-api/internal/workflow/port"
	workflowprompt "book-social-ai-api/internal/workflow/prompt"
)

// CompletionChain 把「模板 + 变量 + 模型选择」组装成一次补全调用。
// 它是 port.Completer 的唯一生产实现，所有业务工作流共用。
type CompletionChain struct {
	factory  workflowport.ChatModelFactory
	registry *workflowprompt.Registry
}

func NewCompletionChain(factory workflowport.ChatModelFactory) *CompletionChain {
	return &CompletionChain{
		factory:  factory,
		registry: workflowprompt.NewRegistry(),
	}
}

func (c *CompletionChain) Complete(ctx context.Context, in *wfmodel.CompletionInput) (*wfmodel.CompletionOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.PromptID) == "" {
		return nil, fmt.Errorf("prompt_id is required")
	}

	// 空 provider 交给工厂回落默认提供商
	provider := strings.TrimSpace(in.Provider)

	workflow := strings.TrimSpace(in.Workflow)
	if workflow == "" {
		workflow = in.PromptID
	}
	ctx = einoobs.WithWorkflowProvider(ctx, workflow, provider)

	chatModel, err := c.factory.Get(ctx, provider)
	if err != nil {
		return nil, err
	}

	tpl, err := c.registry.ChatTemplate(workflowprompt.PromptID(in.PromptID))
	if err != nil {
		return nil, err
	}
	msgs, err := tpl.Format(ctx, in.Vars)
	if err != nil {
		return nil, fmt.Errorf("format prompt %s: %w", in.PromptID, err)
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildModelOptions(in)...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}

	out := &wfmodel.CompletionOutput{Text: outMsg.Content}
	out.Meta.Provider = provider
	out.Meta.Model = strings.TrimSpace(in.Model)
	out.Meta.GeneratedAt = time.Now()
	if in.Temperature != nil {
		out.Meta.Temperature = float64(*in.Temperature)
	}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		out.Meta.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
		out.Meta.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
	}
	return out, nil
}

func buildModelOptions(in *wfmodel.CompletionInput) []model.Option {
	opts := make([]model.Option, 0, 3)
	if in == nil {
		return opts
	}
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}
	return opts
}

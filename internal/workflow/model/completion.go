package model

// CompletionInput 一次文本补全调用的输入
type CompletionInput struct {
	// Workflow 调用所属的业务环节，用于观测标签
	Workflow string

	// PromptID 模板标识，对应 prompt 包中的注册模板
	PromptID string
	// Vars 模板变量
	Vars map[string]any

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// CompletionOutput 补全调用的输出
type CompletionOutput struct {
	Text string
	Meta LLMUsageMeta
}

package chain

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wfmodel "book-social-ai-api/internal/workflow/model"
)

// fakeChatModel 返回固定消息的 ChatModel 替身
type fakeChatModel struct {
	reply *schema.Message
	err   error
}

func (m *fakeChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	return m.reply, m.err
}

func (m *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

// fakeModelFactory 记录每次请求的 provider 名称
type fakeModelFactory struct {
	mu    sync.Mutex
	names []string
	chat  model.BaseChatModel
	err   error
}

func (f *fakeModelFactory) Get(_ context.Context, name string) (model.BaseChatModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, name)
	if f.err != nil {
		return nil, f.err
	}
	return f.chat, nil
}

func themesInput(provider string) *wfmodel.CompletionInput {
	return &wfmodel.CompletionInput{
		Workflow: "analysis.themes",
		PromptID: "themes_v1",
		Provider: provider,
		Vars: map[string]any{
			"book_title": "The Long Road",
			"author":     "J. Doe",
			"text":       "An excerpt about love and war.",
		},
	}
}

func TestCompletionChainComplete(t *testing.T) {
	t.Parallel()

	t.Run("empty provider falls through to the factory default", func(t *testing.T) {
		t.Parallel()
		factory := &fakeModelFactory{chat: &fakeChatModel{reply: schema.AssistantMessage(`["Love"]`, nil)}}
		c := NewCompletionChain(factory)

		out, err := c.Complete(context.Background(), themesInput(""))

		require.NoError(t, err)
		assert.Equal(t, `["Love"]`, out.Text)
		require.Len(t, factory.names, 1)
		assert.Equal(t, "", factory.names[0], "factory resolves its own default provider")
		assert.Empty(t, out.Meta.Provider)
	})

	t.Run("whitespace provider is treated as empty", func(t *testing.T) {
		t.Parallel()
		factory := &fakeModelFactory{chat: &fakeChatModel{reply: schema.AssistantMessage("ok", nil)}}
		c := NewCompletionChain(factory)

		_, err := c.Complete(context.Background(), themesInput("   "))

		require.NoError(t, err)
		require.Len(t, factory.names, 1)
		assert.Equal(t, "", factory.names[0])
	})

	t.Run("named provider reaches the factory and the output meta", func(t *testing.T) {
		t.Parallel()
		factory := &fakeModelFactory{chat: &fakeChatModel{reply: schema.AssistantMessage("ok", nil)}}
		c := NewCompletionChain(factory)

		out, err := c.Complete(context.Background(), themesInput("openai"))

		require.NoError(t, err)
		require.Len(t, factory.names, 1)
		assert.Equal(t, "openai", factory.names[0])
		assert.Equal(t, "openai", out.Meta.Provider)
	})

	t.Run("factory error propagates", func(t *testing.T) {
		t.Parallel()
		factory := &fakeModelFactory{err: errors.New("provider nope not found in LLM config")}
		c := NewCompletionChain(factory)

		_, err := c.Complete(context.Background(), themesInput("nope"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("missing prompt_id is rejected", func(t *testing.T) {
		t.Parallel()
		factory := &fakeModelFactory{chat: &fakeChatModel{reply: schema.AssistantMessage("ok", nil)}}
		c := NewCompletionChain(factory)

		in := themesInput("openai")
		in.PromptID = ""
		_, err := c.Complete(context.Background(), in)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "prompt_id")
		assert.Empty(t, factory.names, "validation failures must not reach the factory")
	})

	t.Run("nil input is rejected", func(t *testing.T) {
		t.Parallel()
		c := NewCompletionChain(&fakeModelFactory{chat: &fakeChatModel{}})

		_, err := c.Complete(context.Background(), nil)
		require.Error(t, err)
	})

	t.Run("nil model reply is an error", func(t *testing.T) {
		t.Parallel()
		factory := &fakeModelFactory{chat: &fakeChatModel{reply: nil}}
		c := NewCompletionChain(factory)

		_, err := c.Complete(context.Background(), themesInput("openai"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty llm response")
	})
}

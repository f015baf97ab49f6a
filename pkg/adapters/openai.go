package adapters

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

// Retriever 检索能力接口
//
// 把检索环节从生成适配器中拆出，任何向量库、全文索引或内存实现
// 都可以作为 OpenAIAdapter 的检索后端。
type Retriever interface {
	// Retrieve 为问题检索相关上下文
	Retrieve(ctx context.Context, query string) ([]string, error)
}

// defaultOpenAIModel 默认生成模型
const defaultOpenAIModel = openai.GPT4oMini

// OpenAIAdapter 用 OpenAI 聊天补全做生成环节的适配器
//
// 检索环节委托给注入的 Retriever。适用于被测系统的生成部分
// 就是一个提示词加 LLM 调用的场景。
type OpenAIAdapter struct {
	client    *openai.Client
	retriever Retriever
	model     string
}

// OpenAIOption OpenAI 适配器选项函数类型
type OpenAIOption func(*OpenAIAdapter)

// WithModel 设置生成模型
func WithModel(model string) OpenAIOption {
	return func(a *OpenAIAdapter) {
		if model != "" {
			a.model = model
		}
	}
}

// WithOpenAIClient 注入已有的 OpenAI 客户端（自定义 BaseURL 等）
func WithOpenAIClient(client *openai.Client) OpenAIOption {
	return func(a *OpenAIAdapter) {
		a.client = client
	}
}

// NewOpenAIAdapter 创建 OpenAI 适配器
//
// 参数:
//   - apiKey: OpenAI API 密钥
//   - retriever: 检索后端
func NewOpenAIAdapter(apiKey string, retriever Retriever, opts ...OpenAIOption) *OpenAIAdapter {
	a := &OpenAIAdapter{
		client:    openai.NewClient(apiKey),
		retriever: retriever,
		model:     defaultOpenAIModel,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ConcurrencySafe OpenAI 客户端可以并发使用
func (a *OpenAIAdapter) ConcurrencySafe() bool {
	return true
}

// Retrieve 委托给注入的检索后端
func (a *OpenAIAdapter) Retrieve(ctx context.Context, query string) ([]string, error) {
	if a.retriever == nil {
		return nil, fmt.Errorf("%w: no retriever configured", evaluation.ErrRetrievalFailed)
	}
	contexts, err := a.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", evaluation.ErrRetrievalFailed, err)
	}
	return contexts, nil
}

// Generate 基于上下文用聊天补全生成答案
func (a *OpenAIAdapter) Generate(ctx context.Context, query string, contexts []string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "Answer the question using only the provided context. " +
					"If the context does not contain the answer, say so.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(query, contexts),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", evaluation.ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", evaluation.ErrGenerationFailed)
	}
	return resp.Choices[0].Message.Content, nil
}

// buildPrompt 把问题和上下文拼装为用户消息
func buildPrompt(query string, contexts []string) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i, context := range contexts {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, context)
	}
	fmt.Fprintf(&b, "\nQuestion: %s", query)
	return b.String()
}

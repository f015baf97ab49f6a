package evaluation

import (
	"context"
	"fmt"
	"time"
)

// Executor 适配器执行器
//
// 把适配器的 Retrieve + Generate 组合为一次带计时的调用，并把任何
// 失败（包括超时和 panic）转化为 RAGOutput.Error，而不是让异常向上
// 传播——单个用例的故障绝不能中断其余用例的评估。
type Executor struct {
	// adapter 被测系统适配器
	adapter RAGAdapter

	// timeout 单次调用超时（0 表示不限制）
	timeout time.Duration
}

// NewExecutor 创建执行器
func NewExecutor(adapter RAGAdapter, timeout time.Duration) *Executor {
	return &Executor{
		adapter: adapter,
		timeout: timeout,
	}
}

// Execute 对一个问题执行完整的检索加生成
//
// 永不返回错误：失败信息记录在返回值的 Error 字段中。
// 实现 CombinedAdapter 的适配器优先走合并调用，失败时回退到分步调用。
func (e *Executor) Execute(ctx context.Context, query string) (output RAGOutput) {
	start := time.Now()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	// 适配器实现缺陷不应拖垮整个运行
	defer func() {
		if r := recover(); r != nil {
			output = RAGOutput{
				Latency: time.Since(start),
				Error:   fmt.Sprintf("adapter panic: %v", r),
			}
		}
	}()

	// 优先使用合并端点
	if combined, ok := e.adapter.(CombinedAdapter); ok {
		answer, contexts, err := combined.ExecuteCombined(ctx, query)
		if err == nil {
			return RAGOutput{
				Answer:   answer,
				Contexts: contexts,
				Latency:  time.Since(start),
			}
		}
		// 回退到分步调用
	}

	retrievalStart := time.Now()
	contexts, err := e.adapter.Retrieve(ctx, query)
	retrievalLatency := time.Since(retrievalStart)
	if err != nil {
		return RAGOutput{
			Latency:          time.Since(start),
			RetrievalLatency: retrievalLatency,
			Error:            e.describe(ctx, WrapError(err, "retrieve")),
		}
	}

	generationStart := time.Now()
	answer, err := e.adapter.Generate(ctx, query, contexts)
	generationLatency := time.Since(generationStart)
	if err != nil {
		return RAGOutput{
			Latency:           time.Since(start),
			RetrievalLatency:  retrievalLatency,
			GenerationLatency: generationLatency,
			Error:             e.describe(ctx, WrapError(err, "generate")),
		}
	}

	return RAGOutput{
		Answer:            answer,
		Contexts:          contexts,
		Latency:           time.Since(start),
		RetrievalLatency:  retrievalLatency,
		GenerationLatency: generationLatency,
	}
}

// describe 生成错误描述，超时单独标注
func (e *Executor) describe(ctx context.Context, err error) string {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Sprintf("%s: %s", ErrAdapterTimeout.Error(), err.Error())
	}
	return err.Error()
}

// Package evaluation 提供 RAG 系统的质量评估核心
//
// 本包实现评估流水线与指标契约：给定一组测试用例和一个能够回答问题的
// RAG 适配器，逐个用例驱动被测系统、对输出计算各项质量指标、按阈值
// 判定通过与否，并聚合为一份结构化的运行结果：
// - Faithfulness: 答案的断言是否有检索上下文支撑（检测幻觉）
// - Groundedness: 答案是否真正使用了上下文中的关键信息
// - Context Relevancy: 检索到的上下文与问题的相关程度
// - Answer Correctness: 答案与期望答案的相似度与完整度
package evaluation

import (
	"context"
)

// RAGAdapter RAG 系统适配器接口
//
// 适配器把评估核心与具体的 RAG 实现（HTTP 服务、进程内库、mock）解耦。
// 核心只依赖此契约，不关心背后是什么系统。
type RAGAdapter interface {
	// Retrieve 为问题检索相关上下文
	//
	// 参数:
	//   - ctx: 上下文，用于超时和取消控制
	//   - query: 要检索的问题
	//
	// 返回:
	//   - []string: 有序的上下文段落
	//   - error: 底层系统不可达或返回数据异常时为检索错误
	Retrieve(ctx context.Context, query string) ([]string, error)

	// Generate 基于问题和上下文生成答案
	//
	// 参数:
	//   - ctx: 上下文
	//   - query: 问题
	//   - contexts: 检索到的上下文
	//
	// 返回:
	//   - string: 生成的答案
	//   - error: 底层系统不可达或返回数据异常时为生成错误
	Generate(ctx context.Context, query string, contexts []string) (string, error)
}

// CombinedAdapter 支持一次调用完成检索加生成的适配器
//
// 实现此接口的适配器（如暴露合并 /rag 端点的 HTTP 服务）会被执行器
// 优先使用；调用失败时执行器回退到分步 Retrieve + Generate。
type CombinedAdapter interface {
	RAGAdapter

	// ExecuteCombined 一次调用返回答案和上下文
	ExecuteCombined(ctx context.Context, query string) (answer string, contexts []string, err error)
}

// ConcurrencySafeAdapter 声明自身可以被并发调用的适配器
//
// 流水线只有在适配器实现此接口且返回 true 时才会并发派发用例；
// 并发安全是能力声明，不是默认假设。
type ConcurrencySafeAdapter interface {
	// ConcurrencySafe 返回适配器是否支持并发调用
	ConcurrencySafe() bool
}

// Metric 质量指标接口
//
// 指标是 (用例, RAG 输出) 到 [0,1] 分数加解释的纯函数：相同输入必须
// 产生完全相同的分数，这是 CI 门禁可复现的前提。指标不做阈值比较，
// 也绝不因输入退化（空答案、空上下文）而报错——此时返回 0 分并在
// 解释中说明原因。
type Metric interface {
	// Name 返回指标名称
	Name() string

	// Compute 计算指标分数
	//
	// 参数:
	//   - testCase: 被评估的用例
	//   - output: RAG 系统的输出
	//
	// 返回:
	//   - MetricValue: 分数（[0,1]）、解释与细节
	Compute(testCase *TestCase, output *RAGOutput) MetricValue
}

// MetricSpec 一个指标及其运行期策略
//
// 阈值与必过标志由外部（配置）提供，指标本身只算分。
type MetricSpec struct {
	// Metric 指标实现
	Metric Metric

	// Threshold 通过阈值，[0,1]，默认 0.80
	Threshold float64

	// Required 是否必过，默认 true
	Required bool
}

// ProgressCallback 进度回调函数类型
//
// 参数:
//   - done: 已完成用例数
//   - total: 总用例数
type ProgressCallback func(done, total int)

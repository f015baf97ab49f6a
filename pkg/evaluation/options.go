package evaluation

import (
	"time"
)

// EvalConfig 评估运行配置
type EvalConfig struct {
	// Timeout 单次适配器调用超时
	Timeout time.Duration

	// Concurrency 并发度（1 表示顺序执行）
	//
	// 大于 1 时仅当适配器声明并发安全才会并发派发用例；
	// 无论并发与否，结果都按输入顺序重组。
	Concurrency int

	// MaxCases 最大用例数（0 表示不限制）
	MaxCases int

	// ProgressCallback 进度回调函数
	ProgressCallback ProgressCallback
}

// EvalOption 评估选项函数类型
type EvalOption func(*EvalConfig)

// DefaultEvalConfig 返回默认评估配置
func DefaultEvalConfig() *EvalConfig {
	return &EvalConfig{
		Timeout:     30 * time.Second,
		Concurrency: 1,
		MaxCases:    0, // 不限制
	}
}

// ApplyOptions 应用评估选项
func (c *EvalConfig) ApplyOptions(opts ...EvalOption) {
	for _, opt := range opts {
		opt(c)
	}
}

// WithTimeout 设置单次适配器调用超时
//
// 参数:
//   - d: 超时时间，非正值忽略；超时按适配器错误处理而非终止运行
func WithTimeout(d time.Duration) EvalOption {
	return func(c *EvalConfig) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithConcurrency 设置并发度
//
// 参数:
//   - n: 工作协程数，小于 1 时按 1 处理
func WithConcurrency(n int) EvalOption {
	return func(c *EvalConfig) {
		if n < 1 {
			n = 1
		}
		c.Concurrency = n
	}
}

// WithMaxCases 设置最大用例数
//
// 参数:
//   - n: 最大用例数，0 表示不限制，负值忽略
func WithMaxCases(n int) EvalOption {
	return func(c *EvalConfig) {
		if n >= 0 {
			c.MaxCases = n
		}
	}
}

// WithProgressCallback 设置进度回调函数
//
// 参数:
//   - callback: 每完成一个用例调用一次
func WithProgressCallback(callback ProgressCallback) EvalOption {
	return func(c *EvalConfig) {
		c.ProgressCallback = callback
	}
}

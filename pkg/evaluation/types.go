package evaluation

import (
	"time"
)

// TestCase 单个评估用例
//
// TestCase 定义向 RAG 系统提出的问题以及期望得到的回答。
// 用例在加载后不可变，流水线和指标只读使用。
type TestCase struct {
	// ID 用例唯一标识（可选，结果对比时优先按 ID 匹配）
	ID string `json:"id,omitempty"`

	// Question 向 RAG 系统提出的问题（必填，不能为空）
	Question string `json:"question"`

	// ExpectedAnswer 期望答案（ground truth）
	ExpectedAnswer string `json:"expected_answer,omitempty"`

	// ExpectedContexts 期望检索到的上下文（可选，用于相关性评估）
	ExpectedContexts []string `json:"expected_contexts,omitempty"`

	// AcceptableAnswers 其他可接受的答案（可选，取最高分）
	AcceptableAnswers []string `json:"acceptable_answers,omitempty"`

	// Thresholds 按用例覆盖的指标阈值（可选，键为指标名）
	Thresholds map[string]float64 `json:"thresholds,omitempty"`

	// Metadata 额外元数据（类别、难度、标签等，核心不解释其含义）
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// RAGOutput 驱动被测 RAG 系统一次得到的输出
//
// 每个用例由流水线调用适配器生成一次，之后不再修改。
// Error 与 Answer 互斥：适配器调用失败时只设置 Error。
type RAGOutput struct {
	// Answer 生成的答案
	Answer string `json:"answer"`

	// Contexts 检索到的上下文段落（有序）
	Contexts []string `json:"contexts"`

	// Latency 检索加生成的总耗时
	Latency time.Duration `json:"latency"`

	// RetrievalLatency 检索耗时（分步执行时记录）
	RetrievalLatency time.Duration `json:"retrieval_latency,omitempty"`

	// GenerationLatency 生成耗时（分步执行时记录）
	GenerationLatency time.Duration `json:"generation_latency,omitempty"`

	// Error 适配器调用失败时的错误信息
	Error string `json:"error,omitempty"`
}

// Failed 返回适配器调用是否失败
func (o *RAGOutput) Failed() bool {
	return o.Error != ""
}

// MetricValue 指标的原始计算结果（未应用阈值）
//
// 指标只负责计算分数和解释，阈值比较和通过判定统一由流水线完成，
// 避免各指标各自实现一套通过逻辑。
type MetricValue struct {
	// Value 分数，始终在 [0, 1] 区间内
	Value float64 `json:"value"`

	// Explanation 人类可读的计分说明（哪些词条/断言匹配、哪些未匹配）
	Explanation string `json:"explanation"`

	// Details 指标相关的结构化细节（供报告器展示）
	Details map[string]interface{} `json:"details,omitempty"`
}

// MetricScore 单个指标对单个用例的最终得分
type MetricScore struct {
	// Name 指标名称
	Name string `json:"name"`

	// Value 分数，[0, 1]
	Value float64 `json:"value"`

	// Threshold 判定通过的阈值
	Threshold float64 `json:"threshold"`

	// Required 是否为必过指标（必过指标不通过则整个用例不通过）
	Required bool `json:"required"`

	// Passed 是否通过（Value >= Threshold）
	Passed bool `json:"passed"`

	// Explanation 计分说明
	Explanation string `json:"explanation"`

	// Details 结构化细节
	Details map[string]interface{} `json:"details,omitempty"`
}

// TestCaseResult 单个用例的评估结果
type TestCaseResult struct {
	// TestCase 被评估的用例
	TestCase TestCase `json:"test_case"`

	// Output RAG 系统的输出
	Output RAGOutput `json:"output"`

	// Scores 各指标得分（按配置顺序，每个配置的指标恰好一项）
	Scores []MetricScore `json:"scores,omitempty"`

	// Passed 用例是否通过（所有必过指标均通过）
	Passed bool `json:"passed"`

	// FailureReasons 失败原因（来自未通过的必过指标或适配器错误）
	FailureReasons []string `json:"failure_reasons,omitempty"`
}

// Score 按指标名查找得分
func (r *TestCaseResult) Score(name string) (MetricScore, bool) {
	for _, s := range r.Scores {
		if s.Name == name {
			return s, true
		}
	}
	return MetricScore{}, false
}

// EvaluationResult 一次完整评估运行的结果
//
// 结果自包含：报告器渲染它不需要任何额外状态。
type EvaluationResult struct {
	// RunID 本次运行的唯一标识
	RunID string `json:"run_id"`

	// Results 各用例结果，顺序与输入用例一致
	Results []TestCaseResult `json:"test_case_results"`

	// TotalTests 总用例数（等于输入用例数，即使适配器失败也不丢弃）
	TotalTests int `json:"total_tests"`

	// PassedTests 通过数
	PassedTests int `json:"passed_tests"`

	// FailedTests 失败数
	FailedTests int `json:"failed_tests"`

	// PassRate 通过率（总数为 0 时定义为 0）
	PassRate float64 `json:"pass_rate"`

	// MetricAverages 各指标在产生该指标的用例上的平均分
	// （因适配器错误跳过计分的用例不参与平均）
	MetricAverages map[string]float64 `json:"metric_averages"`

	// Passed 整体是否通过（FailedTests == 0）
	Passed bool `json:"passed"`

	// StartedAt 运行开始时间
	StartedAt time.Time `json:"started_at"`

	// Duration 运行总耗时
	Duration time.Duration `json:"duration"`
}

// AvgMetric 返回指定指标的平均分，未产生该指标时返回 0
func (r *EvaluationResult) AvgMetric(name string) float64 {
	return r.MetricAverages[name]
}

// Failures 返回所有未通过的用例结果
func (r *EvaluationResult) Failures() []TestCaseResult {
	var failures []TestCaseResult
	for _, tcr := range r.Results {
		if !tcr.Passed {
			failures = append(failures, tcr)
		}
	}
	return failures
}

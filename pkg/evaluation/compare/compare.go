// Package compare 实现两次评估结果之间的回归检测
//
// 把一次历史运行作为基线，与当前运行按用例逐一对齐，报告每个指标的
// 有符号差值；超过噪声阈值的负向变化被标记为回归，供 CI 在合并前
// 拦截质量下滑。
package compare

import (
	"fmt"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

// DefaultNoiseThreshold 默认噪声阈值
//
// 小于此幅度的负向变化视为浮点抖动，不标记为回归。
const DefaultNoiseThreshold = 0.02

// MetricDelta 单个指标在一个用例上的变化
type MetricDelta struct {
	// Metric 指标名
	Metric string `json:"metric"`

	// Baseline 基线分数
	Baseline float64 `json:"baseline"`

	// Current 当前分数
	Current float64 `json:"current"`

	// Delta 有符号差值（Current − Baseline）
	Delta float64 `json:"delta"`

	// Regression 是否为回归（负向且超过噪声阈值）
	Regression bool `json:"regression"`
}

// CaseComparison 单个用例的对比结果
type CaseComparison struct {
	// Question 用例问题（对齐键）
	Question string `json:"question"`

	// ID 用例 ID（两边都有 ID 时优先按 ID 对齐）
	ID string `json:"id,omitempty"`

	// Deltas 各指标变化
	Deltas []MetricDelta `json:"deltas"`
}

// Comparison 两次运行的完整对比
type Comparison struct {
	// NoiseThreshold 本次对比使用的噪声阈值
	NoiseThreshold float64 `json:"noise_threshold"`

	// Cases 成功对齐的用例对比
	Cases []CaseComparison `json:"cases"`

	// Added 仅出现在当前运行中的用例问题
	Added []string `json:"added,omitempty"`

	// Removed 仅出现在基线中的用例问题
	Removed []string `json:"removed,omitempty"`

	// Regressions 回归总数
	Regressions int `json:"regressions"`

	// Passed 是否无回归
	Passed bool `json:"passed"`
}

// Option 对比选项函数类型
type Option func(*options)

type options struct {
	noiseThreshold float64
}

// WithNoiseThreshold 设置噪声阈值
func WithNoiseThreshold(t float64) Option {
	return func(o *options) {
		if t >= 0 {
			o.noiseThreshold = t
		}
	}
}

// Compare 对比基线和当前两次评估结果
//
// 用例按 ID（两边都有时）或问题文本对齐；未对齐的用例作为新增/移除
// 单独报告，不计为回归。适配器失败而未计分的用例没有指标可比，
// 会产生空的 Deltas。
func Compare(baseline, current *evaluation.EvaluationResult, opts ...Option) *Comparison {
	o := &options{noiseThreshold: DefaultNoiseThreshold}
	for _, opt := range opts {
		opt(o)
	}

	comparison := &Comparison{
		NoiseThreshold: o.noiseThreshold,
	}

	byID, byQuestion := indexResults(baseline)
	matched := make(map[*evaluation.TestCaseResult]bool)

	for i := range current.Results {
		cur := &current.Results[i]

		// 两边都带 ID 时按 ID 对齐，否则退回问题文本
		base, ok := byID[cur.TestCase.ID]
		if !ok {
			base, ok = byQuestion[cur.TestCase.Question]
		}
		if !ok {
			comparison.Added = append(comparison.Added, cur.TestCase.Question)
			continue
		}
		matched[base] = true

		cc := CaseComparison{
			Question: cur.TestCase.Question,
			ID:       cur.TestCase.ID,
		}
		for _, curScore := range cur.Scores {
			baseScore, ok := base.Score(curScore.Name)
			if !ok {
				continue
			}
			delta := curScore.Value - baseScore.Value
			regression := delta < 0 && -delta > o.noiseThreshold
			if regression {
				comparison.Regressions++
			}
			cc.Deltas = append(cc.Deltas, MetricDelta{
				Metric:     curScore.Name,
				Baseline:   baseScore.Value,
				Current:    curScore.Value,
				Delta:      delta,
				Regression: regression,
			})
		}
		comparison.Cases = append(comparison.Cases, cc)
	}

	for i := range baseline.Results {
		if !matched[&baseline.Results[i]] {
			comparison.Removed = append(comparison.Removed, baseline.Results[i].TestCase.Question)
		}
	}

	comparison.Passed = comparison.Regressions == 0
	return comparison
}

// indexResults 分别按 ID 和问题文本建立索引
func indexResults(result *evaluation.EvaluationResult) (byID, byQuestion map[string]*evaluation.TestCaseResult) {
	byID = make(map[string]*evaluation.TestCaseResult)
	byQuestion = make(map[string]*evaluation.TestCaseResult, len(result.Results))
	for i := range result.Results {
		r := &result.Results[i]
		if r.TestCase.ID != "" {
			byID[r.TestCase.ID] = r
		}
		byQuestion[r.TestCase.Question] = r
	}
	return byID, byQuestion
}

// Summary 生成人类可读的对比摘要行
func (c *Comparison) Summary() []string {
	lines := []string{
		fmt.Sprintf("compared %d cases, %d added, %d removed",
			len(c.Cases), len(c.Added), len(c.Removed)),
	}
	for _, cc := range c.Cases {
		for _, d := range cc.Deltas {
			if d.Regression {
				lines = append(lines, fmt.Sprintf("REGRESSION %s: %.2f -> %.2f (%+.2f) on %q",
					d.Metric, d.Baseline, d.Current, d.Delta, cc.Question))
			}
		}
	}
	if c.Regressions == 0 {
		lines = append(lines, "no regressions")
	}
	return lines
}

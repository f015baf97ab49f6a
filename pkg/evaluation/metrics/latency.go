package metrics

import (
	"fmt"
	"time"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

// defaultLatencyBudget 默认延迟预算
const defaultLatencyBudget = 2 * time.Second

// Latency 延迟指标
//
// 对检索加生成的总耗时打分：耗时不超过预算得满分，超出后线性衰减，
// 达到预算两倍时为 0 分。默认不启用，配置中显式开启后生效。
type Latency struct {
	// budget 延迟预算
	budget time.Duration
}

// NewLatency 创建延迟指标
//
// 参数:
//   - budget: 延迟预算，小于等于 0 时使用默认值
func NewLatency(budget time.Duration) *Latency {
	if budget <= 0 {
		budget = defaultLatencyBudget
	}
	return &Latency{budget: budget}
}

// Name 返回指标名称
func (m *Latency) Name() string {
	return MetricLatency
}

// Compute 计算延迟分数
func (m *Latency) Compute(testCase *evaluation.TestCase, output *evaluation.RAGOutput) evaluation.MetricValue {
	latency := output.Latency
	if latency < 0 {
		latency = 0
	}

	var score float64
	switch {
	case latency <= m.budget:
		score = 1.0
	case latency >= 2*m.budget:
		score = 0.0
	default:
		score = 1.0 - float64(latency-m.budget)/float64(m.budget)
	}

	return evaluation.MetricValue{
		Value: score,
		Explanation: fmt.Sprintf("latency %s against budget %s (zero score at %s)",
			latency, m.budget, 2*m.budget),
		Details: map[string]interface{}{
			"latency_ms": latency.Milliseconds(),
			"budget_ms":  m.budget.Milliseconds(),
		},
	}
}

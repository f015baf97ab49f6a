package metrics

import (
	"fmt"
	"strings"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

// Groundedness 事实利用度指标
//
// 忠实度的镜像：忠实度检查答案没有说上下文之外的东西，事实利用度
// 检查答案用上了上下文里的东西。从全部上下文并集提取关键词，
// 分数 = 出现在答案中的关键词数 / 上下文关键词总数。
type Groundedness struct{}

// NewGroundedness 创建事实利用度指标
func NewGroundedness() *Groundedness {
	return &Groundedness{}
}

// Name 返回指标名称
func (m *Groundedness) Name() string {
	return MetricGroundedness
}

// Compute 计算事实利用度分数
func (m *Groundedness) Compute(testCase *evaluation.TestCase, output *evaluation.RAGOutput) evaluation.MetricValue {
	contextTerms := KeyTermsOf(output.Contexts)
	if len(contextTerms) == 0 {
		return evaluation.MetricValue{
			Value:       0,
			Explanation: "no context to ground against",
		}
	}

	answerTerms := KeyTerms(output.Answer)
	used := Intersection(contextTerms, answerTerms)
	unused := Difference(contextTerms, answerTerms)

	score := float64(len(used)) / float64(len(contextTerms))

	var b strings.Builder
	fmt.Fprintf(&b, "%d/%d context key terms used in answer", len(used), len(contextTerms))
	if len(used) > 0 {
		fmt.Fprintf(&b, "\nused: %s", strings.Join(preview(used, 10), ", "))
	}
	if len(unused) > 0 {
		fmt.Fprintf(&b, "\nunused: %s", strings.Join(preview(unused, 10), ", "))
	}

	return evaluation.MetricValue{
		Value:       score,
		Explanation: b.String(),
		Details: map[string]interface{}{
			"total_key_terms": len(contextTerms),
			"used_terms":      len(used),
			"sample_used":     preview(used, 10),
			"sample_unused":   preview(unused, 10),
		},
	}
}

// preview 截取前 n 个词条用于展示
func preview(terms []string, n int) []string {
	if len(terms) <= n {
		return terms
	}
	return terms[:n]
}

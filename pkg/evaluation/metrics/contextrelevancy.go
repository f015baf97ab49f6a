package metrics

import (
	"fmt"
	"strings"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

// ContextRelevancy 上下文相关性指标
//
// 对每个检索到的上下文，计算问题关键词在该上下文中的重叠率，
// 分数为各上下文相关性的平均值。衡量检索环节找到的段落是否
// 真的和问题有关。
type ContextRelevancy struct{}

// NewContextRelevancy 创建上下文相关性指标
func NewContextRelevancy() *ContextRelevancy {
	return &ContextRelevancy{}
}

// Name 返回指标名称
func (m *ContextRelevancy) Name() string {
	return MetricContextRelevancy
}

// Compute 计算上下文相关性分数
func (m *ContextRelevancy) Compute(testCase *evaluation.TestCase, output *evaluation.RAGOutput) evaluation.MetricValue {
	if len(output.Contexts) == 0 {
		return evaluation.MetricValue{
			Value:       0,
			Explanation: "no contexts retrieved",
		}
	}

	questionTerms := KeyTerms(testCase.Question)
	if len(questionTerms) == 0 {
		return evaluation.MetricValue{
			Value:       0,
			Explanation: "question contains no key terms to match against",
		}
	}

	sum := 0.0
	var lines []string
	contextScores := make([]map[string]interface{}, 0, len(output.Contexts))

	for i, context := range output.Contexts {
		contextTerms := KeyTerms(context)
		relevancy := OverlapRatio(questionTerms, contextTerms)
		sum += relevancy

		matched := Intersection(questionTerms, contextTerms)
		lines = append(lines, fmt.Sprintf("context[%d] relevancy %.2f, matched terms: %s",
			i, relevancy, strings.Join(matched, ", ")))
		contextScores = append(contextScores, map[string]interface{}{
			"index":     i,
			"relevancy": relevancy,
			"preview":   previewText(context, 100),
		})
	}

	score := sum / float64(len(output.Contexts))
	explanation := fmt.Sprintf("mean relevancy %.2f over %d contexts\n%s",
		score, len(output.Contexts), strings.Join(lines, "\n"))

	return evaluation.MetricValue{
		Value:       score,
		Explanation: explanation,
		Details: map[string]interface{}{
			"num_contexts":   len(output.Contexts),
			"context_scores": contextScores,
		},
	}
}

// previewText 截取文本前 n 个字符用于展示
func previewText(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

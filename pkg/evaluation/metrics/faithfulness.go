package metrics

import (
	"fmt"
	"strings"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

// 指标名称常量
const (
	MetricFaithfulness      = "faithfulness"
	MetricGroundedness      = "groundedness"
	MetricContextRelevancy  = "context_relevancy"
	MetricAnswerCorrectness = "answer_correctness"
	MetricLatency           = "latency"
	MetricTokenEfficiency   = "token_efficiency"
)

// claimSupportRatio 单条断言被判定为有支撑所需的关键词重叠率
const claimSupportRatio = 0.6

// Faithfulness 忠实度指标
//
// 把答案切分为断言级片段，对每条断言计算其关键词在全部检索上下文
// 并集中的重叠率；重叠率达到 claimSupportRatio 的断言视为有支撑。
// 分数 = 有支撑断言数 / 总断言数。用于检测答案说了上下文里没有的
// 东西（幻觉）。
type Faithfulness struct{}

// NewFaithfulness 创建忠实度指标
func NewFaithfulness() *Faithfulness {
	return &Faithfulness{}
}

// Name 返回指标名称
func (m *Faithfulness) Name() string {
	return MetricFaithfulness
}

// Compute 计算忠实度分数
func (m *Faithfulness) Compute(testCase *evaluation.TestCase, output *evaluation.RAGOutput) evaluation.MetricValue {
	claims := SplitClaims(output.Answer)
	if len(claims) == 0 {
		return evaluation.MetricValue{
			Value:       0,
			Explanation: "answer is empty or contains no claims to verify",
		}
	}

	contextTerms := KeyTermsOf(output.Contexts)

	supported := 0
	var lines []string
	claimDetails := make([]map[string]interface{}, 0, len(claims))

	for _, claim := range claims {
		claimTerms := KeyTerms(claim)
		overlap := OverlapRatio(claimTerms, contextTerms)
		isSupported := overlap >= claimSupportRatio
		if isSupported {
			supported++
			lines = append(lines, fmt.Sprintf("supported (%.2f): %q", overlap, claim))
		} else {
			missing := Difference(claimTerms, contextTerms)
			lines = append(lines, fmt.Sprintf("unsupported (%.2f): %q, terms not in context: %s",
				overlap, claim, strings.Join(missing, ", ")))
		}
		claimDetails = append(claimDetails, map[string]interface{}{
			"claim":     claim,
			"overlap":   overlap,
			"supported": isSupported,
		})
	}

	score := float64(supported) / float64(len(claims))
	explanation := fmt.Sprintf("%d/%d claims supported by context\n%s",
		supported, len(claims), strings.Join(lines, "\n"))

	return evaluation.MetricValue{
		Value:       score,
		Explanation: explanation,
		Details: map[string]interface{}{
			"total_claims":     len(claims),
			"supported_claims": supported,
			"claims":           claimDetails,
		},
	}
}

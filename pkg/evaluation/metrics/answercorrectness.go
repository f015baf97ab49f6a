package metrics

import (
	"fmt"
	"strings"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

// Answer Correctness 的加权组合系数。
// 这些是固定设计常量，改动会破坏不同实现之间分数的可比性。
const (
	correctnessJaccardWeight      = 0.5
	correctnessRecallWeight       = 0.3
	correctnessCompletenessWeight = 0.2
)

// AnswerCorrectness 答案正确性指标
//
// 与期望答案的加权组合相似度：
// 0.5 × 关键词 Jaccard 相似度 + 0.3 × 期望关键词被答案覆盖的比例 +
// 0.2 × 完整度 min(1, 答案词条数/期望词条数)。
// 用例提供 AcceptableAnswers 时取所有候选答案中的最高分。
type AnswerCorrectness struct{}

// NewAnswerCorrectness 创建答案正确性指标
func NewAnswerCorrectness() *AnswerCorrectness {
	return &AnswerCorrectness{}
}

// Name 返回指标名称
func (m *AnswerCorrectness) Name() string {
	return MetricAnswerCorrectness
}

// Compute 计算答案正确性分数
func (m *AnswerCorrectness) Compute(testCase *evaluation.TestCase, output *evaluation.RAGOutput) evaluation.MetricValue {
	if strings.TrimSpace(testCase.ExpectedAnswer) == "" && len(testCase.AcceptableAnswers) == 0 {
		return evaluation.MetricValue{
			Value:       0,
			Explanation: "no expected answer to compare against",
		}
	}
	if strings.TrimSpace(output.Answer) == "" {
		return evaluation.MetricValue{
			Value:       0,
			Explanation: "answer is empty",
		}
	}

	// 期望答案加可接受答案都是候选，取最高分
	candidates := make([]string, 0, 1+len(testCase.AcceptableAnswers))
	if strings.TrimSpace(testCase.ExpectedAnswer) != "" {
		candidates = append(candidates, testCase.ExpectedAnswer)
	}
	candidates = append(candidates, testCase.AcceptableAnswers...)

	best := evaluation.MetricValue{Value: -1}
	for _, candidate := range candidates {
		value := m.scoreAgainst(output.Answer, candidate)
		if value.Value > best.Value {
			best = value
		}
	}
	return best
}

// scoreAgainst 对单个候选答案计算加权组合分数
func (m *AnswerCorrectness) scoreAgainst(answer, expected string) evaluation.MetricValue {
	answerTerms := KeyTerms(answer)
	expectedTerms := KeyTerms(expected)
	answerTokens := Tokenize(answer)
	expectedTokens := Tokenize(expected)

	jaccard := Jaccard(answerTerms, expectedTerms)
	recall := OverlapRatio(expectedTerms, answerTerms)

	completeness := 0.0
	if len(expectedTokens) > 0 {
		completeness = float64(len(answerTokens)) / float64(len(expectedTokens))
		if completeness > 1 {
			completeness = 1
		}
	}

	score := correctnessJaccardWeight*jaccard +
		correctnessRecallWeight*recall +
		correctnessCompletenessWeight*completeness
	if score > 1 {
		score = 1
	}

	shared := Intersection(answerTerms, expectedTerms)
	missing := Difference(expectedTerms, answerTerms)

	var b strings.Builder
	fmt.Fprintf(&b, "jaccard %.2f, expected-term recall %.2f, completeness %.2f against %q",
		jaccard, recall, completeness, expected)
	if len(shared) > 0 {
		fmt.Fprintf(&b, "\nshared terms: %s", strings.Join(preview(shared, 10), ", "))
	}
	if len(missing) > 0 {
		fmt.Fprintf(&b, "\nmissing expected terms: %s", strings.Join(preview(missing, 10), ", "))
	}

	return evaluation.MetricValue{
		Value:       score,
		Explanation: b.String(),
		Details: map[string]interface{}{
			"jaccard":      jaccard,
			"recall":       recall,
			"completeness": completeness,
			"expected":     expected,
		},
	}
}

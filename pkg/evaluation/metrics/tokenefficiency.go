package metrics

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

// tokenEncoding 计数使用的 BPE 编码，固定以保证分数可复现
const tokenEncoding = "cl100k_base"

// TokenEfficiency 词元效率指标
//
// 衡量答案相对检索上下文的精炼程度：答案词元数占上下文词元数的
// 比例越低，说明生成环节压缩信息的能力越强。
// 分数 = 1 − min(1, 答案词元数/上下文词元数)。默认不启用。
type TokenEfficiency struct {
	// encoder tiktoken 编码器，不可用时回退到空白切分计数
	encoder *tiktoken.Tiktoken
}

// NewTokenEfficiency 创建词元效率指标
//
// tiktoken 编码不可用时（离线环境）回退到空白切分计数，
// 两种计数方式都是确定性的。
func NewTokenEfficiency() *TokenEfficiency {
	encoder, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		encoder = nil
	}
	return &TokenEfficiency{encoder: encoder}
}

// Name 返回指标名称
func (m *TokenEfficiency) Name() string {
	return MetricTokenEfficiency
}

// Compute 计算词元效率分数
func (m *TokenEfficiency) Compute(testCase *evaluation.TestCase, output *evaluation.RAGOutput) evaluation.MetricValue {
	if strings.TrimSpace(output.Answer) == "" {
		return evaluation.MetricValue{
			Value:       0,
			Explanation: "answer is empty",
		}
	}

	contextTokens := 0
	for _, context := range output.Contexts {
		contextTokens += m.countTokens(context)
	}
	if contextTokens == 0 {
		return evaluation.MetricValue{
			Value:       0,
			Explanation: "no context tokens to compare against",
		}
	}

	answerTokens := m.countTokens(output.Answer)
	ratio := float64(answerTokens) / float64(contextTokens)
	if ratio > 1 {
		ratio = 1
	}
	score := 1 - ratio

	return evaluation.MetricValue{
		Value: score,
		Explanation: fmt.Sprintf("answer uses %d tokens against %d context tokens (ratio %.2f)",
			answerTokens, contextTokens, ratio),
		Details: map[string]interface{}{
			"answer_tokens":  answerTokens,
			"context_tokens": contextTokens,
			"encoding":       m.encodingName(),
		},
	}
}

// countTokens 统计词元数
func (m *TokenEfficiency) countTokens(s string) int {
	if m.encoder != nil {
		return len(m.encoder.Encode(s, nil, nil))
	}
	return len(strings.Fields(s))
}

// encodingName 返回实际使用的计数方式
func (m *TokenEfficiency) encodingName() string {
	if m.encoder != nil {
		return tokenEncoding
	}
	return "whitespace"
}

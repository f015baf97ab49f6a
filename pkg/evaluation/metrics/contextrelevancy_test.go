package metrics

import (
	"testing"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

func TestContextRelevancyMean(t *testing.T) {
	m := NewContextRelevancy()
	testCase := &evaluation.TestCase{Question: "What is the return policy?"}
	output := &evaluation.RAGOutput{
		// 问题关键词 {return, policy}
		// 第一个上下文命中两个，第二个一个都不命中
		Contexts: []string{
			"Our return policy allows refunds within 30 days.",
			"Standard shipping takes 5-7 business days.",
		},
	}

	value := m.Compute(testCase, output)
	if value.Value != 0.5 {
		t.Errorf("Value = %v, want 0.5", value.Value)
	}
}

func TestContextRelevancyEmptyContexts(t *testing.T) {
	m := NewContextRelevancy()
	testCase := &evaluation.TestCase{Question: "What is the return policy?"}

	value := m.Compute(testCase, &evaluation.RAGOutput{})
	if value.Value != 0 {
		t.Errorf("Value = %v, want 0", value.Value)
	}
	if value.Explanation != "no contexts retrieved" {
		t.Errorf("Explanation = %q", value.Explanation)
	}
}

func TestContextRelevancyStopWordQuestion(t *testing.T) {
	m := NewContextRelevancy()
	// 问题只剩停用词，没有可匹配的关键词
	testCase := &evaluation.TestCase{Question: "What is it?"}
	output := &evaluation.RAGOutput{Contexts: []string{"Some context."}}

	value := m.Compute(testCase, output)
	if value.Value != 0 {
		t.Errorf("Value = %v, want 0", value.Value)
	}
}

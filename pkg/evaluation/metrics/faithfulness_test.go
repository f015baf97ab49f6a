package metrics

import (
	"strings"
	"testing"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

func TestFaithfulnessSupportedClaim(t *testing.T) {
	m := NewFaithfulness()
	output := &evaluation.RAGOutput{
		Answer:   "You can return items within 30 days",
		Contexts: []string{"Returns accepted within 30 days."},
	}

	value := m.Compute(&evaluation.TestCase{}, output)
	if value.Value != 1.0 {
		t.Errorf("Value = %v, want 1.0", value.Value)
	}
	if !strings.Contains(value.Explanation, "1/1 claims supported") {
		t.Errorf("Explanation = %q, want claim count prefix", value.Explanation)
	}
}

func TestFaithfulnessPartialSupport(t *testing.T) {
	m := NewFaithfulness()
	output := &evaluation.RAGOutput{
		Answer:   "The product costs $100 and comes in 3 colors",
		Contexts: []string{"The product is priced at $100."},
	}

	// 两条断言，只有价格断言有支撑
	value := m.Compute(&evaluation.TestCase{}, output)
	if value.Value != 0.5 {
		t.Errorf("Value = %v, want 0.5", value.Value)
	}
	if !strings.Contains(value.Explanation, "1/2 claims supported") {
		t.Errorf("Explanation = %q, want 1/2 claims supported", value.Explanation)
	}
	if !strings.Contains(value.Explanation, "unsupported") {
		t.Errorf("Explanation should list the unsupported claim: %q", value.Explanation)
	}
}

func TestFaithfulnessEmptyAnswer(t *testing.T) {
	m := NewFaithfulness()
	tests := []struct {
		name   string
		answer string
	}{
		{"empty string", ""},
		{"whitespace only", "   \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &evaluation.RAGOutput{
				Answer:   tt.answer,
				Contexts: []string{"Some context."},
			}
			value := m.Compute(&evaluation.TestCase{}, output)
			if value.Value != 0 {
				t.Errorf("Value = %v, want 0", value.Value)
			}
		})
	}
}

func TestFaithfulnessNoContexts(t *testing.T) {
	m := NewFaithfulness()
	output := &evaluation.RAGOutput{
		Answer:   "Shipping takes 5 business days",
		Contexts: nil,
	}

	// 没有上下文时任何断言都不可能有支撑
	value := m.Compute(&evaluation.TestCase{}, output)
	if value.Value != 0 {
		t.Errorf("Value = %v, want 0", value.Value)
	}
}

func TestFaithfulnessDeterministic(t *testing.T) {
	m := NewFaithfulness()
	output := &evaluation.RAGOutput{
		Answer:   "Standard shipping takes 5-7 business days and express takes 1-2 days",
		Contexts: []string{"Standard shipping takes 5-7 business days.", "Express shipping takes 1-2 business days."},
	}

	first := m.Compute(&evaluation.TestCase{}, output)
	for i := 0; i < 10; i++ {
		got := m.Compute(&evaluation.TestCase{}, output)
		if got.Value != first.Value || got.Explanation != first.Explanation {
			t.Fatalf("run %d differs: value %v vs %v", i, got.Value, first.Value)
		}
	}
}

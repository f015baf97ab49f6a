package metrics

import (
	"testing"
	"time"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

func TestLatencyScoring(t *testing.T) {
	m := NewLatency(2 * time.Second)

	tests := []struct {
		name    string
		latency time.Duration
		want    float64
	}{
		{"under budget", 500 * time.Millisecond, 1.0},
		{"at budget", 2 * time.Second, 1.0},
		{"halfway to double", 3 * time.Second, 0.5},
		{"at double budget", 4 * time.Second, 0.0},
		{"beyond double budget", 10 * time.Second, 0.0},
		{"negative clamps to zero", -1 * time.Second, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &evaluation.RAGOutput{Latency: tt.latency}
			value := m.Compute(&evaluation.TestCase{}, output)
			if value.Value != tt.want {
				t.Errorf("Compute(latency=%s) = %v, want %v", tt.latency, value.Value, tt.want)
			}
		})
	}
}

func TestLatencyDefaultBudget(t *testing.T) {
	m := NewLatency(0)
	output := &evaluation.RAGOutput{Latency: time.Second}
	if value := m.Compute(&evaluation.TestCase{}, output); value.Value != 1.0 {
		t.Errorf("Value = %v, want 1.0 under default budget", value.Value)
	}
}

func TestTokenEfficiency(t *testing.T) {
	m := NewTokenEfficiency()

	t.Run("concise answer scores high", func(t *testing.T) {
		output := &evaluation.RAGOutput{
			Answer: "Returns accepted within 30 days.",
			Contexts: []string{
				"Our return policy allows customers to return any item within 30 days of purchase for a full refund, provided the item is in its original condition and accompanied by a valid receipt.",
			},
		}
		value := m.Compute(&evaluation.TestCase{}, output)
		if value.Value <= 0.5 {
			t.Errorf("Value = %v, want > 0.5 for concise answer", value.Value)
		}
	})

	t.Run("empty answer", func(t *testing.T) {
		output := &evaluation.RAGOutput{Contexts: []string{"Some context."}}
		if value := m.Compute(&evaluation.TestCase{}, output); value.Value != 0 {
			t.Errorf("Value = %v, want 0", value.Value)
		}
	})

	t.Run("no contexts", func(t *testing.T) {
		output := &evaluation.RAGOutput{Answer: "Some answer"}
		if value := m.Compute(&evaluation.TestCase{}, output); value.Value != 0 {
			t.Errorf("Value = %v, want 0", value.Value)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		output := &evaluation.RAGOutput{
			Answer:   "Shipping takes 5 days.",
			Contexts: []string{"Standard shipping takes 5-7 business days."},
		}
		first := m.Compute(&evaluation.TestCase{}, output)
		second := m.Compute(&evaluation.TestCase{}, output)
		if first.Value != second.Value {
			t.Errorf("values differ: %v vs %v", first.Value, second.Value)
		}
	})
}

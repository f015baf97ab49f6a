package adapters

import (
	"context"
	"reflect"
	"testing"
)

func TestStaticAdapterRetrieveRanksByOverlap(t *testing.T) {
	adapter := NewStaticAdapter([]string{
		"Standard shipping takes 5-7 business days.",
		"Returns are accepted within 30 days of purchase.",
		"Our headquarters are located in Berlin.",
	})

	contexts, err := adapter.Retrieve(context.Background(), "Are returns accepted within 30 days of purchase?")
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(contexts) == 0 {
		t.Fatal("Retrieve() returned no contexts")
	}
	if contexts[0] != "Returns are accepted within 30 days of purchase." {
		t.Errorf("top context = %q", contexts[0])
	}
}

func TestStaticAdapterRetrieveNoMatch(t *testing.T) {
	adapter := NewStaticAdapter([]string{"Completely unrelated document."})

	contexts, err := adapter.Retrieve(context.Background(), "quantum entanglement experiments")
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(contexts) != 0 {
		t.Errorf("contexts = %v, want empty for zero overlap", contexts)
	}
}

func TestStaticAdapterTopK(t *testing.T) {
	documents := []string{
		"shipping info one",
		"shipping info two",
		"shipping info three",
		"shipping info four",
	}
	adapter := NewStaticAdapter(documents, WithStaticTopK(2))

	contexts, err := adapter.Retrieve(context.Background(), "shipping info")
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(contexts) != 2 {
		t.Errorf("len(contexts) = %d, want 2", len(contexts))
	}
}

func TestStaticAdapterGenerate(t *testing.T) {
	adapter := NewStaticAdapter(nil, WithAnswers(map[string]string{
		"known question": "preset answer",
	}))

	answer, err := adapter.Generate(context.Background(), "known question", nil)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if answer != "preset answer" {
		t.Errorf("answer = %q", answer)
	}

	answer, err = adapter.Generate(context.Background(), "other", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if answer != "a b" {
		t.Errorf("answer = %q, want joined contexts", answer)
	}

	answer, err = adapter.Generate(context.Background(), "other", nil)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if answer != "No relevant information found." {
		t.Errorf("answer = %q", answer)
	}
}

func TestStaticAdapterDeterministic(t *testing.T) {
	adapter := NewStaticAdapter([]string{
		"Returns are accepted within 30 days.",
		"Refunds take 5 business days to process.",
		"Exchanges are free within 30 days.",
	})

	first, err := adapter.Retrieve(context.Background(), "returns and refunds within 30 days")
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := adapter.Retrieve(context.Background(), "returns and refunds within 30 days")
		if err != nil {
			t.Fatalf("Retrieve() error: %v", err)
		}
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %v vs %v", i, got, first)
		}
	}
}

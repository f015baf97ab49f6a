package evaluation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// combinedStub 支持合并调用的测试适配器
type combinedStub struct {
	stubAdapter
	combinedErr error
}

func (a *combinedStub) ExecuteCombined(ctx context.Context, query string) (string, []string, error) {
	if a.combinedErr != nil {
		return "", nil, a.combinedErr
	}
	return "combined answer", []string{"combined context"}, nil
}

func TestExecutorStepwise(t *testing.T) {
	adapter := &stubAdapter{answers: map[string]string{"q": "the answer"}}
	executor := NewExecutor(adapter, time.Second)

	output := executor.Execute(context.Background(), "q")
	if output.Failed() {
		t.Fatalf("Execute() failed: %s", output.Error)
	}
	if output.Answer != "the answer" {
		t.Errorf("Answer = %q", output.Answer)
	}
	if len(output.Contexts) != 1 {
		t.Errorf("Contexts = %v", output.Contexts)
	}
	if output.Latency <= 0 {
		t.Error("Latency not recorded")
	}
}

func TestExecutorPrefersCombined(t *testing.T) {
	adapter := &combinedStub{}
	executor := NewExecutor(adapter, time.Second)

	output := executor.Execute(context.Background(), "q")
	if output.Answer != "combined answer" {
		t.Errorf("Answer = %q, want combined path", output.Answer)
	}
}

func TestExecutorCombinedFallsBackToStepwise(t *testing.T) {
	adapter := &combinedStub{combinedErr: errors.New("combined endpoint unavailable")}
	adapter.answers = map[string]string{"q": "stepwise answer"}
	executor := NewExecutor(adapter, time.Second)

	output := executor.Execute(context.Background(), "q")
	if output.Failed() {
		t.Fatalf("Execute() failed: %s", output.Error)
	}
	if output.Answer != "stepwise answer" {
		t.Errorf("Answer = %q, want stepwise fallback", output.Answer)
	}
}

func TestExecutorRetrievalError(t *testing.T) {
	adapter := &stubAdapter{failOn: map[string]bool{"q": true}}
	executor := NewExecutor(adapter, time.Second)

	output := executor.Execute(context.Background(), "q")
	if !output.Failed() {
		t.Fatal("Execute() should report failure")
	}
	if !strings.Contains(output.Error, "retrieve") {
		t.Errorf("Error = %q, want retrieve step named", output.Error)
	}
}

func TestExecutorTimeout(t *testing.T) {
	adapter := &stubAdapter{delay: 200 * time.Millisecond}
	executor := NewExecutor(adapter, 20*time.Millisecond)

	output := executor.Execute(context.Background(), "q")
	if !output.Failed() {
		t.Fatal("Execute() should time out")
	}
	if !strings.Contains(output.Error, ErrAdapterTimeout.Error()) {
		t.Errorf("Error = %q, want timeout marker", output.Error)
	}
}

func TestExecutorRecoverFromPanic(t *testing.T) {
	adapter := &stubAdapter{panicOn: map[string]bool{"q": true}}
	executor := NewExecutor(adapter, time.Second)

	output := executor.Execute(context.Background(), "q")
	if !output.Failed() {
		t.Fatal("Execute() should report failure")
	}
	if !strings.Contains(output.Error, "adapter panic") {
		t.Errorf("Error = %q, want panic description", output.Error)
	}
}

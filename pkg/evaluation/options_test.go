package evaluation

import (
	"testing"
	"time"
)

func TestDefaultEvalConfig(t *testing.T) {
	config := DefaultEvalConfig()
	if config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", config.Timeout)
	}
	if config.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", config.Concurrency)
	}
	if config.MaxCases != 0 {
		t.Errorf("MaxCases = %d, want 0", config.MaxCases)
	}
}

func TestApplyOptions(t *testing.T) {
	config := DefaultEvalConfig()
	config.ApplyOptions(
		WithTimeout(5*time.Second),
		WithConcurrency(4),
		WithMaxCases(10),
	)

	if config.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", config.Timeout)
	}
	if config.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", config.Concurrency)
	}
	if config.MaxCases != 10 {
		t.Errorf("MaxCases = %d, want 10", config.MaxCases)
	}
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	config := DefaultEvalConfig()
	config.ApplyOptions(
		WithTimeout(-time.Second),
		WithConcurrency(0),
		WithMaxCases(-5),
	)

	if config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want default kept", config.Timeout)
	}
	if config.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want default kept", config.Concurrency)
	}
	if config.MaxCases != 0 {
		t.Errorf("MaxCases = %d, want default kept", config.MaxCases)
	}
}

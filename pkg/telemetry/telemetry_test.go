package telemetry

import (
	"context"
	"testing"
)

func TestSetupNone(t *testing.T) {
	for _, exporter := range []string{"", ExporterNone} {
		shutdown, err := Setup(context.Background(), exporter, "")
		if err != nil {
			t.Fatalf("Setup(%q) error: %v", exporter, err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("shutdown error: %v", err)
		}
	}
}

func TestSetupUnknownExporter(t *testing.T) {
	if _, err := Setup(context.Background(), "jaeger", ""); err == nil {
		t.Error("Setup() should reject unknown exporter")
	}
}

func TestSetupStdout(t *testing.T) {
	shutdown, err := Setup(context.Background(), ExporterStdout, "")
	if err != nil {
		t.Fatalf("Setup(stdout) error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown error: %v", err)
	}
}

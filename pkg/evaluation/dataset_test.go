package evaluation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入临时数据集失败: %v", err)
	}
	return path
}

func TestLoadDataset(t *testing.T) {
	path := writeTempDataset(t, `{"id": "c1", "question": "What is the return policy?", "expected_answer": "30 days", "expected_contexts": ["Returns accepted within 30 days."]}

{"question": "How long does shipping take?", "thresholds": {"faithfulness": 0.9}}
`)

	testCases, err := LoadDataset(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadDataset() error: %v", err)
	}
	if len(testCases) != 2 {
		t.Fatalf("len(testCases) = %d, want 2 (blank lines skipped)", len(testCases))
	}
	if testCases[0].ID != "c1" || testCases[0].ExpectedAnswer != "30 days" {
		t.Errorf("testCases[0] = %+v", testCases[0])
	}
	if got := testCases[1].Thresholds["faithfulness"]; got != 0.9 {
		t.Errorf("per-case threshold = %v, want 0.9", got)
	}
}

func TestLoadDatasetNotFound(t *testing.T) {
	_, err := LoadDataset(context.Background(), filepath.Join(t.TempDir(), "missing.jsonl"))
	if !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("error = %v, want ErrDatasetNotFound", err)
	}
}

func TestLoadDatasetInvalidLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "malformed json",
			content: "{\"question\": \"ok\"}\nnot json\n",
			wantErr: ErrInvalidTestCase,
		},
		{
			name:    "missing question",
			content: "{\"expected_answer\": \"something\"}\n",
			wantErr: ErrInvalidTestCase,
		},
		{
			name:    "threshold out of range",
			content: "{\"question\": \"ok\", \"thresholds\": {\"faithfulness\": 1.5}}\n",
			wantErr: ErrInvalidThreshold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempDataset(t, tt.content)
			_, err := LoadDataset(context.Background(), path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDatasetErrorNamesLine(t *testing.T) {
	path := writeTempDataset(t, "{\"question\": \"ok\"}\n{broken\n")
	_, err := LoadDataset(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "2") {
		t.Errorf("error = %v, want line number 2 in message", err)
	}
}

func TestLoadDatasetEmpty(t *testing.T) {
	path := writeTempDataset(t, "\n\n")
	_, err := LoadDataset(context.Background(), path)
	if !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("error = %v, want ErrEmptyDataset", err)
	}
}

func TestSaveDatasetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "dataset.jsonl")
	original := []TestCase{
		{ID: "c1", Question: "q1", ExpectedAnswer: "a1"},
		{ID: "c2", Question: "q2", AcceptableAnswers: []string{"alt"}},
	}

	if err := SaveDataset(original, path); err != nil {
		t.Fatalf("SaveDataset() error: %v", err)
	}

	loaded, err := LoadDataset(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadDataset() error: %v", err)
	}
	if len(loaded) != 2 || loaded[1].AcceptableAnswers[0] != "alt" {
		t.Errorf("loaded = %+v", loaded)
	}
}

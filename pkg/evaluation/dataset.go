package evaluation

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadDataset 从 JSONL 文件加载测试用例
//
// 每行一个 JSON 对象，至少包含 question 字段，例如:
//
//	{"question": "What is RAG?", "expected_answer": "Retrieval-Augmented Generation"}
//
// 任何一行解析失败都会让整个加载失败并指明行号：数据集错误是致命错误，
// 必须在任何适配器调用之前暴露。
func LoadDataset(ctx context.Context, path string) ([]TestCase, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开数据集失败: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)

	var testCases []TestCase
	lineNum := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var tc TestCase
		if err := json.Unmarshal([]byte(line), &tc); err != nil {
			return nil, fmt.Errorf("%w: 第 %d 行 JSON 无效: %v", ErrInvalidTestCase, lineNum, err)
		}
		if err := validateTestCase(&tc, lineNum); err != nil {
			return nil, err
		}

		testCases = append(testCases, tc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取数据集失败: %w", err)
	}

	if len(testCases) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, path)
	}

	return testCases, nil
}

// validateTestCase 校验单个用例记录
func validateTestCase(tc *TestCase, lineNum int) error {
	if strings.TrimSpace(tc.Question) == "" {
		return fmt.Errorf("%w: 第 %d 行缺少 question 字段", ErrInvalidTestCase, lineNum)
	}
	for name, threshold := range tc.Thresholds {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("%w: 第 %d 行指标 %s 的阈值 %v 不在 [0,1] 内",
				ErrInvalidThreshold, lineNum, name, threshold)
		}
	}
	return nil
}

// SaveDataset 把测试用例保存为 JSONL 文件
func SaveDataset(testCases []TestCase, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for i := range testCases {
		if err := encoder.Encode(&testCases[i]); err != nil {
			return fmt.Errorf("写入用例失败: %w", err)
		}
	}

	return nil
}

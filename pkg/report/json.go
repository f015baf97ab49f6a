// Package report 把评估结果渲染为 JSON、HTML 和终端摘要
//
// 报告器只消费自包含的 EvaluationResult，不依赖任何运行期状态；
// JSON 报告可以被重新加载，作为回归对比的基线。
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

// jsonReport JSON 报告的顶层结构
type jsonReport struct {
	GeneratedAt time.Time                    `json:"generated_at"`
	Version     string                       `json:"version"`
	Result      *evaluation.EvaluationResult `json:"result"`
}

// reportVersion 报告格式版本
const reportVersion = "1.0"

// SaveJSON 把评估结果保存为 JSON 文件
func SaveJSON(result *evaluation.EvaluationResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(jsonReport{
		GeneratedAt: time.Now(),
		Version:     reportVersion,
		Result:      result,
	}); err != nil {
		return fmt.Errorf("写入报告失败: %w", err)
	}
	return nil
}

// LoadJSON 从 JSON 报告文件加载评估结果（用作对比基线）
func LoadJSON(inputPath string) (*evaluation.EvaluationResult, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("打开报告失败: %w", err)
	}
	defer file.Close()

	var r jsonReport
	if err := json.NewDecoder(file).Decode(&r); err != nil {
		return nil, fmt.Errorf("解析报告失败: %w", err)
	}
	if r.Result == nil {
		return nil, fmt.Errorf("报告缺少 result 字段: %s", inputPath)
	}
	return r.Result, nil
}

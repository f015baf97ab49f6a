package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigFile = `version: "1.0"

rag_system:
  type: http
  endpoint: http://localhost:8000
  timeout_seconds: 30
  # headers:
  #   Authorization: Bearer ${RAG_API_KEY}

metrics:
  faithfulness:
    enabled: true
    threshold: 0.80
    required: true
  answer_correctness:
    enabled: true
    threshold: 0.80
    required: true
  context_relevancy:
    enabled: true
    threshold: 0.80
    required: true
  groundedness:
    enabled: true
    threshold: 0.80
    required: true

evaluation:
  concurrency: 1
  max_cases: 0

reporting:
  formats: [json]
  output_dir: results

telemetry:
  exporter: none
`

const exampleDataset = `{"id": "return-policy", "question": "What is the return policy?", "expected_answer": "Items can be returned within 30 days of purchase.", "expected_contexts": ["Returns are accepted within 30 days of purchase with a valid receipt."]}
{"id": "shipping-time", "question": "How long does shipping take?", "expected_answer": "Standard shipping takes 5 to 7 business days.", "expected_contexts": ["Standard shipping takes 5-7 business days. Express shipping takes 1-2 business days."]}
`

// newInitCmd 构建 init 子命令
func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "在当前目录生成配置文件和示例数据集",
		RunE: func(cmd *cobra.Command, args []string) error {
			files := map[string]string{
				".ragguard.yml": defaultConfigFile,
				"dataset.jsonl": exampleDataset,
			}
			for name, content := range files {
				if !force {
					if _, err := os.Stat(name); err == nil {
						return fmt.Errorf("%s 已存在，使用 --force 覆盖", name)
					}
				}
				if err := os.WriteFile(name, []byte(content), 0644); err != nil {
					return fmt.Errorf("写入 %s 失败: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "已生成: %s\n", name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "运行 ragguard test -d dataset.jsonl 开始评估")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "覆盖已存在的文件")

	return cmd
}

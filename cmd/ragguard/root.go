package main

import (
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// newRootCmd 构建根命令
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ragguard",
		Short: "RAG 系统质量回归测试工具",
		Long: `ragguard 在问答数据集上驱动被测 RAG 系统，
用确定性指标为每个回答打分，按阈值聚合通过/失败，
并支持与历史基线对比检测回归。`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newTestCmd())
	cmd.AddCommand(newCompareCmd())
	cmd.AddCommand(newInitCmd())

	return cmd
}

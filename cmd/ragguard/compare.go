package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
	"github.com/ahhsitt/ragguard-go/pkg/evaluation/compare"
	"github.com/ahhsitt/ragguard-go/pkg/report"
	"github.com/ahhsitt/ragguard-go/pkg/storage"
)

// newCompareCmd 构建 compare 子命令
func newCompareCmd() *cobra.Command {
	var (
		baselinePath string
		currentPath  string
		storePath    string
		baselineRun  string
		noise        float64
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "对比两次评估结果，检测回归",
		Long: `对比基线与当前两份评估结果。

基线既可以来自 JSON 报告文件 (--baseline)，
也可以来自运行存储 (--store 配合 --baseline-run，
省略 --baseline-run 时取存储中最近一次通过的运行)。
存在超过噪声阈值的指标下降时以状态码 1 退出。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			baseline, err := loadBaseline(ctx, baselinePath, storePath, baselineRun)
			if err != nil {
				return err
			}
			current, err := report.LoadJSON(currentPath)
			if err != nil {
				return err
			}

			comparison := compare.Compare(baseline, current,
				compare.WithNoiseThreshold(noise))
			for _, line := range comparison.Summary() {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if comparison.Regressions > 0 {
				return errEvaluationFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baselinePath, "baseline", "", "基线报告路径 (JSON)")
	cmd.Flags().StringVar(&currentPath, "current", "", "当前报告路径 (JSON)")
	cmd.Flags().StringVar(&storePath, "store", "", "运行存储路径 (SQLite)")
	cmd.Flags().StringVar(&baselineRun, "baseline-run", "", "存储中作为基线的运行 ID")
	cmd.Flags().Float64Var(&noise, "noise", compare.DefaultNoiseThreshold, "噪声阈值，小于该值的波动不算回归")
	cmd.MarkFlagRequired("current")
	cmd.MarkFlagsMutuallyExclusive("baseline", "store")

	return cmd
}

// loadBaseline 从报告文件或运行存储加载基线结果
func loadBaseline(ctx context.Context, baselinePath, storePath, baselineRun string) (*evaluation.EvaluationResult, error) {
	if baselinePath != "" {
		return report.LoadJSON(baselinePath)
	}
	if storePath == "" {
		return nil, fmt.Errorf("必须指定 --baseline 或 --store")
	}

	store, err := storage.Open(storePath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if baselineRun != "" {
		return store.Load(ctx, baselineRun)
	}
	return store.Latest(ctx, true)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahhsitt/ragguard-go/pkg/adapters"
	"github.com/ahhsitt/ragguard-go/pkg/config"
	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
	"github.com/ahhsitt/ragguard-go/pkg/evaluation/compare"
	"github.com/ahhsitt/ragguard-go/pkg/report"
	"github.com/ahhsitt/ragguard-go/pkg/storage"
	"github.com/ahhsitt/ragguard-go/pkg/telemetry"
)

// errEvaluationFailed 评估未达阈值，进程以状态码 1 退出
var errEvaluationFailed = errors.New("evaluation failed")

// newTestCmd 构建 test 子命令
func newTestCmd() *cobra.Command {
	var (
		configPath   string
		datasetPath  string
		baselinePath string
		storePath    string
		endpoint     string
		outputPath   string
		htmlPath     string
		concurrency  int
		maxCases     int
		quiet        bool
	)

	cmd := &cobra.Command{
		Use:   "test",
		Short: "在数据集上运行一次评估",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if endpoint != "" {
				cfg.RAGSystem.Endpoint = endpoint
			}
			if concurrency > 0 {
				cfg.Evaluation.Concurrency = concurrency
			}
			if maxCases > 0 {
				cfg.Evaluation.MaxCases = maxCases
			}

			shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.Exporter, cfg.Telemetry.Endpoint)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				shutdown(shutdownCtx)
			}()

			testCases, err := evaluation.LoadDataset(ctx, datasetPath)
			if err != nil {
				return err
			}

			adapter, err := buildAdapter(cfg, testCases)
			if err != nil {
				return err
			}

			specs, err := cfg.BuildSpecs()
			if err != nil {
				return err
			}

			opts := []evaluation.EvalOption{
				evaluation.WithTimeout(time.Duration(cfg.RAGSystem.TimeoutSeconds) * time.Second),
				evaluation.WithConcurrency(cfg.Evaluation.Concurrency),
				evaluation.WithMaxCases(cfg.Evaluation.MaxCases),
			}
			if !quiet {
				opts = append(opts, evaluation.WithProgressCallback(func(done, total int) {
					fmt.Fprintf(cmd.ErrOrStderr(), "\r评估进度: %d/%d", done, total)
					if done == total {
						fmt.Fprintln(cmd.ErrOrStderr())
					}
				}))
			}

			pipeline, err := evaluation.NewPipeline(adapter, specs, opts...)
			if err != nil {
				return err
			}

			result, err := pipeline.Evaluate(ctx, testCases)
			if err != nil {
				return err
			}

			report.PrintSummary(cmd.OutOrStdout(), result)

			if err := writeReports(cmd, cfg, result, outputPath, htmlPath); err != nil {
				return err
			}
			if storePath != "" {
				if err := saveToStore(ctx, storePath, result); err != nil {
					return err
				}
			}
			if baselinePath != "" {
				if err := compareWithBaseline(cmd, baselinePath, result); err != nil {
					return err
				}
			}

			if !result.Passed {
				return errEvaluationFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", ".ragguard.yml", "配置文件路径")
	cmd.Flags().StringVarP(&datasetPath, "dataset", "d", "", "数据集路径 (JSONL)")
	cmd.Flags().StringVar(&baselinePath, "baseline", "", "基线报告路径，指定后与本次结果对比")
	cmd.Flags().StringVar(&storePath, "store", "", "运行存储路径 (SQLite)，指定后保存本次结果")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "覆盖配置中的被测系统端点")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "JSON 报告输出路径（默认 <output_dir>/<run_id>.json）")
	cmd.Flags().StringVar(&htmlPath, "html", "", "HTML 报告输出路径")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "覆盖配置中的并发度")
	cmd.Flags().IntVar(&maxCases, "max-cases", 0, "覆盖配置中的最大用例数")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "不输出进度")
	cmd.MarkFlagRequired("dataset")

	return cmd
}

// buildAdapter 按配置构建被测系统适配器
//
// static 类型把数据集中的期望上下文当作文档库，用于本地冒烟验证。
func buildAdapter(cfg *config.Config, testCases []evaluation.TestCase) (evaluation.RAGAdapter, error) {
	switch cfg.RAGSystem.Type {
	case "http":
		return adapters.NewHTTPAdapter(cfg.RAGSystem.Endpoint,
			adapters.WithHeaders(cfg.RAGSystem.Headers),
			adapters.WithHTTPTimeout(time.Duration(cfg.RAGSystem.TimeoutSeconds)*time.Second),
		), nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("openai 适配器需要设置 OPENAI_API_KEY")
		}
		retriever, err := buildRetriever(cfg, testCases)
		if err != nil {
			return nil, err
		}
		return adapters.NewOpenAIAdapter(apiKey, retriever), nil
	case "static":
		return adapters.NewStaticAdapter(collectDocuments(testCases)), nil
	default:
		return nil, fmt.Errorf("未知的适配器类型: %s", cfg.RAGSystem.Type)
	}
}

// buildRetriever 构建 openai 适配器的检索后端
//
// 配置了 Neo4j 时走全文索引检索，否则用数据集中的期望上下文
// 构建内存检索库。
func buildRetriever(cfg *config.Config, testCases []evaluation.TestCase) (adapters.Retriever, error) {
	nc := cfg.RAGSystem.Neo4j
	if nc.URI == "" {
		return adapters.NewStaticAdapter(collectDocuments(testCases)), nil
	}

	var opts []adapters.Neo4jOption
	if nc.Database != "" {
		opts = append(opts, adapters.WithDatabase(nc.Database))
	}
	if nc.TopK > 0 {
		opts = append(opts, adapters.WithTopK(nc.TopK))
	}
	return adapters.NewNeo4jRetriever(nc.URI, nc.Username, nc.Password, nc.Index, opts...)
}

// collectDocuments 汇总数据集中的期望上下文作为文档库
func collectDocuments(testCases []evaluation.TestCase) []string {
	seen := make(map[string]bool)
	var documents []string
	for i := range testCases {
		for _, doc := range testCases[i].ExpectedContexts {
			if doc != "" && !seen[doc] {
				seen[doc] = true
				documents = append(documents, doc)
			}
		}
	}
	return documents
}

// writeReports 按配置的格式输出报告文件，显式指定的路径优先于配置
func writeReports(cmd *cobra.Command, cfg *config.Config, result *evaluation.EvaluationResult, outputPath, htmlPath string) error {
	formats := make(map[string]bool, len(cfg.Reporting.Formats))
	for _, format := range cfg.Reporting.Formats {
		formats[format] = true
	}
	if outputPath != "" {
		formats["json"] = true
	}
	if htmlPath != "" {
		formats["html"] = true
	}

	var written []string
	if formats["json"] {
		path := outputPath
		if path == "" {
			path = filepath.Join(cfg.Reporting.OutputDir, result.RunID+".json")
		}
		if err := report.SaveJSON(result, path); err != nil {
			return err
		}
		written = append(written, path)
	}
	if formats["html"] {
		path := htmlPath
		if path == "" {
			path = filepath.Join(cfg.Reporting.OutputDir, result.RunID+".html")
		}
		if err := report.SaveHTML(result, path); err != nil {
			return err
		}
		written = append(written, path)
	}

	for _, path := range written {
		fmt.Fprintf(cmd.OutOrStdout(), "报告已写入: %s\n", path)
	}
	return nil
}

// saveToStore 把结果存入运行数据库
func saveToStore(ctx context.Context, path string, result *evaluation.EvaluationResult) error {
	store, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Save(ctx, result)
}

// compareWithBaseline 加载基线报告并打印对比结论
func compareWithBaseline(cmd *cobra.Command, baselinePath string, current *evaluation.EvaluationResult) error {
	baseline, err := report.LoadJSON(baselinePath)
	if err != nil {
		return err
	}

	comparison := compare.Compare(baseline, current)
	for _, line := range comparison.Summary() {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	if comparison.Regressions > 0 {
		return errEvaluationFailed
	}
	return nil
}

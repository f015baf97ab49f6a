package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

// maxFailuresShown 终端摘要中展示的失败用例上限
const maxFailuresShown = 5

// PrintSummary 向 w 输出人类可读的评估摘要
func PrintSummary(w io.Writer, result *evaluation.EvaluationResult) {
	line := strings.Repeat("=", 60)
	thin := strings.Repeat("-", 60)

	fmt.Fprintf(w, "\n%s\nRAGGUARD - EVALUATION SUMMARY\n%s\n", line, line)

	status := "PASSED"
	if !result.Passed {
		status = "FAILED"
	}
	fmt.Fprintf(w, "\nOverall: %s\n", status)
	fmt.Fprintf(w, "Pass Rate: %.1f%% (%d/%d)\n",
		result.PassRate*100, result.PassedTests, result.TotalTests)

	if len(result.MetricAverages) > 0 {
		fmt.Fprintf(w, "\n%s\nMETRIC AVERAGES\n%s\n", thin, thin)
		names := make([]string, 0, len(result.MetricAverages))
		for name := range result.MetricAverages {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "%-20s: %.2f\n", name, result.MetricAverages[name])
		}
	}

	failures := result.Failures()
	if len(failures) > 0 {
		fmt.Fprintf(w, "\n%s\nFAILURES (%d)\n%s\n", thin, len(failures), thin)
		shown := len(failures)
		if shown > maxFailuresShown {
			shown = maxFailuresShown
		}
		for i := 0; i < shown; i++ {
			fmt.Fprintf(w, "\n%d. %s\n", i+1, failures[i].TestCase.Question)
			for _, reason := range failures[i].FailureReasons {
				fmt.Fprintf(w, "   %s\n", reason)
			}
		}
		if len(failures) > shown {
			fmt.Fprintf(w, "\n... and %d more failures\n", len(failures)-shown)
		}
	}

	fmt.Fprintf(w, "\n%s\n", line)
}

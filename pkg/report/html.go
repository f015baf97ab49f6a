package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

// htmlTemplate 自包含的单页报告模板
var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
	"f2":  func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>RAGGuard Evaluation Report</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem; color: #24292f; }
h1 { border-bottom: 2px solid #d0d7de; padding-bottom: .5rem; }
.summary { display: flex; gap: 1.5rem; margin: 1rem 0; }
.card { border: 1px solid #d0d7de; border-radius: 6px; padding: 1rem 1.5rem; }
.card .value { font-size: 1.6rem; font-weight: 600; }
.pass { color: #1a7f37; }
.fail { color: #cf222e; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { border: 1px solid #d0d7de; padding: .5rem .75rem; text-align: left; }
th { background: #f6f8fa; }
.case { border: 1px solid #d0d7de; border-radius: 6px; margin: 1rem 0; padding: 1rem; }
.case.failed { border-left: 4px solid #cf222e; }
.case.passed { border-left: 4px solid #1a7f37; }
.explanation { white-space: pre-wrap; font-family: monospace; font-size: .85rem; background: #f6f8fa; padding: .5rem; border-radius: 4px; }
.reason { color: #cf222e; }
</style>
</head>
<body>
<h1>RAGGuard Evaluation Report</h1>
<p>Run {{.RunID}} · started {{.StartedAt.Format "2006-01-02 15:04:05"}} · duration {{.Duration}}</p>

<div class="summary">
  <div class="card"><div>Status</div>
    <div class="value {{if .Passed}}pass{{else}}fail{{end}}">{{if .Passed}}PASSED{{else}}FAILED{{end}}</div></div>
  <div class="card"><div>Pass Rate</div><div class="value">{{pct .PassRate}}</div></div>
  <div class="card"><div>Tests</div><div class="value">{{.PassedTests}}/{{.TotalTests}}</div></div>
</div>

{{if .MetricAverages}}
<h2>Metric Averages</h2>
<table>
<tr><th>Metric</th><th>Average</th></tr>
{{range $name, $avg := .MetricAverages}}<tr><td>{{$name}}</td><td>{{f2 $avg}}</td></tr>
{{end}}
</table>
{{end}}

<h2>Test Cases</h2>
{{range .Results}}
<div class="case {{if .Passed}}passed{{else}}failed{{end}}">
  <strong>{{.TestCase.Question}}</strong>
  {{if .Output.Error}}
    <p class="reason">adapter error: {{.Output.Error}}</p>
  {{else}}
    <p>Answer: {{.Output.Answer}}</p>
    <table>
    <tr><th>Metric</th><th>Score</th><th>Threshold</th><th>Status</th></tr>
    {{range .Scores}}
    <tr><td>{{.Name}}</td><td>{{f2 .Value}}</td><td>{{f2 .Threshold}}</td>
      <td class="{{if .Passed}}pass{{else}}fail{{end}}">{{if .Passed}}pass{{else}}fail{{end}}</td></tr>
    {{end}}
    </table>
    {{range .Scores}}{{if not .Passed}}
    <details><summary>{{.Name}} explanation</summary>
      <div class="explanation">{{.Explanation}}</div></details>
    {{end}}{{end}}
  {{end}}
  {{range .FailureReasons}}<p class="reason">{{.}}</p>{{end}}
</div>
{{end}}
</body>
</html>
`))

// SaveHTML 把评估结果渲染为自包含的 HTML 报告
func SaveHTML(result *evaluation.EvaluationResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	defer file.Close()

	if err := htmlTemplate.Execute(file, result); err != nil {
		return fmt.Errorf("渲染报告失败: %w", err)
	}
	return nil
}

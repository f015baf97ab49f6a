package evaluation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/ahhsitt/ragguard-go/pkg/evaluation"

// Pipeline 评估流水线
//
// 按输入顺序驱动每个用例：调用适配器取得输出，对输出计算所有配置的
// 指标，应用阈值策略判定通过与否，最终聚合为 EvaluationResult。
// 单个用例的故障（适配器错误、指标实现缺陷）被隔离在该用例内，
// 绝不中断整个运行。
type Pipeline struct {
	executor *Executor
	adapter  RAGAdapter
	specs    []MetricSpec
	config   *EvalConfig

	tracer    trace.Tracer
	casesRun  metric.Int64Counter
	casesFail metric.Int64Counter
}

// NewPipeline 创建评估流水线
//
// 参数:
//   - adapter: 被测 RAG 系统适配器
//   - specs: 指标及其阈值策略（顺序即计分顺序）
//   - opts: 运行选项
//
// 返回:
//   - *Pipeline: 流水线实例
//   - error: 适配器为空或没有指标时为致命配置错误
func NewPipeline(adapter RAGAdapter, specs []MetricSpec, opts ...EvalOption) (*Pipeline, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}
	if len(specs) == 0 {
		return nil, ErrNoMetrics
	}
	for _, spec := range specs {
		if spec.Threshold < 0 || spec.Threshold > 1 {
			return nil, fmt.Errorf("%w: %s 配置为 %v",
				ErrInvalidThreshold, spec.Metric.Name(), spec.Threshold)
		}
	}

	config := DefaultEvalConfig()
	config.ApplyOptions(opts...)

	meter := otel.Meter(instrumentationName)
	casesRun, err := meter.Int64Counter("ragguard.cases.evaluated",
		metric.WithDescription("评估过的用例数"))
	if err != nil {
		return nil, fmt.Errorf("创建计数器失败: %w", err)
	}
	casesFail, err := meter.Int64Counter("ragguard.cases.failed",
		metric.WithDescription("未通过的用例数"))
	if err != nil {
		return nil, fmt.Errorf("创建计数器失败: %w", err)
	}

	return &Pipeline{
		executor:  NewExecutor(adapter, config.Timeout),
		adapter:   adapter,
		specs:     specs,
		config:    config,
		tracer:    otel.Tracer(instrumentationName),
		casesRun:  casesRun,
		casesFail: casesFail,
	}, nil
}

// Evaluate 对整个数据集执行评估
//
// 结果顺序与输入顺序一致。运行被取消时返回已完成部分的结果和
// ctx 的错误：半程可见性对长时间运行有运维价值，不应丢弃。
func (p *Pipeline) Evaluate(ctx context.Context, testCases []TestCase) (*EvaluationResult, error) {
	ctx, span := p.tracer.Start(ctx, "ragguard.evaluate",
		trace.WithAttributes(attribute.Int("dataset.size", len(testCases))))
	defer span.End()

	startTime := time.Now()

	total := len(testCases)
	if p.config.MaxCases > 0 && p.config.MaxCases < total {
		total = p.config.MaxCases
		testCases = testCases[:total]
	}

	var (
		results []TestCaseResult
		runErr  error
	)
	if p.concurrency() > 1 {
		results, runErr = p.evaluateParallel(ctx, testCases)
	} else {
		results, runErr = p.evaluateSequential(ctx, testCases)
	}

	result := p.aggregate(results, startTime)
	span.SetAttributes(
		attribute.Int("cases.passed", result.PassedTests),
		attribute.Int("cases.failed", result.FailedTests),
	)
	return result, runErr
}

// concurrency 返回实际生效的并发度
//
// 适配器未声明并发安全时强制顺序执行；指标计算本身无共享状态，
// 跟随用例并发即可。
func (p *Pipeline) concurrency() int {
	if p.config.Concurrency <= 1 {
		return 1
	}
	if safe, ok := p.adapter.(ConcurrencySafeAdapter); !ok || !safe.ConcurrencySafe() {
		return 1
	}
	return p.config.Concurrency
}

// evaluateSequential 顺序执行所有用例
func (p *Pipeline) evaluateSequential(ctx context.Context, testCases []TestCase) ([]TestCaseResult, error) {
	results := make([]TestCaseResult, 0, len(testCases))
	for i := range testCases {
		select {
		case <-ctx.Done():
			// 停止派发，保留已完成的结果
			return results, ctx.Err()
		default:
		}

		results = append(results, p.evaluateTestCase(ctx, &testCases[i]))

		if p.config.ProgressCallback != nil {
			p.config.ProgressCallback(i+1, len(testCases))
		}
	}
	return results, nil
}

// evaluateParallel 用有界工作池并发执行用例
//
// 结果写入按输入索引预分配的位置，并发对输出顺序不可见。
func (p *Pipeline) evaluateParallel(ctx context.Context, testCases []TestCase) ([]TestCaseResult, error) {
	type job struct {
		index int
	}

	results := make([]TestCaseResult, len(testCases))
	done := make([]bool, len(testCases))
	jobs := make(chan job)

	var (
		wg        sync.WaitGroup
		progressM sync.Mutex
		completed int
	)

	for w := 0; w < p.concurrency(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = p.evaluateTestCase(ctx, &testCases[j.index])
				done[j.index] = true

				progressM.Lock()
				completed++
				if p.config.ProgressCallback != nil {
					p.config.ProgressCallback(completed, len(testCases))
				}
				progressM.Unlock()
			}
		}()
	}

	var runErr error
dispatch:
	for i := range testCases {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break dispatch
		case jobs <- job{index: i}:
		}
	}
	close(jobs)
	wg.Wait()

	// 取消时只保留已完成的前缀，保证结果仍与输入顺序对应
	if runErr != nil {
		completed := make([]TestCaseResult, 0, len(results))
		for i := range results {
			if !done[i] {
				break
			}
			completed = append(completed, results[i])
		}
		return completed, runErr
	}

	return results, nil
}

// evaluateTestCase 评估单个用例：执行适配器、计分、应用阈值策略
func (p *Pipeline) evaluateTestCase(ctx context.Context, testCase *TestCase) TestCaseResult {
	ctx, span := p.tracer.Start(ctx, "ragguard.evaluate_case",
		trace.WithAttributes(attribute.String("case.question", testCase.Question)))
	defer span.End()

	p.casesRun.Add(ctx, 1)

	output := p.executor.Execute(ctx, testCase.Question)

	// 适配器失败：不计分，合成失败结果，继续后面的用例
	if output.Failed() {
		p.casesFail.Add(ctx, 1)
		span.SetAttributes(attribute.Bool("case.passed", false))
		return TestCaseResult{
			TestCase:       *testCase,
			Output:         output,
			Passed:         false,
			FailureReasons: []string{fmt.Sprintf("adapter error: %s", output.Error)},
		}
	}

	scores := make([]MetricScore, 0, len(p.specs))
	var failureReasons []string

	for _, spec := range p.specs {
		value := p.computeMetric(spec.Metric, testCase, &output)

		threshold := spec.Threshold
		if override, ok := testCase.Thresholds[spec.Metric.Name()]; ok {
			threshold = override
		}

		score := MetricScore{
			Name:        spec.Metric.Name(),
			Value:       value.Value,
			Threshold:   threshold,
			Required:    spec.Required,
			Passed:      value.Value >= threshold,
			Explanation: value.Explanation,
			Details:     value.Details,
		}
		scores = append(scores, score)

		if !score.Passed && score.Required {
			failureReasons = append(failureReasons,
				fmt.Sprintf("%s failed: %.2f < %.2f", score.Name, score.Value, score.Threshold))
		}
	}

	passed := len(failureReasons) == 0
	if !passed {
		p.casesFail.Add(ctx, 1)
	}
	span.SetAttributes(attribute.Bool("case.passed", passed))

	return TestCaseResult{
		TestCase:       *testCase,
		Output:         output,
		Scores:         scores,
		Passed:         passed,
		FailureReasons: failureReasons,
	}
}

// computeMetric 计算单个指标并把结果夹紧到 [0,1]
//
// 指标按契约不应 panic；万一实现有缺陷，按该指标 0 分处理并在解释中
// 记录，和适配器错误一样隔离在当前用例内。
func (p *Pipeline) computeMetric(m Metric, testCase *TestCase, output *RAGOutput) (value MetricValue) {
	defer func() {
		if r := recover(); r != nil {
			value = MetricValue{
				Value:       0,
				Explanation: fmt.Sprintf("metric computation error: %v", r),
			}
		}
	}()

	value = m.Compute(testCase, output)
	if value.Value < 0 {
		value.Value = 0
	}
	if value.Value > 1 {
		value.Value = 1
	}
	return value
}

// aggregate 把各用例结果聚合为运行级结果
func (p *Pipeline) aggregate(results []TestCaseResult, startTime time.Time) *EvaluationResult {
	result := &EvaluationResult{
		RunID:          uuid.NewString(),
		Results:        results,
		TotalTests:     len(results),
		MetricAverages: make(map[string]float64),
		StartedAt:      startTime,
		Duration:       time.Since(startTime),
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, tcr := range results {
		if tcr.Passed {
			result.PassedTests++
		}
		for _, score := range tcr.Scores {
			sums[score.Name] += score.Value
			counts[score.Name]++
		}
	}
	result.FailedTests = result.TotalTests - result.PassedTests

	// 总数为 0 时通过率定义为 0，而不是除零错误
	if result.TotalTests > 0 {
		result.PassRate = float64(result.PassedTests) / float64(result.TotalTests)
	}

	for name, sum := range sums {
		result.MetricAverages[name] = sum / float64(counts[name])
	}

	result.Passed = result.FailedTests == 0

	return result
}

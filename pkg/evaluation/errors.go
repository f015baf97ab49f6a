package evaluation

import "errors"

// 评估相关错误
var (
	// ErrEmptyDataset 数据集中没有任何有效用例
	ErrEmptyDataset = errors.New("dataset contains no test cases")

	// ErrDatasetNotFound 数据集文件不存在
	ErrDatasetNotFound = errors.New("dataset file not found")

	// ErrInvalidTestCase 用例记录缺少必填字段或格式错误
	ErrInvalidTestCase = errors.New("invalid test case record")

	// ErrRetrievalFailed 检索调用失败
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrGenerationFailed 生成调用失败
	ErrGenerationFailed = errors.New("generation failed")

	// ErrAdapterTimeout 适配器调用超时
	ErrAdapterTimeout = errors.New("adapter call timed out")

	// ErrInvalidThreshold 阈值不在 [0, 1] 区间内
	ErrInvalidThreshold = errors.New("metric threshold must be between 0 and 1")

	// ErrUnknownMetric 配置引用了未知指标名
	ErrUnknownMetric = errors.New("unknown metric name")

	// ErrNoMetrics 没有任何启用的指标
	ErrNoMetrics = errors.New("no metrics configured")

	// ErrNilAdapter 未提供适配器
	ErrNilAdapter = errors.New("rag adapter is nil")
)

// IsRetryable 判断错误是否可重试
//
// 检索/生成/超时属于单个用例范围内的瞬时故障，适配器实现可以对其重试。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRetrievalFailed) ||
		errors.Is(err, ErrGenerationFailed) ||
		errors.Is(err, ErrAdapterTimeout)
}

// IsFatal 判断错误是否为致命错误（在任何用例执行前终止整个运行）
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrDatasetNotFound) ||
		errors.Is(err, ErrInvalidTestCase) ||
		errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrInvalidThreshold) ||
		errors.Is(err, ErrUnknownMetric) ||
		errors.Is(err, ErrNoMetrics) ||
		errors.Is(err, ErrNilAdapter)
}

// WrapError 包装错误并添加上下文信息
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		context: context,
		err:     err,
	}
}

type wrappedError struct {
	context string
	err     error
}

func (e *wrappedError) Error() string {
	return e.context + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}

package metrics

import (
	"fmt"
	"time"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

// 指标策略默认值
const (
	// DefaultThreshold 未配置阈值时使用的默认阈值
	DefaultThreshold = 0.80
)

// Config 单个指标的运行配置
type Config struct {
	// Enabled 是否启用
	Enabled bool `json:"enabled" koanf:"enabled"`

	// Threshold 通过阈值，[0, 1]
	Threshold float64 `json:"threshold" koanf:"threshold"`

	// Required 是否必过（不通过则整个用例失败）
	Required bool `json:"required" koanf:"required"`

	// BudgetMS 延迟预算毫秒数（仅 latency 指标使用）
	BudgetMS int `json:"budget_ms,omitempty" koanf:"budget_ms"`
}

// DefaultConfig 返回指标的默认配置: 启用、阈值 0.80、必过
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Threshold: DefaultThreshold,
		Required:  true,
	}
}

// coreMetrics 默认启用的四项核心指标，顺序即计分和报告顺序
var coreMetrics = []string{
	MetricFaithfulness,
	MetricGroundedness,
	MetricContextRelevancy,
	MetricAnswerCorrectness,
}

// optionalMetrics 显式配置后才启用的扩展指标
var optionalMetrics = []string{
	MetricLatency,
	MetricTokenEfficiency,
}

// New 根据指标名创建指标实例
func New(name string, cfg Config) (evaluation.Metric, error) {
	switch name {
	case MetricFaithfulness:
		return NewFaithfulness(), nil
	case MetricGroundedness:
		return NewGroundedness(), nil
	case MetricContextRelevancy:
		return NewContextRelevancy(), nil
	case MetricAnswerCorrectness:
		return NewAnswerCorrectness(), nil
	case MetricLatency:
		return NewLatency(time.Duration(cfg.BudgetMS) * time.Millisecond), nil
	case MetricTokenEfficiency:
		return NewTokenEfficiency(), nil
	default:
		return nil, fmt.Errorf("%w: %s", evaluation.ErrUnknownMetric, name)
	}
}

// Known 返回指标名是否已知
func Known(name string) bool {
	for _, known := range append(append([]string{}, coreMetrics...), optionalMetrics...) {
		if name == known {
			return true
		}
	}
	return false
}

// BuildSpecs 根据配置映射构建指标策略列表
//
// 四项核心指标默认启用（阈值 0.80、必过），配置可以覆盖或禁用；
// latency 和 token_efficiency 只有出现在配置中且 Enabled 时才参与。
// 顺序固定为核心指标在前、扩展指标在后，保证结果可比较、可对比。
func BuildSpecs(configs map[string]Config) ([]evaluation.MetricSpec, error) {
	for name := range configs {
		if !Known(name) {
			return nil, fmt.Errorf("%w: %s", evaluation.ErrUnknownMetric, name)
		}
	}

	var specs []evaluation.MetricSpec

	for _, name := range coreMetrics {
		cfg, configured := configs[name]
		if !configured {
			cfg = DefaultConfig()
		}
		if !cfg.Enabled {
			continue
		}
		spec, err := buildSpec(name, cfg)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	for _, name := range optionalMetrics {
		cfg, configured := configs[name]
		if !configured || !cfg.Enabled {
			continue
		}
		spec, err := buildSpec(name, cfg)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	if len(specs) == 0 {
		return nil, evaluation.ErrNoMetrics
	}

	return specs, nil
}

// buildSpec 构建单个指标策略并校验阈值
func buildSpec(name string, cfg Config) (evaluation.MetricSpec, error) {
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return evaluation.MetricSpec{}, fmt.Errorf("%w: %s 配置为 %v",
			evaluation.ErrInvalidThreshold, name, cfg.Threshold)
	}
	m, err := New(name, cfg)
	if err != nil {
		return evaluation.MetricSpec{}, err
	}
	return evaluation.MetricSpec{
		Metric:    m,
		Threshold: cfg.Threshold,
		Required:  cfg.Required,
	}, nil
}

// DefaultSpecs 返回四项核心指标的默认策略
func DefaultSpecs() []evaluation.MetricSpec {
	specs, err := BuildSpecs(nil)
	if err != nil {
		// nil 配置走默认路径，不可能失败
		panic(err)
	}
	return specs
}

// Package config 加载并校验评估运行配置
//
// 配置来源是 YAML 文件（默认 .ragguard.yml），字符串值支持 ${VAR}
// 环境变量替换，RAGGUARD_ 前缀的环境变量可以覆盖任意配置项。
// 核心收到的是已经校验过的强类型配置值，配置错误在任何适配器调用
// 之前以致命错误暴露。
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
	"github.com/ahhsitt/ragguard-go/pkg/evaluation/metrics"
)

// 配置相关错误
var (
	// ErrConfigNotFound 配置文件不存在
	ErrConfigNotFound = errors.New("config file not found")

	// ErrMissingEndpoint HTTP 适配器缺少端点
	ErrMissingEndpoint = errors.New("rag_system.endpoint is required for http adapter")

	// ErrInvalidFormat 不支持的报告格式
	ErrInvalidFormat = errors.New("unsupported report format")

	// ErrInvalidTimeout 超时必须为正数
	ErrInvalidTimeout = errors.New("rag_system.timeout_seconds must be positive")

	// ErrMissingNeo4jIndex 配置了 Neo4j 检索却没有指定全文索引
	ErrMissingNeo4jIndex = errors.New("rag_system.neo4j.index is required when neo4j.uri is set")
)

// RAGSystemConfig 被测 RAG 系统的连接配置
type RAGSystemConfig struct {
	// Type 适配器类型: http / openai / static
	Type string `koanf:"type"`

	// Endpoint HTTP 适配器的基础 URL
	Endpoint string `koanf:"endpoint"`

	// TimeoutSeconds 单次调用超时秒数
	TimeoutSeconds int `koanf:"timeout_seconds"`

	// Headers 附加请求头（值支持 ${VAR} 替换，用于注入密钥）
	Headers map[string]string `koanf:"headers"`

	// Neo4j openai 类型的检索后端，URI 为空时退回内存检索
	Neo4j Neo4jConfig `koanf:"neo4j"`
}

// Neo4jConfig Neo4j 全文检索后端配置
type Neo4jConfig struct {
	// URI 连接地址，如 neo4j://localhost:7687
	URI string `koanf:"uri"`

	// Username 用户名
	Username string `koanf:"username"`

	// Password 密码（支持 ${VAR} 替换）
	Password string `koanf:"password"`

	// Index 全文索引名
	Index string `koanf:"index"`

	// Database 数据库名，空值用服务端默认库
	Database string `koanf:"database"`

	// TopK 返回的上下文数量
	TopK int `koanf:"top_k"`
}

// EvaluationConfig 流水线执行配置
type EvaluationConfig struct {
	// Concurrency 并发度（1 为顺序执行）
	Concurrency int `koanf:"concurrency"`

	// MaxCases 最大用例数（0 不限制）
	MaxCases int `koanf:"max_cases"`
}

// ReportingConfig 报告输出配置
type ReportingConfig struct {
	// Formats 输出格式列表: json / html
	Formats []string `koanf:"formats"`

	// OutputDir 输出目录
	OutputDir string `koanf:"output_dir"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// Exporter 导出器: none / stdout / otlp-grpc / otlp-http
	Exporter string `koanf:"exporter"`

	// Endpoint OTLP 收集器地址
	Endpoint string `koanf:"endpoint"`
}

// Config 完整运行配置
type Config struct {
	// Version 配置格式版本
	Version string `koanf:"version"`

	// RAGSystem 被测系统连接配置
	RAGSystem RAGSystemConfig `koanf:"rag_system"`

	// Metrics 各指标配置，键为指标名
	Metrics map[string]metrics.Config `koanf:"metrics"`

	// Evaluation 流水线执行配置
	Evaluation EvaluationConfig `koanf:"evaluation"`

	// Reporting 报告输出配置
	Reporting ReportingConfig `koanf:"reporting"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Version: "1.0",
		RAGSystem: RAGSystemConfig{
			Type:           "http",
			TimeoutSeconds: 30,
		},
		Metrics: map[string]metrics.Config{},
		Evaluation: EvaluationConfig{
			Concurrency: 1,
		},
		Reporting: ReportingConfig{
			Formats:   []string{"json"},
			OutputDir: "results",
		},
		Telemetry: TelemetryConfig{
			Exporter: "none",
		},
	}
}

// envVarPattern 匹配 ${VAR_NAME} 形式的占位符
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load 从 YAML 文件加载配置
//
// 加载顺序: 文件 → ${VAR} 替换 → RAGGUARD_ 环境变量覆盖 → 校验。
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	raw, err := file.Provider(path).ReadBytes()
	if err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}
	raw = substituteEnvVars(raw)

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 双下划线分隔层级: RAGGUARD_RAG_SYSTEM__ENDPOINT 覆盖 rag_system.endpoint
	if err := k.Load(env.Provider("RAGGUARD_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "RAGGUARD_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("读取环境变量失败: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	applyMetricDefaults(cfg, k)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// substituteEnvVars 把 ${VAR} 替换为环境变量的值，未定义的保持原样
func substituteEnvVars(raw []byte) []byte {
	return envVarPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		name := string(match[2 : len(match)-1])
		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		return match
	})
}

// applyMetricDefaults 为配置中省略的指标字段补默认值
//
// YAML 中只写 threshold 而省略 enabled/required 时，缺失字段应取
// 默认值（启用、必过），而不是 Go 的零值。
func applyMetricDefaults(cfg *Config, k *koanf.Koanf) {
	for name, mc := range cfg.Metrics {
		prefix := "metrics." + name + "."
		if !k.Exists(prefix + "enabled") {
			mc.Enabled = true
		}
		if !k.Exists(prefix + "threshold") {
			mc.Threshold = metrics.DefaultThreshold
		}
		if !k.Exists(prefix + "required") {
			mc.Required = true
		}
		cfg.Metrics[name] = mc
	}
}

// Validate 校验配置，返回的错误都是致命配置错误
func (c *Config) Validate() error {
	if c.RAGSystem.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTimeout, c.RAGSystem.TimeoutSeconds)
	}
	if c.RAGSystem.Type == "http" && c.RAGSystem.Endpoint == "" {
		return ErrMissingEndpoint
	}
	if c.RAGSystem.Neo4j.URI != "" && c.RAGSystem.Neo4j.Index == "" {
		return ErrMissingNeo4jIndex
	}

	for name, mc := range c.Metrics {
		if !metrics.Known(name) {
			return fmt.Errorf("%w: %s", evaluation.ErrUnknownMetric, name)
		}
		if mc.Threshold < 0 || mc.Threshold > 1 {
			return fmt.Errorf("%w: %s 配置为 %v", evaluation.ErrInvalidThreshold, name, mc.Threshold)
		}
	}

	for _, format := range c.Reporting.Formats {
		if format != "json" && format != "html" {
			return fmt.Errorf("%w: %s", ErrInvalidFormat, format)
		}
	}

	return nil
}

// BuildSpecs 根据配置构建指标策略列表
func (c *Config) BuildSpecs() ([]evaluation.MetricSpec, error) {
	return metrics.BuildSpecs(c.Metrics)
}

// Package adapters 提供 RAG 适配器的具体实现
//
// 评估核心只依赖 evaluation.RAGAdapter 契约；本包把该契约对接到
// 不同形态的被测系统：HTTP 服务、OpenAI 生成、Neo4j 检索，以及
// 供测试和示例使用的内存实现。
package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

// HTTP 适配器默认参数
const (
	defaultHTTPTimeout = 30 * time.Second
	defaultMaxRetries  = 3
	defaultBackoffBase = 500 * time.Millisecond
)

// HTTPAdapter 通过 HTTP 端点驱动被测 RAG 系统
//
// 约定的端点:
//   - POST {endpoint}/rag      请求 {"query": "..."}，响应 {"answer": "...", "contexts": [...]}
//   - POST {endpoint}/retrieve 请求 {"query": "..."}，响应 {"contexts": [...]}
//   - POST {endpoint}/generate 请求 {"query": "...", "contexts": [...]}，响应 {"answer": "..."}
//
// 对网络错误和 5xx 响应做固定次数的指数退避重试；4xx 视为不可重试。
type HTTPAdapter struct {
	endpoint    string
	headers     map[string]string
	client      *http.Client
	maxRetries  int
	backoffBase time.Duration
}

// HTTPOption HTTP 适配器选项函数类型
type HTTPOption func(*HTTPAdapter)

// WithHeaders 设置附加请求头（如认证信息）
func WithHeaders(headers map[string]string) HTTPOption {
	return func(a *HTTPAdapter) {
		a.headers = headers
	}
}

// WithHTTPTimeout 设置单次请求超时
func WithHTTPTimeout(d time.Duration) HTTPOption {
	return func(a *HTTPAdapter) {
		if d > 0 {
			a.client.Timeout = d
		}
	}
}

// WithMaxRetries 设置瞬时故障的最大重试次数
func WithMaxRetries(n int) HTTPOption {
	return func(a *HTTPAdapter) {
		if n >= 0 {
			a.maxRetries = n
		}
	}
}

// WithBackoffBase 设置重试退避的起始间隔
func WithBackoffBase(d time.Duration) HTTPOption {
	return func(a *HTTPAdapter) {
		if d > 0 {
			a.backoffBase = d
		}
	}
}

// NewHTTPAdapter 创建 HTTP 适配器
func NewHTTPAdapter(endpoint string, opts ...HTTPOption) *HTTPAdapter {
	a := &HTTPAdapter{
		endpoint:    trimTrailingSlash(endpoint),
		client:      &http.Client{Timeout: defaultHTTPTimeout},
		maxRetries:  defaultMaxRetries,
		backoffBase: defaultBackoffBase,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ConcurrencySafe HTTP 客户端可以并发使用
func (a *HTTPAdapter) ConcurrencySafe() bool {
	return true
}

// Retrieve 通过 /retrieve 端点检索上下文
func (a *HTTPAdapter) Retrieve(ctx context.Context, query string) ([]string, error) {
	var resp struct {
		Contexts []string `json:"contexts"`
	}
	if err := a.post(ctx, "/retrieve", map[string]interface{}{"query": query}, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", evaluation.ErrRetrievalFailed, err)
	}
	return resp.Contexts, nil
}

// Generate 通过 /generate 端点生成答案
func (a *HTTPAdapter) Generate(ctx context.Context, query string, contexts []string) (string, error) {
	var resp struct {
		Answer string `json:"answer"`
	}
	body := map[string]interface{}{"query": query, "contexts": contexts}
	if err := a.post(ctx, "/generate", body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", evaluation.ErrGenerationFailed, err)
	}
	return resp.Answer, nil
}

// ExecuteCombined 通过合并的 /rag 端点一次完成检索加生成
//
// 端点不存在或失败时由执行器回退到分步调用。
func (a *HTTPAdapter) ExecuteCombined(ctx context.Context, query string) (string, []string, error) {
	var resp struct {
		Answer   string   `json:"answer"`
		Contexts []string `json:"contexts"`
	}
	if err := a.post(ctx, "/rag", map[string]interface{}{"query": query}, &resp); err != nil {
		return "", nil, fmt.Errorf("%w: %v", evaluation.ErrRetrievalFailed, err)
	}
	return resp.Answer, resp.Contexts, nil
}

// post 发送 JSON 请求并带重试地解码响应
func (a *HTTPAdapter) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if attempt > 0 {
			// 指数退避: base, 2*base, 4*base, ...
			backoff := a.backoffBase << (attempt - 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		retryable, err := a.doOnce(ctx, path, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("after %d retries: %w", a.maxRetries, lastErr)
}

// doOnce 发送单次请求，返回错误是否可重试
func (a *HTTPAdapter) doOnce(ctx context.Context, path string, payload []byte, out interface{}) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range a.headers {
		req.Header.Set(key, value)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		// 网络层错误视为瞬时故障
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return true, fmt.Errorf("server error: %s", resp.Status)
	}
	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("request rejected: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return false, nil
}

// trimTrailingSlash 去掉端点末尾的斜杠
func trimTrailingSlash(endpoint string) string {
	for len(endpoint) > 0 && endpoint[len(endpoint)-1] == '/' {
		endpoint = endpoint[:len(endpoint)-1]
	}
	return endpoint
}

package adapters

import (
	"context"
	"sort"
	"strings"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation/metrics"
)

// defaultStaticTopK 默认返回的上下文数量
const defaultStaticTopK = 3

// StaticAdapter 内存中的确定性 RAG 实现
//
// 检索用关键词重叠率对固定文档集排序，生成返回预设答案或
// 最相关文档的内容。没有任何外部依赖、完全确定，供示例、
// 测试和流水线冒烟验证使用。
type StaticAdapter struct {
	documents []string
	answers   map[string]string
	topK      int
}

// StaticOption 静态适配器选项函数类型
type StaticOption func(*StaticAdapter)

// WithStaticTopK 设置检索返回的文档数量
func WithStaticTopK(k int) StaticOption {
	return func(a *StaticAdapter) {
		if k > 0 {
			a.topK = k
		}
	}
}

// WithAnswers 设置按问题预设的答案
func WithAnswers(answers map[string]string) StaticOption {
	return func(a *StaticAdapter) {
		a.answers = answers
	}
}

// NewStaticAdapter 创建静态适配器
//
// 参数:
//   - documents: 作为检索库的固定文档集
func NewStaticAdapter(documents []string, opts ...StaticOption) *StaticAdapter {
	a := &StaticAdapter{
		documents: documents,
		topK:      defaultStaticTopK,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ConcurrencySafe 静态数据只读，可以并发使用
func (a *StaticAdapter) ConcurrencySafe() bool {
	return true
}

// Retrieve 按关键词重叠率返回最相关的文档
func (a *StaticAdapter) Retrieve(ctx context.Context, query string) ([]string, error) {
	queryTerms := metrics.KeyTerms(query)

	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, 0, len(a.documents))
	for i, doc := range a.documents {
		score := metrics.OverlapRatio(queryTerms, metrics.KeyTerms(doc))
		if score > 0 {
			ranked = append(ranked, scored{index: i, score: score})
		}
	}

	// 分数相同按文档顺序，保证检索结果确定
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	limit := a.topK
	if limit > len(ranked) {
		limit = len(ranked)
	}
	contexts := make([]string, 0, limit)
	for _, r := range ranked[:limit] {
		contexts = append(contexts, a.documents[r.index])
	}
	return contexts, nil
}

// Generate 返回预设答案，没有预设时拼接最相关的上下文
func (a *StaticAdapter) Generate(ctx context.Context, query string, contexts []string) (string, error) {
	if answer, ok := a.answers[query]; ok {
		return answer, nil
	}
	if len(contexts) == 0 {
		return "No relevant information found.", nil
	}
	return strings.Join(contexts, " "), nil
}

package adapters

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

// defaultNeo4jTopK 默认返回的上下文数量
const defaultNeo4jTopK = 4

// Neo4jRetriever 基于 Neo4j 全文索引的检索后端
//
// 对知识图谱型 RAG 系统，检索环节通常是对文档节点的全文索引查询。
// 本实现查询指定索引并返回命中节点的文本属性，可直接作为
// OpenAIAdapter 的 Retriever。
type Neo4jRetriever struct {
	driver   neo4j.DriverWithContext
	database string
	index    string
	property string
	topK     int
}

// Neo4jOption Neo4j 检索选项函数类型
type Neo4jOption func(*Neo4jRetriever)

// WithDatabase 设置目标数据库
func WithDatabase(database string) Neo4jOption {
	return func(r *Neo4jRetriever) {
		r.database = database
	}
}

// WithTextProperty 设置返回的节点文本属性名（默认 text）
func WithTextProperty(property string) Neo4jOption {
	return func(r *Neo4jRetriever) {
		if property != "" {
			r.property = property
		}
	}
}

// WithTopK 设置返回的上下文数量
func WithTopK(k int) Neo4jOption {
	return func(r *Neo4jRetriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// NewNeo4jRetriever 创建 Neo4j 检索后端
//
// 参数:
//   - uri: 连接地址，如 neo4j://localhost:7687
//   - username/password: 认证信息
//   - index: 全文索引名
func NewNeo4jRetriever(uri, username, password, index string, opts ...Neo4jOption) (*Neo4jRetriever, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("连接 Neo4j 失败: %w", err)
	}

	r := &Neo4jRetriever{
		driver:   driver,
		index:    index,
		property: "text",
		topK:     defaultNeo4jTopK,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Retrieve 查询全文索引并返回命中文本
func (r *Neo4jRetriever) Retrieve(ctx context.Context, query string) ([]string, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: r.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx,
			`CALL db.index.fulltext.queryNodes($index, $query)
			 YIELD node, score
			 RETURN node[$property] AS text
			 ORDER BY score DESC
			 LIMIT $limit`,
			map[string]any{
				"index":    r.index,
				"query":    query,
				"property": r.property,
				"limit":    r.topK,
			})
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", evaluation.ErrRetrievalFailed, err)
	}

	var contexts []string
	for _, record := range records.([]*neo4j.Record) {
		if text, ok := record.Get("text"); ok {
			if s, ok := text.(string); ok && s != "" {
				contexts = append(contexts, s)
			}
		}
	}
	return contexts, nil
}

// Close 关闭底层驱动
func (r *Neo4jRetriever) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

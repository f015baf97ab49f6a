// Package metrics 实现 RAG 质量指标
//
// 所有指标都建立在同一组确定性的文本集合运算之上：分词、停用词过滤、
// 关键词集合的重叠率与 Jaccard 相似度。刻意不依赖任何模型调用，
// 保证相同输入永远得到相同分数，评分过程可复现、可审计。
package metrics

import (
	"sort"
	"strings"
	"unicode"
)

// stopWords 固定停用词集合
//
// 冠词、系动词、助动词、介词、代词等不携带事实信息的词，
// 在关键词提取时全部滤除。
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "into": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true, "can": true,
	"this": true, "that": true, "these": true, "those": true,
	"i": true, "you": true, "your": true, "we": true, "our": true,
	"they": true, "their": true, "it": true, "its": true, "he": true,
	"she": true, "his": true, "her": true, "them": true, "us": true,
	"me": true, "my": true, "if": true, "then": true, "than": true,
	"so": true, "there": true, "here": true, "what": true, "which": true,
	"who": true, "how": true, "when": true, "where": true, "why": true,
	"not": true, "no": true, "also": true, "just": true, "about": true,
}

// Normalize 归一化文本：转小写并去除标点
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			// 标点替换为空格，避免 "days." 和 "days" 被视为不同词条
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize 把文本切分为归一化后的词条序列
func Tokenize(s string) []string {
	normalized := Normalize(s)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// KeyTerms 提取关键词集合：分词后去掉停用词并去重
func KeyTerms(s string) map[string]bool {
	terms := make(map[string]bool)
	for _, token := range Tokenize(s) {
		if !stopWords[token] {
			terms[token] = true
		}
	}
	return terms
}

// KeyTermsOf 提取多段文本并集的关键词集合
func KeyTermsOf(texts []string) map[string]bool {
	terms := make(map[string]bool)
	for _, text := range texts {
		for term := range KeyTerms(text) {
			terms[term] = true
		}
	}
	return terms
}

// OverlapRatio 计算 |A∩B| / |A|
//
// A 为空时返回 0，而不是除零。
func OverlapRatio(a, b map[string]bool) float64 {
	if len(a) == 0 {
		return 0
	}
	matched := 0
	for term := range a {
		if b[term] {
			matched++
		}
	}
	return float64(matched) / float64(len(a))
}

// Jaccard 计算 |A∩B| / |A∪B|
//
// 两个空集合视为完全相同，返回 1.0。
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	intersection := 0
	for term := range a {
		if b[term] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 1.0
	}
	return float64(intersection) / float64(union)
}

// Intersection 返回两个集合的交集，按字典序排序以保证输出确定
func Intersection(a, b map[string]bool) []string {
	var result []string
	for term := range a {
		if b[term] {
			result = append(result, term)
		}
	}
	sort.Strings(result)
	return result
}

// Difference 返回在 A 中但不在 B 中的词条，按字典序排序
func Difference(a, b map[string]bool) []string {
	var result []string
	for term := range a {
		if !b[term] {
			result = append(result, term)
		}
	}
	sort.Strings(result)
	return result
}

// SortedTerms 把集合转为排序后的切片
func SortedTerms(set map[string]bool) []string {
	result := make([]string, 0, len(set))
	for term := range set {
		result = append(result, term)
	}
	sort.Strings(result)
	return result
}

// SplitClaims 把答案切分为断言级片段
//
// 先按句子边界切分，再把并列从句拆开，使 "X costs $100 and comes in
// 3 colors" 产生两个独立断言。过短的片段（少于两个词条）不构成断言。
func SplitClaims(answer string) []string {
	var claims []string
	for _, sentence := range splitSentences(answer) {
		for _, clause := range splitClauses(sentence) {
			clause = strings.TrimSpace(clause)
			if len(Tokenize(clause)) >= 2 {
				claims = append(claims, clause)
			}
		}
	}
	return claims
}

// splitSentences 按句末标点切分
func splitSentences(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
}

// splitClauses 拆分并列从句
func splitClauses(sentence string) []string {
	parts := []string{sentence}
	for _, sep := range []string{"; ", ", and ", " and ", ", but ", " but "} {
		var next []string
		for _, part := range parts {
			next = append(next, strings.Split(part, sep)...)
		}
		parts = next
	}
	return parts
}

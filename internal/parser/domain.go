package parser

import (
	"sort"
	"strings"
)

// DomainUnknown 无法判定领域时的标签
const DomainUnknown = "unknown"

// DomainClassifier 基于关键词投票的简历领域分类器
// 仅用于引导规则提取词表和标注输出，分类失败不影响管道
type DomainClassifier struct {
	// keywords 领域标签 -> 小写关键词列表
	keywords map[string][]string
}

// NewDomainClassifier 创建领域分类器，词表来自配置
func NewDomainClassifier(keywords map[string][]string) *DomainClassifier {
	normalized := make(map[string][]string, len(keywords))
	for domain, words := range keywords {
		lower := make([]string, 0, len(words))
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				lower = append(lower, w)
			}
		}
		normalized[domain] = lower
	}
	return &DomainClassifier{keywords: normalized}
}

// Classify 返回命中关键词最多的领域标签
// 没有任何命中时返回 DomainUnknown；平票时取标签字典序最小者，保证确定性
func (c *DomainClassifier) Classify(text string) string {
	lower := strings.ToLower(text)

	best := DomainUnknown
	bestScore := 0

	domains := make([]string, 0, len(c.keywords))
	for d := range c.keywords {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	for _, domain := range domains {
		score := 0
		for _, kw := range c.keywords[domain] {
			score += strings.Count(lower, kw)
		}
		if score > bestScore {
			best = domain
			bestScore = score
		}
	}
	return best
}

package parser

import (
	"unicode"
	"unicode/utf8"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/types"
)

// ComplexityAssessor 评估文档版面的不规则程度
// 得分由四个归一化指标加权构成，档位分界线来自配置而非逐文档推导
type ComplexityAssessor struct {
	cfg config.ComplexityConfig
}

// NewComplexityAssessor 创建复杂度评估器
func NewComplexityAssessor(cfg config.ComplexityConfig) *ComplexityAssessor {
	return &ComplexityAssessor{cfg: cfg}
}

// Assess 计算复杂度档位
func (a *ComplexityAssessor) Assess(blocks []types.ContentBlock) types.ComplexityScore {
	score := a.Score(blocks)
	switch {
	case score >= a.cfg.VeryComplexThreshold:
		return types.ComplexityVeryComplex
	case score >= a.cfg.ComplexThreshold:
		return types.ComplexityComplex
	case score >= a.cfg.ModerateThreshold:
		return types.ComplexityModerate
	default:
		return types.ComplexitySimple
	}
}

// Score 计算 0~1 的加权复杂度得分
// 指标：块类型多样性、平均块长度、非字母数字字符占比、块间类型异质性
func (a *ComplexityAssessor) Score(blocks []types.ContentBlock) float64 {
	if len(blocks) == 0 {
		return 0
	}

	diversity := a.typeDiversity(blocks)
	avgLen := a.avgLengthNorm(blocks)
	nonAlnum := a.nonAlnumRatio(blocks)
	hetero := a.heterogeneity(blocks)

	return a.cfg.TypeDiversityWeight*diversity +
		a.cfg.AvgLengthWeight*avgLen +
		a.cfg.NonAlnumWeight*nonAlnum +
		a.cfg.HomogeneityWeight*hetero
}

// typeDiversity 块类型种数归一化: 1种=0, 2种=0.5, 3种=1
func (a *ComplexityAssessor) typeDiversity(blocks []types.ContentBlock) float64 {
	seen := make(map[types.BlockType]bool, 3)
	for _, b := range blocks {
		seen[b.Type] = true
	}
	return float64(len(seen)-1) / 2.0
}

// avgLengthNorm 平均块长度，300字符封顶归一化
func (a *ComplexityAssessor) avgLengthNorm(blocks []types.ContentBlock) float64 {
	total := 0
	for _, b := range blocks {
		total += utf8.RuneCountInString(b.Text)
	}
	avg := float64(total) / float64(len(blocks))
	if avg > 300 {
		return 1
	}
	return avg / 300
}

// nonAlnumRatio 非字母数字字符占比（不计空白），表格与装饰线的代理指标
func (a *ComplexityAssessor) nonAlnumRatio(blocks []types.ContentBlock) float64 {
	total, nonAlnum := 0, 0
	for _, b := range blocks {
		for _, r := range b.Text {
			if unicode.IsSpace(r) {
				continue
			}
			total++
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				nonAlnum++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(nonAlnum) / float64(total)
}

// heterogeneity 相邻块类型不同的比例，类型同质性低意味着版面不规则
func (a *ComplexityAssessor) heterogeneity(blocks []types.ContentBlock) float64 {
	if len(blocks) < 2 {
		return 0
	}
	changes := 0
	for i := 1; i < len(blocks); i++ {
		if blocks[i].Type != blocks[i-1].Type {
			changes++
		}
	}
	return float64(changes) / float64(len(blocks)-1)
}

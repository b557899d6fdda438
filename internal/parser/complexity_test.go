package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/types"
)

func testComplexityConfig() config.ComplexityConfig {
	return config.ComplexityConfig{
		TypeDiversityWeight:  0.3,
		AvgLengthWeight:      0.2,
		NonAlnumWeight:       0.25,
		HomogeneityWeight:    0.25,
		ModerateThreshold:    0.3,
		ComplexThreshold:     0.55,
		VeryComplexThreshold: 0.8,
	}
}

func TestAssessEmptyBlocksIsSimple(t *testing.T) {
	a := NewComplexityAssessor(testComplexityConfig())
	assert.Equal(t, types.ComplexitySimple, a.Assess(nil))
}

func TestAssessUniformParagraphsIsSimple(t *testing.T) {
	a := NewComplexityAssessor(testComplexityConfig())
	blocks := []types.ContentBlock{
		{Type: types.BlockParagraph, Text: "简单的一段话", Position: 0},
		{Type: types.BlockParagraph, Text: "另一段同样简单的话", Position: 1},
	}
	assert.Equal(t, types.ComplexitySimple, a.Assess(blocks))
}

// 在不移除已有类型的前提下增加新的块类型，得分不应下降
func TestScoreMonotonicInTypeDiversity(t *testing.T) {
	a := NewComplexityAssessor(testComplexityConfig())

	base := []types.ContentBlock{
		{Type: types.BlockParagraph, Text: "个人介绍段落内容", Position: 0},
		{Type: types.BlockParagraph, Text: "另一个段落内容文字", Position: 1},
	}
	oneType := a.Score(base)

	withHeading := append(append([]types.ContentBlock{}, base...),
		types.ContentBlock{Type: types.BlockHeading, Text: "教育背景简介说明", Position: 2})
	twoTypes := a.Score(withHeading)

	withList := append(append([]types.ContentBlock{}, withHeading...),
		types.ContentBlock{Type: types.BlockList, Text: "- 一条列表内容条目", Position: 3})
	threeTypes := a.Score(withList)

	assert.GreaterOrEqual(t, twoTypes, oneType)
	assert.GreaterOrEqual(t, threeTypes, twoTypes)
}

func TestAssessOrnamentedLayoutScoresHigher(t *testing.T) {
	a := NewComplexityAssessor(testComplexityConfig())

	plain := []types.ContentBlock{
		{Type: types.BlockParagraph, Text: "普通的纯文本段落内容没有任何装饰", Position: 0},
	}
	ornamented := []types.ContentBlock{
		{Type: types.BlockParagraph, Text: "|====|####|----|====|" + strings.Repeat("*|-", 30), Position: 0},
	}

	assert.Greater(t, a.Score(ornamented), a.Score(plain))
}

func TestAssessTierBoundaries(t *testing.T) {
	cfg := testComplexityConfig()
	a := NewComplexityAssessor(cfg)

	// 三种类型交替出现且含大量装饰字符的版面应落入较高档位
	var blocks []types.ContentBlock
	typeCycle := []types.BlockType{types.BlockHeading, types.BlockList, types.BlockParagraph}
	for i := 0; i < 9; i++ {
		blocks = append(blocks, types.ContentBlock{
			Type:     typeCycle[i%3],
			Text:     "||== " + strings.Repeat("#-*|", 40) + " ==||",
			Position: i,
		})
	}

	score := a.Score(blocks)
	assert.GreaterOrEqual(t, score, cfg.ComplexThreshold)
	tier := a.Assess(blocks)
	assert.True(t, tier == types.ComplexityComplex || tier == types.ComplexityVeryComplex)
}

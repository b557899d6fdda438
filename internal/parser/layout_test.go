package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/types"
)

func TestAnalyzeSegmentsBlocks(t *testing.T) {
	text := "张三\n\n教育背景\n2018.09-2022.06 清华大学 计算机科学 本科\n\n专业技能\n- Golang\n- MySQL\n- Docker\n\n自我评价\n热爱技术，具有良好的团队合作精神。对分布式系统有浓厚兴趣。"

	a := NewLayoutAnalyzer()
	blocks := a.Analyze(text)

	require.NotEmpty(t, blocks)

	// 位置有序且连续
	for i, b := range blocks {
		assert.Equal(t, i, b.Position)
		assert.NotEmpty(t, b.Text)
	}

	// 标题识别
	var headings []string
	for _, b := range blocks {
		if b.Type == types.BlockHeading {
			headings = append(headings, b.Text)
		}
	}
	assert.Contains(t, headings, "教育背景")
	assert.Contains(t, headings, "专业技能")
	assert.Contains(t, headings, "自我评价")

	// 列表行合并为一个列表块
	var listBlocks []types.ContentBlock
	for _, b := range blocks {
		if b.Type == types.BlockList {
			listBlocks = append(listBlocks, b)
		}
	}
	require.Len(t, listBlocks, 1)
	assert.Contains(t, listBlocks[0].Text, "Golang")
	assert.Contains(t, listBlocks[0].Text, "Docker")
}

func TestAnalyzeDeterministic(t *testing.T) {
	text := "李四\n\n工作经历\n某某科技有限公司 后端工程师 2020-至今\n负责核心服务的设计与开发。"

	a := NewLayoutAnalyzer()
	first := a.Analyze(text)
	second := a.Analyze(text)

	assert.Equal(t, first, second)
}

func TestAnalyzeLineClassification(t *testing.T) {
	a := NewLayoutAnalyzer()

	tests := []struct {
		line string
		want types.BlockType
	}{
		{"教育背景", types.BlockHeading},
		{"- Golang", types.BlockList},
		{"• 负责服务端开发", types.BlockList},
		{"1. 完成性能优化", types.BlockList},
		{"2018.09-2022.06 清华大学 计算机科学 本科", types.BlockParagraph},
		{"这是一个很长很长的段落，已经超出了标题的长度限制，所以只能被归类为普通段落。", types.BlockParagraph},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.classifyLine(tt.line), "line: %s", tt.line)
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	a := NewLayoutAnalyzer()
	assert.Empty(t, a.Analyze(""))
	assert.Empty(t, a.Analyze("\n\n\n"))
}

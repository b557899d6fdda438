package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-parser-go/internal/types"
)

// LayoutAnalyzer 将原始简历文本切分为带类型标注的内容块
// 纯启发式规则，不做任何外部调用，相同输入必然产生相同输出
type LayoutAnalyzer struct {
	// headingMaxRunes 标题行的最大字符数
	headingMaxRunes int
}

// NewLayoutAnalyzer 创建版面分析器
func NewLayoutAnalyzer() *LayoutAnalyzer {
	return &LayoutAnalyzer{
		headingMaxRunes: 20,
	}
}

// 列表行前缀：项目符号或序号（"- " "• " "1. " "1、" "(1)" 等）
var listPrefixRe = regexp.MustCompile(`^\s*([-*•·●◆▪]|\d{1,2}[.、)）]|[(（]\d{1,2}[)）])\s*`)

// Analyze 将文本切分为有序、互不重叠的内容块
// 空行作为块分隔；连续的列表行合并为一个列表块，连续的普通行合并为一个段落块；
// 标题行独立成块
func (a *LayoutAnalyzer) Analyze(text string) []types.ContentBlock {
	lines := strings.Split(text, "\n")
	blocks := make([]types.ContentBlock, 0, 16)

	var buf []string
	var bufType types.BlockType

	flush := func() {
		if len(buf) == 0 {
			return
		}
		blocks = append(blocks, types.ContentBlock{
			Type:     bufType,
			Text:     strings.Join(buf, "\n"),
			Position: len(blocks),
		})
		buf = nil
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			flush()
			continue
		}

		lineType := a.classifyLine(line)
		if lineType == types.BlockHeading {
			// 标题独立成块
			flush()
			buf = []string{line}
			bufType = types.BlockHeading
			flush()
			continue
		}

		if len(buf) > 0 && bufType != lineType {
			flush()
		}
		buf = append(buf, line)
		bufType = lineType
	}
	flush()

	return blocks
}

// classifyLine 判定单行的块类型
func (a *LayoutAnalyzer) classifyLine(line string) types.BlockType {
	if listPrefixRe.MatchString(line) {
		return types.BlockList
	}
	if a.looksLikeHeading(line) {
		return types.BlockHeading
	}
	return types.BlockParagraph
}

// looksLikeHeading 短且不含数字、不以句读结尾的行视为标题
func (a *LayoutAnalyzer) looksLikeHeading(line string) bool {
	if utf8.RuneCountInString(line) > a.headingMaxRunes {
		return false
	}
	for _, r := range line {
		if unicode.IsDigit(r) {
			return false
		}
	}
	if strings.HasSuffix(line, "。") || strings.HasSuffix(line, ".") ||
		strings.HasSuffix(line, ",") || strings.HasSuffix(line, "，") {
		return false
	}
	return true
}

package processor

import (
	"context"

	"resume-parser-go/internal/types"
)

// PDFTextExtractor 直接读取PDF内嵌文本层的能力
type PDFTextExtractor interface {
	ExtractFromBytes(ctx context.Context, data []byte, uri string) (string, error)
	ExtractFromFile(ctx context.Context, filePath string) (string, error)
}

// DocTextExtractor 通用文档转纯文本的能力（Word族等）
type DocTextExtractor interface {
	ExtractFromBytes(ctx context.Context, data []byte, mimeType string, filename string) (string, error)
}

// PDFPageRenderer 将PDF逐页渲染为图片的能力
type PDFPageRenderer interface {
	RenderPDF(ctx context.Context, pdfPath string, outDir string) ([]string, error)
}

// OCREnginePool 多引擎OCR池的能力：图片路径 -> 识别文本
type OCREnginePool interface {
	Available() bool
	ExtractPages(ctx context.Context, imagePaths []string) (text string, engineID string, err error)
}

// LayoutAnalyzer 文本 -> 有序内容块
type LayoutAnalyzer interface {
	Analyze(text string) []types.ContentBlock
}

// DomainClassifier 文本 -> 领域标签
type DomainClassifier interface {
	Classify(text string) string
}

// RuleExtractor 确定性规则提取
type RuleExtractor interface {
	Extract(blocks []types.ContentBlock, domain string) *types.CandidateProfile
}

// ComplexityAssessor 版面复杂度评估
type ComplexityAssessor interface {
	Assess(blocks []types.ContentBlock) types.ComplexityScore
}

// AIExtractor 语言补全服务兜底提取
type AIExtractor interface {
	Extract(ctx context.Context, docID string, blocks []types.ContentBlock, domain string, missingFields []string) (*types.CandidateProfile, string, error)
}

// TextArtifactSink 中间文本的可选存储，写失败只记日志
type TextArtifactSink interface {
	SaveExtractedText(ctx context.Context, docID string, text string) (string, error)
}

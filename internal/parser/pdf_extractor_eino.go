package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/rs/zerolog"

	"resume-parser-go/internal/logger"
)

// EinoPDFTextExtractor 使用 Eino PDF Parser 读取PDF内嵌文本层
// 这是"直接提取"路径：便宜且精确，但对扫描件无能为力
type EinoPDFTextExtractor struct {
	parser *pdf.PDFParser
	log    zerolog.Logger
}

// NewEinoPDFTextExtractor 初始化 Eino PDF 文本提取器
// 配置为不按页分割，取整个文档的连续文本
func NewEinoPDFTextExtractor(ctx context.Context) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("创建Eino PDF解析器失败: %w", err)
	}

	return &EinoPDFTextExtractor{
		parser: p,
		log:    logger.Logger.With().Str("component", "pdf_extractor").Logger(),
	}, nil
}

// ExtractFromFile 从PDF文件路径提取文本层
func (e *EinoPDFTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("打开PDF文件 %s 失败: %w", filePath, err)
	}
	defer file.Close()

	return e.ExtractFromReader(ctx, file, filePath)
}

// ExtractFromBytes 从字节内容提取文本层
func (e *EinoPDFTextExtractor) ExtractFromBytes(ctx context.Context, data []byte, uri string) (string, error) {
	return e.ExtractFromReader(ctx, bytes.NewReader(data), uri)
}

// ExtractFromReader 从 io.Reader 提取文本层
func (e *EinoPDFTextExtractor) ExtractFromReader(ctx context.Context, reader io.Reader, uri string) (string, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	docs, err := e.parser.Parse(ctx, reader, einoParser.WithURI(uri))
	duration := time.Since(startTime)
	if err != nil {
		e.log.Warn().Err(err).Str("uri", uri).Dur("duration", duration).Msg("Eino PDF解析失败")
		return "", fmt.Errorf("eino PDF解析失败 (URI %s): %w", uri, err)
	}

	if len(docs) == 0 {
		return "", fmt.Errorf("eino PDF解析没有返回文档 (URI %s)", uri)
	}

	// 合并所有文档内容（以防返回多个）
	var sb bytes.Buffer
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(doc.Content)
	}

	e.log.Debug().
		Str("uri", uri).
		Int("text_length", sb.Len()).
		Dur("duration", duration).
		Msg("PDF文本层提取完成")
	return sb.String(), nil
}

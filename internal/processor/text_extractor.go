package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
)

var extractTracer = otel.Tracer("resume-parser/text-extractor")

// TextExtractor 从输入文档产出原始文本
// 能直接读文本层的格式先走直接提取，文本过短（视作扫描件）再转OCR
type TextExtractor struct {
	pdfExtractor PDFTextExtractor // 可为nil
	docExtractor DocTextExtractor // 可为nil
	renderer     PDFPageRenderer  // 可为nil
	pool         OCREnginePool    // 可为nil

	minDirectTextLen int
	log              zerolog.Logger
}

// NewTextExtractor 创建文本提取器，任一依赖缺失时对应路径降级
func NewTextExtractor(pdfExtractor PDFTextExtractor, docExtractor DocTextExtractor, renderer PDFPageRenderer, pool OCREnginePool, minDirectTextLen int) *TextExtractor {
	if minDirectTextLen <= 0 {
		minDirectTextLen = constants.DefaultMinDirectTextLen
	}
	return &TextExtractor{
		pdfExtractor:     pdfExtractor,
		docExtractor:     docExtractor,
		renderer:         renderer,
		pool:             pool,
		minDirectTextLen: minDirectTextLen,
		log:              logger.Logger.With().Str("component", "text_extractor").Logger(),
	}
}

// Extract 提取文档文本，返回文本及其来源
// MIME不受支持返回 ErrUnsupportedFormat；用尽手段后文本仍不足返回 ErrInsufficientContent
func (t *TextExtractor) Extract(ctx context.Context, doc types.SourceDocument) (types.ExtractedText, error) {
	ctx, span := extractTracer.Start(ctx, "text_extract")
	defer span.End()

	mimeType := resolveMIME(doc)
	if !constants.IsSupportedMIME(mimeType) {
		err := newPipelineError(doc.Filename, "text_extract", ErrUnsupportedFormat, mimeType)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return types.ExtractedText{}, err
	}

	switch {
	case mimeType == constants.MIMEPDF:
		return t.extractPDF(ctx, doc)
	case constants.IsWordMIME(mimeType):
		return t.extractWord(ctx, doc, mimeType)
	case constants.IsImageMIME(mimeType):
		return t.extractImage(ctx, doc)
	default:
		return types.ExtractedText{}, newPipelineError(doc.Filename, "text_extract", ErrUnsupportedFormat, mimeType)
	}
}

// extractPDF 先读内嵌文本层，过短时整本渲染成图片走OCR池
func (t *TextExtractor) extractPDF(ctx context.Context, doc types.SourceDocument) (types.ExtractedText, error) {
	direct := t.directPDFText(ctx, doc)
	if textLen(direct) >= t.minDirectTextLen {
		t.log.Debug().Str("filename", doc.Filename).Int("text_length", len(direct)).Msg("PDF文本层充足，跳过OCR")
		return types.ExtractedText{Text: direct, Source: types.SourceDirect}, nil
	}

	ocrText, engineID, err := t.ocrPDF(ctx, doc)
	if err != nil {
		// OCR不可用或失败时，残余的直接文本也救不回来
		if textLen(direct) > 0 && textLen(direct) < t.minDirectTextLen {
			return types.ExtractedText{}, newPipelineError(doc.Filename, "text_extract", ErrInsufficientContent,
				fmt.Sprintf("文本层仅%d字符且OCR失败: %v", textLen(direct), err))
		}
		return types.ExtractedText{}, err
	}

	if textLen(ocrText) <= textLen(direct) {
		if textLen(direct) == 0 {
			return types.ExtractedText{}, newPipelineError(doc.Filename, "text_extract", ErrInsufficientContent, "OCR未识别出文本")
		}
		return types.ExtractedText{Text: direct, Source: types.SourceDirect}, nil
	}
	return types.ExtractedText{Text: ocrText, Source: types.SourceOCRPrefix + engineID}, nil
}

// directPDFText 直接提取失败只记日志，不中断
func (t *TextExtractor) directPDFText(ctx context.Context, doc types.SourceDocument) string {
	if t.pdfExtractor == nil {
		return ""
	}

	var text string
	var err error
	if len(doc.Content) > 0 {
		text, err = t.pdfExtractor.ExtractFromBytes(ctx, doc.Content, doc.Filename)
	} else {
		text, err = t.pdfExtractor.ExtractFromFile(ctx, doc.Path)
	}
	if err != nil {
		t.log.Warn().Err(err).Str("filename", doc.Filename).Msg("PDF直接提取失败，转入OCR")
		return ""
	}
	return text
}

// ocrPDF 渲染PDF每页为图片并过OCR池，临时目录在所有退出路径上清理
func (t *TextExtractor) ocrPDF(ctx context.Context, doc types.SourceDocument) (string, string, error) {
	if t.renderer == nil || t.pool == nil || !t.pool.Available() {
		return "", "", newPipelineError(doc.Filename, "ocr", ErrEngineUnavailable, "没有可用的OCR路径")
	}

	tmpDir, err := os.MkdirTemp("", "resume-ocr-*")
	if err != nil {
		return "", "", fmt.Errorf("创建临时目录失败: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := doc.Path
	if len(doc.Content) > 0 {
		pdfPath = filepath.Join(tmpDir, "input.pdf")
		if err := os.WriteFile(pdfPath, doc.Content, 0o600); err != nil {
			return "", "", fmt.Errorf("写入临时PDF失败: %w", err)
		}
	}

	images, err := t.renderer.RenderPDF(ctx, pdfPath, tmpDir)
	if err != nil {
		return "", "", newPipelineError(doc.Filename, "ocr", ErrServiceError, fmt.Sprintf("页面渲染失败: %v", err))
	}

	text, engineID, err := t.pool.ExtractPages(ctx, images)
	if err != nil {
		return "", "", newPipelineError(doc.Filename, "ocr", ErrEngineUnavailable, err.Error())
	}
	return text, engineID, nil
}

// extractWord Word族文档经Tika转纯文本，Tika内部已统一页面模型
func (t *TextExtractor) extractWord(ctx context.Context, doc types.SourceDocument, mimeType string) (types.ExtractedText, error) {
	if t.docExtractor == nil {
		return types.ExtractedText{}, newPipelineError(doc.Filename, "text_extract", ErrEngineUnavailable, "文档转换服务未配置")
	}

	data := doc.Content
	if len(data) == 0 {
		var err error
		data, err = os.ReadFile(doc.Path)
		if err != nil {
			return types.ExtractedText{}, fmt.Errorf("读取文件 %s 失败: %w", doc.Path, err)
		}
	}

	text, err := t.docExtractor.ExtractFromBytes(ctx, data, mimeType, doc.Filename)
	if err != nil {
		return types.ExtractedText{}, newPipelineError(doc.Filename, "text_extract", ErrServiceError, err.Error())
	}
	if textLen(text) < t.minDirectTextLen {
		return types.ExtractedText{}, newPipelineError(doc.Filename, "text_extract", ErrInsufficientContent,
			fmt.Sprintf("Word提取文本仅%d字符", textLen(text)))
	}
	return types.ExtractedText{Text: text, Source: types.SourceDirect}, nil
}

// extractImage 纯图片输入直接送OCR池
func (t *TextExtractor) extractImage(ctx context.Context, doc types.SourceDocument) (types.ExtractedText, error) {
	if t.pool == nil || !t.pool.Available() {
		return types.ExtractedText{}, newPipelineError(doc.Filename, "ocr", ErrEngineUnavailable, "没有可用的OCR引擎")
	}

	imagePath := doc.Path
	if len(doc.Content) > 0 {
		tmpDir, err := os.MkdirTemp("", "resume-ocr-*")
		if err != nil {
			return types.ExtractedText{}, fmt.Errorf("创建临时目录失败: %w", err)
		}
		defer os.RemoveAll(tmpDir)

		ext := filepath.Ext(doc.Filename)
		if ext == "" {
			ext = ".png"
		}
		imagePath = filepath.Join(tmpDir, "input"+ext)
		if err := os.WriteFile(imagePath, doc.Content, 0o600); err != nil {
			return types.ExtractedText{}, fmt.Errorf("写入临时图片失败: %w", err)
		}
	}

	text, engineID, err := t.pool.ExtractPages(ctx, []string{imagePath})
	if err != nil {
		return types.ExtractedText{}, newPipelineError(doc.Filename, "ocr", ErrEngineUnavailable, err.Error())
	}
	if textLen(text) == 0 {
		return types.ExtractedText{}, newPipelineError(doc.Filename, "ocr", ErrInsufficientContent, "OCR未识别出文本")
	}
	return types.ExtractedText{Text: text, Source: types.SourceOCRPrefix + engineID}, nil
}

// resolveMIME 声明的MIME优先，缺失时按扩展名嗅探
func resolveMIME(doc types.SourceDocument) string {
	mimeType := strings.TrimSpace(strings.ToLower(doc.MIMEType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType != "" {
		return mimeType
	}
	name := doc.Filename
	if name == "" {
		name = doc.Path
	}
	return constants.MIMEByExt[strings.ToLower(filepath.Ext(name))]
}

// textLen 去除空白后的有效文本长度
func textLen(s string) int {
	return len(strings.TrimSpace(s))
}

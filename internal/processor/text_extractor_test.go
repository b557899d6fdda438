package processor

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/types"
)

// fakePDFExtractor 直接提取桩
type fakePDFExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakePDFExtractor) ExtractFromBytes(ctx context.Context, data []byte, uri string) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakePDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, error) {
	f.calls++
	return f.text, f.err
}

// fakeDocExtractor Word转换桩
type fakeDocExtractor struct {
	text string
	err  error
}

func (f *fakeDocExtractor) ExtractFromBytes(ctx context.Context, data []byte, mimeType, filename string) (string, error) {
	return f.text, f.err
}

// fakeRenderer 页面渲染桩
type fakeRenderer struct {
	pages []string
	err   error
	calls int
}

func (f *fakeRenderer) RenderPDF(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	f.calls++
	return f.pages, f.err
}

// fakePool OCR池桩
type fakePool struct {
	available bool
	text      string
	engineID  string
	err       error
	calls     int
}

func (f *fakePool) Available() bool { return f.available }

func (f *fakePool) ExtractPages(ctx context.Context, imagePaths []string) (string, string, error) {
	f.calls++
	return f.text, f.engineID, f.err
}

func longText(prefix string) string {
	return prefix + strings.Repeat("这是一段足够长的简历正文内容。", 20)
}

func TestExtractDirectSkipsOCR(t *testing.T) {
	pdf := &fakePDFExtractor{text: longText("张三的简历 ")}
	pool := &fakePool{available: true, text: "OCR文本", engineID: "tesseract"}
	e := NewTextExtractor(pdf, nil, &fakeRenderer{}, pool, 100)

	out, err := e.Extract(context.Background(), types.SourceDocument{
		Content:  []byte("%PDF-1.7"),
		MIMEType: constants.MIMEPDF,
		Filename: "resume.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, types.SourceDirect, out.Source)
	// 文本层充足时OCR引擎调用次数必须为零
	assert.Zero(t, pool.calls)
}

func TestExtractShortTextFallsBackToOCR(t *testing.T) {
	pdf := &fakePDFExtractor{text: "短"}
	renderer := &fakeRenderer{pages: []string{"page-1.png", "page-2.png"}}
	pool := &fakePool{available: true, text: longText("OCR识别出的内容 "), engineID: "tesseract"}
	e := NewTextExtractor(pdf, nil, renderer, pool, 100)

	out, err := e.Extract(context.Background(), types.SourceDocument{
		Content:  []byte("%PDF-1.7"),
		MIMEType: constants.MIMEPDF,
		Filename: "scan.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, "ocr:tesseract", out.Source)
	assert.True(t, out.FromOCR())
	assert.Equal(t, 1, renderer.calls)
	assert.Equal(t, 1, pool.calls)
}

func TestExtractUnsupportedFormat(t *testing.T) {
	e := NewTextExtractor(&fakePDFExtractor{}, nil, nil, nil, 100)

	_, err := e.Extract(context.Background(), types.SourceDocument{
		Content:  []byte("hello"),
		MIMEType: "application/zip",
		Filename: "archive.zip",
	})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractMIMESniffByExtension(t *testing.T) {
	pdf := &fakePDFExtractor{text: longText("")}
	e := NewTextExtractor(pdf, nil, nil, nil, 100)

	out, err := e.Extract(context.Background(), types.SourceDocument{
		Content:  []byte("%PDF-1.7"),
		Filename: "简历.PDF",
	})
	require.NoError(t, err)
	assert.Equal(t, types.SourceDirect, out.Source)
}

func TestExtractNoOCRPathIsFatal(t *testing.T) {
	pdf := &fakePDFExtractor{text: ""}
	e := NewTextExtractor(pdf, nil, nil, &fakePool{available: false}, 100)

	_, err := e.Extract(context.Background(), types.SourceDocument{
		Content:  []byte("%PDF-1.7"),
		MIMEType: constants.MIMEPDF,
		Filename: "scan.pdf",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEngineUnavailable)
}

func TestExtractWordViaConverter(t *testing.T) {
	doc := &fakeDocExtractor{text: longText("Word里的简历内容 ")}
	e := NewTextExtractor(nil, doc, nil, nil, 100)

	out, err := e.Extract(context.Background(), types.SourceDocument{
		Content:  []byte("PK\x03\x04"),
		MIMEType: constants.MIMEWordModern,
		Filename: "resume.docx",
	})
	require.NoError(t, err)
	assert.Equal(t, types.SourceDirect, out.Source)
}

func TestExtractWordInsufficientContent(t *testing.T) {
	doc := &fakeDocExtractor{text: "太短"}
	e := NewTextExtractor(nil, doc, nil, nil, 100)

	_, err := e.Extract(context.Background(), types.SourceDocument{
		Content:  []byte("PK\x03\x04"),
		MIMEType: constants.MIMEWordModern,
		Filename: "resume.docx",
	})
	assert.ErrorIs(t, err, ErrInsufficientContent)
}

func TestExtractWordConverterFailure(t *testing.T) {
	doc := &fakeDocExtractor{err: fmt.Errorf("tika不可达")}
	e := NewTextExtractor(nil, doc, nil, nil, 100)

	_, err := e.Extract(context.Background(), types.SourceDocument{
		Content:  []byte("PK\x03\x04"),
		MIMEType: constants.MIMEWordLegacy,
		Filename: "resume.doc",
	})
	assert.ErrorIs(t, err, ErrServiceError)
}

func TestExtractImageGoesStraightToOCR(t *testing.T) {
	pool := &fakePool{available: true, text: "图片里的文字", engineID: "tika"}
	e := NewTextExtractor(nil, nil, nil, pool, 100)

	out, err := e.Extract(context.Background(), types.SourceDocument{
		Content:  []byte{0x89, 0x50, 0x4e, 0x47},
		MIMEType: constants.MIMEPNG,
		Filename: "photo.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "ocr:tika", out.Source)
	assert.Equal(t, 1, pool.calls)
}

func TestExtractImageNoEngines(t *testing.T) {
	e := NewTextExtractor(nil, nil, nil, &fakePool{available: false}, 100)

	_, err := e.Extract(context.Background(), types.SourceDocument{
		Content:  []byte{0x89, 0x50, 0x4e, 0x47},
		MIMEType: constants.MIMEPNG,
		Filename: "photo.png",
	})
	assert.ErrorIs(t, err, ErrEngineUnavailable)
}

package ocr

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-parser-go/internal/logger"
)

var poolTracer = otel.Tracer("resume-parser-go/ocr")

// ErrNoUsableEngine 池中没有任何可用引擎
var ErrNoUsableEngine = errors.New("没有可用的OCR引擎")

// Engine 识别引擎的能力抽象：给一张页面图片，返回识别出的文本
// 实现必须可被多个管道调用并发使用
type Engine interface {
	// ID 引擎标识，用于文本来源标记 "ocr:<engine-id>"
	ID() string

	// ExtractText 识别单张页面图片
	ExtractText(ctx context.Context, imagePath string) (string, error)
}

// Pool 持有一个主引擎和若干按序回退引擎
// 进程级对象：启动时初始化一次，此后只读
type Pool struct {
	engines []Engine // engines[0] 为主引擎，其余按回退顺序排列
}

// NewPool 组建引擎池，nil引擎被跳过
// 各引擎在构造阶段各自完成可用性自检，不可用的不要传入
func NewPool(primary Engine, fallbacks ...Engine) *Pool {
	p := &Pool{}
	if primary != nil {
		p.engines = append(p.engines, primary)
	}
	for _, e := range fallbacks {
		if e != nil {
			p.engines = append(p.engines, e)
		}
	}
	if len(p.engines) == 0 {
		logger.Warn().Msg("OCR引擎池为空，扫描件将无法识别")
	}
	return p
}

// Available 池中是否有可用引擎
func (p *Pool) Available() bool {
	return len(p.engines) > 0
}

// Engines 返回池内引擎ID列表，按优先级排列
func (p *Pool) Engines() []string {
	ids := make([]string, 0, len(p.engines))
	for _, e := range p.engines {
		ids = append(ids, e.ID())
	}
	return ids
}

// pageResult 单页识别结果
type pageResult struct {
	text     string
	engineID string
}

// ExtractPages 并发识别所有页面图片，按页序重组结果
// 每页先用主引擎，无可用文本时按序换用回退引擎；全部失败的页贡献空文本，不报错
// 返回: 各页文本按页序拼接(空行分隔), 实际产出文本的引擎ID, 错误
// 仅当池为空时返回 ErrNoUsableEngine
func (p *Pool) ExtractPages(ctx context.Context, imagePaths []string) (string, string, error) {
	if !p.Available() {
		return "", "", ErrNoUsableEngine
	}
	if len(imagePaths) == 0 {
		return "", "", nil
	}

	ctx, span := poolTracer.Start(ctx, "ocr.Pool.ExtractPages")
	defer span.End()
	span.SetAttributes(
		attribute.Int("pages", len(imagePaths)),
		attribute.StringSlice("engines", p.Engines()),
	)

	// 按页下标写结果，完成顺序不影响页序
	results := make([]pageResult, len(imagePaths))
	var wg sync.WaitGroup
	for i, img := range imagePaths {
		wg.Add(1)
		go func(idx int, imagePath string) {
			defer wg.Done()
			results[idx] = p.extractPage(ctx, idx, imagePath)
		}(i, img)
	}
	wg.Wait()

	var sb strings.Builder
	engineID := ""
	for i, res := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(res.text)
		if engineID == "" && res.engineID != "" {
			engineID = res.engineID
		}
	}

	span.SetAttributes(attribute.Int("text_length", sb.Len()))
	return sb.String(), engineID, nil
}

// extractPage 识别单页，依优先级逐个引擎尝试，全部失败时返回空文本
func (p *Pool) extractPage(ctx context.Context, pageIdx int, imagePath string) pageResult {
	for _, engine := range p.engines {
		text, err := engine.ExtractText(ctx, imagePath)
		if err != nil {
			logger.Warn().
				Err(err).
				Int("page", pageIdx).
				Str("engine", engine.ID()).
				Msg("OCR引擎识别页面失败，尝试下一个引擎")
			continue
		}
		if strings.TrimSpace(text) == "" {
			logger.Debug().
				Int("page", pageIdx).
				Str("engine", engine.ID()).
				Msg("OCR引擎未识别到可用文本，尝试下一个引擎")
			continue
		}
		return pageResult{text: text, engineID: engine.ID()}
	}

	logger.Warn().Int("page", pageIdx).Msg("所有OCR引擎均未识别出该页文本")
	return pageResult{}
}

package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"resume-parser-go/internal/config"
)

// PageRenderer 将PDF逐页渲染为PNG图片，供识别引擎消费
// 分辨率按识别精度选择，而不是屏幕显示
type PageRenderer struct {
	binary   string
	dpi      int
	maxPages int
	runner   Runner
}

// NewPageRenderer 创建页面渲染器
func NewPageRenderer(cfg *config.OCRConfig, runner Runner) (*PageRenderer, error) {
	if runner == nil {
		runner = ExecRunner{}
	}

	binary := cfg.Pdftoppm
	if binary == "" {
		binary = "pdftoppm"
	}
	if !LookPath(binary) {
		return nil, fmt.Errorf("pdftoppm不可用: 未找到可执行文件 %q", binary)
	}

	dpi := cfg.DPI
	if dpi <= 0 {
		dpi = 300
	}

	return &PageRenderer{
		binary:   binary,
		dpi:      dpi,
		maxPages: cfg.MaxPages,
		runner:   runner,
	}, nil
}

// RenderPDF 将PDF渲染为页面图片，输出到 outDir，按页序返回图片路径
// pdftoppm -r <dpi> -png <in.pdf> <outDir>/page
func (r *PageRenderer) RenderPDF(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	prefix := filepath.Join(outDir, "page")
	_, errb, err := r.runner.Run(ctx, r.binary, "-r", fmt.Sprintf("%d", r.dpi), "-png", pdfPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm渲染失败: %w (stderr: %s)", err, truncate(string(errb), 512))
	}

	// 产物形如 page-1.png, page-2.png, ...
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if r.maxPages > 0 && len(matches) > r.maxPages {
		matches = matches[:r.maxPages]
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm没有渲染出任何页面")
	}
	return matches, nil
}

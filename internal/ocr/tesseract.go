package ocr

import (
	"context"
	"fmt"
	"strconv"

	"resume-parser-go/internal/config"
)

// TesseractEngine 基于本地 tesseract 可执行文件的识别引擎
type TesseractEngine struct {
	binary string
	lang   string
	psm    int
	runner Runner
}

// NewTesseractEngine 创建tesseract引擎
// 可执行文件缺失时返回错误，由上层决定降级
func NewTesseractEngine(cfg *config.OCRConfig, runner Runner) (*TesseractEngine, error) {
	if runner == nil {
		runner = ExecRunner{}
	}

	binary := cfg.Tesseract
	if binary == "" {
		binary = "tesseract"
	}
	if !LookPath(binary) {
		return nil, fmt.Errorf("tesseract不可用: 未找到可执行文件 %q", binary)
	}

	lang := cfg.TesseractLang
	if lang == "" {
		lang = "chi_sim+eng"
	}

	return &TesseractEngine{
		binary: binary,
		lang:   lang,
		psm:    cfg.PSM,
		runner: runner,
	}, nil
}

func (t *TesseractEngine) ID() string {
	return "tesseract"
}

// ExtractText 识别单张图片
// tesseract <image> stdout -l <lang> [--psm N]
func (t *TesseractEngine) ExtractText(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout", "-l", t.lang}
	if t.psm > 0 {
		args = append(args, "--psm", strconv.Itoa(t.psm))
	}

	out, errb, err := t.runner.Run(ctx, t.binary, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract识别失败: %w (stderr: %s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

package ocr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resume-parser-go/internal/config"
)

// TikaEngine 通过 Apache Tika 服务器做整图OCR的回退引擎
// Tika 服务端需启用 TesseractOCRParser
type TikaEngine struct {
	serverURL string
	client    *http.Client
}

// NewTikaEngine 创建Tika OCR引擎，启动时探活
// 服务器不可达时返回错误，由上层决定降级
func NewTikaEngine(cfg *config.TikaConfig) (*TikaEngine, error) {
	if cfg == nil || cfg.ServerURL == "" {
		return nil, fmt.Errorf("tika不可用: 未配置服务器地址")
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	e := &TikaEngine{
		serverURL: strings.TrimRight(cfg.ServerURL, "/"),
		client:    &http.Client{Timeout: timeout},
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.ping(pingCtx); err != nil {
		return nil, fmt.Errorf("tika不可用: %w", err)
	}

	return e, nil
}

func (t *TikaEngine) ID() string {
	return "tika"
}

// ping 探测Tika服务器是否存活
func (t *TikaEngine) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.serverURL+"/version", nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tika /version 返回状态 %s", resp.Status)
	}
	return nil
}

// ExtractText 识别单张图片: PUT /tika, Accept: text/plain
func (t *TikaEngine) ExtractText(ctx context.Context, imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("打开页面图片失败: %w", err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.serverURL+"/tika", f)
	if err != nil {
		return "", fmt.Errorf("创建Tika请求失败: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", contentTypeByExt(imagePath))

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("调用Tika失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("tika返回状态 %s: %s", resp.Status, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取Tika响应失败: %w", err)
	}
	return string(data), nil
}

func contentTypeByExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

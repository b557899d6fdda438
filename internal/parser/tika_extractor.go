package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"resume-parser-go/internal/logger"
)

// TikaExtractor 通过 Apache Tika Server 提取文档文本
// 覆盖Word文档（.doc/.docx）以及作为PDF直接提取的备用路径
type TikaExtractor struct {
	serverURL  string
	httpClient *http.Client
	log        zerolog.Logger
}

// TikaOption 配置 TikaExtractor
type TikaOption func(*TikaExtractor)

// WithTikaTimeout 设置HTTP请求超时
func WithTikaTimeout(timeout time.Duration) TikaOption {
	return func(t *TikaExtractor) {
		t.httpClient.Timeout = timeout
	}
}

// NewTikaExtractor 创建 Tika 提取器并验证服务可达
func NewTikaExtractor(serverURL string, opts ...TikaOption) (*TikaExtractor, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("tika服务器URL不能为空")
	}

	t := &TikaExtractor{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: logger.Logger.With().Str("component", "tika_extractor").Logger(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.ping(); err != nil {
		return nil, fmt.Errorf("tika服务器连接测试失败: %w", err)
	}

	return t, nil
}

// ping 验证Tika服务器是否可用
func (t *TikaExtractor) ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.serverURL+"/version", nil)
	if err != nil {
		return err
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tika服务器返回状态码 %d", resp.StatusCode)
	}

	version, _ := io.ReadAll(io.LimitReader(resp.Body, 64))
	t.log.Info().Str("version", strings.TrimSpace(string(version))).Msg("Tika服务器连接成功")
	return nil
}

// ExtractFromFile 从文件路径提取文本
func (t *TikaExtractor) ExtractFromFile(ctx context.Context, filePath string, mimeType string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("读取文件 %s 失败: %w", filePath, err)
	}
	return t.ExtractFromBytes(ctx, data, mimeType, filepath.Base(filePath))
}

// ExtractFromBytes 将文档内容发送给Tika并取回纯文本
func (t *TikaExtractor) ExtractFromBytes(ctx context.Context, data []byte, mimeType string, filename string) (string, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.serverURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("创建Tika请求失败: %w", err)
	}
	if mimeType != "" {
		req.Header.Set("Content-Type", mimeType)
	}
	req.Header.Set("Accept", "text/plain")
	if filename != "" {
		req.Header.Set("X-Tika-Resource-Name", filename)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tika请求执行失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("tika服务器返回状态码 %d: %s", resp.StatusCode, string(body))
	}

	textBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取Tika响应失败: %w", err)
	}

	text := string(textBytes)
	t.log.Debug().
		Str("filename", filename).
		Str("mime_type", mimeType).
		Int("text_length", len(text)).
		Dur("duration", time.Since(startTime)).
		Msg("Tika文本提取完成")
	return text, nil
}

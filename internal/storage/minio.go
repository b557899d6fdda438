package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/rs/zerolog"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
)

// ArtifactStore AI原始应答与中间文本的工件存储接口
// 写入失败只记日志，不中断管道，由调用方决定是否关心返回的错误
type ArtifactStore interface {
	// SaveAIExchange 保存一次AI请求/应答的原始交换，返回不透明的工件引用
	SaveAIExchange(ctx context.Context, docID string, prompt, reply string) (string, error)

	// SaveExtractedText 保存提取出的中间文本，返回工件引用
	SaveExtractedText(ctx context.Context, docID string, text string) (string, error)
}

// 确保MinIO实现了ArtifactStore接口
var _ ArtifactStore = (*MinIO)(nil)

// MinIO 基于MinIO对象存储的工件存储
type MinIO struct {
	client *minio.Client
	cfg    *config.MinIOConfig
	bucket string
	log    zerolog.Logger
}

// NewMinIO 创建MinIO工件存储
func NewMinIO(cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}

	log := logger.Logger.With().Str("component", "artifact_store").Logger()
	log.Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.ArtifactBucket).Msg("初始化MinIO客户端")

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client: client,
		cfg:    cfg,
		bucket: cfg.ArtifactBucket,
		log:    log,
	}

	if err := m.ensureBucketExists(m.bucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保工件存储桶 %s 存在失败: %w", m.bucket, err)
	}

	if cfg.ArtifactExpireDays > 0 {
		if err := m.setupBucketLifecycle(context.Background(), m.bucket, "expire-artifacts", cfg.ArtifactExpireDays); err != nil {
			// 生命周期设置失败不阻断启动
			log.Warn().Err(err).Msg("设置工件生命周期规则失败")
		}
	}

	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	exists, err := m.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if !exists {
		if err := m.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
			return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
		}
		m.log.Info().Str("bucket", bucketName).Msg("存储桶已创建")
	}
	return nil
}

// setupBucketLifecycle 为指定存储桶设置过期规则
func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	lc := lifecycle.NewConfiguration()
	lc.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}
	return m.client.SetBucketLifecycle(ctx, bucketName, lc)
}

// uploadBytes 上传字节内容到工件桶
func (m *MinIO) uploadBytes(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("上传对象 %s/%s 失败: %w", m.bucket, objectName, err)
	}
	return objectName, nil
}

// aiExchangeRecord AI交换工件的落盘结构
type aiExchangeRecord struct {
	RecordedAt string `json:"recorded_at"`
	Prompt     string `json:"prompt"`
	Reply      string `json:"reply"`
}

// SaveAIExchange 保存一次AI请求/应答的原始交换
// 对象键形如 ai/<docID>/<uuid>.json
func (m *MinIO) SaveAIExchange(ctx context.Context, docID string, prompt, reply string) (string, error) {
	objectName := fmt.Sprintf("ai/%s/%s.json", docID, uuid.NewString())

	payload, err := json.Marshal(aiExchangeRecord{
		RecordedAt: time.Now().Format(time.RFC3339),
		Prompt:     prompt,
		Reply:      reply,
	})
	if err != nil {
		return "", fmt.Errorf("序列化AI交换记录失败: %w", err)
	}

	key, err := m.uploadBytes(ctx, objectName, payload, "application/json")
	if err != nil {
		m.log.Warn().Err(err).Str("doc_id", docID).Msg("保存AI交换工件失败")
		return "", err
	}
	m.log.Debug().Str("doc_id", docID).Str("object", key).Msg("AI交换工件已保存")
	return key, nil
}

// SaveExtractedText 保存提取出的中间文本
// 带BOM写入，便于人工下载后直接打开查看
func (m *MinIO) SaveExtractedText(ctx context.Context, docID string, text string) (string, error) {
	objectName := fmt.Sprintf("text/%s/extracted.txt", docID)

	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})
	buf.WriteString(text)

	key, err := m.uploadBytes(ctx, objectName, buf.Bytes(), "text/plain; charset=utf-8")
	if err != nil {
		m.log.Warn().Err(err).Str("doc_id", docID).Msg("保存提取文本工件失败")
		return "", err
	}
	return key, nil
}

// GetArtifact 按工件引用取回内容，用于审计与调试
func (m *MinIO) GetArtifact(ctx context.Context, objectName string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", m.bucket, objectName, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s/%s 失败: %w", m.bucket, objectName, err)
	}
	return data, nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"resume-parser-go/internal/agent"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/ocr"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
)

func main() {
	var (
		configPath string
		filePath   string
		mimeType   string
		pretty     bool
	)
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径，留空则自动查找")
	pflag.StringVarP(&filePath, "file", "f", "", "要解析的简历文件")
	pflag.StringVar(&mimeType, "mime", "", "输入MIME类型，留空按扩展名嗅探")
	pflag.BoolVar(&pretty, "pretty", false, "美化输出JSON")
	pflag.Parse()

	if filePath == "" {
		fmt.Fprintln(os.Stderr, "用法: resume-parser -f <简历文件> [-c 配置文件]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	log := logger.Logger

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracerProvider(ctx, cfg.Tracing.ServiceName, cfg.Tracing.OTLPEndpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			log.Warn().Err(err).Msg("链路追踪初始化失败，继续运行")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Warn().Err(err).Msg("链路追踪关闭失败")
				}
			}()
		}
	}

	pipeline := buildPipeline(ctx, cfg)

	doc := types.SourceDocument{
		Path:     filePath,
		MIMEType: mimeType,
		Filename: filePath,
	}

	profile := pipeline.Run(ctx, doc)

	var out []byte
	if pretty {
		out, err = json.MarshalIndent(profile, "", "  ")
	} else {
		out, err = json.Marshal(profile)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("序列化结果失败")
	}
	fmt.Println(string(out))

	if profile.Error != "" {
		os.Exit(1)
	}
}

// buildPipeline 组装全部组件
// 可选依赖（Tika、OCR二进制、MinIO、LLM凭据）缺失时对应能力降级，管道照常构建
func buildPipeline(ctx context.Context, cfg *config.Config) *processor.Pipeline {
	log := logger.Logger

	// 直接提取：Eino PDF文本层
	var pdfExtractor processor.PDFTextExtractor
	if p, err := parser.NewEinoPDFTextExtractor(ctx); err != nil {
		log.Warn().Err(err).Msg("PDF直接提取器初始化失败，PDF将全部走OCR")
	} else {
		pdfExtractor = p
	}

	// Word族转换与Tika OCR回退引擎
	var docExtractor processor.DocTextExtractor
	var tikaEngine ocr.Engine
	if cfg.Tika.ServerURL != "" {
		if t, err := parser.NewTikaExtractor(cfg.Tika.ServerURL,
			parser.WithTikaTimeout(time.Duration(cfg.Tika.Timeout)*time.Second)); err != nil {
			log.Warn().Err(err).Msg("Tika提取器不可用，Word文档将无法解析")
		} else {
			docExtractor = t
		}
		if cfg.Tika.EnableOCR {
			if e, err := ocr.NewTikaEngine(&cfg.Tika); err != nil {
				log.Warn().Err(err).Msg("Tika OCR引擎不可用")
			} else {
				tikaEngine = e
			}
		}
	}

	// 本地OCR：tesseract主引擎 + Tika回退
	runner := ocr.ExecRunner{}
	var primary ocr.Engine
	if e, err := ocr.NewTesseractEngine(&cfg.OCR, runner); err != nil {
		log.Warn().Err(err).Msg("tesseract不可用")
	} else {
		primary = e
	}
	pool := ocr.NewPool(primary, tikaEngine)
	if !pool.Available() {
		log.Warn().Msg("没有任何OCR引擎可用，扫描件将无法解析")
	}

	var renderer processor.PDFPageRenderer
	if r, err := ocr.NewPageRenderer(&cfg.OCR, runner); err != nil {
		log.Warn().Err(err).Msg("pdftoppm不可用，PDF扫描件将无法渲染")
	} else {
		renderer = r
	}

	// 工件存储
	var store storage.ArtifactStore
	if cfg.MinIO.Endpoint != "" && cfg.MinIO.AccessKeyID != "" {
		if s, err := storage.NewMinIO(&cfg.MinIO); err != nil {
			log.Warn().Err(err).Msg("MinIO不可用，工件不落盘")
		} else {
			store = s
		}
	}

	// AI提取器
	var aiExtractor processor.AIExtractor
	if cfg.Aliyun.APIKey != "" {
		llm, err := agent.NewAliyunQwenChatModel(cfg.Aliyun.APIKey, cfg.GetModelForTask("ai_extract"), cfg.Aliyun.APIURL)
		if err != nil {
			log.Warn().Err(err).Msg("LLM客户端初始化失败，AI提取不可用")
		} else {
			timeout, _ := time.ParseDuration(cfg.AIExtractor.Timeout)
			opts := []parser.AIExtractorOption{
				parser.WithQPM(cfg.AIExtractor.QPM),
				parser.WithTimeout(timeout),
				parser.WithRetry(cfg.AIExtractor.MaxRetries, time.Duration(cfg.AIExtractor.RetryWaitSeconds)*time.Second),
				parser.WithBreaker(cfg.AIExtractor.BreakerEnabled),
			}
			if store != nil {
				opts = append(opts, parser.WithArtifactStore(store))
			}
			aiExtractor = parser.NewAIExtractor(llm, cfg.Pipeline.SectionKeywords, opts...)
		}
	} else {
		log.Warn().Msg("未配置LLM凭据，AI提取不可用")
	}

	components := processor.Components{
		TextExtractor: processor.NewTextExtractor(pdfExtractor, docExtractor, renderer, pool, cfg.Pipeline.MinDirectTextLen),
		Layout:        parser.NewLayoutAnalyzer(),
		Classifier:    parser.NewDomainClassifier(cfg.Pipeline.DomainKeywords),
		Rules:         parser.NewRuleExtractor(),
		Assessor:      parser.NewComplexityAssessor(cfg.Pipeline.Complexity),
		AI:            aiExtractor,
		Merger:        processor.NewMerger(cfg.Pipeline.DedupKeys),
		Post:          processor.NewPostProcessor(),
		Quality:       processor.NewQualityEvaluator(),
	}
	if store != nil {
		components.TextSink = store
	}

	return processor.NewPipeline(components,
		processor.WithAITriggerTier(types.ComplexityScore(cfg.Pipeline.AITriggerTier)))
}

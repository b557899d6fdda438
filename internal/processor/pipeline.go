package processor

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
)

var pipelineTracer = otel.Tracer("resume-parser/pipeline")

// State 管道状态机的状态
type State string

const (
	StateStarted       State = "STARTED"
	StateTextExtracted State = "TEXT_EXTRACTED"
	StateBlocksBuilt   State = "BLOCKS_BUILT"
	StateRuleExtracted State = "RULE_EXTRACTED"
	StateAIExtracted   State = "AI_EXTRACTED"
	StateMerged        State = "MERGED"
	StateDone          State = "DONE"
	StateFailed        State = "FAILED"
)

// DocumentTextExtractor 输入文档 -> 原始文本
type DocumentTextExtractor interface {
	Extract(ctx context.Context, doc types.SourceDocument) (types.ExtractedText, error)
}

// Components 管道的全部组件，AI 与 TextSink 可为nil
type Components struct {
	TextExtractor DocumentTextExtractor
	Layout        LayoutAnalyzer
	Classifier    DomainClassifier
	Rules         RuleExtractor
	Assessor      ComplexityAssessor
	AI            AIExtractor
	Merger        *Merger
	Post          *PostProcessor
	Quality       *QualityEvaluator
	TextSink      TextArtifactSink
}

// Option 管道可调参数
type Option func(*Pipeline)

// WithAITriggerTier 达到该复杂度档位(含)即触发AI提取
func WithAITriggerTier(tier types.ComplexityScore) Option {
	return func(p *Pipeline) { p.aiTriggerTier = tier }
}

// Pipeline 简历理解管道
// Run 永远返回一个完整的 CandidateProfile，失败通过 Error 字段表达，
// 不会有错误跨越管道边界抛给调用方
type Pipeline struct {
	c             Components
	aiTriggerTier types.ComplexityScore
	log           zerolog.Logger
}

// NewPipeline 组装管道，组件进程级初始化一次后只读复用
func NewPipeline(c Components, opts ...Option) *Pipeline {
	p := &Pipeline{
		c:             c,
		aiTriggerTier: types.ComplexityComplex,
		log:           logger.Logger.With().Str("component", "pipeline").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run 执行一次完整的管道调用
// 状态机: STARTED → TEXT_EXTRACTED → BLOCKS_BUILT → RULE_EXTRACTED →
// [AI_EXTRACTED] → MERGED → DONE，任一步的致命错误进入 FAILED
func (p *Pipeline) Run(ctx context.Context, doc types.SourceDocument) *types.CandidateProfile {
	ctx, span := pipelineTracer.Start(ctx, "pipeline_run",
		trace.WithAttributes(
			attribute.String("doc.filename", doc.Filename),
			attribute.String("doc.mime_type", doc.MIMEType),
		))
	defer span.End()

	docID := uuid.New().String()
	log := p.log.With().Str("doc_id", docID).Str("filename", doc.Filename).Logger()
	p.transition(span, StateStarted)

	if len(doc.Content) == 0 && doc.Path == "" {
		return p.fail(span, log, newPipelineError(doc.Filename, "run", ErrInsufficientContent, "输入既无内容也无路径"))
	}

	// 文本提取：这里的错误都是致命的（格式不支持 / 所有手段用尽仍无文本）
	extracted, err := p.c.TextExtractor.Extract(ctx, doc)
	if err != nil {
		return p.fail(span, log, err)
	}
	p.transition(span, StateTextExtracted)
	log.Info().Str("source", extracted.Source).Int("text_length", len(extracted.Text)).Msg("文本提取完成")

	p.saveTextArtifact(ctx, log, docID, extracted.Text)

	blocks := p.c.Layout.Analyze(extracted.Text)
	if len(blocks) == 0 {
		return p.fail(span, log, newPipelineError(doc.Filename, "layout", ErrInsufficientContent, "版面分析没有产出内容块"))
	}
	p.transition(span, StateBlocksBuilt)

	domain := p.c.Classifier.Classify(extracted.Text)

	ruleProfile := p.c.Rules.Extract(blocks, domain)
	p.transition(span, StateRuleExtracted)

	complexity := p.c.Assessor.Assess(blocks)
	missing := missingRequiredFields(ruleProfile)
	span.SetAttributes(
		attribute.String("doc.domain", domain),
		attribute.String("doc.complexity", complexity.String()),
		attribute.StringSlice("rule.missing_fields", missing),
	)

	aiProfile := &types.CandidateProfile{}
	artifactRef := ""
	if p.shouldInvokeAI(complexity, missing) {
		screenFields := missing
		if ruleProfile.IsEmpty() {
			// 规则一无所获时不做筛块，送全文
			screenFields = nil
		}
		var aiErr error
		aiProfile, artifactRef, aiErr = p.c.AI.Extract(ctx, docID, blocks, domain, screenFields)
		if aiErr != nil {
			// 服务或解析失败只丢弃AI贡献，管道继续
			log.Warn().Err(aiErr).Msg("AI提取失败，降级为纯规则结果")
			tracing.RecordError(span, aiErr, tracing.ErrorTypeLLM)
			aiProfile = &types.CandidateProfile{}
		} else {
			p.transition(span, StateAIExtracted)
		}
	}

	merged := p.c.Merger.Merge(ruleProfile, aiProfile)
	merged.Domain = domain
	merged.AIAnalysisRef = artifactRef
	p.transition(span, StateMerged)

	p.c.Post.Normalize(merged)

	breakdown := p.c.Quality.Evaluate(merged)
	span.SetAttributes(attribute.Int("quality.total", breakdown.Total))
	log.Info().
		Int("quality_total", breakdown.Total).
		Str("complexity", complexity.String()).
		Bool("ai_used", artifactRef != "" || !aiProfile.IsEmpty()).
		Msg("管道执行完成")

	p.transition(span, StateDone)
	return merged
}

// shouldInvokeAI 复杂版面或必填字段缺失才调用AI，绝不无条件调用
func (p *Pipeline) shouldInvokeAI(complexity types.ComplexityScore, missing []string) bool {
	if p.c.AI == nil {
		return false
	}
	return complexity >= p.aiTriggerTier || len(missing) > 0
}

// missingRequiredFields 必填字段: 姓名、教育、经历、技能
func missingRequiredFields(profile *types.CandidateProfile) []string {
	var missing []string
	if profile.BasicInfo.Name == "" {
		missing = append(missing, "name")
	}
	if len(profile.Education) == 0 {
		missing = append(missing, "education")
	}
	if len(profile.Experience) == 0 {
		missing = append(missing, "experience")
	}
	if len(profile.Skills) == 0 {
		missing = append(missing, "skills")
	}
	return missing
}

// saveTextArtifact 中间文本落盘到工件存储，失败只记日志
func (p *Pipeline) saveTextArtifact(ctx context.Context, log zerolog.Logger, docID, text string) {
	if p.c.TextSink == nil {
		return
	}
	if _, err := p.c.TextSink.SaveExtractedText(ctx, docID, text); err != nil {
		log.Warn().Err(err).Msg("提取文本工件保存失败")
	}
}

// fail 进入终态FAILED：返回只带错误信息的空档案
func (p *Pipeline) fail(span trace.Span, log zerolog.Logger, err error) *types.CandidateProfile {
	log.Error().Err(err).Msg("管道执行失败")
	tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
	p.transition(span, StateFailed)
	return types.NewErrorProfile(err.Error())
}

// transition 状态迁移记录为span事件
func (p *Pipeline) transition(span trace.Span, state State) {
	span.AddEvent("state." + string(state))
}

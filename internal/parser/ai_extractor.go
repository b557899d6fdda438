package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
)

var aiTracer = otel.Tracer("resume-parser/ai-extractor")

// aiSystemPrompt 结构化提取的系统提示词
// 字段名与 CandidateProfile 的JSON契约一一对应，要求模型只输出JSON
const aiSystemPrompt = `你是一个专业的简历信息提取助手。从用户提供的简历文本中提取结构化信息，只输出一个JSON对象，不要输出任何其他内容。

JSON结构如下（找不到的字段省略，绝不编造）：
{
  "basic_info": {"name": "", "age": "", "birth_date": "", "gender": "", "email": "", "phone": "", "github": "", "wechat": ""},
  "education": [{"school": "", "major": "", "degree": "", "period": ""}],
  "experience": [{"company": "", "title": "", "period": "", "description": ""}],
  "projects": [{"name": "", "period": "", "description": ""}],
  "certificates": [{"name": ""}],
  "languages": [{"name": "", "level": ""}],
  "awards": [{"name": "", "date": ""}],
  "skills": ["技能1", "技能2"],
  "summary": ""
}

简历所属领域: %s`

// AIExtractor 调用外部语言补全服务做结构化提取
// 仅在规则提取缺字段或版面复杂时被管道调用，网络与解析失败都不会向上抛出
type AIExtractor struct {
	chatModel model.ToolCallingChatModel
	store     storage.ArtifactStore // 可为nil，工件保存失败只记日志

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*schema.Message]

	timeout    time.Duration
	maxRetries int
	retryWait  time.Duration

	// sectionKeywords 缺失字段筛块词表: 字段类别 -> 关键词
	sectionKeywords map[string][]string

	log zerolog.Logger
}

// AIExtractorOption 配置 AIExtractor
type AIExtractorOption func(*AIExtractor)

// WithArtifactStore 设置AI原始应答的工件存储
func WithArtifactStore(store storage.ArtifactStore) AIExtractorOption {
	return func(e *AIExtractor) { e.store = store }
}

// WithQPM 设置每分钟请求数上限
func WithQPM(qpm int) AIExtractorOption {
	return func(e *AIExtractor) {
		if qpm > 0 {
			e.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(qpm)), 1)
		}
	}
}

// WithTimeout 设置单次LLM调用超时
func WithTimeout(timeout time.Duration) AIExtractorOption {
	return func(e *AIExtractor) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// WithRetry 设置重试次数与首次退避时间
func WithRetry(maxRetries int, wait time.Duration) AIExtractorOption {
	return func(e *AIExtractor) {
		if maxRetries >= 0 {
			e.maxRetries = maxRetries
		}
		if wait >= 0 {
			e.retryWait = wait
		}
	}
}

// WithBreaker 启用熔断器，服务持续失败时快速失败而不是堆积请求
func WithBreaker(enabled bool) AIExtractorOption {
	return func(e *AIExtractor) {
		if !enabled {
			e.breaker = nil
			return
		}
		e.breaker = gobreaker.NewCircuitBreaker[*schema.Message](gobreaker.Settings{
			Name:        "ai-extractor",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.Requests >= 5 && counts.TotalFailures*2 >= counts.Requests
			},
		})
	}
}

// NewAIExtractor 创建AI提取器
func NewAIExtractor(chatModel model.ToolCallingChatModel, sectionKeywords map[string][]string, opts ...AIExtractorOption) *AIExtractor {
	e := &AIExtractor{
		chatModel:       chatModel,
		timeout:         60 * time.Second,
		maxRetries:      2,
		retryWait:       2 * time.Second,
		sectionKeywords: sectionKeywords,
		log:             logger.Logger.With().Str("component", "ai_extractor").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract 对缺失字段相关的内容块做AI结构化提取
// missingFields 为空或规则提取一无所获时送全文；否则按词表筛选相关块。
// 返回部分档案、工件引用（可能为空）与错误；解析失败返回空档案而非异常
func (e *AIExtractor) Extract(ctx context.Context, docID string, blocks []types.ContentBlock, domain string, missingFields []string) (*types.CandidateProfile, string, error) {
	ctx, span := aiTracer.Start(ctx, "ai_extract")
	defer span.End()

	input := e.selectInput(blocks, missingFields)
	if strings.TrimSpace(input) == "" {
		return &types.CandidateProfile{}, "", nil
	}

	prompt := fmt.Sprintf(aiSystemPrompt, domain)
	reply, err := e.callModel(ctx, prompt, input)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeLLM)
		return &types.CandidateProfile{}, "", fmt.Errorf("语言补全服务调用失败: %w", err)
	}

	artifactRef := e.saveArtifact(ctx, docID, input, reply)

	profile, err := parseAIReply(reply)
	if err != nil {
		e.log.Warn().Err(err).Str("doc_id", docID).Msg("AI应答解析失败，丢弃AI贡献")
		tracing.RecordError(span, err, tracing.ErrorTypeParse)
		return &types.CandidateProfile{}, artifactRef, fmt.Errorf("AI应答不符合预期结构: %w", err)
	}

	e.log.Info().
		Str("doc_id", docID).
		Strs("missing_fields", missingFields).
		Int("input_length", len(input)).
		Msg("AI提取完成")
	return profile, artifactRef, nil
}

// selectInput 按缺失字段筛选相关块；筛不出内容时退回全文
func (e *AIExtractor) selectInput(blocks []types.ContentBlock, missingFields []string) string {
	if len(missingFields) == 0 {
		return joinBlocks(blocks)
	}

	var keywords []string
	for _, field := range missingFields {
		keywords = append(keywords, e.sectionKeywords[field]...)
	}
	if len(keywords) == 0 {
		return joinBlocks(blocks)
	}

	var selected []types.ContentBlock
	for i, b := range blocks {
		lower := strings.ToLower(b.Text)
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				selected = append(selected, b)
				// 标题块命中时连带其后的内容块
				if b.Type == types.BlockHeading && i+1 < len(blocks) {
					for j := i + 1; j < len(blocks) && blocks[j].Type != types.BlockHeading; j++ {
						selected = append(selected, blocks[j])
					}
				}
				break
			}
		}
	}
	if len(selected) == 0 {
		return joinBlocks(blocks)
	}
	return joinBlocks(dedupBlocks(selected))
}

// dedupBlocks 按 Position 去重并保序
func dedupBlocks(blocks []types.ContentBlock) []types.ContentBlock {
	seen := make(map[int]bool, len(blocks))
	out := make([]types.ContentBlock, 0, len(blocks))
	for _, b := range blocks {
		if !seen[b.Position] {
			seen[b.Position] = true
			out = append(out, b)
		}
	}
	return out
}

// callModel 带限流、熔断与指数退避重试的LLM调用
func (e *AIExtractor) callModel(ctx context.Context, systemContent, userContent string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(systemContent),
		schema.UserMessage(userContent),
	}

	e.log.Debug().
		Str("prompt", tracing.SafePrompt(systemContent)).
		Str("input", tracing.SafeResumeContent(userContent)).
		Msg("调用语言补全服务")

	wait := e.retryWait
	var resp *schema.Message
	var err error
	for retry := 0; retry <= e.maxRetries; retry++ {
		if retry > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("上下文已取消: %w", ctx.Err())
			case <-time.After(wait):
				wait *= 2
				e.log.Warn().Int("retry", retry).Msg("重试LLM调用")
			}
		}

		resp, err = e.generateOnce(ctx, messages)
		if err == nil {
			break
		}
		if !isRetryableError(err) || retry >= e.maxRetries {
			return "", err
		}
	}
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// generateOnce 单次调用：先过限流器，再经熔断器发起请求
func (e *AIExtractor) generateOnce(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("限流等待被中断: %w", err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if e.breaker == nil {
		return e.chatModel.Generate(callCtx, messages)
	}
	return e.breaker.Execute(func() (*schema.Message, error) {
		return e.chatModel.Generate(callCtx, messages)
	})
}

// saveArtifact 保存AI原始交互，失败只记日志
func (e *AIExtractor) saveArtifact(ctx context.Context, docID, prompt, reply string) string {
	if e.store == nil {
		return ""
	}
	ref, err := e.store.SaveAIExchange(ctx, docID, prompt, reply)
	if err != nil {
		e.log.Warn().Err(err).Str("doc_id", docID).Msg("AI应答工件保存失败")
		return ""
	}
	return ref
}

// isRetryableError 网络类瞬时错误可以重试，熔断拒绝不重试
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host")
}

// aiReply LLM应答的宽松形态，值类型不可信，解析后再逐字段收敛
type aiReply struct {
	BasicInfo    map[string]any   `json:"basic_info"`
	Education    []map[string]any `json:"education"`
	Experience   []map[string]any `json:"experience"`
	Projects     []map[string]any `json:"projects"`
	Certificates []map[string]any `json:"certificates"`
	Languages    []map[string]any `json:"languages"`
	Awards       []map[string]any `json:"awards"`
	Skills       []any            `json:"skills"`
	Summary      string           `json:"summary"`
}

// parseAIReply 从LLM应答中扒出JSON并收敛为 CandidateProfile
func parseAIReply(reply string) (*types.CandidateProfile, error) {
	jsonStr := extractJSON(reply)
	if jsonStr == "" {
		return nil, fmt.Errorf("应答中没有可解析的JSON")
	}

	var raw aiReply
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("JSON解析失败: %w", err)
	}

	profile := &types.CandidateProfile{
		Education:    coerceRecords(raw.Education),
		Experience:   coerceRecords(raw.Experience),
		Projects:     coerceRecords(raw.Projects),
		Certificates: coerceRecords(raw.Certificates),
		Languages:    coerceRecords(raw.Languages),
		Awards:       coerceRecords(raw.Awards),
		Summary:      strings.TrimSpace(raw.Summary),
	}

	basic := coerceRecord(raw.BasicInfo)
	profile.BasicInfo = types.BasicInfo{
		Name:      basic["name"],
		Age:       basic["age"],
		BirthDate: basic["birth_date"],
		Gender:    basic["gender"],
		Email:     basic["email"],
		Phone:     basic["phone"],
		GitHub:    basic["github"],
		Wechat:    basic["wechat"],
	}

	seen := make(map[string]bool)
	for _, s := range raw.Skills {
		token := strings.TrimSpace(coerceString(s))
		key := strings.ToLower(token)
		if token == "" || seen[key] {
			continue
		}
		seen[key] = true
		profile.Skills = append(profile.Skills, token)
	}

	return profile, nil
}

// coerceRecords 逐条收敛松散条目，全空条目丢弃
func coerceRecords(raw []map[string]any) []types.Record {
	var records []types.Record
	for _, m := range raw {
		rec := types.Record(coerceRecord(m))
		for k, v := range rec {
			if v == "" {
				delete(rec, k)
			}
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records
}

func coerceRecord(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = strings.TrimSpace(coerceString(v))
	}
	return out
}

// coerceString 混合类型JSON值转字符串
func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.1f", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		b, _ := json.Marshal(val)
		return string(b)
	}
}

var jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// extractJSON 从文本中提取JSON：优先取 ```json 代码块，失败则做花括号配对回退
func extractJSON(text string) string {
	if m := jsonFenceRe.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	level := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			level++
		case '}':
			level--
			if level == 0 {
				return strings.TrimSpace(text[start : i+1])
			}
		}
	}
	return ""
}

package processor

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/ocr"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/types"
)

// fakeTextSource 文本提取桩
type fakeTextSource struct {
	out types.ExtractedText
	err error
}

func (f *fakeTextSource) Extract(ctx context.Context, doc types.SourceDocument) (types.ExtractedText, error) {
	return f.out, f.err
}

// countingAI AI提取桩，记录调用与筛选参数
type countingAI struct {
	calls        int
	lastMissing  []string
	lastDomain   string
	profile      *types.CandidateProfile
	artifactRef  string
	err          error
}

func (f *countingAI) Extract(ctx context.Context, docID string, blocks []types.ContentBlock, domain string, missingFields []string) (*types.CandidateProfile, string, error) {
	f.calls++
	f.lastMissing = missingFields
	f.lastDomain = domain
	if f.err != nil {
		return &types.CandidateProfile{}, "", f.err
	}
	p := f.profile
	if p == nil {
		p = &types.CandidateProfile{}
	}
	return p, f.artifactRef, nil
}

// ocrStubEngine 实现 ocr.Engine 的识别桩，计数用原子量以兼容并发页处理
type ocrStubEngine struct {
	id      string
	byImage map[string]string
	err     error
	calls   atomic.Int32
}

func (e *ocrStubEngine) ID() string { return e.id }

func (e *ocrStubEngine) ExtractText(ctx context.Context, imagePath string) (string, error) {
	e.calls.Add(1)
	if e.err != nil {
		return "", e.err
	}
	return e.byImage[imagePath], nil
}

// completeResume 规整版面且规则能找全必填字段的简历文本
const completeResume = `张三

联系方式
电话: 13800138000 邮箱: zhangsan@example.com

教育背景
2018.09-2022.06 清华大学 计算机科学与技术专业 本科

工作经历
2022.07-至今 某某科技有限公司 后端工程师
负责推荐系统服务端的设计开发与性能优化工作。

专业技能
精通Golang、MySQL、Redis、Docker等常用技术组件`

// noSkillsResume 缺少技能章节，其余完整
const noSkillsResume = `张三

联系方式
电话: 13800138000 邮箱: zhangsan@example.com

教育背景
2018.09-2022.06 清华大学 计算机科学与技术专业 本科

工作经历
2022.07-至今 某某科技有限公司 后端工程师
负责推荐系统服务端的设计开发与性能优化工作。`

func newTestComponents(source DocumentTextExtractor, ai AIExtractor) Components {
	return Components{
		TextExtractor: source,
		Layout:        parser.NewLayoutAnalyzer(),
		Classifier:    parser.NewDomainClassifier(config.DefaultDomainKeywords()),
		Rules:         parser.NewRuleExtractor(),
		Assessor:      parser.NewComplexityAssessor(testComplexityConfig()),
		AI:            ai,
		Merger:        NewMerger(config.DefaultDedupKeys()),
		Post:          NewPostProcessor(),
		Quality:       NewQualityEvaluator(),
	}
}

func testComplexityConfig() config.ComplexityConfig {
	return config.ComplexityConfig{
		TypeDiversityWeight:  0.3,
		AvgLengthWeight:      0.2,
		NonAlnumWeight:       0.25,
		HomogeneityWeight:    0.25,
		ModerateThreshold:    0.3,
		ComplexThreshold:     0.55,
		VeryComplexThreshold: 0.8,
	}
}

// 规则找全必填字段且版面规整时，绝不能调用语言补全服务
func TestPipelineCompleteRulesSkipsAI(t *testing.T) {
	ai := &countingAI{}
	source := &fakeTextSource{out: types.ExtractedText{Text: completeResume, Source: types.SourceDirect}}
	p := NewPipeline(newTestComponents(source, ai))

	profile := p.Run(context.Background(), types.SourceDocument{
		Content: []byte("%PDF"), MIMEType: constants.MIMEPDF, Filename: "resume.pdf",
	})

	assert.Empty(t, profile.Error)
	assert.Equal(t, "张三", profile.BasicInfo.Name)
	assert.NotEmpty(t, profile.Education)
	assert.NotEmpty(t, profile.Experience)
	assert.NotEmpty(t, profile.Skills)
	assert.Zero(t, ai.calls, "规则已找全字段，AI不应被调用")
}

// 只缺技能时，AI按技能类别筛块，合并结果的技能等于AI给出的技能
func TestPipelineMissingSkillsInvokesAI(t *testing.T) {
	ai := &countingAI{
		profile: &types.CandidateProfile{
			Skills: []string{"Golang", "Kubernetes"},
		},
		artifactRef: "ai/doc/exchange.json",
	}
	source := &fakeTextSource{out: types.ExtractedText{Text: noSkillsResume, Source: types.SourceDirect}}
	p := NewPipeline(newTestComponents(source, ai))

	profile := p.Run(context.Background(), types.SourceDocument{
		Content: []byte("%PDF"), MIMEType: constants.MIMEPDF, Filename: "resume.pdf",
	})

	assert.Equal(t, 1, ai.calls)
	assert.Equal(t, []string{"skills"}, ai.lastMissing)
	assert.Equal(t, []string{"Golang", "Kubernetes"}, profile.Skills)
	assert.Equal(t, "ai/doc/exchange.json", profile.AIAnalysisRef)
	assert.Empty(t, profile.Error)
	// 规则结果不受AI影响
	assert.Equal(t, "张三", profile.BasicInfo.Name)
}

// 规则一无所获时送全文而不是筛块
func TestPipelineEmptyRulesSendsFullText(t *testing.T) {
	ai := &countingAI{profile: &types.CandidateProfile{
		BasicInfo: types.BasicInfo{Name: "王五"},
	}}
	source := &fakeTextSource{out: types.ExtractedText{
		Text:   "这里是一段规则完全无法识别的自由文本，没有任何章节结构可言。",
		Source: types.SourceDirect,
	}}
	p := NewPipeline(newTestComponents(source, ai))

	profile := p.Run(context.Background(), types.SourceDocument{
		Content: []byte("%PDF"), MIMEType: constants.MIMEPDF, Filename: "resume.pdf",
	})

	assert.Equal(t, 1, ai.calls)
	assert.Nil(t, ai.lastMissing, "规则为空时不应传筛选字段")
	assert.Equal(t, "王五", profile.BasicInfo.Name)
}

// AI失败只丢弃AI贡献，规则结果完整返回
func TestPipelineAIFailureDegrades(t *testing.T) {
	ai := &countingAI{err: fmt.Errorf("服务超时")}
	source := &fakeTextSource{out: types.ExtractedText{Text: noSkillsResume, Source: types.SourceDirect}}
	p := NewPipeline(newTestComponents(source, ai))

	profile := p.Run(context.Background(), types.SourceDocument{
		Content: []byte("%PDF"), MIMEType: constants.MIMEPDF, Filename: "resume.pdf",
	})

	assert.Equal(t, 1, ai.calls)
	assert.Empty(t, profile.Error)
	assert.Equal(t, "张三", profile.BasicInfo.Name)
	assert.Empty(t, profile.Skills)
}

// 文本提取致命失败必须返回带错误的空档案，绝不返回半填充结果
func TestPipelineFatalExtractionYieldsErrorProfile(t *testing.T) {
	source := &fakeTextSource{err: newPipelineError("scan.pdf", "ocr", ErrEngineUnavailable, "没有可用的OCR路径")}
	p := NewPipeline(newTestComponents(source, &countingAI{}))

	profile := p.Run(context.Background(), types.SourceDocument{
		Content: []byte("%PDF"), MIMEType: constants.MIMEPDF, Filename: "scan.pdf",
	})

	assert.NotEmpty(t, profile.Error)
	assert.True(t, profile.IsEmpty(), "错误档案的结构字段必须全部为空")
}

func TestPipelineEmptyInput(t *testing.T) {
	p := NewPipeline(newTestComponents(&fakeTextSource{}, nil))

	profile := p.Run(context.Background(), types.SourceDocument{Filename: "nothing.pdf"})

	assert.NotEmpty(t, profile.Error)
	assert.True(t, profile.IsEmpty())
}

// 两页扫描件：主引擎整体失败，逐页回退到备用引擎，姓名来自备用引擎的识别文本
func TestPipelineTwoPageScanEngineFallback(t *testing.T) {
	engineA := &ocrStubEngine{id: "engineA", err: fmt.Errorf("识别服务未启动")}
	engineB := &ocrStubEngine{id: "engineB", byImage: map[string]string{
		"page-1.png": "张三\n电话: 13800138000",
		"page-2.png": "工作经历\n2020-2022 某某科技有限公司 后端工程师",
	}}
	pool := ocr.NewPool(engineA, engineB)
	renderer := &fakeRenderer{pages: []string{"page-1.png", "page-2.png"}}

	extractor := NewTextExtractor(nil, nil, renderer, pool, 100)
	p := NewPipeline(newTestComponents(extractor, nil))

	profile := p.Run(context.Background(), types.SourceDocument{
		Path: "/data/scan.pdf", MIMEType: constants.MIMEPDF, Filename: "scan.pdf",
	})

	require.Empty(t, profile.Error)
	assert.Equal(t, "张三", profile.BasicInfo.Name)
	assert.Equal(t, "13800138000", profile.BasicInfo.Phone)
	assert.NotEmpty(t, profile.Experience)
	// 两页都先尝试了主引擎
	assert.Equal(t, int32(2), engineA.calls.Load())
	assert.Equal(t, int32(2), engineB.calls.Load())
}

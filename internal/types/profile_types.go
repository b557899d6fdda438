package types

import "strings"

// BlockType 表示版面分析得到的内容块类型
type BlockType string

const (
	// BlockHeading 标题块（章节名等短行）
	BlockHeading BlockType = "heading"
	// BlockList 列表块（以符号或序号开头的条目）
	BlockList BlockType = "list"
	// BlockParagraph 段落块
	BlockParagraph BlockType = "paragraph"
)

// ContentBlock 简历文本的一个连续片段，是下游提取器消费的基本单位
// 块有序且互不重叠，Position 为块在文档中的序号
type ContentBlock struct {
	Type     BlockType `json:"type"`
	Text     string    `json:"text"`
	Position int       `json:"position"`
}

// SourceDocument 不可变的输入文档，管道只读不写
type SourceDocument struct {
	// 文件路径与内容二选一，Content 优先
	Path     string
	Content  []byte
	MIMEType string
	Filename string // 仅在MIME缺失时用于扩展名嗅探
}

// 文本来源标记
const (
	SourceDirect    = "direct" // 直接读取文档内嵌文本层
	SourceOCRPrefix = "ocr:"   // OCR来源，后接引擎ID
)

// ExtractedText 提取出的原始文本及其来源
type ExtractedText struct {
	Text   string `json:"text"`
	Source string `json:"source"` // "direct" 或 "ocr:<engine-id>"
}

// FromOCR 判断文本是否来自OCR
func (e ExtractedText) FromOCR() bool {
	return strings.HasPrefix(e.Source, SourceOCRPrefix)
}

// ComplexityScore 文档版面复杂度档位，派生值，不落盘
type ComplexityScore int

const (
	// ComplexitySimple 规整的单栏纯文本版面
	ComplexitySimple ComplexityScore = iota
	// ComplexityModerate 常规简历版面
	ComplexityModerate
	// ComplexityComplex 含较多装饰或表格痕迹的版面
	ComplexityComplex
	// ComplexityVeryComplex 高度不规则版面
	ComplexityVeryComplex
)

// String 返回档位名称
func (c ComplexityScore) String() string {
	switch c {
	case ComplexitySimple:
		return "SIMPLE"
	case ComplexityModerate:
		return "MODERATE"
	case ComplexityComplex:
		return "COMPLEX"
	case ComplexityVeryComplex:
		return "VERY_COMPLEX"
	default:
		return "UNKNOWN"
	}
}

// BasicInfo 候选人基本信息，全部为可选字符串
type BasicInfo struct {
	Name      string `json:"name,omitempty"`
	Age       string `json:"age,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Wechat    string `json:"wechat,omitempty"`
}

// Record 松散结构的条目，字段集合依赖具体领域（学校/专业/时间段等）
type Record map[string]string

// CandidateProfile 管道的输出契约：一份简历对应的结构化候选人档案
// Error 非空时表示提取失败，此时其余结构字段必须全部为零值
type CandidateProfile struct {
	BasicInfo    BasicInfo `json:"basic_info"`
	Education    []Record  `json:"education,omitempty"`
	Experience   []Record  `json:"experience,omitempty"`
	Projects     []Record  `json:"projects,omitempty"`
	Certificates []Record  `json:"certificates,omitempty"`
	Languages    []Record  `json:"languages,omitempty"`
	Awards       []Record  `json:"awards,omitempty"`
	Skills       []string  `json:"skills,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	Domain       string    `json:"domain,omitempty"`

	// AIAnalysisRef 指向已持久化的AI原始应答工件，归调用方存储所有
	AIAnalysisRef string `json:"ai_analysis_reference,omitempty"`

	// Error 非空表示提取失败，调用方必须检查
	Error string `json:"error,omitempty"`
}

// NewErrorProfile 构造一个仅携带错误信息的空档案
func NewErrorProfile(msg string) *CandidateProfile {
	return &CandidateProfile{Error: msg}
}

// HasBasicInfo 基本信息是否至少有一个字段非空
func (p *CandidateProfile) HasBasicInfo() bool {
	b := p.BasicInfo
	return b.Name != "" || b.Age != "" || b.BirthDate != "" || b.Gender != "" ||
		b.Email != "" || b.Phone != "" || b.GitHub != "" || b.Wechat != ""
}

// IsEmpty 除Error和Domain外是否没有任何提取结果
func (p *CandidateProfile) IsEmpty() bool {
	return !p.HasBasicInfo() &&
		len(p.Education) == 0 && len(p.Experience) == 0 && len(p.Projects) == 0 &&
		len(p.Certificates) == 0 && len(p.Languages) == 0 && len(p.Awards) == 0 &&
		len(p.Skills) == 0 && p.Summary == ""
}

// QualityBreakdown 质量评估结果，仅供参考，不阻断管道返回
type QualityBreakdown struct {
	// 各字段类别得分 (0-1)
	Fields map[string]float64 `json:"fields"`
	// 加权总分 (0-100)
	Total int `json:"total"`
}

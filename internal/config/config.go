package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 应用程序配置
type Config struct {
	// Aliyun 通义千问LLM配置
	Aliyun struct {
		APIKey     string            `yaml:"api_key"`
		APIURL     string            `yaml:"api_url"`
		Model      string            `yaml:"model"`
		TaskModels map[string]string `yaml:"task_models"` // 任务专用模型
	} `yaml:"aliyun"`

	// Tika服务器配置（Word转换与OCR回退引擎）
	Tika TikaConfig `yaml:"tika"`

	// OCR 本地OCR引擎配置
	OCR OCRConfig `yaml:"ocr"`

	// MinIO 工件存储配置
	MinIO MinIOConfig `yaml:"minio"`

	// Pipeline 管道自身的可调参数
	Pipeline PipelineConfig `yaml:"pipeline"`

	// AIExtractor AI提取器配置
	AIExtractor AIExtractorConfig `yaml:"ai_extractor"`

	// Logger 日志配置
	Logger LoggerConfig `yaml:"logger"`

	// Tracing 链路追踪配置
	Tracing TracingConfig `yaml:"tracing"`
}

// TikaConfig Tika服务器配置结构
type TikaConfig struct {
	ServerURL string `yaml:"server_url"`      // Tika服务器URL
	Timeout   int    `yaml:"timeout_seconds"` // 超时时间(秒)
	EnableOCR bool   `yaml:"enable_ocr"`      // 是否允许将Tika用作OCR回退引擎
}

// OCRConfig 本地OCR引擎配置
type OCRConfig struct {
	Tesseract     string `yaml:"tesseract"`      // 可执行文件名或绝对路径，空则为 "tesseract"
	Pdftoppm      string `yaml:"pdftoppm"`       // 可执行文件名或绝对路径，空则为 "pdftoppm"
	TesseractLang string `yaml:"tesseract_lang"` // 识别语言，默认 "chi_sim+eng"
	DPI           int    `yaml:"dpi"`            // 扫描件渲染DPI，默认300
	MaxPages      int    `yaml:"max_pages"`      // 页数上限，0为不限
	PSM           int    `yaml:"psm"`            // tesseract页面分割模式
}

// MinIOConfig MinIO配置结构
type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Location        string `yaml:"location"` // 可选，存储桶区域
	// 工件存储桶
	ArtifactBucket string `yaml:"artifactBucket"` // AI原始应答与中间文本存储桶
	// 工件生命周期
	ArtifactExpireDays int `yaml:"artifact_expire_days"` // 工件过期天数，0为永久
}

// PipelineConfig 管道可调参数
// 复杂度权重、档位阈值、去重键与领域词表都是手工调优的启发式数据，
// 放在配置里以便不改代码即可调整
type PipelineConfig struct {
	// MinDirectTextLen 直接提取文本低于该长度时转入OCR
	MinDirectTextLen int `yaml:"min_direct_text_len"`

	// Complexity 复杂度评分权重与档位阈值
	Complexity ComplexityConfig `yaml:"complexity"`

	// AITriggerTier 达到该复杂度档位(含)即触发AI提取: 0=SIMPLE..3=VERY_COMPLEX
	AITriggerTier int `yaml:"ai_trigger_tier"`

	// DedupKeys 各序列字段合并去重所用的键元组
	DedupKeys map[string][]string `yaml:"dedup_keys"`

	// DomainKeywords 领域分类词表: 领域标签 -> 关键词列表
	DomainKeywords map[string][]string `yaml:"domain_keywords"`

	// SectionKeywords 缺失字段筛块词表: 字段类别 -> 关键词列表
	SectionKeywords map[string][]string `yaml:"section_keywords"`
}

// ComplexityConfig 复杂度评分配置
type ComplexityConfig struct {
	TypeDiversityWeight float64 `yaml:"type_diversity_weight"` // 块类型多样性权重
	AvgLengthWeight     float64 `yaml:"avg_length_weight"`     // 平均块长度权重
	NonAlnumWeight      float64 `yaml:"non_alnum_weight"`      // 非字母数字字符占比权重
	HomogeneityWeight   float64 `yaml:"homogeneity_weight"`    // 块间类型同质性权重

	// 三条档位分界线，依次划分 SIMPLE/MODERATE/COMPLEX/VERY_COMPLEX
	ModerateThreshold    float64 `yaml:"moderate_threshold"`
	ComplexThreshold     float64 `yaml:"complex_threshold"`
	VeryComplexThreshold float64 `yaml:"very_complex_threshold"`
}

// AIExtractorConfig AI提取器配置
type AIExtractorConfig struct {
	Timeout          string `yaml:"timeout"`            // 单次调用超时，例如 "60s"
	QPM              int    `yaml:"qpm"`                // 每分钟请求数限制
	MaxRetries       int    `yaml:"max_retries"`        // 最大重试次数
	RetryWaitSeconds int    `yaml:"retry_wait_seconds"` // 首次重试等待时间(秒)
	BreakerEnabled   bool   `yaml:"breaker_enabled"`    // 是否启用熔断器
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// TracingConfig 链路追踪配置
type TracingConfig struct {
	Enabled      bool   `yaml:"enabled"`
	OTLPEndpoint string `yaml:"otlp_endpoint"` // 例如 "localhost:4317"
	ServiceName  string `yaml:"service_name"`
	SampleRatio  float64 `yaml:"sample_ratio"`
}

// LoadConfig 从文件加载配置
// 未指定路径时在常见位置查找；测试环境下找不到文件则返回默认配置
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		searchPaths := []string{
			"config.yaml",
			"./config.yaml",
			"../config.yaml",
			"../../config.yaml",
			filepath.Join(os.Getenv("HOME"), ".resume-parser", "config.yaml"),
		}

		// 可执行文件所在目录及其上级
		if execPath, err := os.Executable(); err == nil {
			execDir := filepath.Dir(execPath)
			searchPaths = append(searchPaths,
				filepath.Join(execDir, "config.yaml"),
				filepath.Join(execDir, "..", "config.yaml"),
			)
		}

		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}

		if configPath == "" {
			if inTestEnvironment() {
				return createDefaultConfig(), nil
			}
			configPath = "config.yaml"
		}
	}

	if _, err := os.Stat(configPath); err != nil {
		if inTestEnvironment() {
			return createDefaultConfig(), nil
		}
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 从环境变量覆盖LLM凭据（如果存在）
	if envKey := os.Getenv("ALIYUN_API_KEY"); envKey != "" {
		config.Aliyun.APIKey = envKey
	}
	if envURL := os.Getenv("ALIYUN_API_URL"); envURL != "" {
		config.Aliyun.APIURL = envURL
	}
	if envModel := os.Getenv("ALIYUN_MODEL"); envModel != "" {
		config.Aliyun.Model = envModel
	}

	applyDefaults(&config)
	return &config, nil
}

// GetModelForTask 返回某类任务专用的模型名，没有则回退到全局模型
func (c *Config) GetModelForTask(task string) string {
	if m, ok := c.Aliyun.TaskModels[task]; ok && m != "" {
		return m
	}
	return c.Aliyun.Model
}

// inTestEnvironment 根据命令行参数粗略判断是否在 go test 下运行
func inTestEnvironment() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, "test") {
			return true
		}
	}
	return false
}

// applyDefaults 填充未配置项的默认值
func applyDefaults(config *Config) {
	if config.Tika.Timeout == 0 {
		config.Tika.Timeout = 60
	}
	if config.OCR.Tesseract == "" {
		config.OCR.Tesseract = "tesseract"
	}
	if config.OCR.Pdftoppm == "" {
		config.OCR.Pdftoppm = "pdftoppm"
	}
	if config.OCR.TesseractLang == "" {
		config.OCR.TesseractLang = "chi_sim+eng"
	}
	if config.OCR.DPI == 0 {
		config.OCR.DPI = 300
	}
	if config.OCR.MaxPages == 0 {
		config.OCR.MaxPages = 20
	}
	if config.Pipeline.MinDirectTextLen == 0 {
		config.Pipeline.MinDirectTextLen = 100
	}
	c := &config.Pipeline.Complexity
	if c.TypeDiversityWeight == 0 && c.AvgLengthWeight == 0 && c.NonAlnumWeight == 0 && c.HomogeneityWeight == 0 {
		c.TypeDiversityWeight = 0.3
		c.AvgLengthWeight = 0.2
		c.NonAlnumWeight = 0.25
		c.HomogeneityWeight = 0.25
	}
	if c.ModerateThreshold == 0 {
		c.ModerateThreshold = 0.3
	}
	if c.ComplexThreshold == 0 {
		c.ComplexThreshold = 0.55
	}
	if c.VeryComplexThreshold == 0 {
		c.VeryComplexThreshold = 0.8
	}
	if config.Pipeline.AITriggerTier == 0 {
		config.Pipeline.AITriggerTier = 2 // COMPLEX 起步
	}
	if len(config.Pipeline.DedupKeys) == 0 {
		config.Pipeline.DedupKeys = DefaultDedupKeys()
	}
	if len(config.Pipeline.DomainKeywords) == 0 {
		config.Pipeline.DomainKeywords = DefaultDomainKeywords()
	}
	if len(config.Pipeline.SectionKeywords) == 0 {
		config.Pipeline.SectionKeywords = DefaultSectionKeywords()
	}
	if config.AIExtractor.Timeout == "" {
		config.AIExtractor.Timeout = "60s"
	}
	if config.AIExtractor.QPM == 0 {
		config.AIExtractor.QPM = 60
	}
	if config.AIExtractor.MaxRetries == 0 {
		config.AIExtractor.MaxRetries = 2
	}
	if config.AIExtractor.RetryWaitSeconds == 0 {
		config.AIExtractor.RetryWaitSeconds = 2
	}
	if config.Logger.Level == "" {
		config.Logger.Level = "info"
	}
	if config.Tracing.ServiceName == "" {
		config.Tracing.ServiceName = "resume-parser"
	}
	if config.MinIO.ArtifactBucket == "" {
		config.MinIO.ArtifactBucket = "resume-artifacts"
	}
}

// DefaultDedupKeys 序列字段去重键元组的默认值
func DefaultDedupKeys() map[string][]string {
	return map[string][]string{
		"education":    {"school", "major", "period"},
		"experience":   {"company", "title", "period"},
		"projects":     {"name", "period"},
		"certificates": {"name"},
		"languages":    {"name"},
		"awards":       {"name", "date"},
	}
}

// DefaultDomainKeywords 领域分类词表的默认值
func DefaultDomainKeywords() map[string][]string {
	return map[string][]string{
		"IT": {
			"软件", "开发", "程序", "算法", "后端", "前端", "java", "python", "golang",
			"linux", "数据库", "software", "developer", "engineer", "backend",
		},
		"finance": {
			"金融", "财务", "会计", "审计", "投资", "银行", "证券", "风控",
			"finance", "accounting", "audit", "investment", "banking",
		},
		"design": {
			"设计", "视觉", "交互", "UI", "UX", "美术", "photoshop", "figma",
			"design", "illustrator", "branding",
		},
		"marketing": {
			"市场", "营销", "运营", "推广", "品牌", "增长",
			"marketing", "seo", "campaign", "growth",
		},
	}
}

// DefaultSectionKeywords 缺失字段筛块词表的默认值
func DefaultSectionKeywords() map[string][]string {
	return map[string][]string{
		"name": {
			"姓名", "个人信息", "联系方式", "name", "contact",
		},
		"education": {
			"教育", "学历", "学校", "大学", "学院", "专业", "本科", "硕士", "博士",
			"education", "university", "college", "degree", "bachelor", "master",
		},
		"experience": {
			"工作", "经历", "经验", "任职", "公司", "实习",
			"experience", "work", "employment", "company", "intern",
		},
		"skills": {
			"技能", "技术栈", "掌握", "熟悉", "精通",
			"skills", "proficient", "familiar", "stack",
		},
	}
}

// createDefaultConfig 创建一个默认配置，用于测试环境
func createDefaultConfig() *Config {
	config := &Config{}
	config.Aliyun.APIURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	config.Aliyun.Model = "qwen-turbo"

	config.Tika.ServerURL = "http://localhost:9998"

	config.MinIO.Endpoint = "localhost:9000"
	config.MinIO.AccessKeyID = "minioadmin"
	config.MinIO.SecretAccessKey = "minioadmin"

	config.Logger.Level = "debug"
	config.Logger.Format = "pretty"

	applyDefaults(config)
	return config
}

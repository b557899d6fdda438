package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 序列化再反序列化必须逐字段还原
func TestCandidateProfileJSONRoundTrip(t *testing.T) {
	original := CandidateProfile{
		BasicInfo: BasicInfo{
			Name: "张三", Age: "25", BirthDate: "1999.01", Gender: "男",
			Email: "zhangsan@example.com", Phone: "13800138000",
			GitHub: "github.com/zhangsan", Wechat: "zs_wechat",
		},
		Education: []Record{
			{"school": "清华大学", "major": "计算机", "degree": "本科", "period": "2018.09-2022.06"},
		},
		Experience: []Record{
			{"company": "某某科技有限公司", "title": "后端工程师", "period": "2022.07-至今"},
		},
		Projects:      []Record{{"name": "简历解析系统", "period": "2023.01-2023.06"}},
		Certificates:  []Record{{"name": "CET-6"}},
		Languages:     []Record{{"name": "英语", "level": "CET-6"}},
		Awards:        []Record{{"name": "校级一等奖学金", "date": "2020"}},
		Skills:        []string{"Golang", "MySQL", "Docker"},
		Summary:       "热爱技术的后端工程师",
		Domain:        "IT",
		AIAnalysisRef: "ai/doc-1/exchange.json",
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var restored CandidateProfile
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, original, restored)
}

func TestErrorProfileRoundTrip(t *testing.T) {
	original := *NewErrorProfile("不支持的文档格式")

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var restored CandidateProfile
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, original, restored)
	assert.True(t, restored.IsEmpty())
	assert.NotEmpty(t, restored.Error)
}

func TestProfileJSONFieldNames(t *testing.T) {
	p := CandidateProfile{
		BasicInfo: BasicInfo{Name: "张三", BirthDate: "1999.01"},
		Skills:    []string{"Go"},
		Domain:    "IT",
	}
	data, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Contains(t, raw, "basic_info")
	assert.Contains(t, raw, "skills")
	assert.Contains(t, raw, "domain")
	basic := raw["basic_info"].(map[string]any)
	assert.Equal(t, "1999.01", basic["birth_date"])
}

func TestComplexityScoreString(t *testing.T) {
	assert.Equal(t, "SIMPLE", ComplexitySimple.String())
	assert.Equal(t, "MODERATE", ComplexityModerate.String())
	assert.Equal(t, "COMPLEX", ComplexityComplex.String())
	assert.Equal(t, "VERY_COMPLEX", ComplexityVeryComplex.String())
}

func TestExtractedTextProvenance(t *testing.T) {
	assert.False(t, ExtractedText{Source: SourceDirect}.FromOCR())
	assert.True(t, ExtractedText{Source: SourceOCRPrefix + "tesseract"}.FromOCR())
}

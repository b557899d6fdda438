package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"resume-parser-go/internal/types"
)

func TestEvaluateCompleteProfile(t *testing.T) {
	profile := &types.CandidateProfile{
		BasicInfo: types.BasicInfo{
			Name: "张三", Phone: "13800138000", Email: "z@example.com", Gender: "男",
		},
		Education:  []types.Record{{"school": "清华大学"}, {"school": "北京大学"}},
		Experience: []types.Record{{"company": "甲公司"}, {"company": "乙公司"}},
		Projects:   []types.Record{{"name": "项目A"}},
		Skills:     []string{"Golang", "MySQL"},
		Summary:    "资深后端工程师",
	}

	breakdown := NewQualityEvaluator().Evaluate(profile)

	assert.InDelta(t, 1.0, breakdown.Fields["basic_info"], 0.001)
	assert.Equal(t, 1.0, breakdown.Fields["education"])
	assert.Equal(t, 1.0, breakdown.Fields["experience"])
	assert.Equal(t, 1.0, breakdown.Fields["skills"])
	assert.Greater(t, breakdown.Total, 90)
}

func TestEvaluateEmptyProfile(t *testing.T) {
	breakdown := NewQualityEvaluator().Evaluate(&types.CandidateProfile{})
	assert.Equal(t, 0, breakdown.Total)
}

func TestEvaluateErrorProfileScoresZero(t *testing.T) {
	breakdown := NewQualityEvaluator().Evaluate(types.NewErrorProfile("提取失败"))
	assert.Equal(t, 0, breakdown.Total)
	for field, score := range breakdown.Fields {
		assert.Zero(t, score, "field: %s", field)
	}
}

func TestEvaluatePartialProfile(t *testing.T) {
	profile := &types.CandidateProfile{
		BasicInfo: types.BasicInfo{Name: "李四"},
		Skills:    []string{"Excel"},
	}

	breakdown := NewQualityEvaluator().Evaluate(profile)

	assert.Greater(t, breakdown.Total, 0)
	assert.Less(t, breakdown.Total, 50)
	assert.Zero(t, breakdown.Fields["education"])
}

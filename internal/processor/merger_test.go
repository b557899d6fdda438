package processor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/types"
)

func newTestMerger() *Merger {
	return NewMerger(config.DefaultDedupKeys())
}

func TestMergeScalarFillsOnlyAbsent(t *testing.T) {
	rule := &types.CandidateProfile{
		BasicInfo: types.BasicInfo{Name: "张三", Phone: "13800138000"},
	}
	ai := &types.CandidateProfile{
		BasicInfo: types.BasicInfo{Name: "李四", Email: "zhangsan@example.com"},
	}

	out := newTestMerger().Merge(rule, ai)

	// 规则已有的字段不被AI覆盖
	assert.Equal(t, "张三", out.BasicInfo.Name)
	assert.Equal(t, "13800138000", out.BasicInfo.Phone)
	// 空缺字段由AI补齐
	assert.Equal(t, "zhangsan@example.com", out.BasicInfo.Email)
}

func TestMergeSummaryKeepsLonger(t *testing.T) {
	m := newTestMerger()

	out := m.Merge(
		&types.CandidateProfile{Summary: "短"},
		&types.CandidateProfile{Summary: "明显更长的总结内容"},
	)
	assert.Equal(t, "明显更长的总结内容", out.Summary)

	out = m.Merge(
		&types.CandidateProfile{Summary: "规则提取到的更长总结"},
		&types.CandidateProfile{Summary: "短"},
	)
	assert.Equal(t, "规则提取到的更长总结", out.Summary)
}

func TestMergeRecordsDedupByKeyTuple(t *testing.T) {
	rule := &types.CandidateProfile{
		Education: []types.Record{
			{"school": "清华大学", "major": "计算机", "period": "2018-2022"},
		},
	}
	ai := &types.CandidateProfile{
		Education: []types.Record{
			// 与规则条目键相同（大小写/空白不敏感），应被吞并
			{"school": " 清华大学 ", "major": "计算机", "period": "2018-2022", "degree": "本科"},
			// 新条目应被追加
			{"school": "北京大学", "major": "软件工程", "period": "2022-2025"},
		},
	}

	out := newTestMerger().Merge(rule, ai)

	require.Len(t, out.Education, 2)
	assert.Equal(t, "清华大学", out.Education[0]["school"])
	assert.Equal(t, "北京大学", out.Education[1]["school"])
}

// AI条目顺序打乱后，合并结果的成员集合不变
func TestMergeReorderInsensitive(t *testing.T) {
	rule := &types.CandidateProfile{
		Experience: []types.Record{
			{"company": "甲公司", "title": "工程师", "period": "2020-2021"},
		},
	}
	items := []types.Record{
		{"company": "乙公司", "title": "高级工程师", "period": "2021-2022"},
		{"company": "丙公司", "title": "架构师", "period": "2022-2023"},
		{"company": "甲公司", "title": "工程师", "period": "2020-2021"},
	}
	reversed := []types.Record{items[2], items[1], items[0]}

	m := newTestMerger()
	a := m.Merge(rule, &types.CandidateProfile{Experience: items})
	b := m.Merge(rule, &types.CandidateProfile{Experience: reversed})

	assert.ElementsMatch(t, a.Experience, b.Experience)
	assert.Len(t, a.Experience, 3)
	assert.Len(t, b.Experience, 3)
}

func TestMergeSkillsCaseInsensitiveUnion(t *testing.T) {
	rule := &types.CandidateProfile{Skills: []string{"Golang", "MySQL"}}
	ai := &types.CandidateProfile{Skills: []string{"golang", "Docker", "docker", "Redis"}}

	out := newTestMerger().Merge(rule, ai)

	assert.Equal(t, []string{"Golang", "MySQL", "Docker", "Redis"}, out.Skills)

	// 结果中不允许出现大小写不敏感意义上的重复
	seen := map[string]bool{}
	for _, s := range out.Skills {
		key := strings.ToLower(s)
		assert.False(t, seen[key], "重复技能: %s", s)
		seen[key] = true
	}
}

func TestMergeNilInputs(t *testing.T) {
	out := newTestMerger().Merge(nil, nil)
	assert.True(t, out.IsEmpty())
}

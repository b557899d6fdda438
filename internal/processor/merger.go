package processor

import (
	"strings"

	"resume-parser-go/internal/types"
)

// Merger 合并规则提取与AI提取的结果
// 标量字段规则结果优先，AI只补空；序列字段按键元组去重后追加AI新条目；
// 技能做大小写不敏感并集
type Merger struct {
	// dedupKeys 序列字段 -> 去重键元组
	dedupKeys map[string][]string
}

// NewMerger 创建合并器，去重键来自配置
func NewMerger(dedupKeys map[string][]string) *Merger {
	return &Merger{dedupKeys: dedupKeys}
}

// Merge 以规则结果为基底合并AI结果，两个输入都不被修改
func (m *Merger) Merge(rule, ai *types.CandidateProfile) *types.CandidateProfile {
	if rule == nil {
		rule = &types.CandidateProfile{}
	}
	if ai == nil {
		ai = &types.CandidateProfile{}
	}

	out := &types.CandidateProfile{
		Domain:        rule.Domain,
		AIAnalysisRef: rule.AIAnalysisRef,
	}

	out.BasicInfo = mergeBasicInfo(rule.BasicInfo, ai.BasicInfo)
	out.Summary = mergeSummary(rule.Summary, ai.Summary)

	out.Education = m.mergeRecords("education", rule.Education, ai.Education)
	out.Experience = m.mergeRecords("experience", rule.Experience, ai.Experience)
	out.Projects = m.mergeRecords("projects", rule.Projects, ai.Projects)
	out.Certificates = m.mergeRecords("certificates", rule.Certificates, ai.Certificates)
	out.Languages = m.mergeRecords("languages", rule.Languages, ai.Languages)
	out.Awards = m.mergeRecords("awards", rule.Awards, ai.Awards)

	out.Skills = mergeSkills(rule.Skills, ai.Skills)

	return out
}

// mergeBasicInfo AI的值只填规则没找到的字段
func mergeBasicInfo(rule, ai types.BasicInfo) types.BasicInfo {
	fill := func(ruleVal, aiVal string) string {
		if ruleVal != "" {
			return ruleVal
		}
		return aiVal
	}
	return types.BasicInfo{
		Name:      fill(rule.Name, ai.Name),
		Age:       fill(rule.Age, ai.Age),
		BirthDate: fill(rule.BirthDate, ai.BirthDate),
		Gender:    fill(rule.Gender, ai.Gender),
		Email:     fill(rule.Email, ai.Email),
		Phone:     fill(rule.Phone, ai.Phone),
		GitHub:    fill(rule.GitHub, ai.GitHub),
		Wechat:    fill(rule.Wechat, ai.Wechat),
	}
}

// mergeSummary 两边都有时保留更长的
func mergeSummary(rule, ai string) string {
	if len(ai) > len(rule) {
		return ai
	}
	return rule
}

// mergeRecords 规则条目在前，AI条目按去重键去重后追加
func (m *Merger) mergeRecords(field string, rule, ai []types.Record) []types.Record {
	if len(rule) == 0 && len(ai) == 0 {
		return nil
	}

	keys := m.dedupKeys[field]
	seen := make(map[string]bool, len(rule)+len(ai))
	out := make([]types.Record, 0, len(rule)+len(ai))

	for _, rec := range rule {
		k := recordKey(rec, keys)
		if !seen[k] {
			seen[k] = true
			out = append(out, rec)
		}
	}
	for _, rec := range ai {
		k := recordKey(rec, keys)
		if !seen[k] {
			seen[k] = true
			out = append(out, rec)
		}
	}
	return out
}

// recordKey 按键元组构造条目指纹，键全缺时回退为整条内容
func recordKey(rec types.Record, keys []string) string {
	var parts []string
	hasAny := false
	for _, k := range keys {
		v := strings.ToLower(strings.TrimSpace(rec[k]))
		if v != "" {
			hasAny = true
		}
		parts = append(parts, v)
	}
	if !hasAny {
		// 没有任何键字段时用全部字段兜底，避免空键互相吞并
		parts = parts[:0]
		for _, k := range sortedKeys(rec) {
			parts = append(parts, k+"="+strings.ToLower(strings.TrimSpace(rec[k])))
		}
	}
	return strings.Join(parts, "\x1f")
}

func sortedKeys(rec types.Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

// mergeSkills 大小写不敏感并集，保留先出现的写法
func mergeSkills(rule, ai []string) []string {
	if len(rule) == 0 && len(ai) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(rule)+len(ai))
	out := make([]string, 0, len(rule)+len(ai))
	for _, s := range append(append([]string{}, rule...), ai...) {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

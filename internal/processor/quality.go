package processor

import (
	"resume-parser-go/internal/types"
)

// QualityEvaluator 对最终档案做加权完整性评分
// 仅供参考：分数再低也不会阻止管道返回结果
type QualityEvaluator struct {
	weights map[string]float64
}

// NewQualityEvaluator 创建质量评估器
func NewQualityEvaluator() *QualityEvaluator {
	return &QualityEvaluator{
		weights: map[string]float64{
			"basic_info": 0.30,
			"education":  0.20,
			"experience": 0.25,
			"skills":     0.15,
			"projects":   0.05,
			"summary":    0.05,
		},
	}
}

// Evaluate 产出各类别得分与加权总分
func (q *QualityEvaluator) Evaluate(profile *types.CandidateProfile) types.QualityBreakdown {
	breakdown := types.QualityBreakdown{Fields: make(map[string]float64, len(q.weights))}
	if profile == nil || profile.Error != "" {
		for field := range q.weights {
			breakdown.Fields[field] = 0
		}
		return breakdown
	}

	breakdown.Fields["basic_info"] = basicInfoScore(profile.BasicInfo)
	breakdown.Fields["education"] = presenceScore(len(profile.Education))
	breakdown.Fields["experience"] = presenceScore(len(profile.Experience))
	breakdown.Fields["skills"] = presenceScore(len(profile.Skills))
	breakdown.Fields["projects"] = presenceScore(len(profile.Projects))
	breakdown.Fields["summary"] = boolScore(profile.Summary != "")

	total := 0.0
	for field, weight := range q.weights {
		total += breakdown.Fields[field] * weight
	}
	breakdown.Total = int(total*100 + 0.5)
	return breakdown
}

// basicInfoScore 姓名和联系方式占大头
func basicInfoScore(b types.BasicInfo) float64 {
	score := 0.0
	if b.Name != "" {
		score += 0.4
	}
	if b.Phone != "" {
		score += 0.25
	}
	if b.Email != "" {
		score += 0.25
	}
	if b.Gender != "" || b.Age != "" || b.BirthDate != "" || b.GitHub != "" || b.Wechat != "" {
		score += 0.1
	}
	return score
}

// presenceScore 有条目即得分，单条打九折以示存疑
func presenceScore(n int) float64 {
	switch {
	case n == 0:
		return 0
	case n == 1:
		return 0.9
	default:
		return 1
	}
}

func boolScore(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

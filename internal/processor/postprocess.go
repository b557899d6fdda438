package processor

import (
	"regexp"
	"strings"

	"resume-parser-go/internal/types"
)

// PostProcessor 规范化合并后的档案
// 只整理已有的值（日期、空白），绝不为缺失字段编造内容
type PostProcessor struct{}

// NewPostProcessor 创建后处理器
func NewPostProcessor() *PostProcessor {
	return &PostProcessor{}
}

var (
	// 2018年9月 / 2018.9 / 2018/09 -> 2018.09
	dateRe = regexp.MustCompile(`(\d{4})\s*[年./-]\s*(\d{1,2})\s*月?`)
	// 各种连接符统一为 "-"
	rangeSepRe  = regexp.MustCompile(`\s*[-–—~〜至到]+\s*`)
	wsCollapse  = regexp.MustCompile(`[ \t]+`)
	nowWords    = regexp.MustCompile(`现在|now|present|Present`)
	periodUnify = "至今"
)

// Normalize 就地规范化档案
func (p *PostProcessor) Normalize(profile *types.CandidateProfile) {
	if profile == nil {
		return
	}

	b := &profile.BasicInfo
	b.Name = cleanScalar(b.Name)
	b.Age = cleanScalar(b.Age)
	b.BirthDate = normalizeDate(cleanScalar(b.BirthDate))
	b.Gender = cleanScalar(b.Gender)
	b.Email = cleanScalar(b.Email)
	b.Phone = normalizePhone(cleanScalar(b.Phone))
	b.GitHub = cleanScalar(b.GitHub)
	b.Wechat = cleanScalar(b.Wechat)

	for _, records := range [][]types.Record{
		profile.Education, profile.Experience, profile.Projects,
		profile.Certificates, profile.Languages, profile.Awards,
	} {
		for _, rec := range records {
			for k, v := range rec {
				v = cleanScalar(v)
				if k == "period" || k == "date" {
					v = normalizePeriod(v)
				}
				if v == "" {
					delete(rec, k)
				} else {
					rec[k] = v
				}
			}
		}
	}

	for i, s := range profile.Skills {
		profile.Skills[i] = cleanScalar(s)
	}
	profile.Summary = strings.TrimSpace(profile.Summary)
}

// cleanScalar 压缩行内空白并去除首尾空白
func cleanScalar(s string) string {
	return strings.TrimSpace(wsCollapse.ReplaceAllString(s, " "))
}

// normalizeDate 统一为 YYYY.MM 形式，补齐月份前导零
func normalizeDate(s string) string {
	return dateRe.ReplaceAllStringFunc(s, func(m string) string {
		parts := dateRe.FindStringSubmatch(m)
		month := parts[2]
		if len(month) == 1 {
			month = "0" + month
		}
		return parts[1] + "." + month
	})
}

// normalizePeriod 统一时间段：日期格式化、连接符归一、"现在/present"归一为"至今"
func normalizePeriod(s string) string {
	s = normalizeDate(s)
	s = nowWords.ReplaceAllString(s, periodUnify)
	// "至今"里的"至"不是连接符，先藏起来再归一
	s = strings.ReplaceAll(s, periodUnify, "\x00")
	s = rangeSepRe.ReplaceAllString(s, "-")
	s = strings.ReplaceAll(s, "\x00", periodUnify)
	return strings.TrimSpace(s)
}

// normalizePhone 去掉电话号码中的分隔符
func normalizePhone(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(s)
}

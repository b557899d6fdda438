package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-parser-go/internal/types"
)

// RuleExtractor 确定性的模式/关键词字段提取器
// 对相同输入总是产生相同输出；找不到的字段保持缺省，绝不猜测
type RuleExtractor struct {
	// sectionVocab 章节标题词表: 类别 -> 关键词（小写）
	sectionVocab map[string][]string
}

// 字段级正则，包级编译一次
var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`1[3-9]\d{9}|\+?\d{2,3}[- ]?\d{3,4}[- ]?\d{4,8}`)
	// 带标签的基本信息行，如 "姓名：张三" "电话: 138..."
	labeledNameRe   = regexp.MustCompile(`(?:姓名|名字|Name)\s*[:：]\s*(\S{1,20})`)
	labeledGenderRe = regexp.MustCompile(`(?:性别|Gender)\s*[:：]\s*(\S{1,8})`)
	ageRe           = regexp.MustCompile(`(\d{1,2})\s*岁|(?:年龄|Age)\s*[:：]\s*(\d{1,2})`)
	birthRe         = regexp.MustCompile(`(?:出生|生日|Birth)\S*[:：]?\s*(\d{4}[年.\-/]\d{1,2}[月.\-/]?\d{0,2}日?)`)
	githubRe        = regexp.MustCompile(`(?:https?://)?github\.com/[\w.-]+`)
	wechatRe        = regexp.MustCompile(`(?:微信|WeChat|Wechat)\s*(?:号)?\s*[:：]\s*([\w-]{4,30})`)

	// 时间段，如 "2018.09-2022.06" "2020年3月至今" "2019 - present"
	periodRe = regexp.MustCompile(`(?i)\d{4}\s*[年.\-/]?\s*\d{0,2}\s*月?\s*[-–—~〜至到]+\s*(?:\d{4}\s*[年.\-/]?\s*\d{0,2}\s*月?|至今|现在|present|now)`)
	yearRe   = regexp.MustCompile(`(?:19|20)\d{2}`)

	schoolRe  = regexp.MustCompile(`\S{0,12}(?:大学|学院|学校|University|College|Institute)`)
	degreeRe  = regexp.MustCompile(`本科|硕士|博士|专科|学士|研究生|MBA|Bachelor|Master|PhD|Doctor`)
	majorRe   = regexp.MustCompile(`(?:专业\s*[:：]\s*(\S{2,20}))|(\S{2,20})\s*专业`)
	companyRe = regexp.MustCompile(`\S{0,16}(?:公司|集团|银行|研究院|事务所|Inc\.?|Ltd\.?|Corp\.?|LLC|Technologies|Labs)`)
	titleRe   = regexp.MustCompile(`\S{0,8}(?:工程师|开发|架构师|经理|总监|主管|专员|顾问|设计师|分析师|实习生|Engineer|Developer|Manager|Director|Designer|Analyst|Intern)`)
	certRe    = regexp.MustCompile(`\S*(?:证书|资格证|认证|CET-?[46]|PMP|CPA|CFA|Certificate|Certification|Certified)\S*`)
	langRe    = regexp.MustCompile(`普通话|粤语|英语|日语|韩语|法语|德语|西班牙语|Mandarin|English|Japanese|Korean|French|German|Spanish`)
)

// 规则提取内部用的章节词表，比配置里的筛块词表类别更全
func defaultSectionVocab() map[string][]string {
	return map[string][]string{
		"education": {
			"教育", "学历", "教育背景", "education", "academic",
		},
		"experience": {
			"工作经历", "工作经验", "实习经历", "职业经历", "工作", "经历",
			"experience", "employment", "work history",
		},
		"projects": {
			"项目经历", "项目经验", "项目", "projects", "project",
		},
		"skills": {
			"技能", "专业技能", "技术栈", "skills", "skill",
		},
		"certificates": {
			"证书", "资格证书", "certificates", "certifications",
		},
		"languages": {
			"语言能力", "语言", "languages",
		},
		"awards": {
			"获奖", "荣誉", "奖项", "awards", "honors",
		},
		"summary": {
			"自我评价", "个人简介", "个人总结", "简介", "summary", "about",
		},
	}
}

// 不同领域对技能章节的补充叫法
var domainSkillVocab = map[string][]string{
	"IT":        {"开发技能", "技术能力", "tech stack"},
	"design":    {"设计技能", "软件技能", "tools"},
	"finance":   {"专业资质"},
	"marketing": {"营销技能"},
}

// NewRuleExtractor 创建规则提取器
func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{sectionVocab: defaultSectionVocab()}
}

// Extract 对内容块应用有序规则，返回能找到的部分档案
// domain 仅用于扩充章节词表，不参与字段取值
func (r *RuleExtractor) Extract(blocks []types.ContentBlock, domain string) *types.CandidateProfile {
	profile := &types.CandidateProfile{}
	if len(blocks) == 0 {
		return profile
	}

	sections := r.splitSections(blocks, domain)
	fullText := joinBlocks(blocks)

	r.extractBasicInfo(profile, blocks, fullText)
	profile.Education = r.extractEducation(sections["education"])
	profile.Experience = r.extractExperience(sections["experience"])
	profile.Projects = r.extractProjects(sections["projects"])
	profile.Certificates = r.extractCertificates(sections["certificates"], fullText)
	profile.Languages = r.extractLanguages(sections["languages"], fullText)
	profile.Awards = r.extractAwards(sections["awards"])
	profile.Skills = r.extractSkills(sections["skills"])
	profile.Summary = r.extractSummary(sections["summary"])

	return profile
}

// splitSections 按标题块把文档划分为章节，返回 类别 -> 该章节下的内容块
func (r *RuleExtractor) splitSections(blocks []types.ContentBlock, domain string) map[string][]types.ContentBlock {
	skillVocab := append([]string{}, r.sectionVocab["skills"]...)
	skillVocab = append(skillVocab, domainSkillVocab[domain]...)

	sections := make(map[string][]types.ContentBlock)
	current := ""
	for _, b := range blocks {
		if b.Type == types.BlockHeading {
			if cat := r.matchSection(b.Text, skillVocab); cat != "" {
				current = cat
				continue
			}
			// 未识别的标题结束当前章节
			current = ""
			continue
		}
		if current != "" {
			sections[current] = append(sections[current], b)
		}
	}
	return sections
}

// matchSection 判断标题属于哪个章节类别
func (r *RuleExtractor) matchSection(heading string, skillVocab []string) string {
	lower := strings.ToLower(strings.TrimSpace(heading))
	for _, kw := range skillVocab {
		if strings.Contains(lower, kw) {
			return "skills"
		}
	}
	// 遍历顺序固定，保证同一标题总是归入同一类别
	for _, cat := range []string{"education", "experience", "projects", "certificates", "languages", "awards", "summary"} {
		for _, kw := range r.sectionVocab[cat] {
			if strings.Contains(lower, kw) {
				return cat
			}
		}
	}
	return ""
}

// extractBasicInfo 提取姓名与联系方式
func (r *RuleExtractor) extractBasicInfo(profile *types.CandidateProfile, blocks []types.ContentBlock, fullText string) {
	b := &profile.BasicInfo

	if m := labeledNameRe.FindStringSubmatch(fullText); m != nil {
		b.Name = m[1]
	} else {
		b.Name = r.guessNameFromTop(blocks)
	}
	if m := emailRe.FindString(fullText); m != "" {
		b.Email = m
	}
	if m := phoneRe.FindString(fullText); m != "" {
		b.Phone = m
	}
	if m := labeledGenderRe.FindStringSubmatch(fullText); m != nil {
		b.Gender = m[1]
	}
	if m := ageRe.FindStringSubmatch(fullText); m != nil {
		if m[1] != "" {
			b.Age = m[1]
		} else {
			b.Age = m[2]
		}
	}
	if m := birthRe.FindStringSubmatch(fullText); m != nil {
		b.BirthDate = m[1]
	}
	if m := githubRe.FindString(fullText); m != "" {
		b.GitHub = m
	}
	if m := wechatRe.FindStringSubmatch(fullText); m != nil {
		b.Wechat = m[1]
	}
}

// guessNameFromTop 在文档头部寻找像姓名的短块：不含数字、长度2~4个汉字或2~3个拉丁词
func (r *RuleExtractor) guessNameFromTop(blocks []types.ContentBlock) string {
	limit := 3
	if len(blocks) < limit {
		limit = len(blocks)
	}
	for _, b := range blocks[:limit] {
		line := strings.TrimSpace(strings.SplitN(b.Text, "\n", 2)[0])
		if line == "" || r.matchSection(line, r.sectionVocab["skills"]) != "" {
			continue
		}
		if looksLikeCJKName(line) || looksLikeLatinName(line) {
			return line
		}
	}
	return ""
}

func looksLikeCJKName(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 2 || n > 4 {
		return false
	}
	for _, r := range s {
		if !unicode.Is(unicode.Han, r) {
			return false
		}
	}
	return true
}

func looksLikeLatinName(s string) bool {
	words := strings.Fields(s)
	if len(words) < 2 || len(words) > 3 {
		return false
	}
	for _, w := range words {
		for _, r := range w {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}

// extractEducation 从教育章节提取 school/degree/major/period
func (r *RuleExtractor) extractEducation(blocks []types.ContentBlock) []types.Record {
	var records []types.Record
	for _, b := range blocks {
		for _, line := range strings.Split(b.Text, "\n") {
			school := schoolRe.FindString(line)
			period := periodRe.FindString(line)
			if school == "" && period == "" {
				continue
			}
			rec := types.Record{}
			if school != "" {
				rec["school"] = strings.TrimSpace(school)
			}
			if degree := degreeRe.FindString(line); degree != "" {
				rec["degree"] = degree
			}
			if m := majorRe.FindStringSubmatch(line); m != nil {
				if m[1] != "" {
					rec["major"] = m[1]
				} else {
					rec["major"] = m[2]
				}
			}
			if period != "" {
				rec["period"] = normalizeSpaces(period)
			}
			if school == "" && len(records) > 0 {
				// 只含时间段的行补充到上一条
				mergeRecord(records[len(records)-1], rec)
				continue
			}
			records = append(records, rec)
		}
	}
	return records
}

// extractExperience 从工作章节提取 company/title/period
func (r *RuleExtractor) extractExperience(blocks []types.ContentBlock) []types.Record {
	var records []types.Record
	for _, b := range blocks {
		for _, line := range strings.Split(b.Text, "\n") {
			company := companyRe.FindString(line)
			period := periodRe.FindString(line)
			title := titleRe.FindString(line)
			if company == "" && period == "" {
				continue
			}
			rec := types.Record{}
			if company != "" {
				rec["company"] = strings.TrimSpace(company)
			}
			if title != "" {
				rec["title"] = strings.TrimSpace(title)
			}
			if period != "" {
				rec["period"] = normalizeSpaces(period)
			}
			if company == "" && len(records) > 0 {
				mergeRecord(records[len(records)-1], rec)
				continue
			}
			records = append(records, rec)
		}
	}
	return records
}

// extractProjects 从项目章节提取 name/period
func (r *RuleExtractor) extractProjects(blocks []types.ContentBlock) []types.Record {
	var records []types.Record
	for _, b := range blocks {
		lines := strings.Split(b.Text, "\n")
		first := strings.TrimSpace(stripListPrefix(lines[0]))
		if first == "" {
			continue
		}
		rec := types.Record{}
		period := periodRe.FindString(b.Text)
		name := first
		if p := periodRe.FindString(first); p != "" {
			name = strings.TrimSpace(strings.Replace(first, p, "", 1))
		}
		if name != "" {
			rec["name"] = name
		}
		if period != "" {
			rec["period"] = normalizeSpaces(period)
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records
}

// extractCertificates 证书：专用章节逐行提取，没有章节时全篇匹配证书词
func (r *RuleExtractor) extractCertificates(blocks []types.ContentBlock, fullText string) []types.Record {
	var records []types.Record
	if len(blocks) > 0 {
		for _, b := range blocks {
			for _, line := range strings.Split(b.Text, "\n") {
				line = strings.TrimSpace(stripListPrefix(line))
				if line != "" {
					records = append(records, types.Record{"name": line})
				}
			}
		}
		return records
	}
	seen := make(map[string]bool)
	for _, m := range certRe.FindAllString(fullText, -1) {
		if !seen[m] {
			seen[m] = true
			records = append(records, types.Record{"name": m})
		}
	}
	return records
}

// extractLanguages 语言能力
func (r *RuleExtractor) extractLanguages(blocks []types.ContentBlock, fullText string) []types.Record {
	text := fullText
	if len(blocks) > 0 {
		text = joinBlocks(blocks)
	}
	seen := make(map[string]bool)
	var records []types.Record
	for _, m := range langRe.FindAllString(text, -1) {
		if !seen[m] {
			seen[m] = true
			records = append(records, types.Record{"name": m})
		}
	}
	return records
}

// extractAwards 获奖记录，name 为条目行，date 取行内年份
func (r *RuleExtractor) extractAwards(blocks []types.ContentBlock) []types.Record {
	var records []types.Record
	for _, b := range blocks {
		for _, line := range strings.Split(b.Text, "\n") {
			line = strings.TrimSpace(stripListPrefix(line))
			if line == "" {
				continue
			}
			rec := types.Record{"name": line}
			if y := yearRe.FindString(line); y != "" {
				rec["date"] = y
			}
			records = append(records, rec)
		}
	}
	return records
}

// extractSkills 技能章节按分隔符切词，大小写不敏感去重
func (r *RuleExtractor) extractSkills(blocks []types.ContentBlock) []string {
	var skills []string
	seen := make(map[string]bool)
	for _, b := range blocks {
		for _, token := range splitSkillTokens(b.Text) {
			key := strings.ToLower(token)
			if token == "" || seen[key] {
				continue
			}
			seen[key] = true
			skills = append(skills, token)
		}
	}
	return skills
}

// extractSummary 自我评价章节的段落文本
func (r *RuleExtractor) extractSummary(blocks []types.ContentBlock) string {
	var parts []string
	for _, b := range blocks {
		if t := strings.TrimSpace(b.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

var skillSplitRe = regexp.MustCompile(`[、,，;；/|\n]+`)

// splitSkillTokens 切分技能条目并剥掉列表前缀与修饰词
func splitSkillTokens(text string) []string {
	var tokens []string
	for _, part := range skillSplitRe.Split(text, -1) {
		t := strings.TrimSpace(stripListPrefix(part))
		t = strings.TrimLeft(t, "掌握熟悉精通了解 :：")
		t = strings.TrimSpace(t)
		if t == "" || utf8.RuneCountInString(t) > 40 {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// stripListPrefix 去掉列表行的项目符号或序号前缀
func stripListPrefix(line string) string {
	return listPrefixRe.ReplaceAllString(line, "")
}

var multiSpaceRe = regexp.MustCompile(`\s+`)

func normalizeSpaces(s string) string {
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}

// mergeRecord 将 src 中 dst 没有的键补进去
func mergeRecord(dst, src types.Record) {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}

// joinBlocks 按块顺序拼接全文
func joinBlocks(blocks []types.ContentBlock) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(b.Text)
	}
	return sb.String()
}

package analysis

import (
	"fmt"
	"strings"

	"resume-review-go/internal/types"
)

// SynthesizeSuggestions 根据简历文本和外部抽取结果生成建议列表
// 抽取结果中缺失的字段只会让对应规则不触发，不会报错
// 输出去重后按规则顺序排列，最多 MaxSuggestions 条
func SynthesizeSuggestions(resumeText string, extraction *types.ExtractionResult) []string {
	return Inspect(resumeText, extraction).Suggestions()
}

// Suggestions 将信号投影为建议列表
func (s *Signals) Suggestions() []string {
	var out []string
	add := func(format string, args ...any) {
		out = append(out, fmt.Sprintf(format, args...))
	}

	// 1. 技术类实体
	if s.HasEntities && len(s.TechEntities) < minTechEntities {
		examples := missingSkillExamples(s.Skills, exampleSkillCount)
		if len(examples) > 0 {
			add("Only %d technical skills were recognized. Consider adding relevant technologies such as %s.",
				len(s.TechEntities), strings.Join(examples, ", "))
		} else {
			add("Only %d technical skills were recognized. Consider listing the tools and technologies you use in a dedicated skills section.",
				len(s.TechEntities))
		}
	}

	// 2. 组织机构
	if s.HasEntities && len(s.Organizations) < minOrganizations {
		add("Name the companies and organizations you have worked with to give your experience more credibility")
	}

	// 3. 数字/量化成果
	if s.WordCount > 0 {
		if s.NumericMatches < minNumericMatches {
			add(`Add quantified achievements with specific numbers (e.g., "Increased sales by 25%%", "Managed team of 10")`)
		} else {
			add("Good use of metrics! I found %d quantified achievements. Consider adding more specific percentages and dollar amounts.",
				s.NumericMatches)
		}
	}

	// 4. 主题
	if s.HasTopics {
		if len(s.QualifyingTopics) < minQualifyingTopics {
			add("Incorporate more industry-specific terminology so the main themes of your experience stand out")
		} else if s.TopTopic != nil {
			label := strings.ToLower(s.TopTopic.Label)
			switch {
			case strings.Contains(label, "technology"):
				add("Your resume has a strong technology focus. Highlight specific frameworks, tools and technical certifications.")
			case strings.Contains(label, "business"):
				add("Your resume has a strong business focus. Emphasize leadership experience, team management and business impact metrics.")
			default:
				add("Your resume focuses on %s. Make sure to include relevant keywords for this area.", s.TopTopic.Label)
			}
		}
	}

	// 5. 关键词多样性
	if s.HasKeywords && s.KeywordDiversity < minKeywordDiversity {
		add("Vary your keywords: use a wider range of relevant terms and skills instead of repeating the same ones")
	}

	// 6. 情感倾向
	if s.HasSentiment && s.SentimentMean < minSentimentMean {
		add("Use more positive and confident language when describing your accomplishments")
	}

	// 7. 动作动词
	if len(s.ActionVerbsFound) < minActionVerbs {
		add("Start bullet points with strong action verbs such as %s", strings.Join(actionVerbs[:minActionVerbs], ", "))
	}

	// 8-9. 章节
	if !s.HasSummary {
		add("Add a professional summary section at the top of your resume (3-4 sentences highlighting your key qualifications)")
	}
	if !s.HasEducation {
		add("Include an education section with relevant degrees, certifications, and coursework")
	}

	// 10. 联系方式
	if !s.HasEmail {
		add("Make sure a professional email address is clearly visible in your contact information")
	}
	if !s.HasPhone {
		add("Add a phone number to your contact information so recruiters can reach you quickly")
	}

	// 11. 行业定制
	if s.Industry != nil {
		out = append(out, s.Industry.suggestion)
	}

	return capUnique(out, MaxSuggestions)
}

// capUnique 去重 (保留首次出现) 并截断
func capUnique(items []string, limit int) []string {
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, limit)
	for _, item := range items {
		if len(result) == limit {
			break
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}

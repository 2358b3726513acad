package analysis

import (
	"math"
	"strings"

	"resume-review-go/internal/types"
)

const (
	skillBaseConfidence = 0.3
	skillConfidenceStep = 0.2
	skillMaxConfidence  = 0.95

	// entitySkillConfidence 抽取服务识别出的技术实体
	entitySkillConfidence = 0.5
)

// ExtractSkillsByKeyword 按固定技能表匹配文本，置信度 = min(0.3 + 0.2 × 出现次数, 0.95)
// 未命中的技能不输出，顺序与技能表一致
func ExtractSkillsByKeyword(resumeText string) []types.Skill {
	return matchSkills(resumeText)
}

func matchSkills(text string) []types.Skill {
	skills := make([]types.Skill, 0)
	for _, sp := range skillPatterns {
		n := len(sp.pattern.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		skills = append(skills, types.Skill{Name: sp.name, Confidence: skillConfidence(n)})
	}
	return skills
}

// withEntitySkills 关键词技能全部保留，技术实体按名称 (忽略大小写) 去重后追加，直到 maxMergedSkills
func withEntitySkills(keywordSkills []types.Skill, entities []string) []types.Skill {
	out := make([]types.Skill, len(keywordSkills), len(keywordSkills)+len(entities))
	copy(out, keywordSkills)

	seen := make(map[string]bool, cap(out))
	for _, sk := range keywordSkills {
		seen[strings.ToLower(sk.Name)] = true
	}
	for _, name := range entities {
		if len(out) >= maxMergedSkills {
			break
		}
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, types.Skill{Name: name, Confidence: entitySkillConfidence})
	}
	return out
}

func skillConfidence(occurrences int) float64 {
	c := math.Min(skillBaseConfidence+skillConfidenceStep*float64(occurrences), skillMaxConfidence)
	return math.Round(c*100) / 100
}

// missingSkillExamples 返回文本中未出现的前 n 个技能名，用作建议示例
func missingSkillExamples(found []types.Skill, n int) []string {
	have := make(map[string]bool, len(found))
	for _, s := range found {
		have[s.Name] = true
	}
	var names []string
	for _, sp := range skillPatterns {
		if len(names) == n {
			break
		}
		if !have[sp.name] {
			names = append(names, sp.name)
		}
	}
	return names
}

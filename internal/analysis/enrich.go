package analysis

import (
	"strings"

	"resume-review-go/internal/types"
)

const (
	// AIEnhancedStrength 合并生成式结果后追加在最前面的优势条目
	AIEnhancedStrength = "AI-enhanced skill extraction completed"

	aiSkillConfidence = 0.6
	maxMergedSkills   = 10
	maxAIImprovements = 3
)

// Enrich 将已校验的生成式增强内容合并进规则分析结果，返回新的结果
// 规则结果始终保留，enrichment 为空时原样返回副本
func Enrich(result *types.AnalysisResult, enrichment *types.Enrichment) *types.AnalysisResult {
	if result == nil {
		return nil
	}
	merged := *result
	merged.Strengths = cloneStrings(result.Strengths)
	merged.Improvements = cloneStrings(result.Improvements)
	merged.Skills = make([]types.Skill, len(result.Skills))
	copy(merged.Skills, result.Skills)
	merged.InterviewQuestions = cloneStrings(result.InterviewQuestions)

	if enrichment.IsEmpty() {
		return &merged
	}

	merged.Skills = mergeSkills(result.Skills, enrichment.Skills)

	aiImprovements := enrichment.Improvements
	if len(aiImprovements) > maxAIImprovements {
		aiImprovements = aiImprovements[:maxAIImprovements]
	}
	merged.Improvements = dedupeStrings(append(cloneStrings(aiImprovements), result.Improvements...))

	if len(enrichment.InterviewQuestions) > 0 {
		merged.InterviewQuestions = cloneStrings(enrichment.InterviewQuestions)
	}

	merged.Strengths = append([]string{AIEnhancedStrength}, merged.Strengths...)
	return &merged
}

// mergeSkills 关键词技能优先，生成式技能按名称(忽略大小写)去重后追加，固定置信度
func mergeSkills(keywordSkills []types.Skill, aiSkills []string) []types.Skill {
	out := make([]types.Skill, 0, len(keywordSkills)+len(aiSkills))
	seen := make(map[string]bool)
	for _, s := range keywordSkills {
		key := strings.ToLower(s.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	for _, name := range aiSkills {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, types.Skill{Name: strings.TrimSpace(name), Confidence: aiSkillConfidence})
	}
	if len(out) > maxMergedSkills {
		out = out[:maxMergedSkills]
	}
	return out
}

func dedupeStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func cloneStrings(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	return out
}

package analysis

import (
	"resume-review-go/internal/types"
)

// ScoreContent 基于文本规则的累加评分，基础分 50，结果截断到 [0,100]
func ScoreContent(resumeText string) types.ContentScore {
	return Inspect(resumeText, nil).Score()
}

// Analyze 评分结果加上技能列表，有抽取结果时并入技术类实体
func Analyze(resumeText string, extraction *types.ExtractionResult) *types.AnalysisResult {
	s := Inspect(resumeText, extraction)
	score := s.Score()
	skills := withEntitySkills(s.Skills, s.TechEntities)
	return &types.AnalysisResult{
		OverallScore:       score.OverallScore,
		Strengths:          score.Strengths,
		Improvements:       score.Improvements,
		Skills:             skills,
		ATSOptimization:    score.ATSOptimization,
		InterviewQuestions: score.InterviewQuestions,
		SalaryEstimate:     score.SalaryEstimate,
	}
}

// Score 将信号投影为评分结果
func (s *Signals) Score() types.ContentScore {
	score := baseScore
	strengths := make([]string, 0)
	improvements := make([]string, 0)
	atsIssues := make([]string, 0)
	atsRecommendations := make([]string, 0)

	if s.HasContactMarker {
		score += 5
		strengths = append(strengths, "Contact information is clearly provided")
	} else {
		improvements = append(improvements, "Add clear contact information including email")
		atsIssues = append(atsIssues, "Missing contact information")
	}

	if s.HasSummary {
		score += 10
		strengths = append(strengths, "Includes professional summary or objective")
	} else {
		improvements = append(improvements, "Add a compelling professional summary")
		atsIssues = append(atsIssues, "Missing professional summary")
	}

	if s.QuantifiedMatches >= minQuantifiedMatches {
		score += 15
		strengths = append(strengths, "Good use of quantified achievements and metrics")
	} else {
		improvements = append(improvements, "Add more quantified achievements and specific metrics")
	}

	if len(s.ActionVerbsFound) >= minActionVerbs {
		score += 10
		strengths = append(strengths, "Uses strong action verbs effectively")
	} else {
		improvements = append(improvements, "Use more strong action verbs to describe accomplishments")
	}

	if len(s.CommonKeywordsFound) >= minCommonKeywords {
		score += 5
		atsRecommendations = append(atsRecommendations, "Good keyword density for ATS optimization")
	} else {
		atsIssues = append(atsIssues, "Low keyword density - may not pass ATS filters")
		atsRecommendations = append(atsRecommendations, "Include more industry-relevant keywords")
	}

	switch {
	case s.WordCount >= minWordCount && s.WordCount <= maxWordCount:
		score += 5
		strengths = append(strengths, "Appropriate resume length")
	case s.WordCount < minWordCount:
		improvements = append(improvements, "Resume may be too short - add more detail about accomplishments")
	default:
		improvements = append(improvements, "Resume may be too long - focus on most relevant information")
	}

	// 两档加分可叠加，范围 [60,90]
	atsScore := baseATSScore
	if len(atsIssues) == 0 {
		atsScore += 20
	}
	if len(atsIssues) <= 2 {
		atsScore += 10
	}
	atsRecommendations = append(atsRecommendations, defaultATSRecommendations...)

	return types.ContentScore{
		OverallScore: clamp(score, 0, 100),
		Strengths:    strengths,
		Improvements: improvements,
		ATSOptimization: types.ATSOptimization{
			Score:           atsScore,
			Issues:          atsIssues,
			Recommendations: atsRecommendations,
		},
		InterviewQuestions: append([]string(nil), defaultInterviewQuestions...),
		SalaryEstimate: types.SalaryEstimate{
			Min:      defaultSalaryEstimate.min,
			Max:      defaultSalaryEstimate.max,
			Currency: defaultSalaryEstimate.currency,
		},
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

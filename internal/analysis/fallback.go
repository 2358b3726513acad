package analysis

import "resume-review-go/internal/types"

var fallbackSuggestions = []string{
	"Add more quantified achievements with specific numbers and percentages",
	"Include relevant keywords from your target job descriptions",
	"Use strong action verbs to start each bullet point (developed, implemented, managed)",
	"Add a professional summary highlighting your key qualifications",
	"Include technical skills and certifications relevant to your field",
	"Ensure consistent formatting throughout the document",
	"Add specific company names and project details",
	"Include education and relevant coursework",
	"Use industry-specific terminology and acronyms",
	"Optimize for ATS by using standard section headings",
}

// FallbackSuggestions 外部抽取服务失败时使用的固定建议，每次返回新的副本
func FallbackSuggestions() []string {
	out := make([]string, len(fallbackSuggestions))
	copy(out, fallbackSuggestions)
	return out
}

// FallbackAnalysis 分析流程无法完成时返回的固定结果
func FallbackAnalysis() *types.AnalysisResult {
	return &types.AnalysisResult{
		OverallScore: 75,
		Strengths: []string{
			"Resume structure appears professional",
			"Content shows relevant experience",
		},
		Improvements: []string{
			"Consider adding more quantified achievements",
			"Enhance with industry-specific keywords",
		},
		Skills: []types.Skill{
			{Name: "Communication", Confidence: 0.8},
			{Name: "Problem Solving", Confidence: 0.7},
			{Name: "Project Management", Confidence: 0.6},
		},
		ATSOptimization: types.ATSOptimization{
			Score:  70,
			Issues: []string{"Could benefit from more keyword optimization"},
			Recommendations: []string{
				"Use standard section headings",
				"Include more industry keywords",
				"Save as PDF format",
			},
		},
		InterviewQuestions: []string{
			"Tell me about your professional background.",
			"What are your greatest strengths?",
			"How do you handle challenges at work?",
		},
		SalaryEstimate: types.SalaryEstimate{Min: 50000, Max: 80000, Currency: "$"},
	}
}

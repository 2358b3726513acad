package analysis

import "regexp"

// 建议列表与评分两种模式共用的常量表

// MaxSuggestions 建议列表的固定上限
const MaxSuggestions = 10

const (
	minTechEntities      = 5
	minOrganizations     = 2
	minNumericMatches    = 3
	minQualifyingTopics  = 3
	topicScoreThreshold  = 0.5
	minKeywordDiversity  = 0.4
	minSentimentMean     = 0.1
	minActionVerbs       = 4
	minQuantifiedMatches = 3
	minCommonKeywords    = 4
	minWordCount         = 300
	maxWordCount         = 800
	exampleSkillCount    = 3
	baseScore            = 50
	baseATSScore         = 60
)

// techEntityTypes 视为技术类技能的实体类型
var techEntityTypes = []string{"Technology", "Product", "ProgrammingLanguage", "Software"}

const organizationType = "Organization"

// actionVerbs 动作动词表，建议和评分都按此表统计
var actionVerbs = []string{
	"developed", "implemented", "managed", "created",
	"improved", "optimized", "achieved", "collaborated",
	"led", "increased", "reduced",
}

var commonKeywords = []string{"experience", "management", "development", "analysis", "team", "project"}

type skillPattern struct {
	pattern *regexp.Regexp
	name    string
}

// skillPatterns 关键词技能表，输出顺序与表顺序一致
// 短缩写 (js, ts, git) 要求单词边界，避免 "digital" 之类的误匹配
var skillPatterns = []skillPattern{
	{regexp.MustCompile(`(?i)javascript|\bjs\b`), "JavaScript"},
	{regexp.MustCompile(`(?i)typescript|\bts\b`), "TypeScript"},
	{regexp.MustCompile(`(?i)\breact\b`), "React"},
	{regexp.MustCompile(`(?i)python`), "Python"},
	{regexp.MustCompile(`(?i)\bjava\b`), "Java"},
	{regexp.MustCompile(`(?i)sql`), "SQL"},
	{regexp.MustCompile(`(?i)\baws\b|amazon web services`), "AWS"},
	{regexp.MustCompile(`(?i)docker`), "Docker"},
	{regexp.MustCompile(`(?i)kubernetes|\bk8s\b`), "Kubernetes"},
	{regexp.MustCompile(`(?i)\bgit(?:hub|lab)?\b`), "Git"},
	{regexp.MustCompile(`(?i)agile|scrum`), "Agile/Scrum"},
	{regexp.MustCompile(`(?i)project management`), "Project Management"},
	{regexp.MustCompile(`(?i)communication`), "Communication"},
	{regexp.MustCompile(`(?i)leadership`), "Leadership"},
	{regexp.MustCompile(`(?i)analysis|analytical`), "Data Analysis"},
}

type industry struct {
	name       string
	cues       []string
	suggestion string
}

// industries 行业线索表，按表顺序取第一个命中的行业
var industries = []industry{
	{
		name:       "Technology",
		cues:       []string{"technology", "software", "computer", "programming", "engineering"},
		suggestion: "For tech roles: Include GitHub portfolio, technical certifications, and specific frameworks/methodologies",
	},
	{
		name:       "Healthcare",
		cues:       []string{"health", "medic", "clinical", "nursing", "patient"},
		suggestion: "For healthcare roles: List licenses and certifications prominently and describe your clinical experience",
	},
	{
		name:       "Finance",
		cues:       []string{"finance", "financial", "bank", "accounting", "investment"},
		suggestion: "For finance roles: Quantify the budgets, portfolios and cost savings you were responsible for",
	},
	{
		name:       "Marketing",
		cues:       []string{"marketing", "advertising", "brand", "sales"},
		suggestion: "For marketing roles: Showcase campaign results and growth metrics for the channels you owned",
	},
	{
		name:       "Education",
		cues:       []string{"education", "teaching", "school", "curriculum"},
		suggestion: "For education roles: Highlight teaching experience, curriculum development and student outcomes",
	},
}

var (
	// numericPattern 建议模式下的数字匹配，单位可选
	numericPattern = regexp.MustCompile(`(?i)\d+(?:[.,]\d+)*(?:%|k\b|million|thousand|years?|projects?)?`)
	// quantifiedPattern 评分模式下的量化成果匹配，必须带单位，作用于小写文本
	quantifiedPattern = regexp.MustCompile(`\d+(?:[.,]\d+)*\s?(?:%|k\b|million|thousand|years?|projects?)`)
	emailPattern      = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern      = regexp.MustCompile(`(?:\+?\d{1,3}[\s.-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
	actionVerbPattern = buildWordListPattern(actionVerbs)
)

var defaultATSRecommendations = []string{
	"Use standard section headings (Experience, Education, Skills)",
	"Save as PDF to preserve formatting",
	"Include relevant keywords from job descriptions",
}

var defaultInterviewQuestions = []string{
	"Tell me about your most significant professional achievement.",
	"How do you handle challenging situations or tight deadlines?",
	"Describe a time when you had to work with a difficult team member.",
	"What motivates you in your professional career?",
	"Where do you see yourself in the next 5 years?",
}

var defaultSalaryEstimate = struct {
	min, max int
	currency string
}{45000, 85000, "$"}

// buildWordListPattern 构造按单词边界匹配任一词的正则
func buildWordListPattern(words []string) *regexp.Regexp {
	expr := `(?i)\b(?:`
	for i, w := range words {
		if i > 0 {
			expr += "|"
		}
		expr += regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(expr + `)\b`)
}

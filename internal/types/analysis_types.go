package types

// Entity 外部NLP服务识别出的命名实体
type Entity struct {
	ID    string   `json:"entityId"`
	Types []string `json:"type,omitempty"`
}

// HasType 判断实体是否带有给定类型标签
func (e Entity) HasType(tag string) bool {
	for _, t := range e.Types {
		if t == tag {
			return true
		}
	}
	return false
}

// Topic 推断出的主题标签及相关度 (0-1)
type Topic struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Keyword 关键词
type Keyword struct {
	Token string `json:"token"`
}

// SentimentSegment 单个文本片段的情感极性
type SentimentSegment struct {
	Score float64 `json:"score"`
}

// ExtractionResult 外部语义分析服务的结构化输出
// 所有字段都可以缺失，nil 切片视为空序列
type ExtractionResult struct {
	Entities  []Entity           `json:"entities,omitempty"`
	Topics    []Topic            `json:"topics,omitempty"`
	Keywords  []Keyword          `json:"keywords,omitempty"`
	Sentiment []SentimentSegment `json:"sentiment,omitempty"`
}

// Skill 识别出的技能及置信度
type Skill struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// ATSOptimization ATS (简历筛选系统) 兼容性评估
type ATSOptimization struct {
	Score           int      `json:"score"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// SalaryEstimate 薪资估算区间
type SalaryEstimate struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Currency string `json:"currency"`
}

// ContentScore 规则评分结果 (不含技能列表)
type ContentScore struct {
	OverallScore       int             `json:"overallScore"`
	Strengths          []string        `json:"strengths"`
	Improvements       []string        `json:"improvements"`
	ATSOptimization    ATSOptimization `json:"atsOptimization"`
	InterviewQuestions []string        `json:"interviewQuestions"`
	SalaryEstimate     SalaryEstimate  `json:"salaryEstimate"`
}

// AnalysisResult 评分模式下的完整分析结果，字段名与前端渲染约定一致
type AnalysisResult struct {
	OverallScore       int             `json:"overallScore"`
	Strengths          []string        `json:"strengths"`
	Improvements       []string        `json:"improvements"`
	Skills             []Skill         `json:"skills"`
	ATSOptimization    ATSOptimization `json:"atsOptimization"`
	InterviewQuestions []string        `json:"interviewQuestions"`
	SalaryEstimate     SalaryEstimate  `json:"salaryEstimate"`
}

// SuggestionResponse 建议列表模式的响应
type SuggestionResponse struct {
	Suggestions []string `json:"suggestions"`
}

// Enrichment 生成式模型返回并经过校验的增强内容
type Enrichment struct {
	Skills             []string `json:"skills"`
	Improvements       []string `json:"improvements"`
	InterviewQuestions []string `json:"interview_questions"`
}

// IsEmpty 判断增强内容是否没有任何可用条目
func (e *Enrichment) IsEmpty() bool {
	return e == nil || (len(e.Skills) == 0 && len(e.Improvements) == 0 && len(e.InterviewQuestions) == 0)
}

// ResumeTextRequest 分析接口的请求体
type ResumeTextRequest struct {
	ResumeText string `json:"resumeText"`
}

// ExtractTextResponse 上传文件文本提取接口的响应
type ExtractTextResponse struct {
	Text     string `json:"text"`
	FileName string `json:"fileName,omitempty"`
	Length   int    `json:"length"`
}

package analysis

import (
	"math"
	"strings"

	"resume-review-go/internal/types"
)

// Signals 一次计算得到的全部文本/抽取信号
// 建议列表和评分结果都从同一个 Signals 投影出来
type Signals struct {
	WordCount int

	HasContactMarker bool // 包含 "@" 或 "email"
	HasEmail         bool
	HasPhone         bool
	HasSummary       bool // 包含 "summary" 或 "objective"
	HasEducation     bool

	NumericMatches    int
	QuantifiedMatches int

	ActionVerbsFound    []string // 按表顺序
	CommonKeywordsFound []string

	// 以下字段依赖外部抽取结果，Has* 为 false 时对应规则不触发
	HasEntities      bool
	TechEntities     []string
	Organizations    []string
	HasTopics        bool
	QualifyingTopics []types.Topic // score > 0.5
	TopTopic         *types.Topic
	HasKeywords      bool
	KeywordDiversity float64
	HasSentiment     bool
	SentimentMean    float64
	Industry         *industry

	Skills []types.Skill
}

// Inspect 计算文本和抽取结果的全部信号，extraction 可以为 nil
func Inspect(resumeText string, extraction *types.ExtractionResult) *Signals {
	if extraction == nil {
		extraction = &types.ExtractionResult{}
	}
	lower := strings.ToLower(resumeText)

	s := &Signals{
		WordCount:         len(strings.Fields(resumeText)),
		HasContactMarker:  strings.Contains(lower, "@") || strings.Contains(lower, "email"),
		HasEmail:          emailPattern.MatchString(resumeText),
		HasPhone:          phonePattern.MatchString(resumeText),
		HasSummary:        strings.Contains(lower, "summary") || strings.Contains(lower, "objective"),
		HasEducation:      strings.Contains(lower, "education"),
		NumericMatches:    len(numericPattern.FindAllString(resumeText, -1)),
		QuantifiedMatches: len(quantifiedPattern.FindAllString(lower, -1)),
		Skills:            matchSkills(resumeText),
	}

	s.ActionVerbsFound = foundActionVerbs(resumeText)
	for _, kw := range commonKeywords {
		if strings.Contains(lower, kw) {
			s.CommonKeywordsFound = append(s.CommonKeywordsFound, kw)
		}
	}

	s.inspectEntities(extraction.Entities)
	s.inspectTopics(extraction.Topics)
	s.inspectKeywords(extraction.Keywords)
	s.inspectSentiment(extraction.Sentiment)

	return s
}

func foundActionVerbs(text string) []string {
	seen := make(map[string]bool)
	for _, m := range actionVerbPattern.FindAllString(text, -1) {
		seen[strings.ToLower(m)] = true
	}
	var found []string
	for _, v := range actionVerbs {
		if seen[v] {
			found = append(found, v)
		}
	}
	return found
}

func (s *Signals) inspectEntities(entities []types.Entity) {
	if len(entities) == 0 {
		return
	}
	s.HasEntities = true
	for _, e := range entities {
		if isTechEntity(e) {
			s.TechEntities = append(s.TechEntities, e.ID)
		}
		if e.HasType(organizationType) {
			s.Organizations = append(s.Organizations, e.ID)
		}
	}
}

func isTechEntity(e types.Entity) bool {
	for _, t := range techEntityTypes {
		if e.HasType(t) {
			return true
		}
	}
	return false
}

func (s *Signals) inspectTopics(topics []types.Topic) {
	if len(topics) == 0 {
		return
	}
	s.HasTopics = true
	for _, t := range topics {
		if t.Score > topicScoreThreshold {
			s.QualifyingTopics = append(s.QualifyingTopics, t)
		}
	}
	// 分数最高者为首要主题，分数相同取先出现的
	for i := range s.QualifyingTopics {
		if s.TopTopic == nil || s.QualifyingTopics[i].Score > s.TopTopic.Score {
			s.TopTopic = &s.QualifyingTopics[i]
		}
	}
	s.Industry = matchIndustry(topics)
}

func matchIndustry(topics []types.Topic) *industry {
	for i := range industries {
		for _, t := range topics {
			label := strings.ToLower(t.Label)
			for _, cue := range industries[i].cues {
				if strings.Contains(label, cue) {
					return &industries[i]
				}
			}
		}
	}
	return nil
}

func (s *Signals) inspectKeywords(keywords []types.Keyword) {
	if len(keywords) == 0 || s.WordCount == 0 {
		return
	}
	s.HasKeywords = true
	distinct := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		token := strings.ToLower(strings.TrimSpace(k.Token))
		if token != "" {
			distinct[token] = struct{}{}
		}
	}
	s.KeywordDiversity = float64(len(distinct)) / float64(s.WordCount)
}

func (s *Signals) inspectSentiment(segments []types.SentimentSegment) {
	if len(segments) == 0 {
		return
	}
	s.HasSentiment = true
	var sum float64
	for _, seg := range segments {
		sum += seg.Score
	}
	s.SentimentMean = sum / float64(len(segments))
	if math.IsNaN(s.SentimentMean) {
		s.SentimentMean = 0
	}
}

// Package advisor 调用生成式模型为规则分析结果补充技能、改进建议和面试问题
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-review-go/internal/logger"
	"resume-review-go/internal/tracing"
	"resume-review-go/internal/types"
	"resume-review-go/pkg/utils"
)

const (
	// 只把简历开头的这部分内容发给模型
	maxPromptRunes = 1000

	maxSkills       = 10
	maxImprovements = 3
	maxQuestions    = 3

	maxSkillRunes    = 60
	maxSentenceRunes = 300
	minQuestionRunes = 11
)

var (
	// ErrNoJSON 模型输出中找不到 JSON 对象
	ErrNoJSON = errors.New("advisor: 模型输出中没有 JSON 对象")
	// ErrSchemaMismatch 输出不符合约定的结构
	ErrSchemaMismatch = errors.New("advisor: 模型输出不符合 schema")
	// ErrNoUsableOutput 清洗后没有可用内容
	ErrNoUsableOutput = errors.New("advisor: 模型输出没有可用内容")
)

var tracer = otel.Tracer("resume-review-go/advisor")

const systemPrompt = `You are an experienced technical recruiter reviewing a resume.
Respond with a single JSON object and nothing else, using exactly this shape:
{"skills": ["..."], "improvements": ["..."], "interview_questions": ["..."]}
- skills: up to 10 concrete professional skills the candidate demonstrates
- improvements: up to 3 specific, actionable improvements to the resume
- interview_questions: up to 3 interview questions tailored to this candidate`

const enrichmentSchema = `{
  "type": "object",
  "properties": {
    "skills": {"type": "array", "items": {"type": "string"}},
    "improvements": {"type": "array", "items": {"type": "string"}},
    "interview_questions": {"type": "array", "items": {"type": "string"}}
  },
  "anyOf": [
    {"required": ["skills"]},
    {"required": ["improvements"]},
    {"required": ["interview_questions"]}
  ]
}`

var schemaLoader = gojsonschema.NewStringLoader(enrichmentSchema)

// LLMAdvisor 基于 eino 聊天模型的增强器
type LLMAdvisor struct {
	model   model.BaseChatModel
	timeout time.Duration
}

// NewLLMAdvisor timeout <= 0 时不额外限制调用时长
func NewLLMAdvisor(m model.BaseChatModel, timeout time.Duration) (*LLMAdvisor, error) {
	if m == nil {
		return nil, fmt.Errorf("advisor: 聊天模型不能为空")
	}
	return &LLMAdvisor{model: m, timeout: timeout}, nil
}

// Advise 请求模型生成增强内容，返回已校验和清洗过的结果
func (a *LLMAdvisor) Advise(ctx context.Context, resumeText string) (*types.Enrichment, error) {
	ctx, span := tracer.Start(ctx, "Advisor.Advise")
	defer span.End()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	excerpt := utils.TruncateRunes(strings.TrimSpace(resumeText), maxPromptRunes)
	span.SetAttributes(attribute.Int("advisor.prompt_runes", utf8.RuneCountInString(excerpt)))

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("Resume:\n" + excerpt),
	}

	start := time.Now()
	resp, err := a.model.Generate(ctx, messages)
	if err != nil {
		tracing.RecordError(span, err, tracing.ClassifyError(err, tracing.ErrorTypeLLM))
		return nil, fmt.Errorf("advisor: 调用模型失败: %w", err)
	}

	enrichment, err := ParseEnrichment(resp.Content)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		logger.Ctx(ctx).Warn().
			Err(err).
			Int("response_len", len(resp.Content)).
			Msg("模型输出校验失败")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("advisor.skills", len(enrichment.Skills)),
		attribute.Int("advisor.improvements", len(enrichment.Improvements)),
		attribute.Int("advisor.questions", len(enrichment.InterviewQuestions)),
	)
	logger.Ctx(ctx).Debug().
		Dur("latency", time.Since(start)).
		Int("skills", len(enrichment.Skills)).
		Msg("模型增强完成")
	return enrichment, nil
}

// ParseEnrichment 从模型原始输出中提取、校验并清洗增强内容
func ParseEnrichment(raw string) (*types.Enrichment, error) {
	jsonText := extractJSONObject(utils.SanitizeUTF8(raw))
	if jsonText == "" {
		return nil, ErrNoJSON
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(jsonText))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(msgs, "; "))
	}

	var e types.Enrichment
	if err := json.Unmarshal([]byte(jsonText), &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}

	cleaned := &types.Enrichment{
		Skills:             sanitizeList(e.Skills, 1, maxSkillRunes, maxSkills),
		Improvements:       sanitizeList(e.Improvements, 1, maxSentenceRunes, maxImprovements),
		InterviewQuestions: sanitizeList(e.InterviewQuestions, minQuestionRunes, maxSentenceRunes, maxQuestions),
	}
	if cleaned.IsEmpty() {
		return nil, ErrNoUsableOutput
	}
	return cleaned, nil
}

// sanitizeList 去空白、按长度过滤、忽略大小写去重，最多保留 limit 条
func sanitizeList(items []string, minRunes, maxRunes, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		s := strings.Join(strings.Fields(item), " ")
		n := utf8.RuneCountInString(s)
		if n < minRunes || n > maxRunes {
			continue
		}
		k := strings.ToLower(s)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

// extractJSONObject 返回第一个括号配平的 JSON 对象，字符串内的括号不计入
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	level := 0
	inStr := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			level++
		case '}':
			level--
			if level == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

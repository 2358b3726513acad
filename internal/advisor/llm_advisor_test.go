package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-review-go/pkg/agent"
)

func TestExtractJSONObject(t *testing.T) {
	cases := map[string]string{
		`noise {"a": 1} trailing`:              `{"a": 1}`,
		"```json\n{\"a\": {\"b\": 2}}\n```":    `{"a": {"b": 2}}`,
		`{"q": "what about } braces?"} extra}`: `{"q": "what about } braces?"}`,
		`{"q": "esc \" quote {"}`:              `{"q": "esc \" quote {"}`,
		`no json here`:                         ``,
		`{"unterminated": true`:                ``,
	}
	for in, want := range cases {
		assert.Equal(t, want, extractJSONObject(in), "输入: %s", in)
	}
}

func TestParseEnrichment_Sanitizes(t *testing.T) {
	raw := `Here you go:
{"skills": [" Go ", "go", "", "Distributed   Systems", "Kafka", "a", "b", "c", "d", "e", "f", "g", "h"],
 "improvements": ["Quantify impact", "Quantify impact", "Add links", "Shorten summary", "Fourth"],
 "interview_questions": ["Why?", "Describe a production incident you resolved.", "How do you test concurrent code?"]}`

	e, err := ParseEnrichment(raw)
	require.NoError(t, err)

	assert.Len(t, e.Skills, 10)
	assert.Equal(t, []string{"Go", "Distributed Systems", "Kafka"}, e.Skills[:3])
	assert.Equal(t, []string{"Quantify impact", "Add links", "Shorten summary"}, e.Improvements)
	assert.Equal(t, []string{"Describe a production incident you resolved.", "How do you test concurrent code?"}, e.InterviewQuestions, "过短的问题被丢弃")
}

func TestParseEnrichment_Rejects(t *testing.T) {
	_, err := ParseEnrichment("I cannot help with that")
	assert.ErrorIs(t, err, ErrNoJSON)

	_, err = ParseEnrichment(`{"skills": "Go"}`)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = ParseEnrichment(`{"unrelated": true}`)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = ParseEnrichment(`{"skills": [1, 2]}`)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = ParseEnrichment(`{"skills": ["  "], "interview_questions": ["short"]}`)
	assert.ErrorIs(t, err, ErrNoUsableOutput)
}

func TestLLMAdvisor_Advise(t *testing.T) {
	mock := agent.NewMockChatClient(`{"skills": ["Go"], "improvements": [], "interview_questions": []}`, nil)
	a, err := NewLLMAdvisor(mock, time.Second)
	require.NoError(t, err)

	long := make([]rune, 3000)
	for i := range long {
		long[i] = 'x'
	}
	e, err := a.Advise(context.Background(), string(long))
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, e.Skills)

	msgs := mock.GetReceivedMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, "Resume:\n"+string(long[:maxPromptRunes]), msgs[1].Content, "只发送前 1000 个字符")
}

func TestLLMAdvisor_ModelError(t *testing.T) {
	a, err := NewLLMAdvisor(agent.NewMockChatClient("", errors.New("boom")), 0)
	require.NoError(t, err)

	_, err = a.Advise(context.Background(), "resume")
	assert.Error(t, err)

	_, err = NewLLMAdvisor(nil, 0)
	assert.Error(t, err)
}

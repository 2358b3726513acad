package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAICompatibleChatModel_RequiresKey(t *testing.T) {
	_, err := NewOpenAICompatibleChatModel(ChatModelConfig{})
	assert.Error(t, err)
}

func TestOpenAICompatibleChatModel_Generate(t *testing.T) {
	var received chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","model":"qwen-turbo","choices":[{"index":0,"message":{"role":"assistant","content":"{\"skills\":[\"Go\"]}"},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer srv.Close()

	m, err := NewOpenAICompatibleChatModel(ChatModelConfig{
		APIKey:      "test-key",
		APIURL:      srv.URL,
		Temperature: 0.2,
		MaxTokens:   100,
		Timeout:     5 * time.Second,
		JSONMode:    true,
	})
	require.NoError(t, err)

	msg, err := m.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("system"),
		schema.UserMessage("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"skills":["Go"]}`, msg.Content)
	assert.Equal(t, schema.Assistant, msg.Role)
	require.NotNil(t, msg.ResponseMeta)
	assert.Equal(t, 15, msg.ResponseMeta.Usage.TotalTokens)

	assert.Equal(t, "qwen-turbo", received.Model)
	require.Len(t, received.Messages, 2)
	assert.Equal(t, "user", received.Messages[1].Role)
	assert.Equal(t, 100, received.MaxTokens)
	require.NotNil(t, received.ResponseFormat)
	assert.Equal(t, "json_object", received.ResponseFormat.Type)
}

func TestOpenAICompatibleChatModel_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer srv.Close()

	m, err := NewOpenAICompatibleChatModel(ChatModelConfig{APIKey: "k", APIURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.True(t, apiErr.Retryable())
}

func TestMockChatClientSequential(t *testing.T) {
	m := NewMockChatClientSequential([]MockResponse{
		{Error: errors.New("timeout")},
		{Content: "ok"},
	})

	_, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("a")})
	assert.Error(t, err)
	msg, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("b")})
	require.NoError(t, err)
	assert.Equal(t, "ok", msg.Content)
	_, err = m.Generate(context.Background(), nil)
	assert.Error(t, err, "响应用尽后返回错误")

	assert.Equal(t, 3, m.CallCount())
	assert.Len(t, m.GetReceivedMessages(), 2)
}

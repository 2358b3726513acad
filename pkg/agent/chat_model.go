package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"resume-review-go/internal/logger"
	"resume-review-go/internal/tracing"
)

const (
	// OpenAI 兼容接口的默认地址 (DashScope)
	defaultChatAPIURL   = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	defaultChatModel    = "qwen-turbo"
	defaultChatTimeout  = 20 * time.Second
	maxErrorBodyPreview = 300
)

// ChatModelConfig OpenAI 兼容聊天模型的参数
type ChatModelConfig struct {
	APIKey      string
	APIURL      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	// JSONMode 为 true 时请求 response_format=json_object
	JSONMode bool
}

// OpenAICompatibleChatModel 实现 model.ToolCallingChatModel，只支持非流式的 Generate
type OpenAICompatibleChatModel struct {
	cfg        ChatModelConfig
	httpClient *client.Client
	tools      []*schema.ToolInfo
}

// NewOpenAICompatibleChatModel 创建聊天模型客户端
func NewOpenAICompatibleChatModel(cfg ChatModelConfig) (*OpenAICompatibleChatModel, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultChatModel
	}
	if strings.TrimSpace(cfg.APIURL) == "" {
		cfg.APIURL = defaultChatAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultChatTimeout
	}

	c, err := client.NewClient(client.WithDialTimeout(5 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 客户端失败: %w", err)
	}
	c.Use(tracing.ClientMiddleware())

	logger.Info().Str("api_url", cfg.APIURL).Str("model", cfg.Model).Msg("初始化 OpenAI 兼容聊天模型")

	return &OpenAICompatibleChatModel{cfg: cfg, httpClient: c}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// APIError 模型接口返回的非 2xx 响应
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("聊天接口请求失败，状态码 %d: %s", e.StatusCode, e.Body)
}

// Retryable 429 和 5xx 值得重试
func (e *APIError) Retryable() bool {
	return e.StatusCode == consts.StatusTooManyRequests || e.StatusCode >= 500
}

func (m *OpenAICompatibleChatModel) buildRequest(messages []*schema.Message, opts *model.Options) chatCompletionRequest {
	req := chatCompletionRequest{
		Model:     m.cfg.Model,
		Messages:  make([]chatMessage, 0, len(messages)),
		MaxTokens: m.cfg.MaxTokens,
	}
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		req.Messages = append(req.Messages, chatMessage{Role: string(msg.Role), Content: msg.Content})
	}

	temperature := m.cfg.Temperature
	req.Temperature = &temperature
	if opts.Temperature != nil {
		t := float64(*opts.Temperature)
		req.Temperature = &t
	}
	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}
	if opts.Model != nil && *opts.Model != "" {
		req.Model = *opts.Model
	}
	if m.cfg.JSONMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return req
}

// Generate 调用 chat/completions 并返回第一个 choice
func (m *OpenAICompatibleChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{}, opts...)
	payload, err := json.Marshal(m.buildRequest(messages, options))
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetRequestURI(m.cfg.APIURL)
	req.SetMethod(consts.MethodPost)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	req.SetBody(payload)

	timeout := m.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	start := time.Now()
	if err := m.httpClient.DoTimeout(ctx, req, resp, timeout); err != nil {
		return nil, fmt.Errorf("发送聊天请求失败: %w", err)
	}

	body := append([]byte(nil), resp.Body()...)
	status := resp.StatusCode()
	logger.Ctx(ctx).Debug().
		Int("status", status).
		Dur("latency", time.Since(start)).
		Int("body_len", len(body)).
		Msg("聊天接口响应")

	if status < 200 || status >= 300 {
		return nil, &APIError{StatusCode: status, Body: preview(body)}
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("反序列化聊天响应失败: %w", err)
	}
	if completion.Error != nil {
		return nil, fmt.Errorf("聊天接口返回错误 %s: %s", completion.Error.Code, completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("聊天接口返回空 choices: %s", preview(body))
	}

	choice := completion.Choices[0].Message
	content := ""
	if choice.Content != nil {
		content = *choice.Content
	}
	out := schema.AssistantMessage(content, nil)
	out.ResponseMeta = &schema.ResponseMeta{
		FinishReason: completion.Choices[0].FinishReason,
		Usage: &schema.TokenUsage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
			TotalTokens:      completion.Usage.TotalTokens,
		},
	}
	return out, nil
}

// Stream 未实现
func (m *OpenAICompatibleChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("OpenAICompatibleChatModel 不支持 Stream")
}

// WithTools 返回绑定了工具的副本。请求中不会携带工具定义，简历增强只需要纯文本输出
func (m *OpenAICompatibleChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	cp := *m
	cp.tools = append([]*schema.ToolInfo(nil), tools...)
	return &cp, nil
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > maxErrorBodyPreview {
		return s[:maxErrorBodyPreview] + "..."
	}
	return s
}

var _ model.ToolCallingChatModel = (*OpenAICompatibleChatModel)(nil)

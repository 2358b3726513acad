// Package textrazor 封装 TextRazor 实体/主题/关键词抽取接口
package textrazor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-review-go/internal/config"
	"resume-review-go/internal/logger"
	"resume-review-go/internal/tracing"
	"resume-review-go/internal/types"
)

const (
	defaultAPIURL     = "https://api.textrazor.com/"
	defaultExtractors = "entities,topics,keywords"
	defaultLanguage   = "eng"
	apiKeyHeader      = "x-textrazor-key"
	maxBodyPreview    = 300
)

// ErrMissingAPIKey 未配置 API Key
var ErrMissingAPIKey = errors.New("textrazor: 未配置 API Key")

var tracer = otel.Tracer("resume-review-go/textrazor")

// APIError TextRazor 返回的非 200 响应
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("textrazor: 请求失败，状态码 %d: %s", e.StatusCode, e.Body)
}

// Retryable 限流和服务端错误可以重试
func (e *APIError) Retryable() bool {
	return e.StatusCode == consts.StatusTooManyRequests || e.StatusCode >= 500
}

// Client TextRazor 客户端
type Client struct {
	apiKey     string
	apiURL     string
	extractors string
	language   string
	timeout    time.Duration
	httpClient *client.Client
}

// NewClient 根据配置创建客户端
func NewClient(cfg config.TextRazorConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	c, err := client.NewClient(client.WithDialTimeout(5 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("textrazor: 创建 HTTP 客户端失败: %w", err)
	}
	c.Use(tracing.ClientMiddleware())

	tc := &Client{
		apiKey:     cfg.APIKey,
		apiURL:     cfg.APIURL,
		extractors: cfg.Extractors,
		language:   cfg.Language,
		timeout:    cfg.Timeout(),
		httpClient: c,
	}
	if tc.apiURL == "" {
		tc.apiURL = defaultAPIURL
	}
	if strings.TrimSpace(tc.extractors) == "" {
		tc.extractors = defaultExtractors
	}
	if tc.language == "" {
		tc.language = defaultLanguage
	}
	return tc, nil
}

// apiResponse 只解析用得到的字段，words/sentences 等忽略
type apiResponse struct {
	OK       *bool  `json:"ok,omitempty"`
	Error    string `json:"error,omitempty"`
	Response struct {
		Entities  []types.Entity           `json:"entities"`
		Topics    []types.Topic            `json:"topics"`
		Keywords  []types.Keyword          `json:"keywords"`
		Sentiment []types.SentimentSegment `json:"sentiment"`
	} `json:"response"`
}

// Extract 调用抽取接口。返回值中缺失的部分为 nil 切片
func (c *Client) Extract(ctx context.Context, text string) (*types.ExtractionResult, error) {
	ctx, span := tracer.Start(ctx, "TextRazor.Extract", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.Int("resume.length", len(text)),
		attribute.String("textrazor.extractors", c.extractors),
	)

	form := url.Values{}
	form.Set("text", text)
	form.Set("extractors", c.extractors)
	form.Set("languageOverride", c.language)

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetRequestURI(c.apiURL)
	req.SetMethod(consts.MethodPost)
	req.Header.SetContentTypeBytes([]byte("application/x-www-form-urlencoded"))
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.SetBodyString(form.Encode())

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		tracing.RecordError(span, context.DeadlineExceeded, tracing.ErrorTypeTimeout)
		return nil, context.DeadlineExceeded
	}

	start := time.Now()
	if err := c.httpClient.DoTimeout(ctx, req, resp, timeout); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return nil, fmt.Errorf("textrazor: 请求发送失败: %w", err)
	}

	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)
	span.SetAttributes(attribute.Int("http.status_code", status))

	if status != consts.StatusOK {
		apiErr := &APIError{StatusCode: status, Body: tracing.TruncateString(string(body), maxBodyPreview)}
		tracing.RecordHTTPError(span, apiErr, status)
		return nil, apiErr
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return nil, fmt.Errorf("textrazor: 解析响应失败: %w", err)
	}
	if parsed.OK != nil && !*parsed.OK {
		err := fmt.Errorf("textrazor: 接口返回错误: %s", parsed.Error)
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return nil, err
	}

	result := &types.ExtractionResult{
		Entities:  parsed.Response.Entities,
		Topics:    parsed.Response.Topics,
		Keywords:  parsed.Response.Keywords,
		Sentiment: parsed.Response.Sentiment,
	}
	span.SetAttributes(
		attribute.Int("textrazor.entities", len(result.Entities)),
		attribute.Int("textrazor.topics", len(result.Topics)),
		attribute.Int("textrazor.keywords", len(result.Keywords)),
	)
	logger.Ctx(ctx).Debug().
		Dur("latency", time.Since(start)).
		Int("entities", len(result.Entities)).
		Int("topics", len(result.Topics)).
		Int("keywords", len(result.Keywords)).
		Msg("TextRazor 抽取完成")

	return result, nil
}

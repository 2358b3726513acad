package ratelimit

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"resume-review-go/internal/logger"
)

// RateLimitedChatModel 给聊天模型加上令牌桶限流，Generate 失败时按退避策略重试
type RateLimitedChatModel struct {
	inner   model.ToolCallingChatModel
	limiter *TokenBucket
}

// NewChatModelWithRateLimit 桶容量为 QPM 的一半，非法参数取默认值
func NewChatModelWithRateLimit(inner model.ToolCallingChatModel, qpm int, maxRetries int, retryWaitTime time.Duration) *RateLimitedChatModel {
	if qpm <= 0 {
		qpm = 30
	}
	if retryWaitTime <= 0 {
		retryWaitTime = time.Second
	}
	return &RateLimitedChatModel{
		inner:   inner,
		limiter: NewTokenBucket(qpm, qpm/2).WithRetryPolicy(retryWaitTime, maxRetries),
	}
}

func (m *RateLimitedChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	var resp *schema.Message
	attempts := 0
	err := m.limiter.RetryWithBackoff(ctx, func() error {
		attempts++
		var genErr error
		resp, genErr = m.inner.Generate(ctx, messages, options...)
		return genErr
	})
	if err != nil {
		logger.Ctx(ctx).Warn().
			Err(err).
			Int("attempts", attempts).
			Int("max_retries", m.limiter.MaxRetries()).
			Msg("模型调用失败")
		return nil, err
	}
	if attempts > 1 {
		logger.Ctx(ctx).Debug().Int("attempts", attempts).Msg("模型调用重试后成功")
	}
	return resp, nil
}

// Stream 只限流不重试，已经开始的流无法安全重放
func (m *RateLimitedChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return m.inner.Stream(ctx, messages, options...)
}

// WithTools 新模型共享同一个令牌桶
func (m *RateLimitedChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	inner, err := m.inner.WithTools(tools)
	if err != nil {
		return nil, err
	}
	return &RateLimitedChatModel{inner: inner, limiter: m.limiter}, nil
}

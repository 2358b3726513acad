package ratelimit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// TokenBucket 令牌桶限流器，附带指数退避重试
type TokenBucket struct {
	rate           float64 // 每秒生成的令牌数
	capacity       float64
	tokens         float64
	lastRefillTime time.Time
	mutex          sync.Mutex
	retryWaitTime  time.Duration
	maxRetries     int
	now            func() time.Time
}

// Retryable 由调用方的错误类型实现，显式声明是否值得重试
type Retryable interface {
	Retryable() bool
}

// NewTokenBucket 创建令牌桶，capacity <= 0 时取 QPM 的一半
func NewTokenBucket(qpm int, capacity int) *TokenBucket {
	if qpm <= 0 {
		qpm = 30
	}
	if capacity <= 0 {
		capacity = qpm / 2
		if capacity <= 0 {
			capacity = 1
		}
	}

	return &TokenBucket{
		rate:           float64(qpm) / 60.0,
		capacity:       float64(capacity),
		tokens:         float64(capacity), // 初始填满
		lastRefillTime: time.Now(),
		retryWaitTime:  1 * time.Second,
		maxRetries:     3,
		now:            time.Now,
	}
}

// WithRetryPolicy 设置重试策略，maxRetries 为 0 表示不重试
func (tb *TokenBucket) WithRetryPolicy(waitTime time.Duration, maxRetries int) *TokenBucket {
	if maxRetries < 0 {
		maxRetries = 0
	}
	tb.retryWaitTime = waitTime
	tb.maxRetries = maxRetries
	return tb
}

// MaxRetries 当前的最大重试次数
func (tb *TokenBucket) MaxRetries() int {
	return tb.maxRetries
}

func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefillTime).Seconds()
	tb.lastRefillTime = now

	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
}

// take 尝试取一个令牌，失败时返回还需等待的时间
func (tb *TokenBucket) take() (time.Duration, bool) {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		tb.tokens--
		return 0, true
	}
	return time.Duration((1.0 - tb.tokens) / tb.rate * float64(time.Second)), false
}

// Allow 非阻塞地尝试消耗一个令牌
func (tb *TokenBucket) Allow() bool {
	_, ok := tb.take()
	return ok
}

// Wait 阻塞直到拿到令牌或 ctx 结束
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		wait, ok := tb.take()
		if ok {
			return nil
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// RetryWithBackoff 每次尝试前先取令牌，可重试错误按 retryWaitTime*2^n 退避
func (tb *TokenBucket) RetryWithBackoff(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = tb.Wait(ctx); err != nil {
			return err
		}
		if err = fn(); err == nil {
			return nil
		}
		if attempt >= tb.maxRetries || !IsRetryableError(err) {
			return err
		}
		if sleepErr := sleep(ctx, tb.retryWaitTime<<uint(attempt)); sleepErr != nil {
			return sleepErr
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryableMessages 未实现 Retryable 的错误按消息片段判断
var retryableMessages = []string{
	"timeout",
	"deadline exceeded",
	"connection reset",
	"connection refused",
	"EOF",
	"no such host",
	"429",
	"rate limit",
	"Too Many Requests",
}

// IsRetryableError 判断错误是否可重试，实现了 Retryable 的错误以其声明为准
func IsRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var r Retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}

	msg := err.Error()
	for _, fragment := range retryableMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

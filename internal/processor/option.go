package processor

import (
	"time"

	"github.com/rs/zerolog"
)

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// ----- 组件选项 -----

// BuildComponents 依次应用组件选项
func BuildComponents(opts ...ComponentOpt) *Components {
	c := &Components{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithcompExtractor 设置语义抽取组件
func WithcompExtractor(e Extractor) ComponentOpt {
	return func(c *Components) {
		c.Extractor = e
	}
}

// WithcompAdvisor 设置模型增强组件，nil 表示不启用
func WithcompAdvisor(a Advisor) ComponentOpt {
	return func(c *Components) {
		c.Advisor = a
	}
}

// WithcompCache 设置抽取结果缓存
func WithcompCache(cache ExtractionCache) ComponentOpt {
	return func(c *Components) {
		c.Cache = cache
	}
}

// WithcompTextExtractor 设置上传文件的文本提取器
func WithcompTextExtractor(t TextExtractor) ComponentOpt {
	return func(c *Components) {
		c.TextExtractor = t
	}
}

// ----- 设置选项 -----

// WithsetExtractorLimit 抽取服务的 QPM 和重试策略
func WithsetExtractorLimit(qpm, maxRetries int, retryWait time.Duration) SettingOpt {
	return func(s *Settings) {
		s.ExtractorQPM = qpm
		s.ExtractorMaxRetries = maxRetries
		s.RetryWait = retryWait
	}
}

// WithsetAdvisorTimeout 模型增强的超时
func WithsetAdvisorTimeout(d time.Duration) SettingOpt {
	return func(s *Settings) {
		s.AdvisorTimeout = d
	}
}

// WithsetMaxTextLength 发给外部服务前的最大字符数
func WithsetMaxTextLength(n int) SettingOpt {
	return func(s *Settings) {
		s.MaxTextLength = n
	}
}

// WithsetLogger 设置日志记录器
func WithsetLogger(l *zerolog.Logger) SettingOpt {
	return func(s *Settings) {
		s.Logger = l
	}
}

package tracing

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorType span 上 error.type 属性的取值
type ErrorType string

const (
	ErrorTypeHTTP       ErrorType = "http"
	ErrorTypeRedis      ErrorType = "redis"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeInternal   ErrorType = "internal"
	// ErrorTypeExternal 实体抽取服务
	ErrorTypeExternal ErrorType = "external_system"
	ErrorTypeTimeout  ErrorType = "timeout"
	// ErrorTypeLLM 生成式增强
	ErrorTypeLLM    ErrorType = "llm"
	ErrorTypeParser ErrorType = "parser"
)

// ClassifyError 超时和取消单独归类，其余使用 fallback
func ClassifyError(err error, fallback ErrorType) ErrorType {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	case errors.Is(err, context.Canceled):
		return ErrorTypeInternal
	default:
		return fallback
	}
}

// RecordError 在 span 上记录错误、错误类型和可选的附加属性
func RecordError(span trace.Span, err error, errorType ErrorType, extra ...attribute.KeyValue) {
	if span == nil || err == nil {
		return
	}

	msg := TruncateString(err.Error(), DefaultMaxLength)
	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", msg),
	)
	span.SetAttributes(extra...)
	span.SetStatus(codes.Error, msg)
}

// RecordHTTPError 外部 HTTP 调用返回非 2xx
func RecordHTTPError(span trace.Span, err error, statusCode int) {
	category := "unknown"
	if statusCode >= 500 {
		category = "server_error"
	} else if statusCode >= 400 {
		category = "client_error"
	}

	RecordError(span, err, ErrorTypeHTTP,
		attribute.Int("http.status_code", statusCode),
		attribute.String("error.category", category),
	)
}

// RecordFallback 标记本次请求走了降级路径
func RecordFallback(span trace.Span, reason string) {
	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.Bool("analysis.fallback", true),
		attribute.String("analysis.fallback_reason", TruncateString(reason, DefaultMaxLength)),
	)
}

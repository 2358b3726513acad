package tracing

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ClientMiddleware 出站请求的追踪中间件。
// hertztracing 的客户端中间件要求新 span 是 SDK 的 ReadOnlySpan，
// 只有全局 provider 是 SDK 且父 span 正在记录时才交给它，其余情况直接放行。
func ClientMiddleware() client.Middleware {
	traced := hertztracing.ClientMiddleware()
	return func(next client.Endpoint) client.Endpoint {
		tracedNext := traced(next)
		return func(ctx context.Context, req *protocol.Request, resp *protocol.Response) error {
			if !canTraceClient(ctx) {
				return next(ctx, req, resp)
			}
			return tracedNext(ctx, req, resp)
		}
	}
}

func canTraceClient(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		return false
	}
	return trace.SpanFromContext(ctx).IsRecording()
}

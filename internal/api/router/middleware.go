package router

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/hertz-contrib/cors"

	"resume-review-go/internal/logger"
)

const defaultRequestIDHeader = "X-Request-ID"

// RequestID 透传或生成请求 ID，并写入响应头和日志上下文
func RequestID(header string) app.HandlerFunc {
	if header == "" {
		header = defaultRequestIDHeader
	}
	return func(ctx context.Context, c *app.RequestContext) {
		id := string(c.Request.Header.Peek(header))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Response.Header.Set(header, id)
		c.Next(logger.WithRequestID(ctx, id))
	}
}

// AccessLog 记录请求方法、路径、状态码和耗时
func AccessLog() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)
		hlog.CtxInfof(ctx, "%s %s status=%d latency=%s request_id=%s",
			string(c.Method()), string(c.Path()), c.Response.StatusCode(), time.Since(start), c.GetString("request_id"))
	}
}

// CORS 未配置来源时允许所有来源
func CORS(allowedOrigins []string) app.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, defaultRequestIDHeader)
	cfg.ExposeHeaders = []string{defaultRequestIDHeader}
	return cors.New(cfg)
}

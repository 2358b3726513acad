package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/prometheus/client_golang/prometheus"

	"resume-review-go/internal/api/handler"
	"resume-review-go/internal/config"
)

// RegisterRoutes 注册中间件和 API 路由
func RegisterRoutes(h *server.Hertz, reviewHandler *handler.ReviewHandler, cfg config.ServerConfig) {
	h.Use(RequestID(cfg.RequestIDHeader))
	if cfg.EnableAccessLog {
		h.Use(AccessLog())
	}
	h.Use(CORS(cfg.AllowedOrigins))

	api := h.Group("/api")
	api.POST("/analyze-resume-text", reviewHandler.HandleAnalyzeResumeText)
	api.POST("/analyze-resume", reviewHandler.HandleAnalyzeResume)
	api.POST("/extract-resume-text", reviewHandler.HandleExtractResumeText)

	healthPath := cfg.HealthCheckPath
	if healthPath == "" {
		healthPath = "/api/health"
	}
	h.GET(healthPath, reviewHandler.HandleHealth)

	if cfg.MetricsPath != "" {
		h.GET(cfg.MetricsPath, Metrics(prometheus.DefaultGatherer))
	}
}

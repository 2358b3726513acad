package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"

	"resume-review-go/internal/advisor"
	"resume-review-go/internal/api/handler"
	"resume-review-go/internal/api/router"
	"resume-review-go/internal/config"
	"resume-review-go/internal/constants"
	"resume-review-go/internal/logger"
	"resume-review-go/internal/parser"
	"resume-review-go/internal/processor"
	"resume-review-go/internal/storage"
	"resume-review-go/internal/textrazor"
	"resume-review-go/internal/tracing"
	"resume-review-go/pkg/agent"
	"resume-review-go/pkg/ratelimit"
)

func main() {
	var configPath string
	var writeSample string
	pflag.StringVarP(&configPath, "config", "c", "internal/config/config.yaml", "Path to config file")
	pflag.StringVar(&writeSample, "write-sample-config", "", "Write a sample config file to the given path and exit")
	pflag.Parse()

	if writeSample != "" {
		if err := config.CreateSampleConfig(writeSample); err != nil {
			logger.Fatal().Err(err).Msg("生成示例配置失败")
		}
		logger.Info().Str("path", writeSample).Msg("示例配置已生成")
		return
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", configPath).Msg("加载配置失败")
	}

	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	glog.SetLogger(hertzadapter.From(logger.Logger))
	glog.Infof("配置加载成功: %s", configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing)
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}

	proc, checks, cleanup := buildProcessor(ctx, cfg)
	defer cleanup()
	glog.Infof("处理器就绪，模型增强: %v", proc.HasAdvisor())

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		tracer,
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodyMB*1024*1024),
		server.WithReadTimeout(time.Duration(cfg.Server.ReadTimeoutSeconds)*time.Second),
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	reviewHandler := handler.NewReviewHandler(proc, int64(cfg.Upload.MaxFileSizeMB)*1024*1024, checks...)
	router.RegisterRoutes(h, reviewHandler, cfg.Server)
	glog.Info("HTTP路由注册成功")

	glog.Infof("%s %s 启动中，监听地址: %s", constants.ServiceName, constants.Version, cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Warnf("关闭链路追踪失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// buildProcessor 根据配置组装处理器，缺少的组件只影响对应能力
func buildProcessor(ctx context.Context, cfg *config.Config) (*processor.ReviewProcessor, []handler.HealthCheck, func()) {
	cleanup := func() {}
	var compOpts []processor.ComponentOpt
	var checks []handler.HealthCheck

	extractor, err := textrazor.NewClient(cfg.TextRazor)
	if err != nil {
		glog.Warnf("语义抽取服务不可用，建议接口将返回兜底内容: %v", err)
	} else {
		compOpts = append(compOpts, processor.WithcompExtractor(extractor))
	}

	if cfg.Redis.Enabled {
		redisAdapter, err := storage.NewRedisAdapter(&cfg.Redis)
		if err != nil {
			glog.Warnf("Redis 连接失败，不使用抽取缓存: %v", err)
		} else {
			compOpts = append(compOpts, processor.WithcompCache(redisAdapter))
			checks = append(checks, handler.HealthCheck{Name: "redis", Check: redisAdapter.Ping})
			cleanup = func() {
				if err := redisAdapter.Close(); err != nil {
					glog.Warnf("关闭 Redis 连接失败: %v", err)
				}
			}
			glog.Infof("抽取缓存已启用: %s", cfg.Redis.Address)
		}
	}

	advisorTimeout := config.GetDuration(cfg.LLM.Timeout, 20*time.Second)
	if cfg.LLM.Enabled {
		if adv, err := buildAdvisor(cfg.LLM, advisorTimeout); err != nil {
			glog.Warnf("模型增强未启用: %v", err)
		} else {
			compOpts = append(compOpts, processor.WithcompAdvisor(adv))
			glog.Infof("模型增强已启用: %s", cfg.LLM.Model)
		}
	}

	var pdf parser.FileTextExtractor
	if pdfExtractor, err := parser.NewEinoPDFTextExtractor(ctx, parser.WithEinoLogger(&logger.Logger)); err != nil {
		glog.Warnf("PDF 解析器初始化失败，仅支持纯文本上传: %v", err)
	} else {
		pdf = pdfExtractor
	}
	compOpts = append(compOpts, processor.WithcompTextExtractor(parser.NewDispatcher(pdf, cfg.Upload.AllowedExtensions)))

	proc := processor.NewReviewProcessor(processor.BuildComponents(compOpts...), nil,
		processor.WithsetExtractorLimit(cfg.TextRazor.QPM, cfg.TextRazor.MaxRetries, time.Second),
		processor.WithsetAdvisorTimeout(advisorTimeout),
		processor.WithsetMaxTextLength(cfg.Analysis.MaxTextLength),
	)
	return proc, checks, cleanup
}

func buildAdvisor(cfg config.LLMConfig, timeout time.Duration) (*advisor.LLMAdvisor, error) {
	chatModel, err := agent.NewOpenAICompatibleChatModel(agent.ChatModelConfig{
		APIKey:      cfg.APIKey,
		APIURL:      cfg.APIURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     timeout,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}
	limited := ratelimit.NewChatModelWithRateLimit(chatModel, cfg.QPM, cfg.MaxRetries,
		time.Duration(cfg.RetryWaitSeconds)*time.Second)
	return advisor.NewLLMAdvisor(limited, timeout)
}

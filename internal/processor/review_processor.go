package processor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-review-go/internal/analysis"
	"resume-review-go/internal/constants"
	"resume-review-go/internal/logger"
	"resume-review-go/internal/metrics"
	"resume-review-go/internal/storage"
	"resume-review-go/internal/tracing"
	"resume-review-go/internal/types"
	"resume-review-go/pkg/ratelimit"
	"resume-review-go/pkg/utils"
)

var tracer = otel.Tracer("resume-review-go/processor")

// Components 处理器依赖的组件，均可为 nil
type Components struct {
	Extractor     Extractor
	Advisor       Advisor
	Cache         ExtractionCache
	TextExtractor TextExtractor
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	ExtractorQPM        int
	ExtractorMaxRetries int
	RetryWait           time.Duration
	AdvisorTimeout      time.Duration
	MaxTextLength       int
	Logger              *zerolog.Logger
}

// ReviewProcessor 编排 缓存 → 抽取 → 规则引擎 → 模型增强 的流程
type ReviewProcessor struct {
	extractor     Extractor
	advisor       Advisor
	cache         ExtractionCache
	textExtractor TextExtractor
	limiter       *ratelimit.TokenBucket
	settings      Settings
	log           *zerolog.Logger
}

// NewReviewProcessor 根据组件和设置创建处理器
func NewReviewProcessor(comp *Components, set *Settings, opts ...SettingOpt) *ReviewProcessor {
	if comp == nil {
		comp = &Components{}
	}
	if set == nil {
		set = &Settings{}
	}
	for _, opt := range opts {
		opt(set)
	}

	if set.ExtractorQPM <= 0 {
		set.ExtractorQPM = 120
	}
	if set.ExtractorMaxRetries < 0 {
		set.ExtractorMaxRetries = 0
	}
	if set.RetryWait <= 0 {
		set.RetryWait = time.Second
	}
	if set.AdvisorTimeout <= 0 {
		set.AdvisorTimeout = 20 * time.Second
	}
	if set.MaxTextLength <= 0 {
		set.MaxTextLength = 100000
	}
	if set.Logger == nil {
		l := logger.Logger.With().Str("component", "review_processor").Logger()
		set.Logger = &l
	}

	cache := comp.Cache
	if cache == nil {
		cache = storage.NoopCache{}
	}

	return &ReviewProcessor{
		extractor:     comp.Extractor,
		advisor:       comp.Advisor,
		cache:         cache,
		textExtractor: comp.TextExtractor,
		limiter: ratelimit.NewTokenBucket(set.ExtractorQPM, 0).
			WithRetryPolicy(set.RetryWait, set.ExtractorMaxRetries),
		settings: *set,
		log:      set.Logger,
	}
}

// HasAdvisor 是否配置了模型增强
func (p *ReviewProcessor) HasAdvisor() bool {
	return p.advisor != nil
}

func (p *ReviewProcessor) logFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return p.log
}

// Suggest 建议列表模式。抽取失败时返回固定的兜底建议，不返回错误
func (p *ReviewProcessor) Suggest(ctx context.Context, text string) (resp *types.SuggestionResponse, outcome Outcome, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "ReviewProcessor.Suggest")
	defer span.End()
	defer func() {
		metrics.AnalysisRequests.WithLabelValues(constants.ModeSuggestions, string(outcome)).Inc()
		metrics.AnalysisDuration.WithLabelValues(constants.ModeSuggestions).Observe(time.Since(start).Seconds())
		span.SetAttributes(attribute.String("analysis.outcome", string(outcome)))
	}()

	if strings.TrimSpace(text) == "" {
		err := NewEmptyTextError("suggest")
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, OutcomeRejected, err
	}

	defer func() {
		if r := recover(); r != nil {
			p.logFor(ctx).Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("生成建议时发生panic，返回兜底建议")
			tracing.RecordFallback(span, fmt.Sprint(r))
			metrics.FallbackTotal.WithLabelValues(constants.ModeSuggestions).Inc()
			resp = &types.SuggestionResponse{Suggestions: analysis.FallbackSuggestions()}
			outcome = OutcomeFallback
			err = nil
		}
	}()

	span.SetAttributes(
		attribute.Int("resume.length", len(text)),
		attribute.String("resume.preview", tracing.SafeResumeContent(text)),
	)

	extraction, extractErr := p.extract(ctx, text)
	if extractErr != nil {
		p.logFor(ctx).Warn().Err(extractErr).Int("text_length", len(text)).Msg("语义抽取失败，返回兜底建议")
		tracing.RecordFallback(span, extractErr.Error())
		metrics.FallbackTotal.WithLabelValues(constants.ModeSuggestions).Inc()
		return &types.SuggestionResponse{Suggestions: analysis.FallbackSuggestions()}, OutcomeFallback, nil
	}

	suggestions := analysis.SynthesizeSuggestions(text, extraction)
	p.logFor(ctx).Info().
		Int("text_length", len(text)).
		Int("suggestions", len(suggestions)).
		Msg("建议生成完成")
	return &types.SuggestionResponse{Suggestions: suggestions}, OutcomeOK, nil
}

// Analyze 评分模式。抽取失败时只用正文规则评分，处理过程中的panic转为兜底分析结果
func (p *ReviewProcessor) Analyze(ctx context.Context, text string) (result *types.AnalysisResult, outcome Outcome, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "ReviewProcessor.Analyze")
	defer span.End()
	defer func() {
		metrics.AnalysisRequests.WithLabelValues(constants.ModeAnalysis, string(outcome)).Inc()
		metrics.AnalysisDuration.WithLabelValues(constants.ModeAnalysis).Observe(time.Since(start).Seconds())
		span.SetAttributes(attribute.String("analysis.outcome", string(outcome)))
	}()

	if strings.TrimSpace(text) == "" {
		err := NewEmptyTextError("analyze")
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, OutcomeRejected, err
	}

	defer func() {
		if r := recover(); r != nil {
			p.logFor(ctx).Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("分析时发生panic，返回兜底分析结果")
			tracing.RecordFallback(span, fmt.Sprint(r))
			metrics.FallbackTotal.WithLabelValues(constants.ModeAnalysis).Inc()
			result = analysis.FallbackAnalysis()
			outcome = OutcomeFallback
			err = nil
		}
	}()

	span.SetAttributes(attribute.Int("resume.length", len(text)))

	outcome = OutcomeOK
	extraction, extractErr := p.extract(ctx, text)
	if extractErr != nil {
		p.logFor(ctx).Warn().Err(extractErr).Msg("语义抽取失败，仅使用正文规则评分")
		outcome = OutcomeDegraded
		extraction = nil
	}

	result = analysis.Analyze(text, extraction)

	if p.advisor != nil {
		enrichment, advErr := p.advise(ctx, text)
		if advErr != nil {
			p.logFor(ctx).Warn().Err(advErr).Msg("模型增强失败，保留规则分析结果")
		} else {
			result = analysis.Enrich(result, enrichment)
			if outcome == OutcomeOK {
				outcome = OutcomeEnriched
			}
		}
	}

	p.logFor(ctx).Info().
		Int("overall_score", result.OverallScore).
		Int("skills", len(result.Skills)).
		Str("outcome", string(outcome)).
		Msg("分析完成")
	return result, outcome, nil
}

// ExtractUploadText 把上传文件转换为文本
func (p *ReviewProcessor) ExtractUploadText(ctx context.Context, fileName string, data []byte) (*types.ExtractTextResponse, error) {
	ctx, span := tracer.Start(ctx, "ReviewProcessor.ExtractUploadText")
	defer span.End()

	ext := strings.ToLower(filepath.Ext(fileName))
	span.SetAttributes(
		attribute.String("file.name", tracing.SafeFileName(filepath.Base(fileName))),
		attribute.String("file.extension", ext),
		attribute.Int("file.size", len(data)),
	)
	fileType := strings.TrimPrefix(ext, ".")
	if fileType == "" {
		fileType = "unknown"
	}

	if p.textExtractor == nil || !p.textExtractor.Supports(fileName) {
		err := NewUnsupportedFileError(fileName)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		metrics.FileExtractions.WithLabelValues(fileType, "unsupported").Inc()
		return nil, err
	}

	text, err := p.textExtractor.ExtractText(ctx, fileName, data)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeParser)
		metrics.FileExtractions.WithLabelValues(fileType, metrics.OutcomeError).Inc()
		return nil, NewTextExtractionError(fileName, err.Error())
	}
	if strings.TrimSpace(text) == "" {
		metrics.FileExtractions.WithLabelValues(fileType, metrics.OutcomeError).Inc()
		return nil, NewTextExtractionError(fileName, "文件中没有可提取的文本")
	}

	metrics.FileExtractions.WithLabelValues(fileType, metrics.OutcomeOK).Inc()
	p.logFor(ctx).Info().
		Str("file_name", tracing.SafeFileName(filepath.Base(fileName))).
		Str("file_type", fileType).
		Int("text_length", len(text)).
		Msg("文件文本提取完成")
	return &types.ExtractTextResponse{
		Text:     text,
		FileName: filepath.Base(fileName),
		Length:   len([]rune(text)),
	}, nil
}

// extract 先查缓存，未命中时限流调用抽取服务，成功后尽力写回缓存
func (p *ReviewProcessor) extract(ctx context.Context, text string) (*types.ExtractionResult, error) {
	providerText := utils.TruncateRunes(text, p.settings.MaxTextLength)

	cached, err := p.cache.GetExtraction(ctx, providerText)
	switch {
	case err == nil && cached != nil:
		metrics.CacheLookups.WithLabelValues(metrics.CacheHit).Inc()
		return cached, nil
	case err == nil || errors.Is(err, storage.ErrNotFound):
		metrics.CacheLookups.WithLabelValues(metrics.CacheMiss).Inc()
	default:
		metrics.CacheLookups.WithLabelValues(metrics.CacheError).Inc()
		p.logFor(ctx).Warn().Err(err).Msg("读取抽取缓存失败")
	}

	if p.extractor == nil {
		return nil, NewExtractionError("未配置语义抽取服务")
	}

	ctx, span := tracer.Start(ctx, "ReviewProcessor.extract", trace.WithAttributes(
		attribute.Int("extract.text_length", len(providerText)),
	))
	defer span.End()

	var extraction *types.ExtractionResult
	start := time.Now()
	err = p.limiter.RetryWithBackoff(ctx, func() error {
		var callErr error
		extraction, callErr = p.extractor.Extract(ctx, providerText)
		return callErr
	})
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return nil, NewExtractionError(err.Error())
	}
	if extraction == nil {
		extraction = &types.ExtractionResult{}
	}

	if setErr := p.cache.SetExtraction(ctx, providerText, extraction); setErr != nil {
		p.logFor(ctx).Warn().Err(setErr).Msg("写入抽取缓存失败")
	}
	return extraction, nil
}

// advise 在独立超时下调用增强器
func (p *ReviewProcessor) advise(ctx context.Context, text string) (*types.Enrichment, error) {
	ctx, cancel := context.WithTimeout(ctx, p.settings.AdvisorTimeout)
	defer cancel()

	enrichment, err := p.advisor.Advise(ctx, text)
	if err != nil {
		metrics.AdvisorRequests.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, NewAdvisorError(err.Error())
	}
	if enrichment.IsEmpty() {
		metrics.AdvisorRequests.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, NewAdvisorError("增强内容为空")
	}
	metrics.AdvisorRequests.WithLabelValues(metrics.OutcomeOK).Inc()
	return enrichment, nil
}

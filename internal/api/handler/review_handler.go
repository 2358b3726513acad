package handler

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"resume-review-go/internal/constants"
	"resume-review-go/internal/logger"
	"resume-review-go/internal/processor"
	"resume-review-go/internal/tracing"
	"resume-review-go/internal/types"
)

// ReviewService 处理器对外暴露的能力，便于在测试中替换
type ReviewService interface {
	Suggest(ctx context.Context, text string) (*types.SuggestionResponse, processor.Outcome, error)
	Analyze(ctx context.Context, text string) (*types.AnalysisResult, processor.Outcome, error)
	ExtractUploadText(ctx context.Context, fileName string, data []byte) (*types.ExtractTextResponse, error)
}

// HealthCheck 健康检查中附带的依赖探测，例如缓存连接
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

const healthCheckTimeout = 2 * time.Second

// ReviewHandler 简历分析相关的 HTTP 接口
type ReviewHandler struct {
	service     ReviewService
	maxFileSize int64
	checks      []HealthCheck
}

// NewReviewHandler 创建处理器，maxFileSize <= 0 时不限制上传大小
func NewReviewHandler(service ReviewService, maxFileSize int64, checks ...HealthCheck) *ReviewHandler {
	return &ReviewHandler{service: service, maxFileSize: maxFileSize, checks: checks}
}

// bindResumeText 解析请求体中的 resumeText，空白文本视为缺失
func bindResumeText(c *app.RequestContext) (string, bool) {
	var req types.ResumeTextRequest
	if err := c.BindJSON(&req); err != nil {
		return "", false
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		return "", false
	}
	return req.ResumeText, true
}

// HandleAnalyzeResumeText 建议列表模式
// POST /api/analyze-resume-text
func (h *ReviewHandler) HandleAnalyzeResumeText(ctx context.Context, c *app.RequestContext) {
	text, ok := bindResumeText(c)
	if !ok {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "Missing resumeText"})
		return
	}

	resp, _, err := h.service.Suggest(ctx, text)
	if err != nil {
		if errors.Is(err, processor.ErrEmptyResumeText) {
			c.JSON(consts.StatusBadRequest, utils.H{"error": "Missing resumeText"})
			return
		}
		logger.Ctx(ctx).Error().Err(err).Msg("生成建议失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "Failed to analyze resume"})
		return
	}
	c.JSON(consts.StatusOK, resp)
}

// HandleAnalyzeResume 评分模式
// POST /api/analyze-resume
func (h *ReviewHandler) HandleAnalyzeResume(ctx context.Context, c *app.RequestContext) {
	text, ok := bindResumeText(c)
	if !ok {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "Resume text is required"})
		return
	}

	result, _, err := h.service.Analyze(ctx, text)
	if err != nil {
		if errors.Is(err, processor.ErrEmptyResumeText) {
			c.JSON(consts.StatusBadRequest, utils.H{"error": "Resume text is required"})
			return
		}
		logger.Ctx(ctx).Error().Err(err).Msg("简历分析失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "Failed to analyze resume"})
		return
	}
	c.JSON(consts.StatusOK, result)
}

// HandleExtractResumeText 上传文件并返回提取出的文本
// POST /api/extract-resume-text
func (h *ReviewHandler) HandleExtractResumeText(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile(constants.UploadFieldName)
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "Missing resume_file"})
		return
	}
	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		c.JSON(consts.StatusRequestEntityTooLarge, utils.H{"error": "File is too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "Failed to read uploaded file"})
		return
	}

	resp, err := h.service.ExtractUploadText(ctx, fileHeader.Filename, data)
	switch {
	case err == nil:
		c.JSON(consts.StatusOK, resp)
	case errors.Is(err, processor.ErrUnsupportedFile):
		c.JSON(consts.StatusUnsupportedMediaType, utils.H{"error": "Unsupported file type"})
	case errors.Is(err, processor.ErrTextExtractionFailed):
		logger.Ctx(ctx).Warn().Err(err).Str("file_name", tracing.SafeFileName(fileHeader.Filename)).Msg("上传文件文本提取失败")
		c.JSON(consts.StatusUnprocessableEntity, utils.H{"error": "Could not extract text from file"})
	default:
		logger.Ctx(ctx).Error().Err(err).Msg("处理上传文件失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "Failed to process file"})
	}
}

// HandleHealth 健康检查。依赖都是可降级的，探测失败时仍返回 200，status 为 degraded
func (h *ReviewHandler) HandleHealth(ctx context.Context, c *app.RequestContext) {
	if len(h.checks) == 0 {
		c.JSON(consts.StatusOK, utils.H{"status": "ok"})
		return
	}

	status := "ok"
	results := make(map[string]string, len(h.checks))
	for _, hc := range h.checks {
		checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := hc.Check(checkCtx)
		cancel()
		if err != nil {
			status = "degraded"
			results[hc.Name] = err.Error()
			logger.Ctx(ctx).Warn().Err(err).Str("check", hc.Name).Msg("健康检查失败")
			continue
		}
		results[hc.Name] = "ok"
	}
	c.JSON(consts.StatusOK, utils.H{"status": status, "checks": results})
}

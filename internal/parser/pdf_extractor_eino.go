package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/rs/zerolog"

	"resume-review-go/internal/logger"
	"resume-review-go/internal/tracing"
)

const defaultPDFTimeout = 30 * time.Second

// EinoPDFTextExtractor 使用 Eino PDF Parser 提取整份文档的文本
type EinoPDFTextExtractor struct {
	parser  *pdf.PDFParser
	timeout time.Duration
	logger  *zerolog.Logger
}

// EinoPDFOption PDF提取器的配置选项
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithEinoLogger 配置自定义日志记录器
func WithEinoLogger(l *zerolog.Logger) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.logger = l
	}
}

// WithEinoTimeout 单个文件的解析超时
func WithEinoTimeout(d time.Duration) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEinoPDFTextExtractor 初始化 Eino PDF 文本提取器
// 不按页面分割，得到整个文档的连续文本
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}

	l := logger.Logger.With().Str("component", "pdf_parser").Logger()
	extractor := &EinoPDFTextExtractor{
		parser:  p,
		timeout: defaultPDFTimeout,
		logger:  &l,
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor, nil
}

// ExtractText 从 PDF 字节中提取文本，多个文档之间以空行连接
func (e *EinoPDFTextExtractor) ExtractText(ctx context.Context, fileName string, data []byte) (string, error) {
	safeName := tracing.SafeFileName(fileName)
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	docs, err := e.parser.Parse(ctx, bytes.NewReader(data),
		einoParser.WithURI(fileName),
		einoParser.WithExtraMeta(map[string]any{
			"source_file_name": fileName,
			"size_bytes":       len(data),
		}),
	)
	duration := time.Since(startTime)
	if err != nil {
		e.logger.Warn().Err(err).Str("file", safeName).Dur("duration", duration).Msg("PDF解析失败")
		return "", fmt.Errorf("eino PDF parser failed for %s: %w", safeName, err)
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("eino PDF parser returned no documents for %s", safeName)
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		parts = append(parts, doc.Content)
	}
	fullContent := strings.Join(parts, "\n\n")

	e.logger.Info().
		Str("file", safeName).
		Int("documents", len(docs)).
		Int("text_length", len(fullContent)).
		Dur("duration", duration).
		Msg("PDF提取完成")
	return fullContent, nil
}

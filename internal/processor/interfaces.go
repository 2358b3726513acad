package processor

import (
	"context"

	"resume-review-go/internal/types"
)

// Extractor 外部语义抽取服务 (TextRazor)
type Extractor interface {
	Extract(ctx context.Context, text string) (*types.ExtractionResult, error)
}

// Advisor 生成式增强，返回的内容必须已经过校验
type Advisor interface {
	Advise(ctx context.Context, resumeText string) (*types.Enrichment, error)
}

// ExtractionCache 抽取结果缓存，未命中时返回 storage.ErrNotFound
type ExtractionCache interface {
	GetExtraction(ctx context.Context, text string) (*types.ExtractionResult, error)
	SetExtraction(ctx context.Context, text string, res *types.ExtractionResult) error
}

// TextExtractor 上传文件转纯文本
type TextExtractor interface {
	Supports(fileName string) bool
	ExtractText(ctx context.Context, fileName string, data []byte) (string, error)
}

// Outcome 一次分析请求的结果分类，同时用作指标标签
type Outcome string

const (
	// OutcomeOK 使用了抽取结果
	OutcomeOK Outcome = "ok"
	// OutcomeEnriched 规则结果并入了模型增强内容
	OutcomeEnriched Outcome = "enriched"
	// OutcomeDegraded 抽取失败，只基于正文的规则结果
	OutcomeDegraded Outcome = "degraded"
	// OutcomeFallback 返回了固定的兜底内容
	OutcomeFallback Outcome = "fallback"
	// OutcomeRejected 输入不合法
	OutcomeRejected Outcome = "rejected"
)

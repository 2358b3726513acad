package storage

import (
	"context"

	"resume-review-go/internal/types"
)

// NoopCache 未启用 Redis 时使用，永远未命中
type NoopCache struct{}

func (NoopCache) GetExtraction(context.Context, string) (*types.ExtractionResult, error) {
	return nil, ErrNotFound
}

func (NoopCache) SetExtraction(context.Context, string, *types.ExtractionResult) error {
	return nil
}

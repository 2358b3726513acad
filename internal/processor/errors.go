package processor

import (
	"errors"
	"fmt"

	"resume-review-go/internal/tracing"
)

// 定义基础错误类型
var (
	ErrEmptyResumeText      = errors.New("简历文本为空")
	ErrExtractionFailed     = errors.New("语义抽取失败")
	ErrAdvisorFailed        = errors.New("模型增强失败")
	ErrTextExtractionFailed = errors.New("提取文件文本失败")
	ErrUnsupportedFile      = errors.New("不支持的文件类型")
)

// ReviewError 包含详细错误信息的自定义错误
type ReviewError struct {
	Op      string
	BaseErr error
	Detail  string
}

func (e *ReviewError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s): %s", e.BaseErr, e.Op, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s)", e.BaseErr, e.Op)
}

func (e *ReviewError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ReviewError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewEmptyTextError(op string) error {
	return &ReviewError{Op: op, BaseErr: ErrEmptyResumeText}
}

func NewExtractionError(detail string) error {
	return &ReviewError{Op: "extract", BaseErr: ErrExtractionFailed, Detail: detail}
}

func NewAdvisorError(detail string) error {
	return &ReviewError{Op: "advise", BaseErr: ErrAdvisorFailed, Detail: detail}
}

func NewTextExtractionError(fileName, detail string) error {
	return &ReviewError{Op: "extract_text", BaseErr: ErrTextExtractionFailed, Detail: tracing.SafeFileName(fileName) + ": " + detail}
}

func NewUnsupportedFileError(fileName string) error {
	return &ReviewError{Op: "extract_text", BaseErr: ErrUnsupportedFile, Detail: tracing.SafeFileName(fileName)}
}

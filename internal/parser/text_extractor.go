// Package parser 把上传的简历文件转换成纯文本
package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"resume-review-go/pkg/utils"
)

// ErrUnsupportedFileType 文件扩展名不在允许列表中
var ErrUnsupportedFileType = errors.New("parser: 不支持的文件类型")

// FileTextExtractor 按扩展名选择 PDF 解析或纯文本读取
type FileTextExtractor interface {
	ExtractText(ctx context.Context, fileName string, data []byte) (string, error)
}

// PlainTextExtractor 直接读取 .txt 内容
type PlainTextExtractor struct{}

func (PlainTextExtractor) ExtractText(_ context.Context, fileName string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return utils.SanitizeUTF8(string(data)), nil
	}
	return string(data), nil
}

// Dispatcher 根据扩展名把文件交给对应的提取器
type Dispatcher struct {
	byExt map[string]FileTextExtractor
}

// NewDispatcher allowed 为允许的扩展名 (带点，如 ".pdf")，pdf 为 nil 时不支持 PDF
func NewDispatcher(pdf FileTextExtractor, allowed []string) *Dispatcher {
	d := &Dispatcher{byExt: make(map[string]FileTextExtractor)}
	for _, ext := range allowed {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		switch ext {
		case ".pdf":
			if pdf != nil {
				d.byExt[ext] = pdf
			}
		case ".txt", ".text", ".md":
			d.byExt[ext] = PlainTextExtractor{}
		}
	}
	return d
}

// Supports 判断文件名是否可以处理
func (d *Dispatcher) Supports(fileName string) bool {
	_, ok := d.byExt[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

// ExtractText 提取并去掉首尾空白
func (d *Dispatcher) ExtractText(ctx context.Context, fileName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	ex, ok := d.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	text, err := ex.ExtractText(ctx, fileName, data)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

package parser

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) ExtractText(context.Context, string, []byte) (string, error) {
	return s.text, s.err
}

func TestDispatcher_PlainText(t *testing.T) {
	d := NewDispatcher(nil, []string{".pdf", ".txt"})

	text, err := d.ExtractText(context.Background(), "resume.TXT", []byte("  John Doe\nEngineer  \n"))
	require.NoError(t, err)
	assert.Equal(t, "John Doe\nEngineer", text)

	assert.False(t, d.Supports("resume.pdf"), "未提供 PDF 提取器时不支持 PDF")
}

func TestDispatcher_Routing(t *testing.T) {
	d := NewDispatcher(stubExtractor{text: "from pdf"}, []string{"pdf", ".txt"})

	assert.True(t, d.Supports("cv.PDF"))
	text, err := d.ExtractText(context.Background(), "cv.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "from pdf", text)

	_, err = d.ExtractText(context.Background(), "cv.docx", nil)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	failing := NewDispatcher(stubExtractor{err: errors.New("broken")}, []string{".pdf"})
	_, err = failing.ExtractText(context.Background(), "cv.pdf", nil)
	assert.EqualError(t, err, "broken")
}

func TestPlainTextExtractor_InvalidUTF8(t *testing.T) {
	text, err := PlainTextExtractor{}.ExtractText(context.Background(), "a.txt", []byte("ab\xffcd"))
	require.NoError(t, err)
	assert.Equal(t, "abcd", text)
}

func TestEinoPDFTextExtractor_InvalidPDF(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx, WithEinoTimeout(5*time.Second))
	require.NoError(t, err, "创建PDF提取器不应返回错误")
	require.NotNil(t, extractor.parser)

	_, err = extractor.ExtractText(ctx, "王小明个人简历.pdf", []byte("this is not a pdf"))
	require.Error(t, err, "非法PDF应返回错误")
	assert.NotContains(t, err.Error(), "王小明", "错误信息中的文件名需要掩码")
}

func TestEinoPDFTextExtractor_SampleFile(t *testing.T) {
	var data []byte
	for _, path := range []string{"testdata/resume.pdf", "../../testdata/resume.pdf"} {
		if b, err := os.ReadFile(path); err == nil {
			data = b
			break
		}
	}
	if data == nil {
		t.Skip("找不到测试PDF文件，跳过测试")
	}

	extractor, err := NewEinoPDFTextExtractor(context.Background())
	require.NoError(t, err)
	text, err := extractor.ExtractText(context.Background(), "resume.pdf", data)
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}

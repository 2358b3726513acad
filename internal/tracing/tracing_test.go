package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"resume-review-go/internal/config"
)

func TestMaskPII(t *testing.T) {
	assert.Equal(t, "", MaskPII(""))
	assert.Equal(t, "*", MaskPII("a"))
	assert.Equal(t, "张*", MaskPII("张三"))
	assert.Equal(t, "王*明", MaskPII("王小明"))
	assert.Equal(t, "13*******78", MaskPII("13812345678"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abc", TruncateString("abcdef", 3))
	assert.Equal(t, "abc...hij", TruncateString("abcdefghij", 9))
	assert.LessOrEqual(t, len([]rune(SafeResumeContent(string(make([]rune, 1000))))), MaxResumeLength)
}

func TestSafeFileName(t *testing.T) {
	assert.Equal(t, "张三*****简历.pdf", SafeFileName("张三的个人中文简历.pdf"))
	assert.Equal(t, "c*.txt", SafeFileName("cv.txt"))
	assert.Equal(t, "re**me", SafeFileName("resume"))
	assert.Equal(t, ".b*sh", SafeFileName(".bash"))
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ErrorTypeTimeout, ClassifyError(context.DeadlineExceeded, ErrorTypeLLM))
	assert.Equal(t, ErrorTypeInternal, ClassifyError(context.Canceled, ErrorTypeLLM))
	assert.Equal(t, ErrorTypeLLM, ClassifyError(errors.New("boom"), ErrorTypeLLM))
}

func TestRecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, span := tp.Tracer("test").Start(context.Background(), "op")

	RecordHTTPError(span, errors.New("bad request"), 400)
	RecordFallback(span, "extractor down")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "http", attrs["error.type"])
	assert.Equal(t, "client_error", attrs["error.category"])
	assert.Equal(t, "true", attrs["analysis.fallback"])

	// nil span 或 nil error 不应 panic
	RecordError(nil, errors.New("x"), ErrorTypeInternal)
	RecordError(span, nil, ErrorTypeInternal)
}

func TestInitProviderDisabled(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), config.TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

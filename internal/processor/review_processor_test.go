package processor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-review-go/internal/advisor"
	"resume-review-go/internal/analysis"
	"resume-review-go/internal/config"
	"resume-review-go/internal/storage"
	"resume-review-go/internal/textrazor"
	"resume-review-go/internal/tracing"
	"resume-review-go/internal/types"
	"resume-review-go/pkg/agent"
)

const sampleResume = "Contact: a@b.com. Summary: ... managed developed implemented improved ... 25% increase, $50K saved, 2 projects. Python"

type stubExtractor struct {
	mu    sync.Mutex
	calls int
	texts []string
	res   *types.ExtractionResult
	err   error
	panic bool
}

func (s *stubExtractor) Extract(_ context.Context, text string) (*types.ExtractionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.texts = append(s.texts, text)
	if s.panic {
		panic("extractor exploded")
	}
	return s.res, s.err
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]*types.ExtractionResult
	getErr  error
	sets    int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]*types.ExtractionResult{}}
}

func (m *memCache) GetExtraction(_ context.Context, text string) (*types.ExtractionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	res, ok := m.entries[text]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return res, nil
}

func (m *memCache) SetExtraction(_ context.Context, text string, res *types.ExtractionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.entries[text] = res
	return nil
}

type stubAdvisor struct {
	res *types.Enrichment
	err error
}

func (s stubAdvisor) Advise(context.Context, string) (*types.Enrichment, error) {
	return s.res, s.err
}

type stubTextExtractor struct {
	supported bool
	text      string
	err       error
}

func (s stubTextExtractor) Supports(string) bool { return s.supported }

func (s stubTextExtractor) ExtractText(context.Context, string, []byte) (string, error) {
	return s.text, s.err
}

func sampleExtraction() *types.ExtractionResult {
	return &types.ExtractionResult{
		Entities: []types.Entity{{ID: "Acme", Types: []string{"Organization"}}},
		Topics:   []types.Topic{{Label: "Marketing", Score: 0.7}},
	}
}

func newTestProcessor(comp *Components, opts ...SettingOpt) *ReviewProcessor {
	opts = append([]SettingOpt{WithsetExtractorLimit(6000, 0, time.Millisecond)}, opts...)
	return NewReviewProcessor(comp, nil, opts...)
}

func TestSuggest_EmptyTextRejected(t *testing.T) {
	ext := &stubExtractor{res: sampleExtraction()}
	p := newTestProcessor(&Components{Extractor: ext})

	for _, text := range []string{"", "   \n\t"} {
		resp, outcome, err := p.Suggest(context.Background(), text)
		assert.Nil(t, resp)
		assert.Equal(t, OutcomeRejected, outcome)
		assert.ErrorIs(t, err, ErrEmptyResumeText)
	}
	assert.Zero(t, ext.calls, "空文本不应调用抽取服务")
}

func TestSuggest_Success(t *testing.T) {
	extraction := sampleExtraction()
	p := newTestProcessor(&Components{Extractor: &stubExtractor{res: extraction}})

	resp, outcome, err := p.Suggest(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, analysis.SynthesizeSuggestions(sampleResume, extraction), resp.Suggestions)
}

func TestSuggest_ExtractorFailureFallsBack(t *testing.T) {
	p := newTestProcessor(&Components{Extractor: &stubExtractor{err: errors.New("textrazor down")}})

	resp, outcome, err := p.Suggest(context.Background(), sampleResume)
	require.NoError(t, err, "抽取失败不向调用方返回错误")
	assert.Equal(t, OutcomeFallback, outcome)
	assert.Equal(t, analysis.FallbackSuggestions(), resp.Suggestions)
	assert.Len(t, resp.Suggestions, 10)
}

func TestSuggest_NoExtractorFallsBack(t *testing.T) {
	p := newTestProcessor(nil)

	resp, outcome, err := p.Suggest(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFallback, outcome)
	assert.Equal(t, analysis.FallbackSuggestions(), resp.Suggestions)
}

func TestSuggest_PanicRecovered(t *testing.T) {
	p := newTestProcessor(&Components{Extractor: &stubExtractor{panic: true}})

	resp, outcome, err := p.Suggest(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFallback, outcome)
	assert.Equal(t, analysis.FallbackSuggestions(), resp.Suggestions)
}

func TestSuggest_CacheHitSkipsExtractor(t *testing.T) {
	ext := &stubExtractor{res: sampleExtraction()}
	cache := newMemCache()
	p := newTestProcessor(&Components{Extractor: ext, Cache: cache})

	first, _, err := p.Suggest(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, 1, ext.calls)
	assert.Equal(t, 1, cache.sets, "未命中时写回缓存")

	second, outcome, err := p.Suggest(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, 1, ext.calls, "命中缓存时不再调用抽取服务")
	assert.Equal(t, first, second)
}

func TestSuggest_CacheErrorStillExtracts(t *testing.T) {
	ext := &stubExtractor{res: sampleExtraction()}
	cache := newMemCache()
	cache.getErr = errors.New("connection refused")
	p := newTestProcessor(&Components{Extractor: ext, Cache: cache})

	_, outcome, err := p.Suggest(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, 1, ext.calls)
}

func TestExtract_TruncatesProviderText(t *testing.T) {
	ext := &stubExtractor{res: sampleExtraction()}
	p := newTestProcessor(&Components{Extractor: ext}, WithsetMaxTextLength(10))

	_, _, err := p.Suggest(context.Background(), "简历正文包含很多很多很多的内容")
	require.NoError(t, err)
	require.Len(t, ext.texts, 1)
	assert.Equal(t, 10, len([]rune(ext.texts[0])), "按字符而不是字节截断")
}

func TestAnalyze_EmptyTextRejected(t *testing.T) {
	p := newTestProcessor(nil)
	res, outcome, err := p.Analyze(context.Background(), " ")
	assert.Nil(t, res)
	assert.Equal(t, OutcomeRejected, outcome)
	assert.ErrorIs(t, err, ErrEmptyResumeText)
}

func TestAnalyze_DegradesWithoutExtraction(t *testing.T) {
	p := newTestProcessor(&Components{Extractor: &stubExtractor{err: errors.New("timeout")}})

	res, outcome, err := p.Analyze(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDegraded, outcome)
	assert.Equal(t, analysis.Analyze(sampleResume, nil), res)
}

func TestAnalyze_OKWithoutAdvisor(t *testing.T) {
	extraction := sampleExtraction()
	p := newTestProcessor(&Components{Extractor: &stubExtractor{res: extraction}})
	assert.False(t, p.HasAdvisor())

	res, outcome, err := p.Analyze(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, analysis.Analyze(sampleResume, extraction), res)
}

func TestAnalyze_EnrichedByAdvisor(t *testing.T) {
	mock := agent.NewMockChatClient(`Here you go: {"skills": ["Kubernetes"], "improvements": ["Describe the scale of the systems you built"], "interview_questions": []}`, nil)
	adv, err := advisor.NewLLMAdvisor(mock, time.Second)
	require.NoError(t, err)

	comp := BuildComponents(
		WithcompExtractor(&stubExtractor{res: sampleExtraction()}),
		WithcompAdvisor(adv),
	)
	p := newTestProcessor(comp, WithsetAdvisorTimeout(time.Second))
	require.True(t, p.HasAdvisor())

	res, outcome, err := p.Analyze(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, OutcomeEnriched, outcome)
	assert.Equal(t, analysis.AIEnhancedStrength, res.Strengths[0])
	assert.Equal(t, "Describe the scale of the systems you built", res.Improvements[0])

	found := false
	for _, s := range res.Skills {
		if s.Name == "Kubernetes" {
			found = true
		}
	}
	assert.True(t, found, "模型给出的技能应并入结果")
	assert.Equal(t, 1, mock.CallCount())
}

func TestAnalyze_AdvisorFailureKeepsRuleResult(t *testing.T) {
	extraction := sampleExtraction()
	cases := map[string]Advisor{
		"error": stubAdvisor{err: errors.New("model unavailable")},
		"empty": stubAdvisor{res: &types.Enrichment{}},
	}
	for name, adv := range cases {
		t.Run(name, func(t *testing.T) {
			p := newTestProcessor(&Components{Extractor: &stubExtractor{res: extraction}, Advisor: adv})

			res, outcome, err := p.Analyze(context.Background(), sampleResume)
			require.NoError(t, err)
			assert.Equal(t, OutcomeOK, outcome)
			assert.Equal(t, analysis.Analyze(sampleResume, extraction), res)
		})
	}
}

func TestAnalyze_DegradedStaysDegradedWhenEnriched(t *testing.T) {
	adv := stubAdvisor{res: &types.Enrichment{Skills: []string{"Go"}}}
	p := newTestProcessor(&Components{Extractor: &stubExtractor{err: errors.New("down")}, Advisor: adv})

	res, outcome, err := p.Analyze(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDegraded, outcome)
	assert.Equal(t, analysis.AIEnhancedStrength, res.Strengths[0])
}

func TestAnalyze_PanicRecovered(t *testing.T) {
	p := newTestProcessor(&Components{Extractor: &stubExtractor{panic: true}})

	res, outcome, err := p.Analyze(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFallback, outcome)
	assert.Equal(t, analysis.FallbackAnalysis(), res)
}

func TestExtractUploadText(t *testing.T) {
	t.Run("unsupported", func(t *testing.T) {
		p := newTestProcessor(&Components{TextExtractor: stubTextExtractor{supported: false}})
		_, err := p.ExtractUploadText(context.Background(), "resume.docx", []byte("x"))
		assert.ErrorIs(t, err, ErrUnsupportedFile)
	})

	t.Run("no extractor", func(t *testing.T) {
		p := newTestProcessor(nil)
		_, err := p.ExtractUploadText(context.Background(), "resume.pdf", []byte("x"))
		assert.ErrorIs(t, err, ErrUnsupportedFile)
	})

	t.Run("extractor error", func(t *testing.T) {
		p := newTestProcessor(&Components{TextExtractor: stubTextExtractor{supported: true, err: errors.New("bad pdf")}})
		_, err := p.ExtractUploadText(context.Background(), "resume.pdf", []byte("x"))
		assert.ErrorIs(t, err, ErrTextExtractionFailed)
	})

	t.Run("blank text", func(t *testing.T) {
		p := newTestProcessor(&Components{TextExtractor: stubTextExtractor{supported: true, text: "  \n"}})
		_, err := p.ExtractUploadText(context.Background(), "resume.pdf", []byte("x"))
		assert.ErrorIs(t, err, ErrTextExtractionFailed)
	})

	t.Run("success", func(t *testing.T) {
		p := newTestProcessor(&Components{TextExtractor: stubTextExtractor{supported: true, text: "张三 Go developer"}})
		resp, err := p.ExtractUploadText(context.Background(), "/tmp/uploads/resume.txt", []byte("ignored"))
		require.NoError(t, err)
		assert.Equal(t, "张三 Go developer", resp.Text)
		assert.Equal(t, "resume.txt", resp.FileName)
		assert.Equal(t, 15, resp.Length)
	})
}

func TestUploadErrorsMaskFileName(t *testing.T) {
	p := newTestProcessor(&Components{TextExtractor: stubTextExtractor{supported: true, err: errors.New("bad pdf")}})
	_, err := p.ExtractUploadText(context.Background(), "王小明个人简历.pdf", []byte("x"))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "王小明")
	assert.Contains(t, err.Error(), "王小***简历.pdf")

	err = NewUnsupportedFileError("王小明个人简历.docx")
	assert.NotContains(t, err.Error(), "王小明")
}

func TestAnalyze_DegradedDropsEntitySkills(t *testing.T) {
	extraction := &types.ExtractionResult{
		Entities: []types.Entity{{ID: "Kubernetes", Types: []string{"Software"}}},
	}
	ok := newTestProcessor(&Components{Extractor: &stubExtractor{res: extraction}})
	degraded := newTestProcessor(&Components{Extractor: &stubExtractor{err: errors.New("down")}})

	full, outcome, err := ok.Analyze(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, outcome)
	partial, outcome, err := degraded.Analyze(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDegraded, outcome)

	assert.Len(t, full.Skills, len(partial.Skills)+1, "抽取成功时多出实体技能")
	assert.Equal(t, "Kubernetes", full.Skills[len(full.Skills)-1].Name)
}

func TestReviewProcessor_RealTextRazorClientUnderDefaultConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true, "response": {
			"entities": [{"entityId": "Python", "type": ["ProgrammingLanguage"]}],
			"topics": [{"label": "Marketing", "score": 0.7}],
			"keywords": [{"token": "python"}]
		}}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	require.False(t, cfg.Tracing.Enabled)
	shutdown, err := tracing.InitProvider(context.Background(), cfg.Tracing)
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	cfg.TextRazor.APIKey = "secret"
	cfg.TextRazor.APIURL = srv.URL
	client, err := textrazor.NewClient(cfg.TextRazor)
	require.NoError(t, err)
	p := newTestProcessor(&Components{Extractor: client})

	resp, outcome, err := p.Suggest(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, outcome)
	assert.NotEqual(t, analysis.FallbackSuggestions(), resp.Suggestions)
	assert.Contains(t, resp.Suggestions, "For marketing roles: Showcase campaign results and growth metrics for the channels you owned")

	result, outcome, err := p.Analyze(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, outcome)
	assert.NotEqual(t, analysis.FallbackAnalysis(), result)
	assert.Equal(t, analysis.Analyze(sampleResume, nil).OverallScore, result.OverallScore)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 结果标签取值
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	// AnalysisRequests 按模式 (suggestions/analysis) 和结果统计的请求数
	AnalysisRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_analysis_requests_total",
			Help: "Total number of resume analysis requests",
		},
		[]string{"mode", "outcome"},
	)

	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resume_analysis_duration_seconds",
			Help:    "End-to-end duration of resume analysis in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resume_extraction_duration_seconds",
			Help:    "Duration of external entity extraction calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	FallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_analysis_fallback_total",
			Help: "Total number of requests answered with fallback content",
		},
		[]string{"mode"},
	)

	AdvisorRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_advisor_requests_total",
			Help: "Total number of generative enrichment calls",
		},
		[]string{"outcome"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_extraction_cache_lookups_total",
			Help: "Extraction cache lookups by result",
		},
		[]string{"result"},
	)

	FileExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_file_extractions_total",
			Help: "Uploaded file text extractions by file type and outcome",
		},
		[]string{"file_type", "outcome"},
	)
)

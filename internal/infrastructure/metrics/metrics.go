package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 食譜來源標籤
const (
	SourceUpstream = "upstream"
	SourceFallback = "fallback"
	SourceError    = "error"
)

var (
	// Generation
	GenerationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_generation_requests_total",
			Help: "Recipe generation requests by result source",
		},
		[]string{"source"}, // upstream|fallback|error
	)
	Fallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_fallback_total",
			Help: "Fallback generations by reason",
		},
		[]string{"reason"}, // not_configured|upstream_failure|malformed_response|schema_violation
	)
	InvalidRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recipes_invalid_requests_total",
			Help: "Generation requests rejected by input validation",
		},
	)

	// LLM
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_llm_requests_total",
			Help: "Number of upstream LLM requests by model",
		},
		[]string{"model"},
	)
	UpstreamDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipes_upstream_duration_seconds",
			Help:    "Latency of upstream LLM calls",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 0.25s..32s
		},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_cache_lookups_total",
			Help: "Upstream response cache lookups by result",
		},
		[]string{"result"}, // hit|miss
	)

	// Bookmarks
	BookmarkOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_bookmark_ops_total",
			Help: "Bookmark store operations performed",
		},
		[]string{"op"}, // add|get|list|delete|count|rate
	)

	// Errors
	Errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_errors_total",
			Help: "Errors encountered in components",
		},
		[]string{"component", "type"},
	)
)

func init() {
	prometheus.MustRegister(
		GenerationRequests,
		Fallbacks,
		InvalidRequests,
		LLMRequests,
		UpstreamDurationSeconds,
		CacheLookups,
		BookmarkOps,
		Errors,
	)
}

// Handler 回傳 /metrics 的 HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Generation
func IncGeneration(source string) {
	GenerationRequests.WithLabelValues(source).Inc()
}

func IncFallback(reason string) {
	Fallbacks.WithLabelValues(reason).Inc()
}

func IncInvalidRequest() {
	InvalidRequests.Inc()
}

// LLM
func IncLLMRequest(model string) {
	LLMRequests.WithLabelValues(model).Inc()
}

func ObserveUpstreamDuration(d time.Duration) {
	UpstreamDurationSeconds.Observe(d.Seconds())
}

func IncCacheLookup(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}

// Bookmarks
func IncBookmarkOp(op string) {
	BookmarkOps.WithLabelValues(op).Inc()
}

// Errors
func IncError(component, typ string) {
	Errors.WithLabelValues(component, typ).Inc()
}

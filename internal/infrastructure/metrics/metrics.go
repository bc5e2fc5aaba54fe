package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tools
	ToolInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devkit_tool_invocations_total",
			Help: "Tool invocations by tool and result state",
		},
		[]string{"tool", "state"}, // state: success|failure
	)
	ToolDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devkit_tool_duration_seconds",
			Help:    "Duration of tool invocations",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms..25s
		},
		[]string{"tool"},
	)
	LocalRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devkit_local_rejections_total",
			Help: "Inputs rejected locally before any completion call",
		},
		[]string{"tool", "reason"},
	)

	// LLM
	CompletionRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devkit_completion_requests_total",
			Help: "Completion requests by provider/model",
		},
		[]string{"provider", "model"},
	)
	CompletionDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devkit_completion_duration_seconds",
			Help:    "Duration of completion calls",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9), // 250ms..64s
		},
		[]string{"provider"},
	)

	// Workspace sessions
	WorkspaceSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "devkit_ws_sessions",
			Help: "Current number of open workspace sessions",
		},
	)
	StaleResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devkit_stale_results_total",
			Help: "Results dropped because a newer request superseded them",
		},
		[]string{"tool"},
	)

	// Rate limiting
	RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devkit_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)

	// HTTP
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path"},
	)
	HTTPErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of HTTP request errors.",
		},
		[]string{"method", "path", "status"},
	)

	// Errors
	Errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devkit_errors_total",
			Help: "Errors encountered in components",
		},
		[]string{"component", "type"},
	)
)

func init() {
	prometheus.MustRegister(
		// Tools
		ToolInvocations,
		ToolDurationSeconds,
		LocalRejections,
		// LLM
		CompletionRequests,
		CompletionDurationSeconds,
		// WS
		WorkspaceSessions,
		StaleResults,
		// Rate limiting
		RateLimitHits,
		// HTTP
		HTTPRequestDuration,
		HTTPRequests,
		HTTPErrors,
		// Errors
		Errors,
	)
}

// NewMetricsServer returns a standalone server exposing /metrics on addr.
func NewMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Tools
func ObserveTool(tool, state string, d time.Duration) {
	ToolInvocations.WithLabelValues(tool, state).Inc()
	ToolDurationSeconds.WithLabelValues(tool).Observe(d.Seconds())
}

func IncLocalRejection(tool, reason string) {
	LocalRejections.WithLabelValues(tool, reason).Inc()
}

// LLM
func IncCompletionRequest(provider, model string) {
	CompletionRequests.WithLabelValues(provider, model).Inc()
}

func ObserveCompletionDuration(provider string, d time.Duration) {
	CompletionDurationSeconds.WithLabelValues(provider).Observe(d.Seconds())
}

// Workspace sessions
func IncWorkspaceSessions() {
	WorkspaceSessions.Inc()
}

func DecWorkspaceSessions() {
	WorkspaceSessions.Dec()
}

func IncStaleResult(tool string) {
	StaleResults.WithLabelValues(tool).Inc()
}

// Rate limiting
func IncRateLimitHit(route string) {
	RateLimitHits.WithLabelValues(route).Inc()
}

// HTTP
func ObserveHTTPRequest(method, path, status string, d time.Duration, failed bool) {
	HTTPRequests.WithLabelValues(method, path).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
	if failed {
		HTTPErrors.WithLabelValues(method, path, status).Inc()
	}
}

// Errors
func IncError(component, typ string) {
	Errors.WithLabelValues(component, typ).Inc()
}

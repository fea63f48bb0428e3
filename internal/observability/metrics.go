package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce sync.Once

	// HTTPRequests counts requests by method, path pattern, and status.
	HTTPRequests *prometheus.CounterVec
	// HTTPDuration observes request latency by path pattern.
	HTTPDuration *prometheus.HistogramVec
	// JobsProcessed counts worker outcomes by resulting status.
	JobsProcessed *prometheus.CounterVec
	// JobProcessingSeconds observes handler latency.
	JobProcessingSeconds prometheus.Histogram
	// QueueDepth tracks the last observed pending count.
	QueueDepth prometheus.Gauge
	// MatchRuns counts match-runner invocations.
	MatchRuns prometheus.Counter
	// MatchCandidates observes survivor counts per run.
	MatchCandidates prometheus.Histogram
)

// InitMetrics registers all collectors once per process.
func InitMetrics() {
	metricsOnce.Do(func() {
		HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ses_match_http_requests_total",
			Help: "HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"})

		HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ses_match_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"})

		JobsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ses_match_jobs_processed_total",
			Help: "Extraction jobs processed by resulting status.",
		}, []string{"status"})

		JobProcessingSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ses_match_job_processing_seconds",
			Help:    "Extraction handler latency.",
			Buckets: prometheus.DefBuckets,
		})

		QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ses_match_queue_pending",
			Help: "Pending extraction jobs at last dashboard refresh.",
		})

		MatchRuns = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ses_match_runs_total",
			Help: "Match runner invocations.",
		})

		MatchCandidates = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ses_match_candidates_per_run",
			Help:    "Surviving candidates per match run.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		})

		prometheus.MustRegister(
			HTTPRequests, HTTPDuration, JobsProcessed, JobProcessingSeconds,
			QueueDepth, MatchRuns, MatchCandidates,
		)
	})
}

// HTTPMetricsMiddleware records request counts and latency.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if HTTPRequests == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

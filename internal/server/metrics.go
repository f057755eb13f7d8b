package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/entjos/academic-kickstart/internal/build"
)

var (
	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "academic_build_duration_seconds",
		Help:    "Duration of site builds in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2.0, 12),
	})

	buildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "academic_builds_total",
		Help: "Number of site builds by result",
	}, []string{"result"})

	pagesBuilt = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "academic_pages_built",
		Help: "Number of pages written by the last successful build",
	})

	lastBuildTime = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "academic_last_build_timestamp",
		Help: "Unix timestamp of the last successful build",
	})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "academic_http_request_duration_seconds",
		Help:    "HTTP request latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

func recordBuild(stats build.Stats, err error) {
	if err != nil {
		buildsTotal.WithLabelValues("error").Inc()
		return
	}
	buildsTotal.WithLabelValues("ok").Inc()
	buildDuration.Observe(stats.Duration.Seconds())
	pagesBuilt.Set(float64(stats.Pages))
	lastBuildTime.Set(float64(time.Now().Unix()))
}

// requestMetrics records request latency labelled by method and status.
// Pages are deliberately not a label: every URL on the site would be its
// own series.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		mw := &metricsWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(mw, r)

		status := strconv.Itoa(mw.statusCode)
		httpRequestDuration.WithLabelValues(r.Method, status).Observe(time.Since(start).Seconds())
	})
}

type metricsWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (mw *metricsWriter) WriteHeader(statusCode int) {
	if !mw.written {
		mw.statusCode = statusCode
		mw.written = true
	}
	mw.ResponseWriter.WriteHeader(statusCode)
}

func (mw *metricsWriter) Write(b []byte) (int, error) {
	if !mw.written {
		mw.WriteHeader(http.StatusOK)
	}
	return mw.ResponseWriter.Write(b)
}

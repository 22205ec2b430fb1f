// Package metrics exposes Prometheus counters and histograms for the
// conversion service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "md2docx"

// Recorder captures conversion and request metrics.
type Recorder interface {
	ObserveConversion(format, outcome string)
	ObserveStage(stage string, d time.Duration)
	ObserveArtifact(format string, sizeBytes int)
	ObserveRequest(method, route string, status int, d time.Duration)
}

// Noop implements Recorder without emitting anything.
type Noop struct{}

func (Noop) ObserveConversion(string, string)                   {}
func (Noop) ObserveStage(string, time.Duration)                 {}
func (Noop) ObserveArtifact(string, int)                        {}
func (Noop) ObserveRequest(string, string, int, time.Duration) {}

// Prom implements Recorder backed by Prometheus collectors.
type Prom struct {
	conversions *prometheus.CounterVec
	stages      *prometheus.HistogramVec
	artifacts   *prometheus.HistogramVec
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// Compile-time interface checks.
var (
	_ Recorder = Noop{}
	_ Recorder = (*Prom)(nil)
)

// NewProm builds the collectors and registers them on reg. A nil reg
// falls back to the default registerer.
func NewProm(namespace string, reg prometheus.Registerer) *Prom {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prom{
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Conversion requests by output format and outcome",
		}, []string{"format", "outcome"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		artifacts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "artifact_bytes",
			Help:      "Size of stored artifacts",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"format"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method/route/status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method/route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(p.conversions, p.stages, p.artifacts, p.requests, p.latency)
	return p
}

func (p *Prom) ObserveConversion(format, outcome string) {
	p.conversions.WithLabelValues(format, outcome).Inc()
}

func (p *Prom) ObserveStage(stage string, d time.Duration) {
	p.stages.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *Prom) ObserveArtifact(format string, sizeBytes int) {
	p.artifacts.WithLabelValues(format).Observe(float64(sizeBytes))
}

func (p *Prom) ObserveRequest(method, route string, status int, d time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler returns an HTTP handler for /metrics backed by g. A nil g
// serves the default gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// statusWriter captures the response status for request metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware records one request observation per call, labelled with route.
func Middleware(rec Recorder, route string) func(http.Handler) http.Handler {
	if rec == nil {
		rec = Noop{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			rec.ObserveRequest(r.Method, route, sw.status, time.Since(start))
		})
	}
}

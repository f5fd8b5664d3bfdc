// Package metrics exposes Prometheus collectors for corrector sessions.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trit"

// Metrics holds the collectors of one registry
type Metrics struct {
	registry *prometheus.Registry

	SessionsActive  prometheus.Gauge
	SessionsCreated prometheus.Counter
	Runs            prometheus.Counter
	Steps           prometheus.Counter
	Corrections     prometheus.Counter
	RunCorrections  prometheus.Histogram
	Coherence       *prometheus.GaugeVec
	JobRuns         *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
}

// New creates collectors on a private registry. withRuntime adds the Go and
// process collectors.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of live corrector sessions",
		}),
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total corrector sessions created",
		}),
		Runs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total corrector runs across all sessions",
		}),
		Steps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Total corrector steps across all sessions",
		}),
		Corrections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corrections_total",
			Help:      "Total forbidden states detected and reset to void",
		}),
		RunCorrections: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_corrections",
			Help:      "Corrections performed per run",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 500},
		}),
		Coherence: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_coherence",
			Help:      "Current coherence score per session",
		}, []string{"session"}),
		JobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled job runs by job and status",
		}, []string{"job", "status"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code",
		}, []string{"method", "code"}),
	}
}

// Registry returns the registry backing m
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SessionCreated records a new session
func (m *Metrics) SessionCreated(id string, coherence float64) {
	m.SessionsCreated.Inc()
	m.SessionsActive.Inc()
	m.Coherence.WithLabelValues(id).Set(coherence)
}

// SessionRun records one completed run
func (m *Metrics) SessionRun(id string, steps, corrections uint32, coherence float64) {
	m.Runs.Inc()
	m.Steps.Add(float64(steps))
	m.RunCorrections.Observe(float64(corrections))
	m.Coherence.WithLabelValues(id).Set(coherence)
}

// LeakCorrected records a single correction
func (m *Metrics) LeakCorrected() {
	m.Corrections.Inc()
}

// JobRun records one scheduled job execution
func (m *Metrics) JobRun(job string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.JobRuns.WithLabelValues(job, status).Inc()
}

// HTTPRequest records one served request
func (m *Metrics) HTTPRequest(method string, code int) {
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// SessionDeleted drops the per-session series
func (m *Metrics) SessionDeleted(id string) {
	m.SessionsActive.Dec()
	m.Coherence.DeleteLabelValues(id)
}

// Package metrics exposes Prometheus instrumentation for pipeline stages.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/people-analytics/workforce-planner/internal/diagnostics"
)

const namespace = "workforce_planner"

// Label names.
const (
	LabelStage   = "stage"
	LabelKind    = "kind"
	LabelOutcome = "outcome"
)

// Stage outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeRefused = "refused"
	OutcomeError   = "error"
)

// Recorder records stage durations, outcomes and diagnostic counts on its own registry.
type Recorder struct {
	registry    *prometheus.Registry
	duration    *prometheus.HistogramVec
	runs        *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	sessions    prometheus.Gauge
}

// NewRecorder creates a Recorder with every collector registered on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent computing a pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{LabelStage}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Number of pipeline stage computations by outcome.",
		}, []string{LabelStage, LabelOutcome}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_diagnostics_total",
			Help:      "Number of diagnostic rows emitted by a pipeline stage.",
		}, []string{LabelStage, LabelKind}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Number of open planning sessions.",
		}),
	}
	r.registry.MustRegister(r.duration, r.runs, r.diagnostics, r.sessions)
	return r
}

// Registry returns the registry the collectors are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveStage records one computation of stage.
// A nil Recorder is a no-op.
func (r *Recorder) ObserveStage(stage string, elapsed time.Duration, report diagnostics.Report, err error) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(stage).Observe(elapsed.Seconds())
	r.runs.WithLabelValues(stage, Outcome(err)).Inc()
	for _, d := range report.Items {
		r.diagnostics.WithLabelValues(stage, string(d.Kind)).Inc()
	}
}

// SetSessions sets the open sessions gauge.
func (r *Recorder) SetSessions(n int) {
	if r == nil {
		return
	}
	r.sessions.Set(float64(n))
}

// Outcome maps a stage error to its outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case diagnostics.IsInputIncomplete(err):
		return OutcomeRefused
	default:
		return OutcomeError
	}
}

// Package metrics counts translation outcomes. Counters live in a private
// registry so batch runs can print exactly the ebtables-translate series.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Outcomes of one invocation.
const (
	OutcomeTranslated       = "translated"
	OutcomeUntranslated     = "untranslated"
	OutcomeParameterProblem = "parameter_problem"
	OutcomeOtherProblem     = "other_problem"
)

// Registry holds all translation metrics.
type Registry struct {
	reg *prometheus.Registry

	Invocations *prometheus.CounterVec
	Extensions  *prometheus.CounterVec
	Lines       prometheus.Counter
	Duration    prometheus.Histogram
}

// New creates an independent registry, one per batch run.
func New() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}
	factory := promauto.With(r.reg)

	r.Invocations = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "ebtranslate_invocations_total",
		Help: "Invocations by command letter and outcome",
	}, []string{"command", "outcome"})

	r.Extensions = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "ebtranslate_extension_uses_total",
		Help: "Extensions attached to translated or attempted rules",
	}, []string{"kind", "name"})

	r.Lines = factory.NewCounter(prometheus.CounterOpts{
		Name: "ebtranslate_output_lines_total",
		Help: "Lines written to standard output",
	})

	r.Duration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "ebtranslate_invocation_duration_seconds",
		Help:    "Time spent parsing and rendering one invocation",
		Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
	})

	return r
}

// Observe records one finished invocation.
func (r *Registry) Observe(command, outcome string, lines int, elapsed time.Duration) {
	if command == "" {
		command = "none"
	}
	r.Invocations.WithLabelValues(command, outcome).Inc()
	r.Lines.Add(float64(lines))
	r.Duration.Observe(elapsed.Seconds())
}

// ObserveExtension records one extension attached to a rule.
func (r *Registry) ObserveExtension(kind, name string) {
	r.Extensions.WithLabelValues(kind, name).Inc()
}

// Gatherer exposes the registry, e.g. to promhttp or testutil.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteText writes every series in the Prometheus text format.
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Package metrics records matching activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"kics/internal/matching"
)

// Recorder implements matching.Observer on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	solveDuration *prometheus.HistogramVec
	solvePairs    *prometheus.GaugeVec
	fallbacks     *prometheus.CounterVec
	edits         *prometheus.CounterVec
	meanScore     prometheus.Gauge
}

var _ matching.Observer = (*Recorder)(nil)

// New creates a Recorder with a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		solveDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kics_matching_solve_duration_seconds",
			Help:    "Time to build the initial matching",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		}, []string{"mode"}),
		solvePairs: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kics_matching_solve_pairs",
			Help: "Pairs in the last matching built, before any fallback",
		}, []string{"mode"}),
		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kics_matching_fallbacks_total",
			Help: "Matchings replaced by the identity matching",
		}, []string{"mode"}),
		edits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kics_matching_edits_total",
			Help: "Interactive matching edits",
		}, []string{"op"}),
		meanScore: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kics_matching_mean_score",
			Help: "Mean similarity of assigned estimates after the last edit",
		}),
	}
}

// Registry returns the registry holding the metrics.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) SolveFinished(mode matching.Mode, elapsed time.Duration, pairs int) {
	r.solveDuration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
	r.solvePairs.WithLabelValues(string(mode)).Set(float64(pairs))
}

func (r *Recorder) FallbackUsed(mode matching.Mode, _ string) {
	r.fallbacks.WithLabelValues(string(mode)).Inc()
}

func (r *Recorder) MatchingEdited(op string, mean float64) {
	r.edits.WithLabelValues(op).Inc()
	r.meanScore.Set(mean)
}

// ObserveScore sets the mean score gauge without counting an edit.
func (r *Recorder) ObserveScore(mean float64) {
	r.meanScore.Set(mean)
}

// WriteTextfile writes the metrics in text exposition format to path, for
// the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// Package metrics records segmentation and sweep counters in a private
// Prometheus registry that can be written to a node-exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/verte-zerg/orthostat/internal/ortho"
)

// Recorder owns the registry and collectors. A nil *Recorder records nothing.
type Recorder struct {
	registry   *prometheus.Registry
	segments   *prometheus.CounterVec
	candidates *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewRecorder registers the orthostat collectors in a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		segments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orthostat_segments_total",
			Help: "Words segmented, by rule set role and outcome.",
		}, []string{"role", "outcome"}),
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orthostat_sweep_candidates_total",
			Help: "Sweep candidates scored, by sweep kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orthostat_candidate_seconds",
			Help:    "Time spent scoring one sweep candidate.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"kind"}),
	}
	r.registry.MustRegister(r.segments, r.candidates, r.duration)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Instrument wraps seg so every segmentation is counted under role.
func (r *Recorder) Instrument(seg ortho.Segmenter, role string) ortho.Segmenter {
	if r == nil {
		return seg
	}
	return &instrumented{
		inner:   seg,
		matched: r.segments.WithLabelValues(role, "matched"),
		failed:  r.segments.WithLabelValues(role, "failed"),
	}
}

// ObserveCandidate counts one scored candidate of kind and its duration.
func (r *Recorder) ObserveCandidate(kind string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.candidates.WithLabelValues(kind).Inc()
	r.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// WriteTextfile writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

type instrumented struct {
	inner   ortho.Segmenter
	matched prometheus.Counter
	failed  prometheus.Counter
}

func (s *instrumented) Segment(word string) ([]ortho.Chord, bool) {
	chords, ok := s.inner.Segment(word)
	if ok {
		s.matched.Inc()
	} else {
		s.failed.Inc()
	}
	return chords, ok
}

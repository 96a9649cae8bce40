// Package metrics exposes Prometheus collectors for corpus fits and
// recommendation requests. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "job_matcher"

// Metrics holds the collectors registered for one engine.
type Metrics struct {
	fits            *prometheus.CounterVec
	fitDuration     prometheus.Histogram
	corpusSize      prometheus.Gauge
	vocabularySize  prometheus.Gauge
	modelVersion    prometheus.Gauge
	recommendations *prometheus.CounterVec
	recommendTime   prometheus.Histogram
}

// New registers the collectors with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		fits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fits_total",
			Help:      "Corpus fits by result.",
		}, []string{"result"}),
		fitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fit_duration_seconds",
			Help:      "Time spent fitting the corpus vector space.",
			Buckets:   prometheus.DefBuckets,
		}),
		corpusSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_postings",
			Help:      "Number of postings in the published snapshot.",
		}),
		vocabularySize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vocabulary_terms",
			Help:      "Number of vocabulary terms in the published snapshot.",
		}),
		modelVersion: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_version",
			Help:      "Version of the published snapshot.",
		}),
		recommendations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendation requests by outcome.",
		}, []string{"outcome"}),
		recommendTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommend_duration_seconds",
			Help:      "Time spent scoring and ranking one profile.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}
}

// ObserveFit records a published snapshot.
func (m *Metrics) ObserveFit(postings, vocabulary int, version uint64, took time.Duration) {
	if m == nil {
		return
	}
	m.fits.WithLabelValues("ok").Inc()
	m.fitDuration.Observe(took.Seconds())
	m.corpusSize.Set(float64(postings))
	m.vocabularySize.Set(float64(vocabulary))
	m.modelVersion.Set(float64(version))
}

// ObserveFitError records a fit that did not publish a snapshot.
func (m *Metrics) ObserveFitError() {
	if m == nil {
		return
	}
	m.fits.WithLabelValues("error").Inc()
}

// ObserveRecommendation records one scored profile.
func (m *Metrics) ObserveRecommendation(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(outcome).Inc()
	m.recommendTime.Observe(took.Seconds())
}

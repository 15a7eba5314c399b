package metrics

import (
	"time"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sentiment"

type Metrics struct {
	analyses         *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	records          prometheus.Counter
	emptyRecords     prometheus.Counter
	predictions      *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analyses run, by outcome.",
		}, []string{"status"}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of one analysis from prediction to assembly.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_analyzed_total",
			Help:      "Records included in successful analyses.",
		}),
		emptyRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_records_total",
			Help:      "Records whose normalized text was empty.",
		}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Per-model predictions, by label.",
		}, []string{"model", "label"}),
	}

	reg.MustRegister(m.analyses, m.analysisDuration, m.records, m.emptyRecords, m.predictions)
	return m
}

func (m *Metrics) ObserveSuccess(elapsed time.Duration, records []models.AnnotatedRecord) {
	m.analyses.WithLabelValues("success").Inc()
	m.analysisDuration.Observe(elapsed.Seconds())
	m.records.Add(float64(len(records)))

	for _, r := range records {
		if r.NormalizedText == "" {
			m.emptyRecords.Inc()
		}
		for _, p := range r.Predictions {
			m.predictions.WithLabelValues(p.Model, p.Label.String()).Inc()
		}
	}
}

func (m *Metrics) ObserveFailure(elapsed time.Duration) {
	m.analyses.WithLabelValues("failure").Inc()
	m.analysisDuration.Observe(elapsed.Seconds())
}

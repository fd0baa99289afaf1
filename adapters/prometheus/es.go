package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/userstore-go/core/es"
	"github.com/codewandler/userstore-go/core/metrics"
)

// esMetrics implements es.ESMetrics using Prometheus.
type esMetrics struct {
	// Store metrics
	storeAppendDuration *prometheus.HistogramVec
	eventsAppended      *prometheus.CounterVec

	// Repository metrics
	repoSaveDuration *prometheus.HistogramVec
	saveFailures     *prometheus.CounterVec
	eventsPublished  *prometheus.CounterVec
}

// NewESMetrics creates a new Prometheus implementation of ESMetrics.
func NewESMetrics(reg prometheus.Registerer) es.ESMetrics {
	m := &esMetrics{
		storeAppendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "userstore_es_store_append_duration_seconds",
			Help:    "Event store append latency in seconds",
			Buckets: defaultBuckets,
		}, []string{"aggregate_type"}),

		eventsAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "userstore_es_events_appended_total",
			Help: "Total number of events appended",
		}, []string{"aggregate_type"}),

		repoSaveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "userstore_es_repo_save_duration_seconds",
			Help:    "Repository save latency in seconds",
			Buckets: defaultBuckets,
		}, []string{"aggregate_type"}),

		saveFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "userstore_es_save_failures_total",
			Help: "Total number of failed saves by stage",
		}, []string{"aggregate_type", "stage"}),

		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "userstore_es_events_published_total",
			Help: "Total number of events handed to the publisher",
		}, []string{"aggregate_type"}),
	}

	reg.MustRegister(
		m.storeAppendDuration,
		m.eventsAppended,
		m.repoSaveDuration,
		m.saveFailures,
		m.eventsPublished,
	)

	return m
}

func (m *esMetrics) StoreAppendDuration(aggType string) metrics.Timer {
	return newTimer(m.storeAppendDuration.WithLabelValues(aggType))
}

func (m *esMetrics) EventsAppended(aggType string, count int) {
	m.eventsAppended.WithLabelValues(aggType).Add(float64(count))
}

func (m *esMetrics) RepoSaveDuration(aggType string) metrics.Timer {
	return newTimer(m.repoSaveDuration.WithLabelValues(aggType))
}

func (m *esMetrics) SaveFailed(aggType string, stage es.SaveStage) {
	m.saveFailures.WithLabelValues(aggType, string(stage)).Inc()
}

func (m *esMetrics) EventsPublished(aggType string, count int) {
	m.eventsPublished.WithLabelValues(aggType).Add(float64(count))
}

var _ es.ESMetrics = (*esMetrics)(nil)

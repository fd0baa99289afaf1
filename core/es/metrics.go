package es

import "github.com/codewandler/userstore-go/core/metrics"

// ESMetrics defines the metrics interface for event persistence.
// Implementations must be safe for concurrent use.
type ESMetrics interface {
	// Store operations
	StoreAppendDuration(aggType string) metrics.Timer
	EventsAppended(aggType string, count int)

	// Repository operations
	RepoSaveDuration(aggType string) metrics.Timer
	SaveFailed(aggType string, stage SaveStage)
	EventsPublished(aggType string, count int)
}

// nopESMetrics is a no-op implementation of ESMetrics.
type nopESMetrics struct{}

func (nopESMetrics) StoreAppendDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopESMetrics) EventsAppended(string, int)               {}
func (nopESMetrics) RepoSaveDuration(string) metrics.Timer    { return metrics.NopTimer() }
func (nopESMetrics) SaveFailed(string, SaveStage)             {}
func (nopESMetrics) EventsPublished(string, int)              {}

// NopESMetrics returns a no-op ESMetrics implementation.
func NopESMetrics() ESMetrics { return nopESMetrics{} }

// ESMetricsOption sets the metrics for ES components.
type ESMetricsOption struct{ m ESMetrics }

// WithMetrics sets the metrics implementation for ES components.
func WithMetrics(m ESMetrics) ESMetricsOption { return ESMetricsOption{m: m} }

func (o ESMetricsOption) applyToEnv(e *envOptions)      { e.metrics = o.m }
func (o ESMetricsOption) applyToRepository(r *repoOpts) { r.metrics = o.m }

// Package prometheus provides Prometheus implementations of the metrics interfaces.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/userstore-go/core/metrics"
)

// timer wraps a Prometheus histogram to implement the Timer interface.
type timer struct {
	h     prometheus.Observer
	start time.Time
}

func newTimer(h prometheus.Observer) metrics.Timer {
	return &timer{h: h, start: time.Now()}
}

func (t *timer) ObserveDuration() {
	t.h.Observe(time.Since(t.start).Seconds())
}

// counter wraps a Prometheus counter to implement the Counter interface.
type counter struct{ c prometheus.Counter }

func (c counter) Inc()          { c.c.Inc() }
func (c counter) Add(v float64) { c.c.Add(v) }

// NewCounter registers a plain counter with reg.
func NewCounter(reg prometheus.Registerer, name, help string) metrics.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	reg.MustRegister(c)
	return counter{c: c}
}

// Default histogram buckets for latency metrics (in seconds).
var defaultBuckets = []float64{
	.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10,
}

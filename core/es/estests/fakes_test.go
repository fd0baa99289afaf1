package estests

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/codewandler/userstore-go/core/es"
	"github.com/codewandler/userstore-go/core/metrics"
)

// callLog records the order in which store and publisher are invoked.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type recordingStore struct {
	log     *callLog
	err     error
	batches [][]es.EventRecord
}

func (s *recordingStore) AppendToStream(_ context.Context, streamID string, records []es.EventRecord) error {
	types := make([]string, len(records))
	for i, r := range records {
		types[i] = r.Type
	}
	s.log.add("append %s [%s]", streamID, strings.Join(types, ","))
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, records)
	return nil
}

type recordingPublisher struct {
	log *callLog
	// failAt makes the n-th publish call (1-based) fail with err.
	failAt int
	err    error
	n      int
}

func (p *recordingPublisher) Publish(_ context.Context, event any) error {
	p.n++
	p.log.add("publish %s", es.EventTypeOf(event))
	if p.failAt > 0 && p.n == p.failAt {
		return p.err
	}
	return nil
}

type countingMetrics struct {
	mu        sync.Mutex
	appended  int
	published int
	failed    map[es.SaveStage]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{failed: map[es.SaveStage]int{}}
}

func (m *countingMetrics) StoreAppendDuration(string) metrics.Timer { return metrics.NopTimer() }
func (m *countingMetrics) RepoSaveDuration(string) metrics.Timer    { return metrics.NopTimer() }
func (m *countingMetrics) EventsAppended(_ string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appended += n
}
func (m *countingMetrics) EventsPublished(_ string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published += n
}
func (m *countingMetrics) SaveFailed(_ string, stage es.SaveStage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[stage]++
}

var _ es.ESMetrics = (*countingMetrics)(nil)

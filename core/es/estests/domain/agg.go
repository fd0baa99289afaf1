package domain

import (
	"errors"

	"github.com/codewandler/userstore-go/core/es"
	"github.com/codewandler/userstore-go/core/es/assert"
)

var ErrCounterLimit = errors.New("counter cannot exceed 24")

type (
	TestAgg struct {
		es.BaseAggregate

		Counter        uint16
		NumIncrements  int
		NumResets      int
		NumTotalEvents int
	}

	// Event is implemented by the TestAgg events only.
	Event interface{ isTestAggEvent() }

	Incremented struct {
		Inc uint8 `json:"inc"`
	}
	Reset struct {
		Reason string `json:"reason,omitempty"`
	}
)

func (*Incremented) isTestAggEvent() {}
func (*Reset) isTestAggEvent()       {}

func (e *Incremented) Validate() error {
	if e.Inc == 0 {
		return errors.New("inc must be positive")
	}
	return nil
}

func (a *TestAgg) GetAggType() string { return "test_agg" }

func Register(r es.Registrar) {
	es.RegisterEvents(r, es.Event[Incremented](), es.Event[Reset]())
}

func (a *TestAgg) Apply(event any) error {
	switch e := event.(type) {
	case *Incremented:
		a.Counter += uint16(e.Inc)
		a.NumIncrements++
	case *Reset:
		a.Counter = 0
		a.NumResets++
	default:
		return es.UnsupportedEvent(a, event)
	}
	a.NumTotalEvents++
	return nil
}

// === Commands ===

func (a *TestAgg) Reset() error { return a.raise(&Reset{}) }
func (a *TestAgg) Inc() error   { return a.IncBy(1) }
func (a *TestAgg) IncBy(v uint8) error {
	return a.Checked(
		assert.OrErr(assert.True(int(a.Counter)+int(v) <= 24, "counter <= 24"), ErrCounterLimit),
		es.RaiseAndApplyD(a, &Incremented{Inc: v}),
	)
}

func (a *TestAgg) raise(events ...Event) error {
	evs := make([]any, len(events))
	for i, e := range events {
		evs[i] = e
	}
	return es.RaiseAndApply(a, evs...)
}

// === Read ===

func (a *TestAgg) Count() int {
	return int(a.Counter)
}

func NewTestAgg(id string) *TestAgg {
	a := &TestAgg{}
	a.SetID(id)
	return a
}

var _ es.Aggregate = (*TestAgg)(nil)

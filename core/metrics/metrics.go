// Package metrics defines the instrumentation primitives used by the core
// packages. Backends (see adapters/prometheus) implement them; the core only
// ever talks to these interfaces.
package metrics

// Counter only goes up.
type Counter interface {
	Inc()
	Add(delta float64)
}

// Timer measures one operation. Create it when the operation starts and call
// ObserveDuration when it ends:
//
//	defer m.RepoSaveDuration("User").ObserveDuration()
type Timer interface {
	ObserveDuration()
}

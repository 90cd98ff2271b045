// Package metrics is the tiny instrumentation seam shared by the pipeline
// stages. Core code records counters and histograms against a process-global
// Backend; the default backend discards everything, so instrumented code pays
// nothing when no backend is configured.
package metrics

import "sync/atomic"

// Labels are the dimensional tags attached to one observation.
type Labels map[string]string

// Backend receives observations. Implementations must be safe for concurrent
// use.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)

	// Flush forces buffered observations out. Backends that submit
	// synchronously may implement this as a no-op.
	Flush() error
}

// nopBackend discards all observations.
type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend atomic.Value // Backend

func init() {
	backend.Store(Backend(nopBackend{}))
}

// SetBackend installs the process-wide backend. Call once at startup, before
// any stage runs; passing nil restores the discard backend.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	backend.Store(b)
}

func current() Backend { return backend.Load().(Backend) }

// IncCounter adds delta to a named counter.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram records one sample of a named distribution.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// Flush flushes the active backend.
func Flush() error { return current().Flush() }

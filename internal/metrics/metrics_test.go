package metrics

import (
	"sync"
	"testing"
)

type recordingBackend struct {
	mu       sync.Mutex
	counters map[string]float64
	samples  map[string][]float64
	flushed  int
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		counters: map[string]float64{},
		samples:  map[string][]float64{},
	}
}

func (b *recordingBackend) IncCounter(name string, delta float64, labels Labels) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counters[name] += delta
}

func (b *recordingBackend) ObserveHistogram(name string, value float64, labels Labels) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples[name] = append(b.samples[name], value)
}

func (b *recordingBackend) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushed++
	return nil
}

func TestPackageLevelForwarding(t *testing.T) {
	b := newRecordingBackend()
	SetBackend(b)
	t.Cleanup(func() { SetBackend(nil) })

	IncCounter("pipeline_batches_total", 1, nil)
	IncCounter("pipeline_batches_total", 2, nil)
	ObserveHistogram("pipeline_stage_duration_seconds", 0.25, Labels{"stage": "load"})
	if err := Flush(); err != nil {
		t.Fatalf("Flush() err=%v", err)
	}

	if got := b.counters["pipeline_batches_total"]; got != 3 {
		t.Fatalf("counter=%v, want 3", got)
	}
	if got := b.samples["pipeline_stage_duration_seconds"]; len(got) != 1 || got[0] != 0.25 {
		t.Fatalf("samples=%v, want [0.25]", got)
	}
	if b.flushed != 1 {
		t.Fatalf("flushed=%d, want 1", b.flushed)
	}
}

func TestNilBackendRestoresDiscard(t *testing.T) {
	SetBackend(nil)

	// Must not panic with the discard backend in place.
	IncCounter("pipeline_batches_total", 1, nil)
	ObserveHistogram("pipeline_stage_duration_seconds", 1, nil)
	if err := Flush(); err != nil {
		t.Fatalf("Flush() err=%v", err)
	}
}

// Package history keeps a short, bounded window of recent airspeed samples
// for gust analysis. Samples age out after a configurable retention and the
// window never grows past its capacity, so memory use is fixed regardless
// of how long the service runs.
package history

import (
	"sync"
	"sync/atomic"
	"time"
)

// sample is one timestamped airspeed reading.
type sample struct {
	value float64
	at    time.Time
}

// Recorder is a thread-safe sliding window of airspeed samples, oldest
// first. Capacity is enforced on write; age is enforced lazily on read and
// write so no background goroutine is needed for a window this small.
type Recorder struct {
	mu      sync.RWMutex
	samples []sample

	capacity int
	maxAge   time.Duration

	totalRecorded atomic.Int64
	totalPruned   atomic.Int64
}

// Stats holds recorder counters.
type Stats struct {
	Samples       int
	Capacity      int
	TotalRecorded int64
	TotalPruned   int64
}

const (
	defaultCapacity = 60
	defaultMaxAge   = 60 * time.Second
)

// NewRecorder creates a recorder. Non-positive capacity or maxAge fall back
// to defaults sized for a 10 Hz sampler over one minute.
func NewRecorder(capacity int, maxAge time.Duration) *Recorder {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	return &Recorder{
		samples:  make([]sample, 0, capacity),
		capacity: capacity,
		maxAge:   maxAge,
	}
}

// Record appends a sample with the current time.
func (r *Recorder) Record(value float64) {
	r.RecordAt(value, time.Now())
}

// RecordAt appends a sample taken at the given time, evicting expired and
// over-capacity samples from the old end.
func (r *Recorder) RecordAt(value float64, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(at)
	if len(r.samples) >= r.capacity {
		pruned := len(r.samples) - r.capacity + 1
		r.samples = r.samples[pruned:]
		r.totalPruned.Add(int64(pruned))
	}

	r.samples = append(r.samples, sample{value: value, at: at})
	r.totalRecorded.Add(1)
}

// Snapshot returns the current window values oldest first. The returned
// slice is a copy and safe to hold.
func (r *Recorder) Snapshot() []float64 {
	return r.SnapshotAt(time.Now())
}

// SnapshotAt returns the window as of a given time, excluding samples that
// have aged out by then.
func (r *Recorder) SnapshotAt(now time.Time) []float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := now.Add(-r.maxAge)
	out := make([]float64, 0, len(r.samples))
	for _, s := range r.samples {
		if s.at.Before(cutoff) {
			continue
		}
		out = append(out, s.value)
	}
	return out
}

// Len returns the number of retained samples, including any that have aged
// past retention but not yet been pruned by a write.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.samples)
}

// Clear drops all samples.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totalPruned.Add(int64(len(r.samples)))
	r.samples = r.samples[:0]
}

// Stats returns recorder counters.
func (r *Recorder) Stats() Stats {
	r.mu.RLock()
	n := len(r.samples)
	r.mu.RUnlock()

	return Stats{
		Samples:       n,
		Capacity:      r.capacity,
		TotalRecorded: r.totalRecorded.Load(),
		TotalPruned:   r.totalPruned.Load(),
	}
}

// pruneLocked drops samples older than retention. Caller holds the write
// lock.
func (r *Recorder) pruneLocked(now time.Time) {
	cutoff := now.Add(-r.maxAge)
	i := 0
	for i < len(r.samples) && r.samples[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		r.samples = r.samples[i:]
		r.totalPruned.Add(int64(i))
	}
}

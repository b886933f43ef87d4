// Package store keeps a bounded in-memory log of computed performance
// reports so the service can answer "what just happened" queries (latest
// report, a time-windowed slice, aggregate stats) without any external
// storage.
package store

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harryz8/XplaneFlightData/internal/perf"
	"github.com/harryz8/XplaneFlightData/pkg/models"
)

// ---------------------------------------------------------------------------
// Time Range
// ---------------------------------------------------------------------------

// TimeRange specifies a time window for queries. A zero Start or End leaves
// that side of the window open.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains checks if a timestamp falls within the range.
func (tr TimeRange) Contains(t time.Time) bool {
	if tr.Start.IsZero() && tr.End.IsZero() {
		return true
	}
	if tr.Start.IsZero() {
		return !t.After(tr.End)
	}
	if tr.End.IsZero() {
		return !t.Before(tr.Start)
	}
	return !t.Before(tr.Start) && !t.After(tr.End)
}

// ---------------------------------------------------------------------------
// Records and Results
// ---------------------------------------------------------------------------

// Record is one logged report together with the state it was computed from.
type Record struct {
	Timestamp time.Time          `json:"timestamp"`
	State     models.FlightState `json:"state"`
	Atmos     models.Atmosphere  `json:"atmosphere"`
	Report    perf.Report        `json:"report"`
}

// Result holds records matching a query, oldest first.
type Result struct {
	Records []Record      `json:"records"`
	Total   int           `json:"total"` // matches before the limit was applied
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Stats summarizes the log and the worst conditions it has seen.
type Stats struct {
	Records        int       `json:"records"`
	Capacity       int       `json:"capacity"`
	TotalAppended  int64     `json:"total_appended"`
	TotalEvicted   int64     `json:"total_evicted"`
	MinMarginPct   float64   `json:"min_margin_pct"`  // lowest envelope margin ever logged
	MaxGustFactor  float64   `json:"max_gust_factor"` // strongest gust ever logged
	MaxWindSpeed   float64   `json:"max_wind_speed"`  // strongest wind ever logged
	FirstTimestamp time.Time `json:"first_timestamp"`
	LastTimestamp  time.Time `json:"last_timestamp"`
}

// ---------------------------------------------------------------------------
// Report Log
// ---------------------------------------------------------------------------

const defaultCapacity = 4096

// Log is a fixed-capacity, thread-safe report log. When full, appending
// evicts the oldest record. Records are kept in append order, which is also
// time order for a single producer.
type Log struct {
	mu      sync.RWMutex
	records []Record

	capacity int

	totalAppended atomic.Int64
	totalEvicted  atomic.Int64

	// Low/high water marks, guarded by mu.
	minMargin    float64
	maxGust      float64
	maxWindSpeed float64

	// Optional destination for evicted records.
	archive *Archive
}

// NewLog creates a report log. Non-positive capacity falls back to the
// default.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Log{
		records:   make([]Record, 0, capacity),
		capacity:  capacity,
		minMargin: 100,
	}
}

// SetArchive routes evicted records into an archive instead of dropping
// them.
func (l *Log) SetArchive(a *Archive) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.archive = a
}

// archiveLocked hands evicted records to the archive, if one is attached.
func (l *Log) archiveLocked(evicted []Record) {
	if l.archive == nil || len(evicted) == 0 {
		return
	}
	if err := l.archive.Store(evicted); err != nil {
		log.Printf("Archiving %d evicted records failed: %v", len(evicted), err)
	}
}

// Append adds a record, evicting the oldest if the log is full.
func (l *Log) Append(rec Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.records) >= l.capacity {
		drop := len(l.records) - l.capacity + 1
		l.archiveLocked(l.records[:drop])
		l.records = append(l.records[:0], l.records[drop:]...)
		l.totalEvicted.Add(int64(drop))
	}
	l.records = append(l.records, rec)
	l.totalAppended.Add(1)

	if rec.Report.Envelope.MinMarginPct < l.minMargin {
		l.minMargin = rec.Report.Envelope.MinMarginPct
	}
	if rec.Report.Wind.GustFactor > l.maxGust {
		l.maxGust = rec.Report.Wind.GustFactor
	}
	if rec.Report.Wind.SpeedKts > l.maxWindSpeed {
		l.maxWindSpeed = rec.Report.Wind.SpeedKts
	}
}

// EvictOldest drops the oldest n records and reports how many were dropped.
// Used for shedding under memory pressure.
func (l *Log) EvictOldest(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || len(l.records) == 0 {
		return 0
	}
	if n > len(l.records) {
		n = len(l.records)
	}
	l.archiveLocked(l.records[:n])
	l.records = append(l.records[:0], l.records[n:]...)
	l.totalEvicted.Add(int64(n))
	return n
}

// Latest returns the most recent record, if any.
func (l *Log) Latest() (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.records) == 0 {
		return Record{}, false
	}
	return l.records[len(l.records)-1], true
}

// Query returns records inside the time range, oldest first, up to
// maxResults (0 means no limit). Total counts all matches regardless of the
// limit.
func (l *Log) Query(tr TimeRange, maxResults int) Result {
	start := time.Now()

	l.mu.RLock()
	matched := make([]Record, 0, 64)
	total := 0
	for _, rec := range l.records {
		if !tr.Contains(rec.Timestamp) {
			continue
		}
		total++
		if maxResults > 0 && len(matched) >= maxResults {
			continue
		}
		matched = append(matched, rec)
	}
	l.mu.RUnlock()

	return Result{
		Records: matched,
		Total:   total,
		Elapsed: time.Since(start),
	}
}

// Len returns the number of retained records.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Stats returns log counters and water marks.
func (l *Log) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Stats{
		Records:       len(l.records),
		Capacity:      l.capacity,
		TotalAppended: l.totalAppended.Load(),
		TotalEvicted:  l.totalEvicted.Load(),
		MinMarginPct:  l.minMargin,
		MaxGustFactor: l.maxGust,
		MaxWindSpeed:  l.maxWindSpeed,
	}
	if len(l.records) > 0 {
		s.FirstTimestamp = l.records[0].Timestamp
		s.LastTimestamp = l.records[len(l.records)-1].Timestamp
	}
	return s
}

package metrics

import (
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ---------------------------------------------------------------------------
// Prometheus-compatible Metrics Registry
// ---------------------------------------------------------------------------

// Registry holds all application metrics.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*Counter
	gauges   map[string]*Gauge
	histos   map[string]*Histogram

	startTime time.Time
}

// NewRegistry creates a new metrics registry.
func NewRegistry() *Registry {
	return &Registry{
		counters:  make(map[string]*Counter),
		gauges:    make(map[string]*Gauge),
		histos:    make(map[string]*Histogram),
		startTime: time.Now(),
	}
}

// Counter returns or creates a counter metric.
func (r *Registry) Counter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.counters[name]; ok {
		return c
	}
	c := &Counter{name: name, help: help}
	r.counters[name] = c
	return c
}

// Gauge returns or creates a gauge metric.
func (r *Registry) Gauge(name, help string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.gauges[name]; ok {
		return g
	}
	g := &Gauge{name: name, help: help}
	r.gauges[name] = g
	return g
}

// Histogram returns or creates a histogram metric.
func (r *Registry) Histogram(name, help string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.histos[name]; ok {
		return h
	}
	h := NewHistogram(name, help, buckets)
	r.histos[name] = h
	return h
}

// Export returns all metrics in Prometheus text format.
func (r *Registry) Export() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	writeGauge := func(name, help string, format string, v interface{}) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s gauge\n", name, help, name)
		fmt.Fprintf(&b, "%s "+format+"\n", name, v)
	}

	writeGauge("go_memstats_alloc_bytes", "Number of bytes allocated and still in use.", "%d", memStats.Alloc)
	writeGauge("go_memstats_heap_alloc_bytes", "Number of heap bytes allocated and still in use.", "%d", memStats.HeapAlloc)
	writeGauge("go_memstats_sys_bytes", "Number of bytes obtained from system.", "%d", memStats.Sys)
	writeGauge("go_gc_duration_seconds", "Summary of GC pause durations.", "%f", float64(memStats.PauseTotalNs)/1e9)
	writeGauge("go_goroutines", "Number of goroutines.", "%d", runtime.NumGoroutine())
	writeGauge("process_uptime_seconds", "Time since process start.", "%f", time.Since(r.startTime).Seconds())

	for _, c := range r.counters {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s counter\n", c.name, c.help, c.name)
		fmt.Fprintf(&b, "%s %d\n", c.name, c.value.Load())
	}
	for _, g := range r.gauges {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s gauge\n", g.name, g.help, g.name)
		fmt.Fprintf(&b, "%s %f\n", g.name, g.Get())
	}
	for _, h := range r.histos {
		b.WriteString(h.Export())
	}

	return b.String()
}

// ---------------------------------------------------------------------------
// Counter
// ---------------------------------------------------------------------------

// Counter is a monotonically increasing metric.
type Counter struct {
	name  string
	help  string
	value atomic.Int64
}

// Inc increments the counter by 1.
func (c *Counter) Inc() {
	c.value.Add(1)
}

// Add adds the given value to the counter.
func (c *Counter) Add(v int64) {
	c.value.Add(v)
}

// Value returns the current counter value.
func (c *Counter) Value() int64 {
	return c.value.Load()
}

// ---------------------------------------------------------------------------
// Gauge
// ---------------------------------------------------------------------------

// Gauge is a metric that can go up and down.
type Gauge struct {
	name string
	help string
	bits atomic.Uint64
}

// Set sets the gauge to the given value.
func (g *Gauge) Set(v float64) {
	g.bits.Store(math.Float64bits(v))
}

// Inc increments the gauge by 1.
func (g *Gauge) Inc() {
	g.Add(1)
}

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() {
	g.Add(-1)
}

// Add adds the given value to the gauge.
func (g *Gauge) Add(v float64) {
	for {
		old := g.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + v)
		if g.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// Get returns the current gauge value.
func (g *Gauge) Get() float64 {
	return math.Float64frombits(g.bits.Load())
}

// ---------------------------------------------------------------------------
// Histogram
// ---------------------------------------------------------------------------

// Histogram tracks value distributions.
type Histogram struct {
	name    string
	help    string
	buckets []float64
	counts  []atomic.Int64
	sum     atomic.Int64
	count   atomic.Int64
}

// NewHistogram creates a histogram with the given bucket upper bounds.
func NewHistogram(name, help string, buckets []float64) *Histogram {
	return &Histogram{
		name:    name,
		help:    help,
		buckets: buckets,
		counts:  make([]atomic.Int64, len(buckets)),
	}
}

// Observe records a value.
func (h *Histogram) Observe(v float64) {
	for i, bound := range h.buckets {
		if v <= bound {
			h.counts[i].Add(1)
		}
	}

	// Stored scaled by 1e6 so the atomic int keeps sub-second precision.
	h.sum.Add(int64(v * 1e6))
	h.count.Add(1)
}

// Export returns the histogram in Prometheus format.
func (h *Histogram) Export() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s histogram\n", h.name, h.help, h.name)
	for i, bound := range h.buckets {
		fmt.Fprintf(&b, "%s_bucket{le=%q} %d\n", h.name, fmt.Sprintf("%g", bound), h.counts[i].Load())
	}
	fmt.Fprintf(&b, "%s_bucket{le=\"+Inf\"} %d\n", h.name, h.count.Load())
	fmt.Fprintf(&b, "%s_sum %f\n", h.name, float64(h.sum.Load())/1e6)
	fmt.Fprintf(&b, "%s_count %d\n", h.name, h.count.Load())

	return b.String()
}

// ---------------------------------------------------------------------------
// Default Registry
// ---------------------------------------------------------------------------

var defaultRegistry = NewRegistry()

// Default returns the default metrics registry.
func Default() *Registry {
	return defaultRegistry
}

// ---------------------------------------------------------------------------
// Pre-defined Application Metrics
// ---------------------------------------------------------------------------

var (
	// Simulator polling
	PollRequests = defaultRegistry.Counter("xmfd_poll_requests_total", "Total simulator poll requests")
	PollErrors   = defaultRegistry.Counter("xmfd_poll_errors_total", "Total simulator poll errors")
	PollLatency  = defaultRegistry.Histogram("xmfd_poll_latency_seconds", "Simulator poll latency", []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1})

	// Report computation
	ReportsComputed = defaultRegistry.Counter("xmfd_reports_computed_total", "Total performance reports computed")
	ReportsRejected = defaultRegistry.Counter("xmfd_reports_rejected_total", "Reports rejected by state validation")
	ComputeLatency  = defaultRegistry.Histogram("xmfd_compute_latency_seconds", "Report computation latency", []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005})

	// Flight condition gauges
	WindSpeed     = defaultRegistry.Gauge("xmfd_wind_speed_kts", "Estimated wind speed")
	GustFactor    = defaultRegistry.Gauge("xmfd_gust_factor_kts", "Current gust factor")
	MinMargin     = defaultRegistry.Gauge("xmfd_min_margin_pct", "Tightest envelope margin")
	GlideRange    = defaultRegistry.Gauge("xmfd_glide_range_nm", "Wind-adjusted glide range")
	EnergyRate    = defaultRegistry.Gauge("xmfd_energy_rate_fpm", "Energy rate")
	HistoryDepth  = defaultRegistry.Gauge("xmfd_history_samples", "Airspeed samples in the gust window")
	StoredReports = defaultRegistry.Gauge("xmfd_stored_reports", "Reports retained in the log")

	// HTTP surface
	HTTPRequests = defaultRegistry.Counter("xmfd_http_requests_total", "Total HTTP requests")
	HTTPLatency  = defaultRegistry.Histogram("xmfd_http_latency_seconds", "HTTP request latency", []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1})

	// Breaker state
	BreakerOpen = defaultRegistry.Gauge("xmfd_breaker_open", "1 when the simulator circuit breaker is open")
)

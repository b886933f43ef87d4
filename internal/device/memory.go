package device

import (
	"context"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ---------------------------------------------------------------------------
// Memory Monitor
// ---------------------------------------------------------------------------

// MemoryState represents the current memory pressure level.
type MemoryState int

const (
	// MemoryStateNormal - operating normally
	MemoryStateNormal MemoryState = iota

	// MemoryStateWarning - approaching soft limit
	MemoryStateWarning

	// MemoryStateCritical - at or above soft limit
	MemoryStateCritical

	// MemoryStateEmergency - approaching hard limit
	MemoryStateEmergency
)

func (s MemoryState) String() string {
	switch s {
	case MemoryStateNormal:
		return "normal"
	case MemoryStateWarning:
		return "warning"
	case MemoryStateCritical:
		return "critical"
	case MemoryStateEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// MemoryStats holds current memory statistics.
type MemoryStats struct {
	AllocMB    float64
	HeapMB     float64
	SysMB      float64
	NumGC      uint32
	State      MemoryState
	UsageRatio float64 // 0.0 - 1.0 of soft limit
}

// MemoryListener is called when memory state changes.
type MemoryListener func(oldState, newState MemoryState, stats MemoryStats)

// MemoryMonitor tracks heap usage against the device's memory limit and
// notifies listeners when the pressure level changes. With no configured
// limit the monitor stays in the normal state.
type MemoryMonitor struct {
	config Config

	mu           sync.RWMutex
	currentState MemoryState
	stats        MemoryStats
	listeners    []MemoryListener

	// Atomic for fast path checks
	isCritical atomic.Bool

	running atomic.Bool
	cancel  context.CancelFunc
}

// NewMemoryMonitor creates a memory monitor for the given device config.
func NewMemoryMonitor(cfg Config) *MemoryMonitor {
	return &MemoryMonitor{
		config:    cfg,
		listeners: make([]MemoryListener, 0),
	}
}

// AddListener adds a callback for memory state changes.
func (m *MemoryMonitor) AddListener(l MemoryListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Start begins monitoring memory usage.
func (m *MemoryMonitor) Start(ctx context.Context) {
	if m.running.Swap(true) {
		return // Already running
	}

	ctx, m.cancel = context.WithCancel(ctx)
	go m.monitorLoop(ctx)
}

// Stop halts memory monitoring.
func (m *MemoryMonitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.running.Store(false)
}

// Stats returns current memory statistics.
func (m *MemoryMonitor) Stats() MemoryStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// State returns the current memory state.
func (m *MemoryMonitor) State() MemoryState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentState
}

// IsCritical returns true if memory usage is critical (fast path).
func (m *MemoryMonitor) IsCritical() bool {
	return m.isCritical.Load()
}

func (m *MemoryMonitor) monitorLoop(ctx context.Context) {
	// Panel-class devices have the least headroom, check them more often.
	interval := 5 * time.Second
	switch m.config.Profile {
	case ProfileTablet:
		interval = 3 * time.Second
	case ProfilePanel:
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckNow()
		}
	}
}

// CheckNow samples the heap and updates the pressure state immediately.
func (m *MemoryMonitor) CheckNow() {
	if m.config.MemoryLimitMB <= 0 {
		return
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	hardLimitBytes := float64(m.config.MemoryLimitMB) * 1024 * 1024
	softLimitBytes := hardLimitBytes * 0.8

	heapMB := float64(memStats.HeapAlloc) / 1024 / 1024
	usageRatio := float64(memStats.HeapAlloc) / softLimitBytes

	var newState MemoryState
	switch {
	case float64(memStats.HeapAlloc) >= hardLimitBytes*0.95:
		newState = MemoryStateEmergency
	case float64(memStats.HeapAlloc) >= softLimitBytes:
		newState = MemoryStateCritical
	case float64(memStats.HeapAlloc) >= softLimitBytes*0.8:
		newState = MemoryStateWarning
	default:
		newState = MemoryStateNormal
	}

	stats := MemoryStats{
		AllocMB:    float64(memStats.Alloc) / 1024 / 1024,
		HeapMB:     heapMB,
		SysMB:      float64(memStats.Sys) / 1024 / 1024,
		NumGC:      memStats.NumGC,
		State:      newState,
		UsageRatio: usageRatio,
	}

	m.mu.Lock()
	oldState := m.currentState
	m.currentState = newState
	m.stats = stats
	listeners := make([]MemoryListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	m.isCritical.Store(newState >= MemoryStateCritical)

	if oldState != newState {
		log.Printf("Memory state changed: %s -> %s (heap: %.1fMB, ratio: %.2f)",
			oldState, newState, heapMB, usageRatio)

		for _, l := range listeners {
			l(oldState, newState, stats)
		}

		if newState == MemoryStateEmergency {
			log.Println("Emergency: triggering GC")
			runtime.GC()
		}
	}
}

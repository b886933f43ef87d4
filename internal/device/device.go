// Package device provides configuration profiles for the hardware the MFD
// service runs on, from a desktop sim rig down to a panel-mounted ARM
// single-board computer with tight memory.
package device

import (
	"os"
	"runtime"
	"runtime/debug"
	"strconv"
	"time"
)

// ---------------------------------------------------------------------------
// Device Profile
// ---------------------------------------------------------------------------

// Profile defines the resource strategy for the host device.
type Profile int

const (
	// ProfileDesktop uses default settings for best responsiveness.
	// Suitable for a sim PC or anything with 1GB+ RAM to spare.
	ProfileDesktop Profile = iota

	// ProfileTablet reduces buffer sizes and report retention for an EFB
	// style tablet alongside the simulator.
	ProfileTablet

	// ProfilePanel is for panel-mounted single-board computers with
	// 256MB or less, trading history depth for a fixed memory ceiling.
	ProfilePanel
)

func (p Profile) String() string {
	switch p {
	case ProfileDesktop:
		return "desktop"
	case ProfileTablet:
		return "tablet"
	case ProfilePanel:
		return "panel"
	default:
		return "unknown"
	}
}

// ParseProfile parses a profile name, defaulting to desktop.
func ParseProfile(s string) Profile {
	switch s {
	case "tablet":
		return ProfileTablet
	case "panel":
		return ProfilePanel
	default:
		return ProfileDesktop
	}
}

// ---------------------------------------------------------------------------
// Device Configuration
// ---------------------------------------------------------------------------

// Config holds device-level tuning for the service.
type Config struct {
	// Memory management
	Profile       Profile
	MemoryLimitMB int
	GCPercent     int

	// Sampling and retention
	PollInterval    time.Duration // flight state sampling period
	GustWindow      time.Duration // airspeed history retention
	GustSamples     int           // airspeed history capacity
	ReportRetention int           // report log capacity

	// Performance
	MaxProcs int
}

// DefaultConfig returns the desktop configuration.
func DefaultConfig() Config {
	return Config{
		Profile:         ProfileDesktop,
		MemoryLimitMB:   0,
		GCPercent:       100,
		PollInterval:    100 * time.Millisecond,
		GustWindow:      60 * time.Second,
		GustSamples:     600,
		ReportRetention: 4096,
		MaxProcs:        0,
	}
}

// TabletConfig returns configuration for EFB-class tablets.
func TabletConfig() Config {
	return Config{
		Profile:         ProfileTablet,
		MemoryLimitMB:   512,
		GCPercent:       50,
		PollInterval:    200 * time.Millisecond,
		GustWindow:      60 * time.Second,
		GustSamples:     300,
		ReportRetention: 1024,
		MaxProcs:        2,
	}
}

// PanelConfig returns configuration for panel-mounted boards with very
// little memory.
func PanelConfig() Config {
	return Config{
		Profile:         ProfilePanel,
		MemoryLimitMB:   256,
		GCPercent:       20,
		PollInterval:    500 * time.Millisecond,
		GustWindow:      30 * time.Second,
		GustSamples:     60,
		ReportRetention: 256,
		MaxProcs:        1,
	}
}

// LoadFromEnv loads device configuration from environment variables. The
// DEVICE_PROFILE preset is applied first, then individual overrides.
func LoadFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("DEVICE_PROFILE"); v != "" {
		switch ParseProfile(v) {
		case ProfileTablet:
			cfg = TabletConfig()
		case ProfilePanel:
			cfg = PanelConfig()
		}
	}

	if v := os.Getenv("MEMORY_LIMIT_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MemoryLimitMB = n
		}
	}
	if v := os.Getenv("GC_PERCENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.GCPercent = n
		}
	}
	if v := os.Getenv("POLL_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollInterval = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("GUST_WINDOW_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.GustWindow = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("GUST_SAMPLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.GustSamples = n
		}
	}
	if v := os.Getenv("REPORT_RETENTION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ReportRetention = n
		}
	}
	if v := os.Getenv("GOMAXPROCS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxProcs = n
		}
	}

	return cfg
}

// Apply applies the configuration to the runtime.
func (c Config) Apply() {
	if c.MaxProcs > 0 {
		runtime.GOMAXPROCS(c.MaxProcs)
	}
	if c.GCPercent > 0 {
		debug.SetGCPercent(c.GCPercent)
	}
	if c.MemoryLimitMB > 0 {
		debug.SetMemoryLimit(int64(c.MemoryLimitMB) * 1024 * 1024)
	}
}

// SamplesPerWindow reports how many poll samples fit in the gust window,
// capped by GustSamples. Useful as a sanity check when tuning intervals.
func (c Config) SamplesPerWindow() int {
	if c.PollInterval <= 0 {
		return c.GustSamples
	}
	n := int(c.GustWindow / c.PollInterval)
	if n > c.GustSamples {
		return c.GustSamples
	}
	return n
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/harryz8/XplaneFlightData/internal/device"
	"github.com/harryz8/XplaneFlightData/internal/history"
	"github.com/harryz8/XplaneFlightData/internal/ingestion"
	"github.com/harryz8/XplaneFlightData/internal/metrics"
	"github.com/harryz8/XplaneFlightData/internal/perf"
	"github.com/harryz8/XplaneFlightData/internal/store"
	"github.com/harryz8/XplaneFlightData/pkg/models"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Config holds application configuration.
type Config struct {
	// Server
	HTTPAddr string
	HTTPPort int

	// X-Plane Web API
	XPlaneURL     string
	EnablePolling bool

	// Log rotation (empty means stderr)
	LogFile string

	// Device deployment configuration
	Device device.Config
}

func loadConfig() Config {
	// Load device profile from environment
	devCfg := device.LoadFromEnv()

	cfg := Config{
		HTTPAddr:      getEnv("HTTP_ADDR", "0.0.0.0"),
		HTTPPort:      getEnvInt("HTTP_PORT", 8090),
		XPlaneURL:     getEnv("XPLANE_API_URL", ""),
		EnablePolling: getEnvBool("ENABLE_POLLING", true),
		LogFile:       getEnv("LOG_FILE", ""),
		Device:        devCfg,
	}

	if cfg.LogFile != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		})
	}

	// Apply device runtime settings (GOMAXPROCS, GC, memory limit)
	cfg.Device.Apply()

	log.Printf("Device configuration: profile=%s memory_limit=%dMB gc=%d%% poll=%s gust_window=%s retention=%d",
		cfg.Device.Profile, cfg.Device.MemoryLimitMB, cfg.Device.GCPercent,
		cfg.Device.PollInterval, cfg.Device.GustWindow, cfg.Device.ReportRetention)

	return cfg
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

// ---------------------------------------------------------------------------
// Application
// ---------------------------------------------------------------------------

// App holds all application components.
type App struct {
	config   Config
	client   *ingestion.Client
	poller   *ingestion.Processor
	airspeed *history.Recorder
	reports  *store.Log
	archive  *store.Archive
	server   *http.Server

	memoryMonitor *device.MemoryMonitor

	startTime time.Time
	ready     bool
}

// NewApp creates a new application instance.
func NewApp(cfg Config) *App {
	clientOpts := []ingestion.ClientOption{}
	if cfg.XPlaneURL != "" {
		clientOpts = append(clientOpts, ingestion.WithBaseURL(cfg.XPlaneURL))
	}
	client := ingestion.NewClient(clientOpts...)

	app := &App{
		config:    cfg,
		client:    client,
		airspeed:  history.NewRecorder(cfg.Device.GustSamples, cfg.Device.GustWindow),
		reports:   store.NewLog(cfg.Device.ReportRetention),
		archive:   store.NewArchive(64),
		startTime: time.Now(),
	}
	app.reports.SetArchive(app.archive)

	procConfig := ingestion.ProcessorConfig{
		PollInterval: cfg.Device.PollInterval,
	}
	app.poller = ingestion.NewProcessor(client, procConfig, app.handleSample)

	// Memory pressure sheds the oldest reports on constrained devices.
	if cfg.Device.MemoryLimitMB > 0 {
		app.memoryMonitor = device.NewMemoryMonitor(cfg.Device)
		app.memoryMonitor.AddListener(func(oldState, newState device.MemoryState, stats device.MemoryStats) {
			if newState >= device.MemoryStateCritical && oldState < device.MemoryStateCritical {
				dropped := app.reports.EvictOldest(app.reports.Len() / 4)
				log.Printf("Memory pressure: %s -> %s, dropped %d reports", oldState, newState, dropped)
			}
		})
	}

	return app
}

// handleSample processes one flight state sample from the poll loop.
func (a *App) handleSample(ctx context.Context, state models.FlightState, atmos models.Atmosphere) error {
	a.airspeed.RecordAt(state.IndicatedAirspeed, state.SampledAt)
	state.IASHistory = a.airspeed.Snapshot()

	if err := perf.Validate(state); err != nil {
		metrics.ReportsRejected.Inc()
		log.Printf("Rejecting sample: %v", err)
		return nil
	}

	start := time.Now()
	report := perf.Compute(state)
	metrics.ComputeLatency.Observe(time.Since(start).Seconds())
	metrics.ReportsComputed.Inc()

	a.reports.Append(store.Record{
		Timestamp: state.SampledAt,
		State:     state,
		Atmos:     atmos,
		Report:    report,
	})

	// Update gauges
	metrics.WindSpeed.Set(report.Wind.SpeedKts)
	metrics.GustFactor.Set(report.Wind.GustFactor)
	metrics.MinMargin.Set(report.Envelope.MinMarginPct)
	metrics.GlideRange.Set(report.Glide.RangeWithWindNM)
	metrics.EnergyRate.Set(report.Energy.RateFPM)
	metrics.HistoryDepth.Set(float64(a.airspeed.Len()))
	metrics.StoredReports.Set(float64(a.reports.Len()))

	return nil
}

// Run starts the application.
func (a *App) Run(ctx context.Context) error {
	log.Println("XplaneFlightData starting...")
	log.Printf("Configuration: addr=%s:%d poll=%s", a.config.HTTPAddr, a.config.HTTPPort, a.config.Device.PollInterval)

	// Start memory monitoring on constrained devices
	if a.memoryMonitor != nil {
		a.memoryMonitor.Start(ctx)
	}

	// Start HTTP server
	a.startHTTPServer()

	// Initial sample
	log.Println("Fetching initial flight state from X-Plane...")
	if _, err := a.poller.ProcessOnce(ctx); err != nil {
		log.Printf("Initial fetch failed: %v", err)
	}

	// Mark as ready
	a.ready = true
	log.Printf("XplaneFlightData ready. Report log holds %d records", a.reports.Len())

	// Start continuous polling if enabled
	if a.config.EnablePolling {
		log.Println("Starting continuous polling...")
		if err := a.poller.Start(ctx); err != nil {
			log.Printf("Failed to start polling: %v", err)
		}
	}

	// Wait for shutdown signal
	<-ctx.Done()
	log.Println("Shutting down...")

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	if a.poller != nil {
		a.poller.Stop()
	}

	if a.memoryMonitor != nil {
		a.memoryMonitor.Stop()
	}

	if a.archive != nil {
		if err := a.archive.Flush(); err != nil {
			log.Printf("Archive flush error: %v", err)
		}
	}

	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}

	log.Println("XplaneFlightData stopped")
	return nil
}

// ---------------------------------------------------------------------------
// HTTP Server
// ---------------------------------------------------------------------------

func (a *App) startHTTPServer() {
	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("/health", a.handleHealth)
	mux.HandleFunc("/ready", a.handleReady)
	mux.HandleFunc("/live", a.handleLive)

	// Metrics endpoint
	mux.HandleFunc("/metrics", a.handleMetrics)

	// API endpoints
	mux.HandleFunc("/api/v1/report", a.handleReport)
	mux.HandleFunc("/api/v1/report/latest", a.handleLatestReport)
	mux.HandleFunc("/api/v1/reports", a.handleReports)
	mux.HandleFunc("/api/v1/wind", a.handleWind)
	mux.HandleFunc("/api/v1/envelope", a.handleEnvelope)
	mux.HandleFunc("/api/v1/energy", a.handleEnergy)
	mux.HandleFunc("/api/v1/glide", a.handleGlide)
	mux.HandleFunc("/api/v1/turn", a.handleTurn)
	mux.HandleFunc("/api/v1/vnav", a.handleVNAV)
	mux.HandleFunc("/api/v1/density", a.handleDensity)
	mux.HandleFunc("/api/v1/stats", a.handleStats)

	addr := fmt.Sprintf("%s:%d", a.config.HTTPAddr, a.config.HTTPPort)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.metricsMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", addr)
		if err := a.server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()
}

func (a *App) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.HTTPRequests.Inc()

		next.ServeHTTP(w, r)

		metrics.HTTPLatency.Observe(time.Since(start).Seconds())
	})
}

// ---------------------------------------------------------------------------
// Health Handlers
// ---------------------------------------------------------------------------

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(a.startTime).String(),
		"version":   "1.0.0",
	}

	if !a.ready {
		health["status"] = "starting"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(health)
}

func (a *App) handleReady(w http.ResponseWriter, r *http.Request) {
	if a.ready {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
	}
}

func (a *App) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}

// ---------------------------------------------------------------------------
// Metrics Handler
// ---------------------------------------------------------------------------

func (a *App) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics.HistoryDepth.Set(float64(a.airspeed.Len()))
	metrics.StoredReports.Set(float64(a.reports.Len()))

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.Write([]byte(metrics.Default().Export()))
}

// ---------------------------------------------------------------------------
// API Handlers
// ---------------------------------------------------------------------------

// handleReport samples the simulator now and computes a fresh report,
// bypassing the poll loop. Useful when polling is disabled.
func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	state, atmos, err := a.client.FetchState(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("simulator unavailable: %v", err), http.StatusBadGateway)
		return
	}

	a.airspeed.RecordAt(state.IndicatedAirspeed, state.SampledAt)
	state.IASHistory = a.airspeed.Snapshot()

	if err := perf.Validate(state); err != nil {
		metrics.ReportsRejected.Inc()
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	start := time.Now()
	report := perf.Compute(state)
	metrics.ComputeLatency.Observe(time.Since(start).Seconds())
	metrics.ReportsComputed.Inc()

	respondJSON(w, store.Record{
		Timestamp: state.SampledAt,
		State:     state,
		Atmos:     atmos,
		Report:    report,
	})
}

func (a *App) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.reports.Latest()
	if !ok {
		http.Error(w, "no reports yet", http.StatusNotFound)
		return
	}
	respondJSON(w, rec)
}

func (a *App) handleReports(w http.ResponseWriter, r *http.Request) {
	tr := store.TimeRange{}
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			tr.Start = t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			tr.End = t
		}
	}

	maxResults := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxResults = n
		}
	}

	result := a.reports.Query(tr, maxResults)
	respondJSON(w, map[string]interface{}{
		"reports": result.Records,
		"count":   len(result.Records),
		"total":   result.Total,
		"elapsed": result.Elapsed.String(),
	})
}

func (a *App) handleWind(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.reports.Latest()
	if !ok {
		http.Error(w, "no reports yet", http.StatusNotFound)
		return
	}
	respondJSON(w, rec.Report.Wind)
}

func (a *App) handleEnvelope(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.reports.Latest()
	if !ok {
		http.Error(w, "no reports yet", http.StatusNotFound)
		return
	}
	respondJSON(w, rec.Report.Envelope)
}

func (a *App) handleEnergy(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.reports.Latest()
	if !ok {
		http.Error(w, "no reports yet", http.StatusNotFound)
		return
	}
	respondJSON(w, rec.Report.Energy)
}

func (a *App) handleGlide(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.reports.Latest()
	if !ok {
		http.Error(w, "no reports yet", http.StatusNotFound)
		return
	}
	respondJSON(w, rec.Report.Glide)
}

// handleTurn computes turn performance at the current speed and bank, or at
// explicit tas/bank overrides from the query string.
func (a *App) handleTurn(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.reports.Latest()
	if !ok {
		http.Error(w, "no reports yet", http.StatusNotFound)
		return
	}

	tas := queryFloat(r, "tas", rec.State.TrueAirspeed)
	bank := queryFloat(r, "bank", rec.State.Bank)
	courseChange := queryFloat(r, "course_change", 90)

	respondJSON(w, perf.CalculateTurn(tas, bank, courseChange))
}

func (a *App) handleVNAV(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.reports.Latest()
	if !ok {
		http.Error(w, "no reports yet", http.StatusNotFound)
		return
	}

	targetAlt, ok := queryFloatRequired(r, "target_alt")
	if !ok {
		http.Error(w, "target_alt required", http.StatusBadRequest)
		return
	}
	distance, ok := queryFloatRequired(r, "distance")
	if !ok {
		http.Error(w, "distance required", http.StatusBadRequest)
		return
	}

	sol := perf.SolveVNAV(rec.State.Altitude, targetAlt, distance,
		rec.State.GroundSpeed, rec.State.VerticalSpeed)
	respondJSON(w, sol)
}

func (a *App) handleDensity(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.reports.Latest()
	if !ok {
		http.Error(w, "no reports yet", http.StatusNotFound)
		return
	}
	respondJSON(w, perf.DensityAltitudeFor(rec.Atmos, rec.State))
}

func (a *App) handleStats(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	pollMetrics := a.poller.Metrics().Snapshot()
	logStats := a.reports.Stats()
	histStats := a.airspeed.Stats()
	archiveStats := a.archive.Stats()

	stats := map[string]interface{}{
		"reports": map[string]interface{}{
			"records":        logStats.Records,
			"capacity":       logStats.Capacity,
			"total_appended": logStats.TotalAppended,
			"total_evicted":  logStats.TotalEvicted,
			"min_margin_pct": logStats.MinMarginPct,
			"max_gust_kts":   logStats.MaxGustFactor,
			"max_wind_kts":   logStats.MaxWindSpeed,
		},
		"polling": map[string]interface{}{
			"total_requests":   pollMetrics.TotalRequests,
			"success_requests": pollMetrics.SuccessRequests,
			"failed_requests":  pollMetrics.FailedRequests,
			"breaker_rejects":  pollMetrics.BreakerRejects,
			"last_latency_ms":  pollMetrics.LastLatencyMs,
			"avg_latency_ms":   pollMetrics.AvgLatencyMs,
		},
		"archive": map[string]interface{}{
			"batches":          archiveStats.Batches,
			"pending_records":  archiveStats.PendingRecords,
			"total_records":    archiveStats.TotalRecords,
			"compressed_bytes": archiveStats.CompressedBytes,
			"savings_percent":  archiveStats.SavingsPercent,
		},
		"history": map[string]interface{}{
			"samples":        histStats.Samples,
			"capacity":       histStats.Capacity,
			"total_recorded": histStats.TotalRecorded,
			"total_pruned":   histStats.TotalPruned,
		},
		"memory": map[string]interface{}{
			"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
			"heap_alloc_mb": float64(memStats.HeapAlloc) / 1024 / 1024,
			"heap_sys_mb":   float64(memStats.HeapSys) / 1024 / 1024,
			"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
			"gc_runs":       memStats.NumGC,
		},
		"runtime": map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"gomaxprocs": runtime.GOMAXPROCS(0),
			"uptime":     time.Since(a.startTime).String(),
		},
		"device": map[string]interface{}{
			"profile":         a.config.Device.Profile.String(),
			"memory_limit_mb": a.config.Device.MemoryLimitMB,
			"gc_percent":      a.config.Device.GCPercent,
			"poll_interval":   a.config.Device.PollInterval.String(),
			"gust_window":     a.config.Device.GustWindow.String(),
			"retention":       a.config.Device.ReportRetention,
		},
	}

	// Add memory monitor stats if available
	if a.memoryMonitor != nil {
		monitorStats := a.memoryMonitor.Stats()
		stats["device"].(map[string]interface{})["memory_state"] = a.memoryMonitor.State().String()
		stats["device"].(map[string]interface{})["heap_mb"] = monitorStats.HeapMB
		stats["device"].(map[string]interface{})["usage_ratio"] = monitorStats.UsageRatio
	}

	respondJSON(w, stats)
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func queryFloat(r *http.Request, key string, defaultVal float64) float64 {
	if v := r.URL.Query().Get(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func queryFloatRequired(r *http.Request, key string) (float64, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	// Handle shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg := loadConfig()

	// Create and run application
	app := NewApp(cfg)
	if err := app.Run(ctx); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

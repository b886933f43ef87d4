// Package ingestion polls the X-Plane Web API for the flight state that
// feeds the performance calculators. It resolves dataref names to numeric
// IDs once, caches them, and then samples values on a fixed interval with
// retry and a circuit breaker in front of the simulator connection.
package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/harryz8/XplaneFlightData/internal/metrics"
	"github.com/harryz8/XplaneFlightData/pkg/models"
)

const (
	defaultBaseURL = "http://localhost:8086/api/v2"

	// The Web API serves from the render loop; 10 Hz is the fastest poll
	// that stays well clear of starving it.
	defaultPollInterval = 100 * time.Millisecond

	// Connection pool settings
	maxIdleConns        = 10
	maxConnsPerHost     = 5
	idleConnTimeout     = 90 * time.Second
	tlsHandshakeTimeout = 10 * time.Second

	// Retry settings
	maxRetries    = 5
	baseBackoff   = 250 * time.Millisecond
	maxBackoff    = 10 * time.Second
	backoffFactor = 2.0
)

// Dataref names read each sample. IAS prefers the cockpit gauge value (what
// the pilot sees) and falls back to the raw flight model when an aircraft
// does not publish the gauge.
const (
	drTrueAirspeed = "sim/flightmodel/position/true_airspeed"  // m/s
	drGroundspeed  = "sim/flightmodel/position/groundspeed"    // m/s
	drHeading      = "sim/flightmodel/position/psi"            // deg
	drTrack        = "sim/flightmodel/position/hpath"          // deg
	drElevation    = "sim/flightmodel/position/elevation"      // m MSL
	drHeightAGL    = "sim/flightmodel/position/y_agl"          // m
	drBank         = "sim/flightmodel/position/phi"            // deg
	drMach         = "sim/flightmodel/misc/machno"
	drIASGauge     = "sim/cockpit2/gauges/indicators/airspeed_kts_pilot" // kts
	drIASRaw       = "sim/flightmodel/position/indicated_airspeed"       // kts
	drVerticalSpd  = "sim/cockpit2/gauges/indicators/vvi_fpm_pilot"      // fpm
	drWeight       = "sim/flightmodel/weight/m_total"                    // kg
	drVso          = "sim/aircraft/view/acf_Vso"                         // kts
	drVne          = "sim/aircraft/view/acf_Vne"                         // kts
	drMmo          = "sim/aircraft/view/acf_Mmo"
	drOAT          = "sim/cockpit2/temperature/outside_air_temp_degc"
)

// Unit conversions from the simulator's native units.
const (
	msToKts = 1.94384
	mToFt   = 3.28084
)

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

// Metrics collects polling performance data.
type Metrics struct {
	TotalRequests   atomic.Int64
	SuccessRequests atomic.Int64
	FailedRequests  atomic.Int64
	BreakerRejects  atomic.Int64
	LastLatencyNs   atomic.Int64
	AvgLatencyNs    atomic.Int64

	mu           sync.Mutex
	latencySum   int64
	latencyCount int64
}

// RecordLatency updates latency metrics.
func (m *Metrics) RecordLatency(d time.Duration) {
	ns := d.Nanoseconds()
	m.LastLatencyNs.Store(ns)

	m.mu.Lock()
	m.latencySum += ns
	m.latencyCount++
	if m.latencyCount > 0 {
		m.AvgLatencyNs.Store(m.latencySum / m.latencyCount)
	}
	m.mu.Unlock()
}

// Snapshot returns a copy of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TotalRequests:   m.TotalRequests.Load(),
		SuccessRequests: m.SuccessRequests.Load(),
		FailedRequests:  m.FailedRequests.Load(),
		BreakerRejects:  m.BreakerRejects.Load(),
		LastLatencyMs:   float64(m.LastLatencyNs.Load()) / 1e6,
		AvgLatencyMs:    float64(m.AvgLatencyNs.Load()) / 1e6,
	}
}

// MetricsSnapshot is a point-in-time copy of metrics.
type MetricsSnapshot struct {
	TotalRequests   int64   `json:"total_requests"`
	SuccessRequests int64   `json:"success_requests"`
	FailedRequests  int64   `json:"failed_requests"`
	BreakerRejects  int64   `json:"breaker_rejects"`
	LastLatencyMs   float64 `json:"last_latency_ms"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
}

// ---------------------------------------------------------------------------
// Rate Limiter
// ---------------------------------------------------------------------------

// RateLimiter paces requests so the poll loop never exceeds the configured
// sample rate even when responses return instantly.
type RateLimiter struct {
	interval time.Duration
	mu       sync.Mutex
	lastCall time.Time
}

// NewRateLimiter creates a rate limiter with the given interval.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{interval: interval}
}

// Wait blocks until the next request is allowed.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lastCall.IsZero() {
		r.lastCall = time.Now()
		return nil
	}

	elapsed := time.Since(r.lastCall)
	if elapsed < r.interval {
		select {
		case <-time.After(r.interval - elapsed):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.lastCall = time.Now()
	return nil
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL sets the Web API base URL (useful for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithoutBreaker disables the circuit breaker (useful for testing retry
// behavior in isolation).
func WithoutBreaker() ClientOption {
	return func(c *Client) { c.breaker = nil }
}

// Client fetches flight state from the X-Plane Web API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker

	mu      sync.RWMutex
	idCache map[string]int64 // dataref name -> numeric ID
}

// NewClient creates a Web API client with connection pooling and a circuit
// breaker that opens after repeated consecutive failures, so a stopped
// simulator does not burn a retry storm.
func NewClient(opts ...ClientOption) *Client {
	transport := &http.Transport{
		MaxIdleConns:        maxIdleConns,
		MaxConnsPerHost:     maxConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
		TLSHandshakeTimeout: tlsHandshakeTimeout,
	}

	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout:   2 * time.Second,
			Transport: transport,
		},
		idCache: make(map[string]int64, 24),
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "xplane-webapi",
		MaxRequests: 2,
		Interval:    30 * time.Second,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
			if to == gobreaker.StateOpen {
				metrics.BreakerOpen.Set(1)
			} else {
				metrics.BreakerOpen.Set(0)
			}
		},
	})

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// datarefListResponse mirrors GET /datarefs?filter[name]=...
type datarefListResponse struct {
	Data []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

// datarefValueResponse mirrors GET /datarefs/{id}/value. The payload is a
// bare number for scalar datarefs and an array for array datarefs.
type datarefValueResponse struct {
	Data json.RawMessage `json:"data"`
}

// resolveID looks up a dataref's numeric ID, caching the result. IDs are
// stable for the lifetime of a simulator session.
func (c *Client) resolveID(ctx context.Context, name string) (int64, error) {
	c.mu.RLock()
	if id, ok := c.idCache[name]; ok {
		c.mu.RUnlock()
		return id, nil
	}
	c.mu.RUnlock()

	u := fmt.Sprintf("%s/datarefs?%s", c.baseURL, url.Values{"filter[name]": {name}}.Encode())
	var list datarefListResponse
	if err := c.getJSON(ctx, u, &list); err != nil {
		return 0, fmt.Errorf("resolving dataref %s: %w", name, err)
	}
	if len(list.Data) == 0 {
		return 0, fmt.Errorf("dataref %s not found", name)
	}

	id := list.Data[0].ID
	c.mu.Lock()
	c.idCache[name] = id
	c.mu.Unlock()
	return id, nil
}

// Value fetches a scalar dataref value by name.
func (c *Client) Value(ctx context.Context, name string) (float64, error) {
	id, err := c.resolveID(ctx, name)
	if err != nil {
		return 0, err
	}

	u := fmt.Sprintf("%s/datarefs/%d/value", c.baseURL, id)
	var resp datarefValueResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return 0, fmt.Errorf("fetching %s: %w", name, err)
	}

	return decodeValue(resp.Data, name)
}

// decodeValue accepts either a bare number or a one-element array, which is
// how the Web API answers indexed array reads.
func decodeValue(raw json.RawMessage, name string) (float64, error) {
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, nil
	}
	var arr []float64
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 {
		return arr[0], nil
	}
	return 0, fmt.Errorf("dataref %s: unexpected value payload %q", name, raw)
}

// getJSON performs a GET through the circuit breaker and decodes the body.
func (c *Client) getJSON(ctx context.Context, u string, out interface{}) error {
	fetch := func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}

	var body interface{}
	var err error
	if c.breaker != nil {
		body, err = c.breaker.Execute(fetch)
	} else {
		body, err = fetch()
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// FetchState reads one complete flight state sample plus the ambient
// atmosphere, converting the simulator's native units (m/s, meters) to the
// aviation units the calculators work in.
func (c *Client) FetchState(ctx context.Context) (models.FlightState, models.Atmosphere, error) {
	var state models.FlightState
	var atmos models.Atmosphere

	reads := []struct {
		name string
		dest *float64
		conv float64
	}{
		{drTrueAirspeed, &state.TrueAirspeed, msToKts},
		{drGroundspeed, &state.GroundSpeed, msToKts},
		{drHeading, &state.Heading, 1},
		{drTrack, &state.Track, 1},
		{drMach, &state.Mach, 1},
		{drElevation, &state.Altitude, mToFt},
		{drHeightAGL, &state.HeightAGL, mToFt},
		{drVerticalSpd, &state.VerticalSpeed, 1},
		{drWeight, &state.WeightKG, 1},
		{drBank, &state.Bank, 1},
		{drVso, &state.StallSpeed, 1},
		{drVne, &state.NeverExceedSpeed, 1},
		{drMmo, &state.MaxOperatingMach, 1},
		{drOAT, &atmos.OATCelsius, 1},
	}

	for _, rd := range reads {
		v, err := c.Value(ctx, rd.name)
		if err != nil {
			return models.FlightState{}, models.Atmosphere{}, err
		}
		*rd.dest = v * rd.conv
	}

	// Prefer the cockpit gauge IAS, fall back to the raw flight model.
	ias, err := c.Value(ctx, drIASGauge)
	if err != nil {
		ias, err = c.Value(ctx, drIASRaw)
		if err != nil {
			return models.FlightState{}, models.Atmosphere{}, err
		}
	}
	state.IndicatedAirspeed = ias

	// The density calculations take indicated altitude as pressure
	// altitude; the simulator does not expose a separate dataref for it.
	atmos.PressureAltitude = state.Altitude
	state.SampledAt = time.Now()

	return state, atmos, nil
}

// FetchStateWithRetry fetches a sample with exponential backoff on failure.
func (c *Client) FetchStateWithRetry(ctx context.Context) (models.FlightState, models.Atmosphere, error) {
	var lastErr error
	backoff := baseBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return models.FlightState{}, models.Atmosphere{}, ctx.Err()
			}
			backoff = time.Duration(float64(backoff) * backoffFactor)
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		state, atmos, err := c.FetchState(ctx)
		if err == nil {
			return state, atmos, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return models.FlightState{}, models.Atmosphere{}, ctx.Err()
		}
	}

	return models.FlightState{}, models.Atmosphere{}, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// ---------------------------------------------------------------------------
// Processor
// ---------------------------------------------------------------------------

// StateHandler consumes one sampled flight state.
type StateHandler func(ctx context.Context, state models.FlightState, atmos models.Atmosphere) error

// ProcessorConfig configures the sampling loop.
type ProcessorConfig struct {
	PollInterval time.Duration
}

// DefaultProcessorConfig returns sensible defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{PollInterval: defaultPollInterval}
}

// Processor continuously samples flight state and hands it to a handler.
type Processor struct {
	client  *Client
	config  ProcessorConfig
	limiter *RateLimiter
	metrics *Metrics
	handler StateHandler

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewProcessor creates a sampling processor.
func NewProcessor(client *Client, config ProcessorConfig, handler StateHandler) *Processor {
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}
	return &Processor{
		client:  client,
		config:  config,
		limiter: NewRateLimiter(config.PollInterval),
		metrics: &Metrics{},
		handler: handler,
	}
}

// Metrics returns the processor's metrics collector.
func (p *Processor) Metrics() *Metrics {
	return p.metrics
}

// Start begins continuous sampling. Non-blocking.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("processor already running")
	}
	p.running = true

	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	go p.run(ctx)
	return nil
}

// Stop halts the processor.
func (p *Processor) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	p.running = false
}

// IsRunning returns whether the processor is active.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// run is the main sampling loop.
func (p *Processor) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.running = false
			p.mu.Unlock()
			return
		default:
		}

		if err := p.limiter.Wait(ctx); err != nil {
			continue
		}

		if _, err := p.ProcessOnce(ctx); err != nil && ctx.Err() == nil {
			// Already counted in metrics; the breaker handles a dead
			// simulator, nothing more to do here.
			continue
		}
	}
}

// ProcessOnce fetches and handles a single sample.
func (p *Processor) ProcessOnce(ctx context.Context) (models.FlightState, error) {
	start := time.Now()
	p.metrics.TotalRequests.Add(1)
	metrics.PollRequests.Inc()

	state, atmos, err := p.client.FetchState(ctx)
	latency := time.Since(start)
	p.metrics.RecordLatency(latency)
	metrics.PollLatency.Observe(latency.Seconds())

	if err != nil {
		p.metrics.FailedRequests.Add(1)
		metrics.PollErrors.Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			p.metrics.BreakerRejects.Add(1)
		}
		return models.FlightState{}, err
	}
	p.metrics.SuccessRequests.Add(1)

	if p.handler != nil {
		if err := p.handler(ctx, state, atmos); err != nil {
			return state, err
		}
	}
	return state, nil
}

package benchmarks

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/harryz8/XplaneFlightData/internal/history"
	"github.com/harryz8/XplaneFlightData/internal/perf"
	"github.com/harryz8/XplaneFlightData/internal/store"
	"github.com/harryz8/XplaneFlightData/pkg/models"
)

// ---------------------------------------------------------------------------
// Pipeline - full sample-to-report path under load
// ---------------------------------------------------------------------------

// pipeline wires the sample path the service runs at 10 Hz: record airspeed,
// attach the gust window, compute, append.
type pipeline struct {
	airspeed *history.Recorder
	reports  *store.Log
}

func newPipeline() *pipeline {
	return &pipeline{
		airspeed: history.NewRecorder(600, time.Minute),
		reports:  store.NewLog(4096),
	}
}

// generateState produces a plausible cruise sample with jitter.
func generateState(rng *rand.Rand) models.FlightState {
	return models.FlightState{
		TrueAirspeed:      245 + rng.Float64()*10,
		GroundSpeed:       225 + rng.Float64()*10,
		Heading:           88 + rng.Float64()*4,
		Track:             83 + rng.Float64()*4,
		IndicatedAirspeed: 178 + rng.Float64()*6,
		Mach:              0.49 + rng.Float64()*0.02,
		Altitude:          35000 + rng.Float64()*200,
		HeightAGL:         30000 + rng.Float64()*200,
		VerticalSpeed:     -1600 + rng.Float64()*200,
		WeightKG:          62000,
		Bank:              rng.Float64() * 30,
		StallSpeed:        120,
		NeverExceedSpeed:  350,
		MaxOperatingMach:  0.82,
		SampledAt:         time.Now(),
	}
}

func (p *pipeline) handle(state models.FlightState) {
	p.airspeed.RecordAt(state.IndicatedAirspeed, state.SampledAt)
	state.IASHistory = p.airspeed.Snapshot()

	report := perf.Compute(state)
	p.reports.Append(store.Record{
		Timestamp: state.SampledAt,
		State:     state,
		Report:    report,
	})
}

func BenchmarkPipeline(b *testing.B) {
	p := newPipeline()
	rng := rand.New(rand.NewSource(42))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.handle(generateState(rng))
	}
}

func BenchmarkPipelineParallelQueries(b *testing.B) {
	p := newPipeline()
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 4096; i++ {
		p.handle(generateState(rng))
	}
	tr := store.TimeRange{Start: time.Now().Add(-time.Minute)}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			p.reports.Query(tr, 100)
			p.reports.Latest()
		}
	})
}

func BenchmarkPipelineLatencyDistribution(b *testing.B) {
	p := newPipeline()
	rng := rand.New(rand.NewSource(42))

	latencies := make([]time.Duration, 0, b.N)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		state := generateState(rng)
		start := time.Now()
		p.handle(state)
		latencies = append(latencies, time.Since(start))
	}
	b.StopTimer()

	if len(latencies) == 0 {
		return
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	p50 := latencies[len(latencies)/2]
	p99 := latencies[len(latencies)*99/100]
	b.ReportMetric(float64(p50.Nanoseconds()), "p50-ns")
	b.ReportMetric(float64(p99.Nanoseconds()), "p99-ns")
}

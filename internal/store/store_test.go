package store

import (
	"testing"
	"time"

	"github.com/harryz8/XplaneFlightData/internal/perf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordAt(t time.Time, minMargin, gust, windSpeed float64) Record {
	return Record{
		Timestamp: t,
		Report: perf.Report{
			Wind:     perf.WindEstimate{SpeedKts: windSpeed, GustFactor: gust},
			Envelope: perf.EnvelopeMargins{MinMarginPct: minMargin},
		},
	}
}

func TestTimeRangeContains(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		tr   TimeRange
		t    time.Time
		want bool
	}{
		{"open range matches everything", TimeRange{}, base, true},
		{"inside closed range", TimeRange{Start: base, End: base.Add(time.Hour)}, base.Add(30 * time.Minute), true},
		{"range is inclusive at both ends", TimeRange{Start: base, End: base.Add(time.Hour)}, base, true},
		{"before start", TimeRange{Start: base, End: base.Add(time.Hour)}, base.Add(-time.Second), false},
		{"after end", TimeRange{Start: base, End: base.Add(time.Hour)}, base.Add(2 * time.Hour), false},
		{"open start", TimeRange{End: base}, base.Add(-time.Hour), true},
		{"open end", TimeRange{Start: base}, base.Add(time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tr.Contains(tt.t))
		})
	}
}

func TestLogAppendAndLatest(t *testing.T) {
	l := NewLog(10)

	_, ok := l.Latest()
	assert.False(t, ok)

	base := time.Now()
	l.Append(recordAt(base, 40, 2, 10))
	l.Append(recordAt(base.Add(time.Second), 35, 3, 12))

	latest, ok := l.Latest()
	require.True(t, ok)
	assert.Equal(t, base.Add(time.Second), latest.Timestamp)
	assert.Equal(t, 2, l.Len())
}

func TestLogEviction(t *testing.T) {
	l := NewLog(3)
	base := time.Now()

	for i := 0; i < 5; i++ {
		l.Append(recordAt(base.Add(time.Duration(i)*time.Second), 50, 0, 0))
	}

	assert.Equal(t, 3, l.Len())
	res := l.Query(TimeRange{}, 0)
	require.Len(t, res.Records, 3)
	// Oldest two were evicted.
	assert.Equal(t, base.Add(2*time.Second), res.Records[0].Timestamp)
	assert.Equal(t, base.Add(4*time.Second), res.Records[2].Timestamp)

	stats := l.Stats()
	assert.Equal(t, int64(5), stats.TotalAppended)
	assert.Equal(t, int64(2), stats.TotalEvicted)
}

func TestLogQueryWindow(t *testing.T) {
	l := NewLog(100)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		l.Append(recordAt(base.Add(time.Duration(i)*time.Minute), 50, 0, 0))
	}

	res := l.Query(TimeRange{Start: base.Add(3 * time.Minute), End: base.Add(6 * time.Minute)}, 0)
	assert.Equal(t, 4, res.Total)
	require.Len(t, res.Records, 4)
	assert.Equal(t, base.Add(3*time.Minute), res.Records[0].Timestamp)

	// Limit caps the slice but not the total.
	limited := l.Query(TimeRange{}, 5)
	assert.Equal(t, 10, limited.Total)
	assert.Len(t, limited.Records, 5)
}

func TestLogStatsWaterMarks(t *testing.T) {
	l := NewLog(10)
	base := time.Now()

	l.Append(recordAt(base, 42, 1.2, 15))
	l.Append(recordAt(base.Add(time.Second), 18, 5.4, 35))
	l.Append(recordAt(base.Add(2*time.Second), 30, 0.4, 22))

	stats := l.Stats()
	assert.Equal(t, 18.0, stats.MinMarginPct)
	assert.Equal(t, 5.4, stats.MaxGustFactor)
	assert.Equal(t, 35.0, stats.MaxWindSpeed)
	assert.Equal(t, base, stats.FirstTimestamp)
	assert.Equal(t, base.Add(2*time.Second), stats.LastTimestamp)
}

func TestLogWaterMarksSurviveEviction(t *testing.T) {
	l := NewLog(2)
	base := time.Now()

	l.Append(recordAt(base, 5, 9.9, 60))
	l.Append(recordAt(base.Add(time.Second), 50, 0, 0))
	l.Append(recordAt(base.Add(2*time.Second), 50, 0, 0))

	// The worst record is gone from the log but the marks remember it.
	stats := l.Stats()
	assert.Equal(t, 5.0, stats.MinMarginPct)
	assert.Equal(t, 9.9, stats.MaxGustFactor)
	assert.Equal(t, 60.0, stats.MaxWindSpeed)
}

func TestLogEvictOldest(t *testing.T) {
	l := NewLog(10)
	base := time.Now()
	for i := 0; i < 6; i++ {
		l.Append(recordAt(base.Add(time.Duration(i)*time.Second), 50, 0, 0))
	}

	dropped := l.EvictOldest(4)
	assert.Equal(t, 4, dropped)
	assert.Equal(t, 2, l.Len())

	rec, ok := l.Latest()
	assert.True(t, ok)
	assert.Equal(t, base.Add(5*time.Second), rec.Timestamp)

	stats := l.Stats()
	assert.Equal(t, base.Add(4*time.Second), stats.FirstTimestamp)
	assert.Equal(t, int64(4), stats.TotalEvicted)

	// Asking for more than is held drains the log.
	assert.Equal(t, 2, l.EvictOldest(100))
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 0, l.EvictOldest(5))
}

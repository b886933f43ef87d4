package perf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateWind(t *testing.T) {
	t.Run("crab into quartering headwind", func(t *testing.T) {
		// Heading 090 at 250 TAS but only making 230 over the ground on
		// track 085: the airmass is pushing back and left.
		w := EstimateWind(250, 230, 90, 85, nil)

		assert.InDelta(t, 28.94, w.SpeedKts, 0.05)
		assert.InDelta(t, 133.84, w.DirectionFrom, 0.05)
		assert.InDelta(t, 19.05, w.Headwind, 0.05)
		assert.InDelta(t, -21.79, w.Crosswind, 0.05)
		assert.Zero(t, w.GustFactor)
	})

	t.Run("calm when air and ground vectors agree", func(t *testing.T) {
		w := EstimateWind(200, 200, 270, 270, nil)

		assert.InDelta(t, 0, w.SpeedKts, 1e-9)
		assert.InDelta(t, 0, w.Headwind, 1e-9)
		assert.InDelta(t, 0, w.Crosswind, 1e-9)
	})

	t.Run("pure tailwind", func(t *testing.T) {
		// Tracking north, groundspeed exceeds TAS with no crab: wind is
		// directly behind, i.e. from 180.
		w := EstimateWind(150, 180, 0, 0, nil)

		assert.InDelta(t, 30, w.SpeedKts, 1e-6)
		assert.InDelta(t, 180, w.DirectionFrom, 1e-6)
		assert.InDelta(t, -30, w.Headwind, 1e-6)
		assert.InDelta(t, 0, w.Crosswind, 1e-6)
	})

	t.Run("pure headwind", func(t *testing.T) {
		w := EstimateWind(150, 120, 0, 0, nil)

		assert.InDelta(t, 30, w.SpeedKts, 1e-6)
		assert.InDelta(t, 0, w.DirectionFrom, 1e-6)
		assert.InDelta(t, 30, w.Headwind, 1e-6)
	})
}

func TestGustFactor(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"empty history", nil, 0},
		{"single sample", []float64{150}, 0},
		{"steady airspeed", []float64{150, 150, 150}, 0},
		{"gusty window", []float64{145.5, 148.0, 151.2, 149.5, 155.8, 152.1}, 5.45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, GustFactor(tt.samples), 1e-9)
		})
	}
}

func TestComponentsFromWind(t *testing.T) {
	t.Run("reported wind on the nose", func(t *testing.T) {
		c := ComponentsFromWind(0, 355, 0, 20)

		assert.InDelta(t, 20, c.Headwind, 1e-6)
		assert.InDelta(t, 0, c.Crosswind, 1e-6)
		assert.InDelta(t, 5, c.DriftAngle, 1e-9)
	})

	t.Run("reported wind on the tail", func(t *testing.T) {
		c := ComponentsFromWind(90, 90, 270, 15)

		assert.InDelta(t, -15, c.Headwind, 1e-6)
		assert.InDelta(t, 0, c.Crosswind, 1e-6)
		assert.Zero(t, c.DriftAngle)
	})

	t.Run("agrees with the estimator's sign convention", func(t *testing.T) {
		// The quartering-headwind case above, fed back in as a known wind.
		est := EstimateWind(250, 230, 90, 85, nil)
		c := ComponentsFromWind(85, 90, est.DirectionFrom, est.SpeedKts)

		assert.InDelta(t, est.Headwind, c.Headwind, 1e-6)
		assert.InDelta(t, est.Crosswind, c.Crosswind, 1e-6)
	})
}

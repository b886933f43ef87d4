package perf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSolveVNAV(t *testing.T) {
	t.Run("descent to a crossing restriction", func(t *testing.T) {
		// FL350 down to 10000 ft over 100 nm at 450 kts, currently
		// descending 1800 fpm.
		v := SolveVNAV(35000, 10000, 100, 450, -1800)

		assert.True(t, v.IsDescent)
		assert.InDelta(t, 25000, v.AltitudeToLoseFt, 1e-9)
		assert.InDelta(t, -2.356, v.FlightPathAngle, 0.005)
		assert.InDelta(t, -1875, v.RequiredVSFPM, 1)
		assert.InDelta(t, 78.50, v.TODDistanceNM, 0.05)
		assert.InDelta(t, 13.89, v.TimeToConstraint, 0.01)
		assert.InDelta(t, 4.0, v.DistancePer1000Ft, 1e-9)
		assert.InDelta(t, 2388, v.VSFor3DegFPM, 1)
	})

	t.Run("climb flips the signs", func(t *testing.T) {
		v := SolveVNAV(5000, 15000, 40, 250, 1500)

		assert.False(t, v.IsDescent)
		assert.InDelta(t, -10000, v.AltitudeToLoseFt, 1e-9)
		assert.Greater(t, v.FlightPathAngle, 0.0)
		assert.Greater(t, v.RequiredVSFPM, 0.0)
		assert.Less(t, v.VSFor3DegFPM, 0.0)
	})

	t.Run("level flight reports the time sentinel", func(t *testing.T) {
		v := SolveVNAV(35000, 10000, 100, 450, 0)

		assert.Equal(t, 999.9, v.TimeToConstraint)
	})

	t.Run("constraint nearly overhead floors the distance", func(t *testing.T) {
		v := SolveVNAV(10000, 5000, 0, 200, -500)

		// Floored at 0.01 nm the path is nearly vertical but finite.
		assert.Less(t, v.FlightPathAngle, -85.0)
		assert.Less(t, v.RequiredVSFPM, 0.0)
	})

	t.Run("groundspeed floored at one knot", func(t *testing.T) {
		v := SolveVNAV(10000, 5000, 20, 0, -500)

		wantVS := SolveVNAV(10000, 5000, 20, 1, -500).RequiredVSFPM
		assert.InDelta(t, wantVS, v.RequiredVSFPM, 1e-9)
	})

	t.Run("already at the constraint altitude", func(t *testing.T) {
		v := SolveVNAV(10000, 10000, 50, 300, 0)

		assert.False(t, v.IsDescent)
		assert.InDelta(t, 0, v.AltitudeToLoseFt, 1e-9)
		assert.InDelta(t, 0, v.DistancePer1000Ft, 1e-9)
		assert.InDelta(t, 0, v.TODDistanceNM, 1e-9)
	})
}

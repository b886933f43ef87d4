package perf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTurn(t *testing.T) {
	t.Run("standard 90 degree turn at 250 kts", func(t *testing.T) {
		p := CalculateTurn(250, 25, 90)

		assert.InDelta(t, 1.953, p.RadiusNM, 0.005)
		assert.InDelta(t, 11867, p.RadiusFt, 5)
		assert.InDelta(t, 2.037, p.TurnRateDPS, 0.005)
		// For a 90 degree course change the lead equals the radius.
		assert.InDelta(t, p.RadiusNM, p.LeadDistanceNM, 1e-9)
		assert.InDelta(t, 44.18, p.TimeToTurnSec, 0.05)
		assert.InDelta(t, 1.103, p.LoadFactor, 0.001)
		assert.InDelta(t, 34.48, p.StandardRateBank, 0.05)
	})

	t.Run("wings level returns the sentinels", func(t *testing.T) {
		p := CalculateTurn(250, 0, 90)

		assert.Equal(t, 999.9, p.RadiusNM)
		assert.Equal(t, 999900.0, p.RadiusFt)
		assert.Zero(t, p.TurnRateDPS)
		assert.Zero(t, p.LeadDistanceNM)
		assert.Zero(t, p.LeadDistanceFt)
		assert.Equal(t, 999.9, p.TimeToTurnSec)
		assert.InDelta(t, 1.0, p.LoadFactor, 1e-9)
		// Standard-rate bank is still reported.
		assert.Greater(t, p.StandardRateBank, 30.0)
	})

	t.Run("slower aircraft turns tighter", func(t *testing.T) {
		slow := CalculateTurn(100, 30, 180)
		fast := CalculateTurn(300, 30, 180)

		assert.Less(t, slow.RadiusNM, fast.RadiusNM)
		assert.Greater(t, slow.TurnRateDPS, fast.TurnRateDPS)
		assert.Less(t, slow.TimeToTurnSec, fast.TimeToTurnSec)
	})

	t.Run("standard rate bank grows with speed", func(t *testing.T) {
		assert.Less(t,
			CalculateTurn(90, 20, 90).StandardRateBank,
			CalculateTurn(250, 20, 90).StandardRateBank)
	})
}

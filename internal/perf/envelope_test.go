package perf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateEnvelope(t *testing.T) {
	t.Run("cruise in a 25 degree bank", func(t *testing.T) {
		m := CalculateEnvelope(25, 180, 0.5, 120, 350, 0.82)

		assert.InDelta(t, 1.1034, m.LoadFactor, 0.0005)
		assert.InDelta(t, 42.80, m.StallMarginPct, 0.05)
		assert.InDelta(t, 48.57, m.VmoMarginPct, 0.05)
		assert.InDelta(t, 39.02, m.MmoMarginPct, 0.05)
		// Mach is the tightest limit here.
		assert.InDelta(t, m.MmoMarginPct, m.MinMarginPct, 1e-9)
		assert.InDelta(t, 189.74, m.CornerSpeedKts, 0.05)
	})

	t.Run("wings level has unit load factor", func(t *testing.T) {
		m := CalculateEnvelope(0, 150, 0.3, 100, 300, 0.82)

		assert.InDelta(t, 1.0, m.LoadFactor, 1e-9)
		assert.InDelta(t, 50, m.StallMarginPct, 1e-6)
	})

	t.Run("steep bank raises the accelerated stall speed", func(t *testing.T) {
		// 60 degrees is a 2g turn, stall speed grows by sqrt(2).
		m := CalculateEnvelope(60, 180, 0.4, 120, 350, 0.82)

		assert.InDelta(t, 2.0, m.LoadFactor, 1e-9)
		wantStall := (180 - 120*math.Sqrt2) / (120 * math.Sqrt2) * 100
		assert.InDelta(t, wantStall, m.StallMarginPct, 1e-6)
	})

	t.Run("negative bank loads the airframe the same way", func(t *testing.T) {
		left := CalculateEnvelope(-30, 180, 0.5, 120, 350, 0.82)
		right := CalculateEnvelope(30, 180, 0.5, 120, 350, 0.82)

		assert.InDelta(t, right.LoadFactor, left.LoadFactor, 1e-12)
		assert.InDelta(t, right.StallMarginPct, left.StallMarginPct, 1e-12)
	})

	t.Run("steeper bank loads harder and eats stall margin", func(t *testing.T) {
		prev := CalculateEnvelope(0, 180, 0.5, 120, 350, 0.82)
		for bank := 5.0; bank < 90; bank += 5 {
			m := CalculateEnvelope(bank, 180, 0.5, 120, 350, 0.82)

			assert.Greater(t, m.LoadFactor, prev.LoadFactor, "bank %v", bank)
			assert.Less(t, m.StallMarginPct, prev.StallMarginPct, "bank %v", bank)
			// Speed margins do not depend on bank.
			assert.InDelta(t, prev.VmoMarginPct, m.VmoMarginPct, 1e-12, "bank %v", bank)
			assert.InDelta(t, prev.MmoMarginPct, m.MmoMarginPct, 1e-12, "bank %v", bank)
			prev = m
		}
	})

	t.Run("beyond a limit the margin goes negative", func(t *testing.T) {
		m := CalculateEnvelope(0, 360, 0.85, 120, 350, 0.82)

		assert.Less(t, m.VmoMarginPct, 0.0)
		assert.Less(t, m.MmoMarginPct, 0.0)
		assert.Less(t, m.MinMarginPct, 0.0)
	})

	t.Run("unpublished limits degrade to wide-open margins", func(t *testing.T) {
		m := CalculateEnvelope(10, 150, 0.3, 0, 0, 0)

		assert.InDelta(t, 100, m.StallMarginPct, 1e-9)
		assert.InDelta(t, 100, m.VmoMarginPct, 1e-9)
		assert.InDelta(t, 100, m.MmoMarginPct, 1e-9)
		assert.InDelta(t, 100, m.MinMarginPct, 1e-9)
		assert.Zero(t, m.CornerSpeedKts)
	})
}

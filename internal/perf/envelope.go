package perf

import (
	"math"

	"github.com/harryz8/XplaneFlightData/internal/geom"
)

// cornerLoadFactor is the design maneuvering load factor used for the
// corner speed estimate.
const cornerLoadFactor = 2.5

// EnvelopeMargins reports how far the aircraft is from each edge of its
// operating envelope, as percentages of the respective limit. Negative
// margins mean the limit is already exceeded.
type EnvelopeMargins struct {
	StallMarginPct float64 `json:"stall_margin_pct"`
	VmoMarginPct   float64 `json:"vmo_margin_pct"`
	MmoMarginPct   float64 `json:"mmo_margin_pct"`
	MinMarginPct   float64 `json:"min_margin_pct"`
	CornerSpeedKts float64 `json:"corner_speed_kts"`
	LoadFactor     float64 `json:"load_factor"`
}

// CalculateEnvelope computes stall, overspeed and Mach margins for the
// current state. Stall speed rises with bank: in a coordinated level turn
// the load factor is 1/cos(bank) and the accelerated stall speed is
// Vso·sqrt(n).
//
// Limits the aircraft does not publish (zero Vso, Vne or Mmo) degrade to a
// fixed wide-open margin rather than dividing by zero: 100% for stall, and
// the raw percentage guards below for the speed limits.
//
// Precondition: |bankDeg| < 90.
func CalculateEnvelope(bankDeg, iasKts, mach, vsoKts, vneKts, mmo float64) EnvelopeMargins {
	loadFactor := 1 / math.Cos(geom.Radians(bankDeg))
	stallSpeed := vsoKts * math.Sqrt(loadFactor)

	stallMargin := 100.0
	if stallSpeed > 0 {
		stallMargin = (iasKts - stallSpeed) / stallSpeed * 100
	}

	vmoMargin := 100.0
	if vneKts > 0 {
		vmoMargin = (vneKts - iasKts) / vneKts * 100
	}

	mmoMargin := 100.0
	if mmo > 0 {
		mmoMargin = (mmo - mach) / mmo * 100
	}

	return EnvelopeMargins{
		StallMarginPct: stallMargin,
		VmoMarginPct:   vmoMargin,
		MmoMarginPct:   mmoMargin,
		MinMarginPct:   min(stallMargin, vmoMargin, mmoMargin),
		CornerSpeedKts: vsoKts * math.Sqrt(cornerLoadFactor),
		LoadFactor:     loadFactor,
	}
}

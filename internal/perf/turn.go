package perf

import (
	"math"

	"github.com/harryz8/XplaneFlightData/internal/geom"
)

// Sentinel outputs for a wings-level "turn": the radius is effectively
// infinite and the turn never completes.
const (
	levelRadiusNM  = 999.9
	levelRadiusFt  = 999900.0
	neverOnTimeSec = 999.9
)

// minTurnRateDPS is the slowest turn rate for which a time-to-turn is
// meaningful.
const minTurnRateDPS = 0.01

const metersPerNM = 1852.0

// TurnPerformance describes the coordinated turn at the current speed and
// bank: geometry, rate, and how far before a course change the roll-in
// should begin.
type TurnPerformance struct {
	RadiusNM         float64 `json:"radius_nm"`
	RadiusFt         float64 `json:"radius_ft"`
	TurnRateDPS      float64 `json:"turn_rate_dps"`
	LeadDistanceNM   float64 `json:"lead_distance_nm"`
	LeadDistanceFt   float64 `json:"lead_distance_ft"`
	TimeToTurnSec    float64 `json:"time_to_turn_sec"`
	LoadFactor       float64 `json:"load_factor"`
	StandardRateBank float64 `json:"standard_rate_bank"`
}

// CalculateTurn solves the coordinated-turn equations R = V²/(g·tan φ) and
// ω = g·tan φ/V for the given course change. Near-zero bank returns the
// level-flight sentinels instead of a blown-up radius.
//
// Precondition: |bankDeg| < 90.
func CalculateTurn(tasKts, bankDeg, courseChangeDeg float64) TurnPerformance {
	v := tasKts * ktsToMS
	tanBank := math.Tan(geom.Radians(bankDeg))
	loadFactor := 1 / math.Cos(geom.Radians(bankDeg))
	stdRateBank := geom.Degrees(math.Atan(geom.Radians(3) * v / gravity))

	if math.Abs(tanBank) < 0.001 || v <= 0 {
		return TurnPerformance{
			RadiusNM:         levelRadiusNM,
			RadiusFt:         levelRadiusFt,
			TimeToTurnSec:    neverOnTimeSec,
			LoadFactor:       loadFactor,
			StandardRateBank: stdRateBank,
		}
	}

	radiusM := v * v / (gravity * tanBank)
	rateDPS := geom.Degrees(gravity * tanBank / v)
	leadM := radiusM * math.Tan(geom.Radians(courseChangeDeg)/2)

	timeSec := neverOnTimeSec
	if math.Abs(rateDPS) > minTurnRateDPS {
		timeSec = courseChangeDeg / rateDPS
	}

	return TurnPerformance{
		RadiusNM:         radiusM / metersPerNM,
		RadiusFt:         radiusM * mToFt,
		TurnRateDPS:      rateDPS,
		LeadDistanceNM:   leadM / metersPerNM,
		LeadDistanceFt:   leadM * mToFt,
		TimeToTurnSec:    timeSec,
		LoadFactor:       loadFactor,
		StandardRateBank: stdRateBank,
	}
}

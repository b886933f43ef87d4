package perf

import (
	"math"

	"github.com/harryz8/XplaneFlightData/internal/geom"
)

// Vertical navigation constants. vsPerDegree converts groundspeed in knots
// and a path-angle tangent into feet per minute: GS·6076.12/60 ≈ GS·101.27.
const (
	vnavFeetPerNM   = 6076.12
	vsPerDegree     = 101.27
	stdDescentDeg   = 3.0
	minConstraintNM = 0.01
	minVnavGSKts    = 1.0
	minVSForTime    = 1.0 // fpm
)

// VNAVSolution is the vertical path to an altitude constraint: the flight
// path angle and vertical speed that meet it from the present position,
// plus standard 3° path planning figures. Angle and required VS are
// negative for descents; AltitudeToLoseFt is positive for descents.
type VNAVSolution struct {
	AltitudeToLoseFt  float64 `json:"altitude_to_lose_ft"`
	FlightPathAngle   float64 `json:"flight_path_angle_deg"`
	RequiredVSFPM     float64 `json:"required_vs_fpm"`
	TODDistanceNM     float64 `json:"tod_distance_nm"`
	TimeToConstraint  float64 `json:"time_to_constraint_min"`
	DistancePer1000Ft float64 `json:"distance_per_1000ft"`
	VSFor3DegFPM      float64 `json:"vs_for_3deg"`
	IsDescent         bool    `json:"is_descent"`
}

// SolveVNAV computes the geometry to reach targetAltFt in distanceNM at the
// given groundspeed. Distance and groundspeed are floored at small positive
// values so a constraint directly below the aircraft still yields a finite
// (if extreme) answer. TimeToConstraint uses the aircraft's actual vertical
// speed, not the required one; near-level flight reports the 999.9 min
// sentinel instead of dividing by zero.
func SolveVNAV(currentAltFt, targetAltFt, distanceNM, gsKts, currentVSFPM float64) VNAVSolution {
	deltaH := targetAltFt - currentAltFt
	isDescent := deltaH < 0

	d := math.Max(distanceNM, minConstraintNM)
	gs := math.Max(gsKts, minVnavGSKts)

	angle := math.Atan(deltaH / (d * vnavFeetPerNM))
	requiredVS := vsPerDegree * gs * math.Tan(angle)

	tan3 := math.Tan(geom.Radians(stdDescentDeg))
	absDelta := math.Abs(deltaH)
	tod := absDelta / (vnavFeetPerNM * tan3)

	vs3 := vsPerDegree * gs * tan3
	if !isDescent {
		vs3 = -vs3
	}

	timeMin := neverOnTimeSec
	if math.Abs(currentVSFPM) > minVSForTime {
		timeMin = deltaH / currentVSFPM
	}

	distPer1000 := 0.0
	if absDelta > minVSForTime {
		distPer1000 = d * 1000 / absDelta
	}

	return VNAVSolution{
		AltitudeToLoseFt:  -deltaH,
		FlightPathAngle:   geom.Degrees(angle),
		RequiredVSFPM:     requiredVS,
		TODDistanceNM:     tod,
		TimeToConstraint:  timeMin,
		DistancePer1000Ft: distPer1000,
		VSFor3DegFPM:      vs3,
		IsDescent:         isDescent,
	}
}

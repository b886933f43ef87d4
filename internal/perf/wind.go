package perf

import (
	"math"

	"github.com/harryz8/XplaneFlightData/internal/geom"
)

// WindEstimate is the wind solution derived from the difference between the
// air vector and the ground vector, plus a gust factor from recent airspeed
// history. DirectionFrom is the meteorological convention (direction the
// wind blows from, 0-360°). Positive headwind opposes the aircraft's track.
type WindEstimate struct {
	SpeedKts      float64 `json:"speed_kts"`
	DirectionFrom float64 `json:"direction_from"`
	Headwind      float64 `json:"headwind"`
	Crosswind     float64 `json:"crosswind"`
	GustFactor    float64 `json:"gust_factor"`
}

// EstimateWind solves the wind triangle. The air vector is what the
// aircraft flies through the airmass (TAS along heading), the ground vector
// is what actually happens over the ground (GS along track); the wind is
// the difference, ground minus air.
//
// When heading equals track and TAS equals GS the two vectors cancel and
// the estimate is calm with zero components.
func EstimateWind(tasKts, gsKts, headingDeg, trackDeg float64, iasHistory []float64) WindEstimate {
	air := geom.FromBearing(tasKts, headingDeg)
	ground := geom.FromBearing(gsKts, trackDeg)
	wind := ground.Sub(air)

	speed := wind.Mag()
	// Bearing() yields the direction the wind blows toward; rotate 180°
	// for the reported from-direction.
	directionFrom := geom.NormalizeAngle(wind.Bearing() + 180)

	rel := geom.Radians(geom.NormalizeAngle(directionFrom + 180 - trackDeg))
	headwind := -speed * math.Cos(rel)
	crosswind := speed * math.Sin(rel)

	return WindEstimate{
		SpeedKts:      speed,
		DirectionFrom: directionFrom,
		Headwind:      headwind,
		Crosswind:     crosswind,
		GustFactor:    GustFactor(iasHistory),
	}
}

// GustFactor measures airspeed volatility over the recent sample window as
// max minus mean. An empty window reports zero, not an error: a freshly
// started recorder simply has nothing to say about gusts yet.
func GustFactor(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	maxV := samples[0]
	sum := 0.0
	for _, v := range samples {
		if v > maxV {
			maxV = v
		}
		sum += v
	}
	return maxV - sum/float64(len(samples))
}

// WindComponents decomposes a known or forecast wind against the current
// track, for cross-checking the estimator against a METAR or winds-aloft
// report. Positive headwind opposes the track; DriftAngle is track minus
// heading folded into (-180°,180°].
type WindComponents struct {
	Headwind   float64 `json:"headwind"`
	Crosswind  float64 `json:"crosswind"`
	DriftAngle float64 `json:"drift_angle"`
}

// ComponentsFromWind resolves a reported wind (meteorological from-direction
// and speed) into along-track and cross-track components, using the same
// rotation convention as EstimateWind so the two agree on signs.
func ComponentsFromWind(trackDeg, headingDeg, windFromDeg, windSpeedKts float64) WindComponents {
	rel := geom.Radians(geom.NormalizeAngle(windFromDeg + 180 - trackDeg))
	return WindComponents{
		Headwind:   -windSpeedKts * math.Cos(rel),
		Crosswind:  windSpeedKts * math.Sin(rel),
		DriftAngle: geom.RelativeBearing(trackDeg - headingDeg),
	}
}

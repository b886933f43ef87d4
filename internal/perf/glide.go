package perf

// Glide performance assumptions for a clean airframe. The ratio and best
// glide speed are fixed reference values; a per-type lookup would need
// aircraft performance data the simulator does not expose.
const (
	glideRatio       = 12.0
	bestGlideSpeedKt = 75.0
	feetPerNM        = 6076.0
)

// GlideEstimate is the engine-out reach from the current height above
// ground, both in still air and corrected for the estimated wind.
type GlideEstimate struct {
	MaxRangeNM       float64 `json:"max_range_nm"`
	RangeWithWindNM  float64 `json:"range_with_wind_nm"`
	GlideRatio       float64 `json:"glide_ratio"`
	BestGlideSpeedKt float64 `json:"best_glide_speed_kts"`
}

// EstimateGlide converts height above ground into glide reach. The wind
// correction scales still-air range by the ratio of groundspeed to best
// glide speed under the given headwind; a headwind at or beyond best glide
// speed clamps the reach to zero, it never goes negative.
func EstimateGlide(aglFt, headwindKts float64) GlideEstimate {
	still := aglFt / feetPerNM * glideRatio
	adjusted := still * (1 - headwindKts/bestGlideSpeedKt)
	if adjusted < 0 {
		adjusted = 0
	}
	return GlideEstimate{
		MaxRangeNM:       still,
		RangeWithWindNM:  adjusted,
		GlideRatio:       glideRatio,
		BestGlideSpeedKt: bestGlideSpeedKt,
	}
}

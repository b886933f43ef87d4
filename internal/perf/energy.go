package perf

// energyDeadbandFPM is the vertical-speed band treated as level flight when
// classifying the energy trend. Keeps the trend arrow from flickering on
// normal sensor noise.
const energyDeadbandFPM = 50.0

// EnergyTrend classifies whether total specific energy is being gained,
// held or spent. Encoded as -1/0/+1 on the wire.
type EnergyTrend int8

const (
	TrendDecreasing EnergyTrend = -1
	TrendStable     EnergyTrend = 0
	TrendIncreasing EnergyTrend = 1
)

func (t EnergyTrend) String() string {
	switch t {
	case TrendDecreasing:
		return "Decreasing"
	case TrendIncreasing:
		return "Increasing"
	default:
		return "Stable"
	}
}

// EnergyState is the aircraft's total specific energy (kinetic plus
// potential, expressed as an equivalent altitude in feet) and its trend.
type EnergyState struct {
	SpecificEnergyFt float64     `json:"specific_energy_ft"`
	RateFPM          float64     `json:"energy_rate_fpm"`
	Trend            EnergyTrend `json:"trend"`
}

// CalculateEnergy computes specific energy Es = v²/2g + h in SI, reported
// in feet. The vertical speed stands in for the energy rate; the trend is
// that rate classified against a ±50 fpm deadband.
func CalculateEnergy(tasKts, altitudeFt, vsFPM float64) EnergyState {
	v := tasKts * ktsToMS
	h := altitudeFt * ftToM
	esMeters := v*v/(2*gravity) + h

	trend := TrendStable
	switch {
	case vsFPM > energyDeadbandFPM:
		trend = TrendIncreasing
	case vsFPM < -energyDeadbandFPM:
		trend = TrendDecreasing
	}

	return EnergyState{
		SpecificEnergyFt: esMeters * mToFt,
		RateFPM:          vsFPM,
		Trend:            trend,
	}
}

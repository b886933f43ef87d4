package perf

import (
	"math"

	"github.com/harryz8/XplaneFlightData/pkg/models"
)

// Standard atmosphere constants.
const (
	seaLevelTempC   = 15.0
	tempLapseRateC  = 0.0019812 // °C per foot
	pressureExpBase = 6.8756e-6 // per foot, standard pressure model
	pressureExp     = 5.2559
	kelvinOffset    = 273.15
)

// minIASForRatio avoids a meaningless TAS/IAS ratio when the airspeed
// indicator is below its usable range.
const minIASForRatio = 10.0

// DensityAltitude describes how high the aircraft effectively performs:
// density altitude, air density ratio sigma, equivalent airspeed and the
// resulting performance loss versus sea level.
type DensityAltitude struct {
	DensityAltitudeFt  float64 `json:"density_altitude_ft"`
	PressureAltitudeFt float64 `json:"pressure_altitude_ft"`
	AirDensityRatio    float64 `json:"air_density_ratio"`
	TempDeviationC     float64 `json:"temperature_deviation_c"`
	PerformanceLossPct float64 `json:"performance_loss_pct"`
	EASKts             float64 `json:"eas_kts"`
	TASToIASRatio      float64 `json:"tas_to_ias_ratio"`
	PressureRatio      float64 `json:"pressure_ratio"`
}

// ISATemperatureC returns the standard-atmosphere temperature at a pressure
// altitude.
func ISATemperatureC(pressureAltFt float64) float64 {
	return seaLevelTempC - tempLapseRateC*pressureAltFt
}

// CalculateDensityAltitude derives density altitude and related figures
// from pressure altitude and outside air temperature. Uses the DA = PA +
// 120·(OAT − ISA) approximation, accurate to about 1%, and the standard
// pressure model (1 − 6.8756e-6·h)^5.2559 for sigma.
func CalculateDensityAltitude(pressureAltFt, oatCelsius, iasKts, tasKts float64) DensityAltitude {
	isaTemp := ISATemperatureC(pressureAltFt)
	tempDeviation := oatCelsius - isaTemp

	pressureRatio := math.Pow(1-pressureExpBase*pressureAltFt, pressureExp)
	sigma := pressureRatio * (seaLevelTempC + kelvinOffset) / (oatCelsius + kelvinOffset)

	ratio := 1.0
	if iasKts > minIASForRatio {
		ratio = tasKts / iasKts
	}

	return DensityAltitude{
		DensityAltitudeFt:  pressureAltFt + 120*tempDeviation,
		PressureAltitudeFt: pressureAltFt,
		AirDensityRatio:    sigma,
		TempDeviationC:     tempDeviation,
		PerformanceLossPct: (1 - sigma) * 100,
		EASKts:             tasKts * math.Sqrt(sigma),
		TASToIASRatio:      ratio,
		PressureRatio:      pressureRatio,
	}
}

// DensityAltitudeFor is a convenience wrapper taking the sampled atmosphere
// alongside the flight state.
func DensityAltitudeFor(atmos models.Atmosphere, s models.FlightState) DensityAltitude {
	return CalculateDensityAltitude(atmos.PressureAltitude, atmos.OATCelsius, s.IndicatedAirspeed, s.TrueAirspeed)
}

package perf

import (
	"testing"

	"github.com/harryz8/XplaneFlightData/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestCalculateDensityAltitude(t *testing.T) {
	t.Run("hot day at 5000 ft", func(t *testing.T) {
		// 25°C at 5000 ft pressure altitude is ISA+19.9: the aircraft
		// performs as if at nearly 7400 ft.
		da := CalculateDensityAltitude(5000, 25, 150, 170)

		assert.InDelta(t, 7388.72, da.DensityAltitudeFt, 0.01)
		assert.InDelta(t, 5000, da.PressureAltitudeFt, 1e-9)
		assert.InDelta(t, 0.8041, da.AirDensityRatio, 0.001)
		assert.InDelta(t, 19.906, da.TempDeviationC, 0.001)
		assert.InDelta(t, 19.59, da.PerformanceLossPct, 0.05)
		assert.InDelta(t, 152.45, da.EASKts, 0.05)
		assert.InDelta(t, 1.1333, da.TASToIASRatio, 0.001)
		assert.InDelta(t, 0.8320, da.PressureRatio, 0.001)
	})

	t.Run("standard day at sea level", func(t *testing.T) {
		da := CalculateDensityAltitude(0, 15, 100, 100)

		assert.InDelta(t, 0, da.DensityAltitudeFt, 1e-9)
		assert.InDelta(t, 1.0, da.AirDensityRatio, 1e-9)
		assert.InDelta(t, 0, da.TempDeviationC, 1e-9)
		assert.InDelta(t, 0, da.PerformanceLossPct, 1e-9)
		assert.InDelta(t, 100, da.EASKts, 1e-6)
	})

	t.Run("cold day lowers density altitude below pressure altitude", func(t *testing.T) {
		da := CalculateDensityAltitude(5000, -20, 150, 160)

		assert.Less(t, da.DensityAltitudeFt, da.PressureAltitudeFt)
		assert.Greater(t, da.AirDensityRatio, 0.8041)
	})

	t.Run("unusable indicated airspeed pins the ratio at one", func(t *testing.T) {
		da := CalculateDensityAltitude(5000, 25, 5, 170)

		assert.Equal(t, 1.0, da.TASToIASRatio)
	})
}

func TestISATemperatureC(t *testing.T) {
	assert.InDelta(t, 15, ISATemperatureC(0), 1e-9)
	assert.InDelta(t, 5.094, ISATemperatureC(5000), 1e-9)
	assert.InDelta(t, -54.3, ISATemperatureC(35000), 0.05)
}

func TestDensityAltitudeFor(t *testing.T) {
	atmos := models.Atmosphere{PressureAltitude: 5000, OATCelsius: 25}
	state := models.FlightState{IndicatedAirspeed: 150, TrueAirspeed: 170}

	assert.Equal(t,
		CalculateDensityAltitude(5000, 25, 150, 170),
		DensityAltitudeFor(atmos, state))
}

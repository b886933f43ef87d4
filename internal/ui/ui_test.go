package ui

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harryz8/XplaneFlightData/internal/perf"
	"github.com/harryz8/XplaneFlightData/internal/store"
	"github.com/harryz8/XplaneFlightData/pkg/models"
)

func TestMarginStyle(t *testing.T) {
	assert.Equal(t, StyleValue, MarginStyle(50))
	assert.Equal(t, StyleCaution, MarginStyle(15))
	assert.Equal(t, StyleWarning, MarginStyle(5))
	assert.Equal(t, StyleWarning, MarginStyle(-10))
}

func TestPageTitles(t *testing.T) {
	for p := PageWind; p < pageCount; p++ {
		assert.NotEqual(t, "?", p.Title())
	}
}

func TestDrawText(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()

	drawText(screen, 2, 1, StyleValue, "WIND")

	ch, _, _, _ := screen.GetContent(2, 1)
	assert.Equal(t, 'W', ch)
	ch, _, _, _ = screen.GetContent(5, 1)
	assert.Equal(t, 'D', ch)
}

func TestDrawPagesDoNotPanic(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()

	state := models.FlightState{
		TrueAirspeed:      250,
		GroundSpeed:       230,
		Heading:           90,
		Track:             85,
		IndicatedAirspeed: 180,
		Mach:              0.5,
		Altitude:          35000,
		HeightAGL:         30000,
		VerticalSpeed:     -1500,
		Bank:              25,
		StallSpeed:        120,
		NeverExceedSpeed:  350,
		MaxOperatingMach:  0.82,
		SampledAt:         time.Now(),
	}
	rec := store.Record{
		Timestamp: state.SampledAt,
		State:     state,
		Atmos:     models.Atmosphere{PressureAltitude: 35000, OATCelsius: -40},
		Report:    perf.Compute(state),
	}

	drawHeader(screen, PageWind, false)
	drawWindPage(screen, rec)
	drawEnvelopePage(screen, rec)
	drawEnergyPage(screen, rec)
	drawGlidePage(screen, rec)
	drawTurnPage(screen, rec, 90)
	drawVNAVPage(screen, rec, 10000, 30)
	drawDensityPage(screen, rec)
}

package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/harryz8/XplaneFlightData/internal/perf"
	"github.com/harryz8/XplaneFlightData/internal/store"
)

// Page identifies one panel display page
type Page int

const (
	PageWind Page = iota
	PageEnvelope
	PageEnergy
	PageGlide
	PageTurn
	PageVNAV
	PageDensity
	pageCount
)

// Title returns the page header text
func (p Page) Title() string {
	switch p {
	case PageWind:
		return "WIND"
	case PageEnvelope:
		return "ENVELOPE"
	case PageEnergy:
		return "ENERGY"
	case PageGlide:
		return "GLIDE"
	case PageTurn:
		return "TURN PERF"
	case PageVNAV:
		return "VNAV"
	case PageDensity:
		return "DENSITY ALT"
	default:
		return "?"
	}
}

// drawText writes a string at the given position
func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, ch := range text {
		screen.SetContent(x+i, y, ch, nil, style)
	}
}

// drawHeader draws the page title bar and footers
func drawHeader(screen tcell.Screen, page Page, stale bool) {
	width, height := screen.Size()

	title := fmt.Sprintf(" %s ", page.Title())
	for i := 0; i < width; i++ {
		screen.SetContent(i, 0, ' ', nil, StyleTitle)
	}
	drawText(screen, 2, 0, StyleTitle, title)

	if stale {
		drawText(screen, width-10, 0, StyleWarning, " NO DATA ")
	}

	footer := "1-7 pages  <-/-> cycle  q quit"
	drawText(screen, 2, height-1, StyleDim, footer)
}

// drawRow draws a label/value pair on one line
func drawRow(screen tcell.Screen, y int, label, value string, valueStyle tcell.Style) {
	drawText(screen, 4, y, StyleLabel, label)
	drawText(screen, 24, y, valueStyle, value)
}

func drawWindPage(screen tcell.Screen, rec store.Record) {
	w := rec.Report.Wind

	drawRow(screen, 3, "WIND SPEED", fmt.Sprintf("%5.1f KT", w.SpeedKts), StyleValue)
	drawRow(screen, 4, "WIND FROM", fmt.Sprintf("%05.1f", w.DirectionFrom), StyleValue)

	hwLabel := "HEADWIND"
	hw := w.Headwind
	if hw < 0 {
		hwLabel = "TAILWIND"
		hw = -hw
	}
	drawRow(screen, 6, hwLabel, fmt.Sprintf("%5.1f KT", hw), StyleValue)

	xwSide := "L"
	xw := w.Crosswind
	if xw >= 0 {
		xwSide = "R"
	} else {
		xw = -xw
	}
	drawRow(screen, 7, "CROSSWIND", fmt.Sprintf("%5.1f KT %s", xw, xwSide), StyleValue)

	gustStyle := StyleValue
	if w.GustFactor > 10 {
		gustStyle = StyleCaution
	}
	drawRow(screen, 9, "GUST FACTOR", fmt.Sprintf("%5.1f KT", w.GustFactor), gustStyle)

	drawRow(screen, 11, "TAS / GS", fmt.Sprintf("%3.0f / %3.0f KT", rec.State.TrueAirspeed, rec.State.GroundSpeed), StyleDim)
	drawRow(screen, 12, "HDG / TRK", fmt.Sprintf("%03.0f / %03.0f", rec.State.Heading, rec.State.Track), StyleDim)
}

func drawEnvelopePage(screen tcell.Screen, rec store.Record) {
	e := rec.Report.Envelope

	drawRow(screen, 3, "LOAD FACTOR", fmt.Sprintf("%4.2f G", e.LoadFactor), StyleValue)
	drawRow(screen, 5, "STALL MARGIN", fmt.Sprintf("%5.1f %%", e.StallMarginPct), MarginStyle(e.StallMarginPct))
	drawRow(screen, 6, "VMO MARGIN", fmt.Sprintf("%5.1f %%", e.VmoMarginPct), MarginStyle(e.VmoMarginPct))
	drawRow(screen, 7, "MMO MARGIN", fmt.Sprintf("%5.1f %%", e.MmoMarginPct), MarginStyle(e.MmoMarginPct))
	drawRow(screen, 9, "MIN MARGIN", fmt.Sprintf("%5.1f %%", e.MinMarginPct), MarginStyle(e.MinMarginPct))
	drawRow(screen, 11, "CORNER SPEED", fmt.Sprintf("%5.1f KT", e.CornerSpeedKts), StyleValue)
	drawRow(screen, 13, "IAS / MACH", fmt.Sprintf("%3.0f KT / %.3f", rec.State.IndicatedAirspeed, rec.State.Mach), StyleDim)
	drawRow(screen, 14, "BANK", fmt.Sprintf("%5.1f", rec.State.Bank), StyleDim)
}

func drawEnergyPage(screen tcell.Screen, rec store.Record) {
	e := rec.Report.Energy

	drawRow(screen, 3, "SPECIFIC ENERGY", fmt.Sprintf("%7.0f FT", e.SpecificEnergyFt), StyleValue)
	drawRow(screen, 5, "ENERGY RATE", fmt.Sprintf("%+6.0f FPM", e.RateFPM), StyleValue)

	trendStyle := StyleValue
	if e.Trend == perf.TrendDecreasing {
		trendStyle = StyleCaution
	}
	drawRow(screen, 7, "TREND", e.Trend.String(), trendStyle)

	drawRow(screen, 9, "ALT / VS", fmt.Sprintf("%6.0f FT / %+5.0f FPM", rec.State.Altitude, rec.State.VerticalSpeed), StyleDim)
	drawRow(screen, 10, "TAS", fmt.Sprintf("%3.0f KT", rec.State.TrueAirspeed), StyleDim)
}

func drawGlidePage(screen tcell.Screen, rec store.Record) {
	g := rec.Report.Glide

	drawRow(screen, 3, "STILL-AIR RANGE", fmt.Sprintf("%5.1f NM", g.MaxRangeNM), StyleValue)

	rangeStyle := StyleValue
	if g.RangeWithWindNM < g.MaxRangeNM {
		rangeStyle = StyleCaution
	}
	drawRow(screen, 4, "WIND-ADJ RANGE", fmt.Sprintf("%5.1f NM", g.RangeWithWindNM), rangeStyle)

	drawRow(screen, 6, "GLIDE RATIO", fmt.Sprintf("%4.1f : 1", g.GlideRatio), StyleValue)
	drawRow(screen, 7, "BEST GLIDE", fmt.Sprintf("%3.0f KT", g.BestGlideSpeedKt), StyleValue)
	drawRow(screen, 9, "HEIGHT AGL", fmt.Sprintf("%6.0f FT", rec.State.HeightAGL), StyleDim)
	drawRow(screen, 10, "HEADWIND", fmt.Sprintf("%+5.1f KT", rec.Report.Wind.Headwind), StyleDim)
}

func drawTurnPage(screen tcell.Screen, rec store.Record, courseChange float64) {
	t := perf.CalculateTurn(rec.State.TrueAirspeed, rec.State.Bank, courseChange)

	drawRow(screen, 3, "TURN RADIUS", fmt.Sprintf("%5.2f NM", t.RadiusNM), StyleValue)
	drawRow(screen, 4, "TURN RATE", fmt.Sprintf("%5.2f DEG/S", t.TurnRateDPS), StyleValue)
	drawRow(screen, 6, "COURSE CHANGE", fmt.Sprintf("%5.1f", courseChange), StyleValue)
	drawRow(screen, 7, "LEAD DISTANCE", fmt.Sprintf("%5.2f NM", t.LeadDistanceNM), StyleValue)
	drawRow(screen, 8, "TIME TO TURN", fmt.Sprintf("%5.1f S", t.TimeToTurnSec), StyleValue)
	drawRow(screen, 10, "LOAD FACTOR", fmt.Sprintf("%4.2f G", t.LoadFactor), StyleValue)
	drawRow(screen, 11, "STD RATE BANK", fmt.Sprintf("%5.1f", t.StandardRateBank), StyleValue)
	drawRow(screen, 13, "TAS / BANK", fmt.Sprintf("%3.0f KT / %4.1f", rec.State.TrueAirspeed, rec.State.Bank), StyleDim)
	drawText(screen, 4, 15, StyleDim, "[ / ] adjust course change")
}

func drawVNAVPage(screen tcell.Screen, rec store.Record, targetAlt, distance float64) {
	sol := perf.SolveVNAV(rec.State.Altitude, targetAlt, distance,
		rec.State.GroundSpeed, rec.State.VerticalSpeed)

	drawRow(screen, 3, "TARGET ALT", fmt.Sprintf("%6.0f FT", targetAlt), StyleValue)
	drawRow(screen, 4, "DISTANCE", fmt.Sprintf("%5.1f NM", distance), StyleValue)

	angleStyle := StyleValue
	if sol.FlightPathAngle < -4.5 {
		angleStyle = StyleCaution
	}
	drawRow(screen, 6, "PATH ANGLE", fmt.Sprintf("%+5.2f", sol.FlightPathAngle), angleStyle)
	drawRow(screen, 7, "REQUIRED VS", fmt.Sprintf("%+6.0f FPM", sol.RequiredVSFPM), angleStyle)
	drawRow(screen, 9, "TOD (3 DEG)", fmt.Sprintf("%5.1f NM", sol.TODDistanceNM), StyleValue)
	drawRow(screen, 10, "VS FOR 3 DEG", fmt.Sprintf("%+6.0f FPM", sol.VSFor3DegFPM), StyleValue)
	drawRow(screen, 12, "TIME TO TGT", fmt.Sprintf("%5.1f MIN", sol.TimeToConstraint), StyleValue)
	drawRow(screen, 13, "NM PER 1000FT", fmt.Sprintf("%5.1f", sol.DistancePer1000Ft), StyleValue)
	drawRow(screen, 15, "CURRENT ALT/GS", fmt.Sprintf("%6.0f FT / %3.0f KT", rec.State.Altitude, rec.State.GroundSpeed), StyleDim)
	drawText(screen, 4, 17, StyleDim, "up/dn target alt  + / - distance")
}

func drawDensityPage(screen tcell.Screen, rec store.Record) {
	d := perf.DensityAltitudeFor(rec.Atmos, rec.State)

	daStyle := StyleValue
	if d.DensityAltitudeFt > d.PressureAltitudeFt+2000 {
		daStyle = StyleCaution
	}
	drawRow(screen, 3, "DENSITY ALT", fmt.Sprintf("%7.0f FT", d.DensityAltitudeFt), daStyle)
	drawRow(screen, 4, "PRESSURE ALT", fmt.Sprintf("%7.0f FT", d.PressureAltitudeFt), StyleValue)
	drawRow(screen, 6, "ISA DEVIATION", fmt.Sprintf("%+5.1f C", d.TempDeviationC), StyleValue)
	drawRow(screen, 7, "DENSITY RATIO", fmt.Sprintf("%6.4f", d.AirDensityRatio), StyleValue)
	drawRow(screen, 9, "PERF LOSS", fmt.Sprintf("%5.1f %%", d.PerformanceLossPct), daStyle)
	drawRow(screen, 11, "EAS", fmt.Sprintf("%5.1f KT", d.EASKts), StyleValue)
	drawRow(screen, 12, "TAS/IAS RATIO", fmt.Sprintf("%6.4f", d.TASToIASRatio), StyleValue)
	drawRow(screen, 14, "OAT", fmt.Sprintf("%+5.1f C", rec.Atmos.OATCelsius), StyleDim)
}

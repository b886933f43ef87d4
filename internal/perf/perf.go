// Package perf implements the flight-performance calculators behind the MFD
// panels: wind vector estimation, envelope margins, energy state, glide
// reach, turn performance, vertical navigation and density altitude.
//
// Every calculator is a pure function of its inputs. There is no I/O, no
// retained state and no error path: degenerate inputs (zero reference
// speeds, empty sample history, excessive headwind) produce documented
// fallback values instead of failures. The one genuine precondition — bank
// angle strictly inside (-90°,90°) — is enforced by Validate at the service
// boundary, not inside the calculators.
package perf

import (
	"fmt"
	"math"

	"github.com/harryz8/XplaneFlightData/pkg/models"
)

// Physical conversion constants.
const (
	gravity = 9.80665  // m/s²
	ktsToMS = 0.514444 // knots to m/s
	ftToM   = 0.3048
	mToFt   = 3.28084
)

// maxBankDeg bounds the usable bank angle. At 90° the coordinated-turn load
// factor 1/cos(bank) is singular, so callers must reject anything at or
// beyond it before computing a report.
const maxBankDeg = 90.0

// Validate checks the single hard precondition on a flight state. All other
// degenerate inputs are handled by the calculators themselves.
func Validate(s models.FlightState) error {
	if math.Abs(s.Bank) >= maxBankDeg {
		return fmt.Errorf("bank angle %.1f° outside (-90°,90°): load factor undefined", s.Bank)
	}
	if math.IsNaN(s.Bank) {
		return fmt.Errorf("bank angle is NaN")
	}
	return nil
}

// Report aggregates the four coupled performance computations for one flight
// state. It is assembled once per state sample and never mutated.
type Report struct {
	Wind     WindEstimate    `json:"wind"`
	Envelope EnvelopeMargins `json:"envelope"`
	Energy   EnergyState     `json:"energy"`
	Glide    GlideEstimate   `json:"glide"`
}

// Compute derives a full performance report from one flight state. Wind is
// computed first since the glide estimate consumes its headwind component;
// the remaining calculators are independent.
//
// Precondition: Validate(s) == nil.
func Compute(s models.FlightState) Report {
	wind := EstimateWind(s.TrueAirspeed, s.GroundSpeed, s.Heading, s.Track, s.IASHistory)
	return Report{
		Wind:     wind,
		Envelope: CalculateEnvelope(s.Bank, s.IndicatedAirspeed, s.Mach, s.StallSpeed, s.NeverExceedSpeed, s.MaxOperatingMach),
		Energy:   CalculateEnergy(s.TrueAirspeed, s.Altitude, s.VerticalSpeed),
		Glide:    EstimateGlide(s.HeightAGL, wind.Headwind),
	}
}

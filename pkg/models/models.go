package models

import "time"

// FlightState is a single snapshot of the aircraft state vector, as sampled
// from the simulator (ingestion DTO). Angles are degrees, speeds knots,
// altitudes feet, vertical speed feet per minute.
type FlightState struct {
	TrueAirspeed      float64 `json:"tas_kts"`
	GroundSpeed       float64 `json:"gs_kts"`
	Heading           float64 `json:"heading_deg"`
	Track             float64 `json:"track_deg"`
	IndicatedAirspeed float64 `json:"ias_kts"`
	Mach              float64 `json:"mach"`
	Altitude          float64 `json:"altitude_ft"`
	HeightAGL         float64 `json:"agl_ft"`
	VerticalSpeed     float64 `json:"vs_fpm"`
	WeightKG          float64 `json:"weight_kg"` // reserved, not used numerically
	Bank              float64 `json:"bank_deg"`
	StallSpeed        float64 `json:"vso_kts"` // clean config, 1g
	NeverExceedSpeed  float64 `json:"vne_kts"`
	MaxOperatingMach  float64 `json:"mmo"`

	// IASHistory holds recent indicated-airspeed samples for gust analysis,
	// oldest first, most recent last. May be empty.
	IASHistory []float64 `json:"ias_history,omitempty"`

	SampledAt time.Time `json:"sampled_at"`
}

// Atmosphere is the ambient-condition snapshot consumed by the
// density-altitude calculator.
type Atmosphere struct {
	PressureAltitude float64 `json:"pressure_alt_ft"`
	OATCelsius       float64 `json:"oat_c"`
}

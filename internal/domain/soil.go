package domain

import "math"

// GroundCondition is the qualitative soil state shown to users.
type GroundCondition string

const (
	GroundDryStable      GroundCondition = "Dry & Stable"
	GroundDamp           GroundCondition = "Damp"
	GroundWetMuddy       GroundCondition = "Wet / Muddy"
	GroundFullySaturated GroundCondition = "Fully Saturated"
)

// Soil bucket-model constants: drainage over the trailing 48h window and the
// modeled water-holding capacity of the soil column, both in mm.
const (
	Drainage48hMM   = 144.0
	SoilCapacityMM  = 120.0
	drainagePerHour = 3.0
)

// SoilState is the derived soil-moisture model for a location. It is replaced
// wholesale on re-acquisition and never decays on its own.
type SoilState struct {
	Accumulated48hMM float64         `json:"accumulated_48h_mm"`
	SaturationPct    float64         `json:"saturation_pct"`
	Condition        GroundCondition `json:"condition"`
}

// conditionBands maps saturation to ground condition, evaluated top to
// bottom, first match wins.
var conditionBands = []struct {
	abovePct  float64
	condition GroundCondition
}{
	{90, GroundFullySaturated},
	{60, GroundWetMuddy},
	{30, GroundDamp},
}

// AssessSoil derives the soil state from the center sample's hourly
// precipitation series. The series is summed as-is: it is assumed to already
// cover the trailing ~48h plus current-day window, and no alignment to "now"
// is attempted; if the provider returns a longer or shorter series the total
// scales with it. A nil or empty series means zero accumulation, not a fault.
func AssessSoil(hourlyPrecipMM []float64) SoilState {
	accumulated := 0.0
	for _, v := range hourlyPrecipMM {
		accumulated += v
	}

	effectiveLoad := math.Max(0, accumulated-Drainage48hMM)
	saturation := math.Min(effectiveLoad/SoilCapacityMM*100, 100)

	condition := GroundDryStable
	for _, band := range conditionBands {
		if saturation > band.abovePct {
			condition = band.condition
			break
		}
	}

	return SoilState{
		Accumulated48hMM: accumulated,
		SaturationPct:    saturation,
		Condition:        condition,
	}
}

package domain

import "math"

// RiskLevel is the graded flood verdict.
type RiskLevel string

const (
	RiskSafe    RiskLevel = "safe"
	RiskCaution RiskLevel = "caution"
	RiskDanger  RiskLevel = "danger"
	RiskExtreme RiskLevel = "extreme"
)

// rank orders risk levels for monotonicity comparisons; higher is worse.
func (l RiskLevel) rank() int {
	switch l {
	case RiskCaution:
		return 1
	case RiskDanger:
		return 2
	case RiskExtreme:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether l is as severe as other.
func (l RiskLevel) AtLeast(other RiskLevel) bool { return l.rank() >= other.rank() }

// Caption returns the short advisory text for a risk level. Water proximity
// changes the caution wording.
func (l RiskLevel) Caption(waterNearby bool) string {
	switch l {
	case RiskSafe:
		return "Minimal flood risk detected."
	case RiskCaution:
		if waterNearby {
			return "River levels rising."
		}
		return "Flash flooding possible."
	case RiskDanger:
		return "Significant accumulation expected."
	case RiskExtreme:
		return "Major flood event predicted."
	default:
		return ""
	}
}

// HazardGrade grades the secondary landslide and sinkhole hazards.
type HazardGrade string

const (
	HazardLow      HazardGrade = "low"
	HazardModerate HazardGrade = "moderate"
	HazardHigh     HazardGrade = "high"
	HazardSevere   HazardGrade = "severe"
)

// RiskInput carries everything the scoring engine needs. All fields are
// pre-defaulted: a zero value scores as safe/low rather than erroring.
type RiskInput struct {
	RainfallRateMMH float64
	DurationHours   float64
	Soil            SoilState
	Terrain         TerrainAssessment
	Hydrology       HydrologyFlag
	ElevationM      float64
}

// RiskAssessment is the output of one scoring run. It supersedes, never
// merges with, the previous assessment.
type RiskAssessment struct {
	EstimatedRiseM float64     `json:"estimated_rise_m"`
	Level          RiskLevel   `json:"level"`
	Landslide      HazardGrade `json:"landslide"`
	Sinkhole       HazardGrade `json:"sinkhole"`
	ExcessRunoffMM float64     `json:"excess_runoff_mm"`

	// SaturatedSoilAdvisory flags a safe verdict that still warrants a soil
	// advisory: heavy 48h accumulation without a forecast flood signal.
	SaturatedSoilAdvisory bool `json:"saturated_soil_advisory,omitempty"`
}

// Hydrology discounts: without nearby open water most runoff never reaches a
// channel that could rise. Proximity to live water removes the discount.
const (
	hydroMultiplierOpen   = 1.0
	hydroMultiplierValley = 0.6
	hydroMultiplierDry    = 0.2
)

// riseGrades maps estimated rise to a base level, evaluated top to bottom,
// first match wins.
var riseGrades = []struct {
	aboveM float64
	level  RiskLevel
}{
	{2.5, RiskExtreme},
	{1.0, RiskDanger},
	{0.3, RiskCaution},
}

// lowElevationM is the cutoff below which water-adjacent points escalate.
const lowElevationM = 10.0

// ScoreRisk runs the full scoring pipeline: forecast rainfall over the
// window, absorb into remaining soil capacity plus in-window drainage,
// amplify the surplus by catchment and hydrology, damp logarithmically into
// an estimated rise, grade it, then apply the one-way escalation overrides.
// Pure and total: it never fails and never de-escalates.
func ScoreRisk(in RiskInput) RiskAssessment {
	forecast := in.RainfallRateMMH * in.DurationHours

	stored := in.Soil.SaturationPct / 100 * SoilCapacityMM
	available := SoilCapacityMM - stored
	effectiveAvailable := available + drainagePerHour*in.DurationHours
	absorbed := math.Min(forecast, effectiveAvailable)
	runoff := math.Max(0, forecast-absorbed)

	historicalSurplus := math.Max(0, in.Soil.Accumulated48hMM-SoilCapacityMM-Drainage48hMM)
	totalSurplus := runoff + historicalSurplus

	multiplier := hydroMultiplierOpen
	if !in.Hydrology.WaterNearby() {
		if in.Terrain.Category == TerrainValley {
			multiplier = hydroMultiplierValley
		} else {
			multiplier = hydroMultiplierDry
		}
	}

	loadIndex := totalSurplus * (1 + in.Terrain.CatchmentFactor*0.1) * multiplier

	rise := 0.0
	if loadIndex > 0 {
		rise = math.Log(loadIndex+1) * 0.5
	}

	level := RiskSafe
	for _, g := range riseGrades {
		if rise > g.aboveM {
			level = g.level
			break
		}
	}

	// Escalation overrides fire only at caution and only ever raise.
	if level == RiskCaution && in.Terrain.Category == TerrainValley {
		level = RiskDanger
	}
	if level == RiskCaution && in.Hydrology.WaterNearby() && in.ElevationM < lowElevationM {
		level = RiskDanger
	}

	return RiskAssessment{
		EstimatedRiseM:        rise,
		Level:                 level,
		Landslide:             gradeLandslide(in.Terrain.SlopeM, stored+absorbed),
		Sinkhole:              gradeSinkhole(in.Terrain.Category, stored+absorbed),
		ExcessRunoffMM:        runoff,
		SaturatedSoilAdvisory: level == RiskSafe && in.Soil.Accumulated48hMM > 100,
	}
}

// gradeLandslide keys off slope brackets; the wetness thresholds within each
// bracket come from the post-absorption moisture load (stored + absorbed).
func gradeLandslide(slopeM, wetnessMM float64) HazardGrade {
	switch {
	case slopeM > 30:
		switch {
		case wetnessMM > 150:
			return HazardSevere
		case wetnessMM > 100:
			return HazardHigh
		case wetnessMM > 50:
			return HazardModerate
		}
	case slopeM > 10:
		switch {
		case wetnessMM > 200:
			return HazardHigh
		case wetnessMM > 150:
			return HazardModerate
		}
	}
	return HazardLow
}

// gradeSinkhole only grades valley floors, where ponded water works into the
// substrate.
func gradeSinkhole(category TerrainCategory, wetnessMM float64) HazardGrade {
	if category != TerrainValley {
		return HazardLow
	}
	switch {
	case wetnessMM > 200:
		return HazardHigh
	case wetnessMM > 100:
		return HazardModerate
	default:
		return HazardLow
	}
}

// ImpactZone is the render hint for the map overlay: a circle radius and a
// fill color, both pure functions of the risk level so any renderer can
// reproduce them.
type ImpactZone struct {
	RadiusM float64 `json:"radius_m"`
	Color   string  `json:"color"`
}

// ImpactZoneFor maps a risk level to its overlay radius and color.
func ImpactZoneFor(level RiskLevel) ImpactZone {
	switch level {
	case RiskCaution:
		return ImpactZone{RadiusM: 500, Color: "#eab308"}
	case RiskDanger:
		return ImpactZone{RadiusM: 1000, Color: "#f97316"}
	case RiskExtreme:
		return ImpactZone{RadiusM: 2000, Color: "#ef4444"}
	default:
		return ImpactZone{RadiusM: 200, Color: "#22c55e"}
	}
}

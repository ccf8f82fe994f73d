package domain

import "math"

// TerrainCategory classifies the shape of the land around a point.
type TerrainCategory string

const (
	TerrainValley  TerrainCategory = "valley"
	TerrainPeak    TerrainCategory = "peak"
	TerrainPlain   TerrainCategory = "plain"
	TerrainUnknown TerrainCategory = "unknown"
)

// Label returns the display name for a terrain category.
func (c TerrainCategory) Label() string {
	switch c {
	case TerrainValley:
		return "Basin / Valley"
	case TerrainPeak:
		return "Ridge / Hilltop"
	case TerrainPlain:
		return "Flat Terrain / Plains"
	default:
		return "Unclassified Terrain"
	}
}

// TerrainAssessment is the derived topography for a location. Immutable once
// computed for a sample set.
type TerrainAssessment struct {
	Category        TerrainCategory `json:"category"`
	SlopeM          float64         `json:"slope_m"`
	CatchmentFactor float64         `json:"catchment_factor"`
}

// Catchment and classification constants. The catchment factor is a runoff
// multiplier in [20, 300]: valleys concentrate upstream runoff, peaks shed
// water, flat terrain is neutral.
const (
	terrainDeltaM        = 20.0
	catchmentNeutral     = 50.0
	catchmentPeak        = 20.0
	catchmentValleyBase  = 100.0
	catchmentValleySlope = 2.0
	catchmentCap         = 300.0
)

// ClassifyTerrain derives terrain category, slope, and catchment factor from
// an elevation sample set. A set with no neighbors degrades to plain terrain
// with the neutral catchment factor; there is no error path.
func ClassifyTerrain(samples LocationSampleSet) TerrainAssessment {
	neighbors := samples.Neighbors()
	if len(neighbors) == 0 {
		return TerrainAssessment{Category: TerrainPlain, CatchmentFactor: catchmentNeutral}
	}

	center := samples.Center().ElevationM
	sum := 0.0
	maxNeighbor := neighbors[0].ElevationM
	for _, n := range neighbors {
		sum += n.ElevationM
		if n.ElevationM > maxNeighbor {
			maxNeighbor = n.ElevationM
		}
	}
	delta := sum/float64(len(neighbors)) - center
	slope := math.Abs(maxNeighbor - center)

	switch {
	case delta > terrainDeltaM:
		factor := math.Min(catchmentValleyBase+delta*catchmentValleySlope, catchmentCap)
		return TerrainAssessment{Category: TerrainValley, SlopeM: slope, CatchmentFactor: factor}
	case delta < -terrainDeltaM:
		return TerrainAssessment{Category: TerrainPeak, SlopeM: slope, CatchmentFactor: catchmentPeak}
	default:
		return TerrainAssessment{Category: TerrainPlain, SlopeM: slope, CatchmentFactor: catchmentNeutral}
	}
}

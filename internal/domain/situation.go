package domain

// Situation is the discrete label summarizing current ground truth at a
// location, independent of the forecast-driven risk level.
type Situation string

const (
	SituationSevereFlooding Situation = "SEVERE FLOODING"
	SituationRiverOverflow  Situation = "RIVER OVERFLOW"
	SituationFlooded        Situation = "FLOODED"
	SituationBasinPooling   Situation = "BASIN POOLING"
	SituationWaterlogged    Situation = "WATERLOGGED"
	SituationSlipperySlopes Situation = "SLIPPERY SLOPES"
	SituationWetGround      Situation = "WET GROUND"
	SituationNormal         Situation = "NORMAL"
)

// SituationRecord is the active situation plus its severity color tag.
// Exactly one record is active per location; re-acquisition replaces it
// wholesale.
type SituationRecord struct {
	State    Situation `json:"state"`
	ColorTag string    `json:"color_tag"`
}

// SituationInput is the observed state feeding classification.
type SituationInput struct {
	Accumulated48hMM float64
	Terrain          TerrainCategory
	Hydrology        HydrologyFlag
	SlopeM           float64
}

// situationRules is the classification ladder, evaluated in order with first
// match winning. Thresholds deliberately overlap: the order encodes severity
// precedence, so 250 mm in a valley near water is SEVERE FLOODING, not
// RIVER OVERFLOW.
var situationRules = []struct {
	match func(SituationInput) bool
	state Situation
	color string
}{
	{func(in SituationInput) bool { return in.Accumulated48hMM > 200 }, SituationSevereFlooding, "red"},
	{func(in SituationInput) bool { return in.Accumulated48hMM > 100 && in.Hydrology.WaterNearby() }, SituationRiverOverflow, "orange"},
	{func(in SituationInput) bool { return in.Accumulated48hMM > 100 }, SituationFlooded, "red"},
	{func(in SituationInput) bool { return in.Accumulated48hMM > 60 && in.Terrain == TerrainValley }, SituationBasinPooling, "orange"},
	{func(in SituationInput) bool { return in.Accumulated48hMM > 60 }, SituationWaterlogged, "yellow"},
	{func(in SituationInput) bool { return in.Accumulated48hMM > 20 && in.SlopeM > 20 }, SituationSlipperySlopes, "amber"},
	{func(in SituationInput) bool { return in.Accumulated48hMM > 10 }, SituationWetGround, "blue"},
}

// ClassifySituation maps the observed state to one situation. Pure function;
// always returns a record (NORMAL when nothing matches).
func ClassifySituation(in SituationInput) SituationRecord {
	for _, rule := range situationRules {
		if rule.match(in) {
			return SituationRecord{State: rule.state, ColorTag: rule.color}
		}
	}
	return SituationRecord{State: SituationNormal, ColorTag: "green"}
}

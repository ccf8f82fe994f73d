package domain

import (
	"fmt"
	"strings"
	"time"
)

// NewsType is the tone of a generated news item.
type NewsType string

const (
	NewsInfo    NewsType = "info"
	NewsWarning NewsType = "warning"
	NewsDanger  NewsType = "danger"
)

// NewsItem is one synthesized news-style alert record.
type NewsItem struct {
	Type      NewsType  `json:"type"`
	Headline  string    `json:"headline"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// NarrativeBundle is the ordered analyst brief plus the news feed for one
// acquisition. Cleared and rebuilt on every re-acquisition.
type NarrativeBundle struct {
	Brief []string   `json:"brief"`
	News  []NewsItem `json:"news"`
}

// NarrativeInput feeds narrative generation. All text is template-
// interpolated from these fields; nothing is free-form.
type NarrativeInput struct {
	Place            string
	RainRateMMH      float64
	Accumulated48hMM float64
	Terrain          TerrainAssessment
	CenterElevationM float64
	Hydrology        HydrologyFlag
	WindSpeedKMH     float64
	Situation        Situation
}

// BuildNarrative produces the brief lines and news items in fixed order:
// an optional terrain line (valley/peak only), an optional rainfall-severity
// line, and always exactly one hydrology line; then a lead news item whose
// tone follows the situation state, and an optional river-level warning.
// Deterministic given its inputs and the package clock.
func BuildNarrative(in NarrativeInput) NarrativeBundle {
	var brief []string

	switch in.Terrain.Category {
	case TerrainValley:
		brief = append(brief, fmt.Sprintf(
			"Analysis: Location is in a valley basin (Elev: %.0fm). Runoff from surrounding hills (%.0fm variance) will accumulate here rapidly.",
			in.CenterElevationM, in.Terrain.SlopeM))
	case TerrainPeak:
		brief = append(brief, "Analysis: Location is elevated. Primary risk is landslide/erosion rather than deep flooding.")
	}

	if in.Accumulated48hMM > 100 {
		brief = append(brief, fmt.Sprintf(
			"Critical Weather: Massive rainfall of %.0fmm recorded in last 48h. Ground capacity exceeded.", in.Accumulated48hMM))
	} else if in.Accumulated48hMM > 50 {
		brief = append(brief, fmt.Sprintf(
			"Weather Context: Significant rain (%.0fmm) over past 2 days. Soil is responding.", in.Accumulated48hMM))
	}

	if in.Hydrology.WaterNearby() {
		brief = append(brief, "Hydrology: Proximity to water body detected. Saturated soil increases bank overflow risk.")
	} else {
		brief = append(brief, "Hydrology: No major river nearby. Flood risk is primarily localized pooling (pluvial).")
	}

	return NarrativeBundle{Brief: brief, News: buildNews(in)}
}

// buildNews selects the lead item by situation-state substring, then appends
// the river-level warning when water is present under heavy accumulation.
func buildNews(in NarrativeInput) []NewsItem {
	now := clock.Now()
	state := string(in.Situation)

	var items []NewsItem
	switch {
	case strings.Contains(state, "FLOOD") || strings.Contains(state, "OVERFLOW"):
		items = append(items, NewsItem{
			Type:      NewsDanger,
			Headline:  fmt.Sprintf("CRITICAL: %s in %s", state, in.Place),
			Body:      fmt.Sprintf("Total 48h rainfall of %.0fmm recorded. Major flooding reported in low-lying areas.", in.Accumulated48hMM),
			Timestamp: now,
		})
	case in.RainRateMMH > 15:
		items = append(items, NewsItem{
			Type:      NewsWarning,
			Headline:  fmt.Sprintf("Heavy Rain Alert: %s", in.Place),
			Body:      fmt.Sprintf("Intense downpour (%.1fmm/h) detected. Flash flood risk increasing rapidly.", in.RainRateMMH),
			Timestamp: now,
		})
	default:
		items = append(items, NewsItem{
			Type:      NewsInfo,
			Headline:  fmt.Sprintf("Situational Update: %s", in.Place),
			Body:      fmt.Sprintf("Current status is %s. 48h Rainfall: %.0fmm.", state, in.Accumulated48hMM),
			Timestamp: now,
		})
	}

	if in.Hydrology.WaterNearby() && in.Accumulated48hMM > 80 {
		items = append(items, NewsItem{
			Type:      NewsDanger,
			Headline:  "River Level Warning",
			Body:      "High runoff volume entering local water bodies. Bank breach possible.",
			Timestamp: now,
		})
	}

	return items
}

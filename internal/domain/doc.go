// Package domain implements the flood, landslide, and sinkhole risk model
// for a single geographic point.
//
// # Sampling Geometry
//
// Every assessment starts from a LocationSampleSet: the point of interest
// plus four offset points roughly 2 km to the north, south, east, and west
// (0.02 degrees). The center point is always index 0. When the upstream
// provider collapses the grid to a single point the set degrades to zero
// neighbors and terrain classification falls back to flat-terrain defaults.
//
// # Terrain
//
// Terrain is classified from the elevation difference between the center
// and the mean of its neighbors:
//
//	delta > 20m   → valley, catchment factor 100 + 2*delta, capped at 300
//	delta < -20m  → peak, catchment factor 20
//	otherwise     → plain, catchment factor 50
//
// The catchment factor models how much upstream terrain funnels runoff
// toward the point. Slope is the absolute difference between the highest
// neighbor and the center.
//
// # Soil
//
// Soil moisture is a bucket model, not infiltration physics. The trailing
// hourly precipitation series is summed as-is (no timestamp alignment),
// drainage over the window is a fixed 144 mm, and the bucket holds 120 mm.
// Saturation is the excess load over drainage as a fraction of capacity,
// clamped to [0, 100].
//
// # Risk Scoring
//
// ScoreRisk forecasts rainfall over the simulation window, absorbs what the
// remaining soil capacity plus in-window drainage can take, and treats the
// rest as runoff. Runoff plus any historical surplus is amplified by the
// catchment factor, discounted when no surface water is nearby, and damped
// logarithmically into an estimated water rise in meters. Grading thresholds
// (0.3 / 1.0 / 2.5 m) map the rise to safe, caution, danger, or extreme,
// with one-way escalations for valley terrain and low-elevation points near
// open water. Landslide and sinkhole grades derive from the post-absorption
// moisture load and the terrain shape.
//
// All functions in this package are pure: identical inputs always produce
// identical outputs (narrative timestamps come from an injectable clock).
// There is no error path: missing or malformed inputs degrade to safe
// defaults rather than failing.
package domain

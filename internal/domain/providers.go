package domain

import "context"

// SampleProvider supplies the weather and elevation grid for an assessment.
type SampleProvider interface {
	// FetchSamples returns the sample set for the grid around center.
	// The center point is index 0; implementations may return a single
	// point when the upstream collapses the grid.
	FetchSamples(ctx context.Context, center Coordinate) (LocationSampleSet, error)
}

// HydrologyProvider counts surface-water features near a coordinate.
type HydrologyProvider interface {
	NearbyWaterFeatures(ctx context.Context, c Coordinate, radiusM int) (int, error)
}

// Geocoder resolves a coordinate to a locality.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, c Coordinate) (Place, error)
}

// HistoryProvider searches for historical flood context by free-text query.
type HistoryProvider interface {
	Search(ctx context.Context, query string) ([]HistoryEntry, error)
}

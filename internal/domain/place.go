package domain

// UnknownPlace is the sentinel city name used when reverse geocoding fails
// or returns nothing.
const UnknownPlace = "Unknown Location"

// Place is the reverse-geocoded locality for a coordinate.
type Place struct {
	City   string `json:"city"`
	Region string `json:"region,omitempty"`
}

// UnknownLocation returns the degraded-mode place.
func UnknownLocation() Place { return Place{City: UnknownPlace} }

// Known reports whether the place resolved to a real locality.
func (p Place) Known() bool { return p.City != "" && p.City != UnknownPlace }

// DisplayName returns the city, falling back to the sentinel.
func (p Place) DisplayName() string {
	if p.City == "" {
		return UnknownPlace
	}
	return p.City
}

// HistoryEntry is one historical-context search result. The snippet may
// contain provider markup and is treated as opaque display text.
type HistoryEntry struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

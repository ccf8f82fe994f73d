package domain

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// sampleOffsetDegrees is the grid spacing for neighbor samples, roughly 2 km.
const sampleOffsetDegrees = 0.02

// SampleGrid returns the five coordinates sampled for an assessment: the
// center first, then the offsets to the north, south, east, and west.
func SampleGrid(center Coordinate) []Coordinate {
	return []Coordinate{
		center,
		{Lat: center.Lat + sampleOffsetDegrees, Lon: center.Lon},
		{Lat: center.Lat - sampleOffsetDegrees, Lon: center.Lon},
		{Lat: center.Lat, Lon: center.Lon + sampleOffsetDegrees},
		{Lat: center.Lat, Lon: center.Lon - sampleOffsetDegrees},
	}
}

// Conditions is the current-weather snapshot attached to a sample point.
type Conditions struct {
	TemperatureC     float64 `json:"temperature_c"`
	ApparentTempC    float64 `json:"apparent_temperature_c"`
	HumidityPct      float64 `json:"humidity_pct"`
	PrecipitationMMH float64 `json:"precipitation_mmh"`
	WeatherCode      int     `json:"weather_code"`
	WindSpeedKMH     float64 `json:"wind_speed_kmh"`
}

// SamplePoint is one sampled location: coordinate, elevation, current
// conditions, and the trailing hourly precipitation series (past ~48h plus
// the current day, in mm per hour slot).
type SamplePoint struct {
	Coordinate
	ElevationM     float64   `json:"elevation_m"`
	Current        Conditions `json:"current"`
	HourlyPrecipMM []float64 `json:"hourly_precip_mm,omitempty"`
}

// LocationSampleSet holds the center sample and its neighbors.
// Invariant: the center is index 0; the neighbor count is 0 or 4.
type LocationSampleSet struct {
	Points []SamplePoint `json:"points"`
}

// Center returns the center sample, or a zero point for an empty set.
func (s LocationSampleSet) Center() SamplePoint {
	if len(s.Points) == 0 {
		return SamplePoint{}
	}
	return s.Points[0]
}

// Neighbors returns the offset samples (everything after the center).
func (s LocationSampleSet) Neighbors() []SamplePoint {
	if len(s.Points) <= 1 {
		return nil
	}
	return s.Points[1:]
}

// HydrologyFlag is the tri-state surface-water signal for a location.
type HydrologyFlag string

const (
	// HydrologyUnresolved means the hydrology lookup failed or has not run.
	HydrologyUnresolved HydrologyFlag = "unresolved"
	// HydrologyNone means the lookup succeeded and found no water features.
	HydrologyNone HydrologyFlag = "none"
	// HydrologyDetected means a water body or feature lies within ~2 km.
	HydrologyDetected HydrologyFlag = "detected"
)

// WaterNearby reports whether surface water was positively detected.
func (f HydrologyFlag) WaterNearby() bool { return f == HydrologyDetected }

// wmoDescriptions maps WMO weather codes to display text.
var wmoDescriptions = map[int]string{
	0: "Clear Sky", 1: "Mainly Clear", 2: "Partly Cloudy", 3: "Overcast",
	45: "Foggy", 48: "Rime Fog",
	51: "Light Drizzle", 53: "Moderate Drizzle", 55: "Dense Drizzle",
	56: "Freezing Drizzle", 57: "Heavy Freezing Drizzle",
	61: "Slight Rain", 63: "Moderate Rain", 65: "Heavy Rain",
	66: "Freezing Rain", 67: "Heavy Freezing Rain",
	71: "Slight Snow", 73: "Moderate Snow", 75: "Heavy Snow",
	77: "Snow Grains",
	80: "Slight Showers", 81: "Moderate Showers", 82: "Violent Showers",
	85: "Snow Showers", 86: "Heavy Snow Showers",
	95: "Thunderstorm", 96: "Thunderstorm + Hail", 99: "Heavy Thunderstorm",
}

// WeatherDescription returns the display text for a WMO weather code.
func WeatherDescription(code int) string {
	if s, ok := wmoDescriptions[code]; ok {
		return s
	}
	return "Variable Conditions"
}

// Package openmeteo implements domain.SampleProvider using the Open-Meteo
// forecast API. One request carries all five grid points as comma-joined
// latitude/longitude parameters.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ksandaruwan/floodwatch/internal/domain"
)

// Client fetches weather, elevation, and hourly precipitation for a sample
// grid in a single batched call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		logger:     logger,
	}
}

// FetchSamples retrieves the center point and its four neighbors. Open-Meteo
// returns a JSON array for a multi-point request but a single object when it
// collapses the query to one point; the latter degrades to a center-only set.
func (c *Client) FetchSamples(ctx context.Context, center domain.Coordinate) (domain.LocationSampleSet, error) {
	grid := domain.SampleGrid(center)

	lats := make([]string, len(grid))
	lons := make([]string, len(grid))
	for i, p := range grid {
		lats[i] = fmt.Sprintf("%.4f", p.Lat)
		lons[i] = fmt.Sprintf("%.4f", p.Lon)
	}

	params := url.Values{
		"latitude":      {strings.Join(lats, ",")},
		"longitude":     {strings.Join(lons, ",")},
		"current":       {"temperature_2m,relative_humidity_2m,apparent_temperature,precipitation,weather_code,wind_speed_10m"},
		"hourly":        {"precipitation"},
		"past_days":     {"2"},
		"forecast_days": {"1"},
	}
	fullURL := c.baseURL + "/v1/forecast?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.LocationSampleSet{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.LocationSampleSet{}, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.LocationSampleSet{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.LocationSampleSet{}, fmt.Errorf("read response: %w", err)
	}

	points, err := decodePoints(raw)
	if err != nil {
		return domain.LocationSampleSet{}, err
	}
	if len(points) == 0 {
		return domain.LocationSampleSet{}, fmt.Errorf("open-meteo returned no points")
	}

	set := domain.LocationSampleSet{Points: make([]domain.SamplePoint, 0, len(points))}
	for i, p := range points {
		coord := center
		if i < len(grid) {
			coord = grid[i]
		}
		set.Points = append(set.Points, toSamplePoint(coord, p))
	}
	return set, nil
}

func decodePoints(raw []byte) ([]pointResponse, error) {
	var points []pointResponse
	if err := json.Unmarshal(raw, &points); err == nil {
		return points, nil
	}

	var single pointResponse
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return []pointResponse{single}, nil
}

func toSamplePoint(coord domain.Coordinate, p pointResponse) domain.SamplePoint {
	return domain.SamplePoint{
		Coordinate: coord,
		ElevationM: p.Elevation,
		Current: domain.Conditions{
			TemperatureC:     p.Current.Temperature2m,
			ApparentTempC:    p.Current.ApparentTemperature,
			HumidityPct:      p.Current.RelativeHumidity2m,
			PrecipitationMMH: p.Current.Precipitation,
			WeatherCode:      p.Current.WeatherCode,
			WindSpeedKMH:     p.Current.WindSpeed10m,
		},
		HourlyPrecipMM: p.Hourly.Precipitation,
	}
}

// Open-Meteo API response types.

type pointResponse struct {
	Elevation float64 `json:"elevation"`
	Current   struct {
		Temperature2m       float64 `json:"temperature_2m"`
		RelativeHumidity2m  float64 `json:"relative_humidity_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		Precipitation       float64 `json:"precipitation"`
		WeatherCode         int     `json:"weather_code"`
		WindSpeed10m        float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Hourly struct {
		Precipitation []float64 `json:"precipitation"`
	} `json:"hourly"`
}

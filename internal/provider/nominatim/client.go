// Package nominatim implements domain.Geocoder against the OpenStreetMap
// Nominatim reverse geocoding API.
package nominatim

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

// Client resolves coordinates to settlement names.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Nominatim client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		logger:     logger,
	}
}

// ReverseGeocode resolves a coordinate to a Place. City falls back through
// town and village; region falls back from state to county. A response with
// no usable settlement yields domain.UnknownLocation without an error.
func (c *Client) ReverseGeocode(ctx context.Context, coord domain.Coordinate) (domain.Place, error) {
	params := url.Values{
		"format": {"json"},
		"lat":    {fmt.Sprintf("%.6f", coord.Lat)},
		"lon":    {fmt.Sprintf("%.6f", coord.Lon)},
		"zoom":   {"12"},
	}
	fullURL := c.baseURL + "/reverse?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.UnknownLocation(), fmt.Errorf("create request: %w", err)
	}
	// Nominatim usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", "floodwatch/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.UnknownLocation(), fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.UnknownLocation(), fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.UnknownLocation(), fmt.Errorf("decode response: %w", err)
	}

	city := firstNonEmpty(parsed.Address.City, parsed.Address.Town, parsed.Address.Village)
	if city == "" {
		return domain.UnknownLocation(), nil
	}
	region := firstNonEmpty(parsed.Address.State, parsed.Address.County)

	return domain.Place{City: city, Region: region}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Nominatim API response types.

type response struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
		County  string `json:"county"`
	} `json:"address"`
}

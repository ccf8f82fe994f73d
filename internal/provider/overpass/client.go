// Package overpass implements domain.HydrologyProvider against the Overpass
// OpenStreetMap query API.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ksandaruwan/floodwatch/internal/domain"
)

// Client counts waterways, water bodies, and coastline near a coordinate.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an Overpass client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		logger:     logger,
	}
}

// NearbyWaterFeatures returns the number of water features within radiusM
// meters of the coordinate.
func (c *Client) NearbyWaterFeatures(ctx context.Context, coord domain.Coordinate, radiusM int) (int, error) {
	query := fmt.Sprintf(`[out:json][timeout:5];
(
  way["waterway"~"river|stream|canal"](around:%d,%.6f,%.6f);
  way["natural"="water"](around:%d,%.6f,%.6f);
  way["natural"="coastline"](around:%d,%.6f,%.6f);
);
out count;`,
		radiusM, coord.Lat, coord.Lon,
		radiusM, coord.Lat, coord.Lon,
		radiusM, coord.Lat, coord.Lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/interpreter", strings.NewReader(query))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("hydrology request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("overpass API error: status %d: %s", resp.StatusCode, body)
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	return countFeatures(parsed), nil
}

// countFeatures reads the count element an "out count" query returns. Some
// Overpass instances answer with the raw elements instead; those fall back
// to the element count.
func countFeatures(parsed response) int {
	if len(parsed.Elements) == 0 {
		return 0
	}
	first := parsed.Elements[0]
	if first.Count > 0 {
		return first.Count
	}
	if total, err := strconv.Atoi(first.Tags.Total); err == nil && total >= 0 {
		return total
	}
	return len(parsed.Elements)
}

// Overpass API response types.

type response struct {
	Elements []element `json:"elements"`
}

type element struct {
	Count int `json:"count"`
	Tags  struct {
		Total string `json:"total"`
	} `json:"tags"`
}

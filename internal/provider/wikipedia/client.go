// Package wikipedia implements domain.HistoryProvider using the Wikipedia
// search API to surface past flood events near a place.
package wikipedia

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

const maxResults = 3

// Client searches Wikipedia for historical flood context.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Wikipedia search client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		logger:     logger,
	}
}

// Search returns up to three article snippets matching "Flood <query>".
// Snippets arrive with search-term highlighting markup, which is stripped.
func (c *Client) Search(ctx context.Context, query string) ([]domain.HistoryEntry, error) {
	params := url.Values{
		"action":   {"query"},
		"format":   {"json"},
		"list":     {"search"},
		"srsearch": {"Flood " + query},
		"srlimit":  {fmt.Sprintf("%d", maxResults)},
	}
	fullURL := c.baseURL + "/w/api.php?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("wikipedia API error: status %d: %s", resp.StatusCode, body)
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(parsed.Query.Search))
	for _, result := range parsed.Query.Search {
		entries = append(entries, domain.HistoryEntry{
			Title:   result.Title,
			Snippet: stripMarkup(result.Snippet),
		})
	}
	return entries, nil
}

// stripMarkup removes the <span class="searchmatch"> highlighting the search
// API embeds in snippets.
func stripMarkup(s string) string {
	for {
		start := strings.Index(s, "<")
		if start < 0 {
			return s
		}
		end := strings.Index(s[start:], ">")
		if end < 0 {
			return s
		}
		s = s[:start] + s[start+end+1:]
	}
}

// Wikipedia API response types.

type response struct {
	Query struct {
		Search []searchResult `json:"search"`
	} `json:"query"`
}

type searchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

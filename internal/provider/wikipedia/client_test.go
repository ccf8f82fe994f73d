package wikipedia

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/w/api.php", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "query", q.Get("action"))
		assert.Equal(t, "search", q.Get("list"))
		assert.Equal(t, "Flood Ratnapura Sabaragamuwa", q.Get("srsearch"))
		assert.Equal(t, "3", q.Get("srlimit"))

		fmt.Fprint(w, `{"query":{"search":[
			{"title":"2017 Sri Lanka floods","snippet":"Severe <span class=\"searchmatch\">flooding</span> hit Ratnapura"},
			{"title":"Kalu Ganga","snippet":"The river frequently overflows"}
		]}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, testLogger())
	entries, err := client.Search(context.Background(), "Ratnapura Sabaragamuwa")
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "2017 Sri Lanka floods", entries[0].Title)
	assert.Equal(t, "Severe flooding hit Ratnapura", entries[0].Snippet)
	assert.Equal(t, "Kalu Ganga", entries[1].Title)
}

func TestSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"query":{"search":[]}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, testLogger())
	entries, err := client.Search(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, testLogger())
	_, err := client.Search(context.Background(), "Colombo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain text`, `plain text`},
		{`<span class="x">flood</span> season`, `flood season`},
		{`nested <b><i>tags</i></b>`, `nested tags`},
		{`dangling <span`, `dangling <span`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripMarkup(tt.in))
	}
}

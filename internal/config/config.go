package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream data providers.
	ProviderTimeout  time.Duration
	OpenMeteoBaseURL string
	OverpassBaseURL  string
	NominatimBaseURL string
	WikipediaBaseURL string
	GeocodeCacheSize int

	// Scoring behavior.
	ScoringMinLatency    time.Duration
	DefaultDurationHours float64

	// Optional Kafka alert publishing.
	KafkaBrokers     []string
	KafkaAlertsTopic string
	AlertsEnabled    bool
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first if
// present; real environment variables take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	providerTimeout, err := parseDuration("PROVIDER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	minLatency, err := parseNonNegativeDuration("SCORING_MIN_LATENCY", "1500ms")
	if err != nil {
		return nil, err
	}

	duration, err := parseDefaultDuration()
	if err != nil {
		return nil, err
	}

	alertsEnabled := envOrDefault("ALERTS_ENABLED", "false") == "true"

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ProviderTimeout:  providerTimeout,
		OpenMeteoBaseURL: envOrDefault("OPENMETEO_BASE_URL", "https://api.open-meteo.com"),
		OverpassBaseURL:  envOrDefault("OVERPASS_BASE_URL", "https://overpass-api.de"),
		NominatimBaseURL: envOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		WikipediaBaseURL: envOrDefault("WIKIPEDIA_BASE_URL", "https://en.wikipedia.org"),
		GeocodeCacheSize: parseGeocodeCacheSize(),

		ScoringMinLatency:    minLatency,
		DefaultDurationHours: duration,

		KafkaBrokers:     parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaAlertsTopic: envOrDefault("KAFKA_ALERTS_TOPIC", "flood-alerts"),
		AlertsEnabled:    alertsEnabled,
	}

	if cfg.AlertsEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("ALERTS_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.AlertsEnabled && cfg.KafkaAlertsTopic == "" {
		return nil, errors.New("ALERTS_ENABLED is true but KAFKA_ALERTS_TOPIC is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parseNonNegativeDuration allows zero, which disables the pacing delay.
func parseNonNegativeDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseDefaultDuration() (float64, error) {
	s := envOrDefault("SIM_DURATION_DEFAULT_HOURS", "24")
	h, err := strconv.ParseFloat(s, 64)
	if err != nil || h <= 0 || h > 168 {
		return 0, errors.New("invalid SIM_DURATION_DEFAULT_HOURS")
	}
	return h, nil
}

func parseGeocodeCacheSize() int {
	if s := os.Getenv("GEOCODE_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

func parseBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}

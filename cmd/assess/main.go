// Command assess runs a one-shot flood risk assessment for a coordinate and
// prints the result as JSON.
//
// Usage:
//
//	go run ./cmd/assess -lat 6.7056 -lon 80.3847 -duration 24 -rate 15
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ksandaruwan/floodwatch/internal/assessor"
	"github.com/ksandaruwan/floodwatch/internal/config"
	"github.com/ksandaruwan/floodwatch/internal/domain"
	"github.com/ksandaruwan/floodwatch/internal/observability"
	"github.com/ksandaruwan/floodwatch/internal/provider/nominatim"
	"github.com/ksandaruwan/floodwatch/internal/provider/openmeteo"
	"github.com/ksandaruwan/floodwatch/internal/provider/overpass"
	"github.com/ksandaruwan/floodwatch/internal/provider/wikipedia"
)

type output struct {
	Assessment assessor.Assessment   `json:"assessment"`
	Risk       domain.RiskAssessment `json:"risk"`
	ImpactZone domain.ImpactZone     `json:"impact_zone"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	lat := flag.Float64("lat", 0, "latitude of the location to assess")
	lon := flag.Float64("lon", 0, "longitude of the location to assess")
	duration := flag.Float64("duration", 0, "forecast duration in hours (0 uses the configured default)")
	rate := flag.Float64("rate", -1, "rainfall rate override in mm/h (negative uses the observed rate)")
	wait := flag.Duration("wait", 2*time.Second, "how long to wait for the historical context lookup")
	flag.Parse()

	if *lat < -90 || *lat > 90 || *lon < -180 || *lon > 180 {
		return fmt.Errorf("coordinate out of range: lat=%v lon=%v", *lat, *lon)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	providers := assessor.Providers{
		Samples:   openmeteo.NewClient(cfg.OpenMeteoBaseURL, cfg.ProviderTimeout, logger),
		Hydrology: overpass.NewClient(cfg.OverpassBaseURL, cfg.ProviderTimeout, logger),
		Geocoder: nominatim.NewCachedGeocoder(
			nominatim.NewClient(cfg.NominatimBaseURL, cfg.ProviderTimeout, logger),
			cfg.GeocodeCacheSize, metrics),
		History: wikipedia.NewClient(cfg.WikipediaBaseURL, cfg.ProviderTimeout, logger),
	}

	a := assessor.New(providers, assessor.Options{
		Logger:               logger,
		Metrics:              metrics,
		DefaultDurationHours: cfg.DefaultDurationHours,
	})

	ctx := context.Background()
	if _, err := a.Acquire(ctx, domain.Coordinate{Lat: *lat, Lon: *lon}); err != nil {
		return err
	}

	var rateOverride *float64
	if *rate >= 0 {
		rateOverride = rate
	}
	risk, err := a.ScoreRisk(ctx, rateOverride, *duration)
	if err != nil {
		return err
	}

	// The history lookup is best-effort and detached; give it a moment.
	time.Sleep(*wait)

	current, _ := a.Current()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output{
		Assessment: current,
		Risk:       risk,
		ImpactZone: domain.ImpactZoneFor(risk.Level),
	})
}

// Package assessor orchestrates location acquisition and risk scoring. It
// fans out to the upstream providers, degrades failed lookups to safe
// defaults, and keeps the most recently acquired assessment as the scoring
// substrate.
package assessor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/ksandaruwan/floodwatch/internal/domain"
	"github.com/ksandaruwan/floodwatch/internal/observability"
)

const defaultWaterSearchRadiusM = 2000

// Providers bundles the upstream data sources for one acquisition.
type Providers struct {
	Samples   domain.SampleProvider
	Hydrology domain.HydrologyProvider
	Geocoder  domain.Geocoder
	History   domain.HistoryProvider
}

// AlertPublisher delivers warning and danger news items to an external sink.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, coord domain.Coordinate, items []domain.NewsItem) error
}

// Options configures an Assessor.
type Options struct {
	Logger  *slog.Logger
	Metrics *observability.Metrics
	Clock   clockwork.Clock

	// MinScoringLatency is the floor on ScoreRisk wall time. Zero disables
	// the pacing delay.
	MinScoringLatency    time.Duration
	DefaultDurationHours float64
	WaterSearchRadiusM   int

	// Alerts is optional; nil disables publishing.
	Alerts AlertPublisher
}

// Assessment is the full derived picture for one acquired location.
type Assessment struct {
	Coordinate   domain.Coordinate        `json:"coordinate"`
	Place        domain.Place             `json:"place"`
	Hydrology    domain.HydrologyFlag     `json:"hydrology"`
	Conditions   *domain.Conditions       `json:"conditions,omitempty"`
	Weather      string                   `json:"weather,omitempty"`
	ElevationM   float64                  `json:"elevation_m"`
	Terrain      domain.TerrainAssessment `json:"terrain"`
	TerrainLabel string                   `json:"terrain_label"`
	Soil         domain.SoilState         `json:"soil"`
	Situation    domain.SituationRecord   `json:"situation"`
	Narrative    domain.NarrativeBundle   `json:"narrative"`
	History      []domain.HistoryEntry    `json:"history,omitempty"`
	Risk         *domain.RiskAssessment   `json:"risk,omitempty"`
	AcquiredAt   time.Time                `json:"acquired_at"`
}

// Assessor acquires locations and scores flood risk against the most recent
// acquisition. Concurrent acquisitions resolve last-write-wins: a slower
// older acquisition never overwrites a newer one.
type Assessor struct {
	providers Providers
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock

	minLatency    time.Duration
	defaultHours  float64
	searchRadiusM int
	alerts        AlertPublisher

	mu           sync.Mutex
	current      *Assessment
	installedGen uint64

	nextGen atomic.Uint64
	ready   atomic.Bool
}

// New creates an Assessor.
func New(providers Providers, opts Options) *Assessor {
	clk := opts.Clock
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	hours := opts.DefaultDurationHours
	if hours <= 0 {
		hours = 24
	}
	radius := opts.WaterSearchRadiusM
	if radius <= 0 {
		radius = defaultWaterSearchRadiusM
	}
	return &Assessor{
		providers:     providers,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		clock:         clk,
		minLatency:    opts.MinScoringLatency,
		defaultHours:  hours,
		searchRadiusM: radius,
		alerts:        opts.Alerts,
	}
}

// CheckReadiness returns nil once at least one acquisition has completed.
func (a *Assessor) CheckReadiness(_ context.Context) error {
	if !a.ready.Load() {
		return errors.New("no location acquired yet")
	}
	return nil
}

// Acquire fetches weather, hydrology, and place data for a coordinate in
// parallel, derives terrain, soil, situation, and narrative, and installs
// the result as the current assessment. Provider failures degrade to
// defaults and are never fatal; only context cancellation returns an error.
func (a *Assessor) Acquire(ctx context.Context, center domain.Coordinate) (Assessment, error) {
	gen := a.nextGen.Add(1)
	start := a.clock.Now()
	a.metrics.Acquisitions.Inc()

	var (
		samples   domain.LocationSampleSet
		weatherOK bool
		hydrology = domain.HydrologyUnresolved
		place     = domain.UnknownLocation()
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		set, err := a.providers.Samples.FetchSamples(gctx, center)
		if err != nil {
			a.metrics.ProviderErrors.WithLabelValues("weather").Inc()
			a.logger.Warn("weather fetch degraded", "error", err, "lat", center.Lat, "lon", center.Lon)
			return nil
		}
		samples = set
		weatherOK = true
		return nil
	})

	g.Go(func() error {
		count, err := a.providers.Hydrology.NearbyWaterFeatures(gctx, center, a.searchRadiusM)
		if err != nil {
			a.metrics.ProviderErrors.WithLabelValues("hydrology").Inc()
			a.logger.Warn("hydrology fetch degraded", "error", err)
			return nil
		}
		if count > 0 {
			hydrology = domain.HydrologyDetected
		} else {
			hydrology = domain.HydrologyNone
		}
		return nil
	})

	g.Go(func() error {
		p, err := a.providers.Geocoder.ReverseGeocode(gctx, center)
		if err != nil {
			a.metrics.ProviderErrors.WithLabelValues("geocode").Inc()
			a.logger.Warn("reverse geocode degraded", "error", err)
			return nil
		}
		place = p
		return nil
	})

	// Goroutines swallow provider errors, so Wait only reflects cancellation.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Assessment{}, err
	}

	assessment := a.derive(center, samples, weatherOK, hydrology, place)

	a.mu.Lock()
	stale := gen <= a.installedGen
	if !stale {
		a.installedGen = gen
		copied := assessment
		a.current = &copied
	}
	a.mu.Unlock()

	a.metrics.AcquisitionDuration.Observe(a.clock.Since(start).Seconds())
	a.ready.Store(true)

	if stale {
		a.logger.Info("discarding stale acquisition", "generation", gen)
		return assessment, nil
	}

	a.logger.Info("location acquired",
		"place", assessment.Place.DisplayName(),
		"terrain", assessment.Terrain.Category,
		"situation", assessment.Situation.State,
		"hydrology", assessment.Hydrology)

	if a.providers.History != nil && assessment.Place.Known() {
		go a.lookupHistory(context.WithoutCancel(ctx), gen, assessment.Place)
	}

	a.publishAlerts(ctx, assessment)

	return assessment, nil
}

// derive turns raw provider output into the assessment. A failed weather
// fetch leaves no samples; terrain and soil then fall back to neutral
// defaults and conditions stay nil.
func (a *Assessor) derive(center domain.Coordinate, samples domain.LocationSampleSet, weatherOK bool, hydrology domain.HydrologyFlag, place domain.Place) Assessment {
	assessment := Assessment{
		Coordinate: center,
		Place:      place,
		Hydrology:  hydrology,
		AcquiredAt: a.clock.Now(),
	}

	var rainRate, windSpeed float64
	if weatherOK && len(samples.Points) > 0 {
		centerPoint := samples.Center()
		conditions := centerPoint.Current
		assessment.Conditions = &conditions
		assessment.Weather = domain.WeatherDescription(conditions.WeatherCode)
		assessment.ElevationM = centerPoint.ElevationM
		assessment.Soil = domain.AssessSoil(centerPoint.HourlyPrecipMM)
		rainRate = conditions.PrecipitationMMH
		windSpeed = conditions.WindSpeedKMH
		assessment.Terrain = domain.ClassifyTerrain(samples)
	} else {
		assessment.Terrain = domain.ClassifyTerrain(domain.LocationSampleSet{})
		assessment.Soil = domain.AssessSoil(nil)
	}
	assessment.TerrainLabel = assessment.Terrain.Category.Label()

	assessment.Situation = domain.ClassifySituation(domain.SituationInput{
		Accumulated48hMM: assessment.Soil.Accumulated48hMM,
		Terrain:          assessment.Terrain.Category,
		Hydrology:        assessment.Hydrology,
		SlopeM:           assessment.Terrain.SlopeM,
	})

	assessment.Narrative = domain.BuildNarrative(domain.NarrativeInput{
		Place:            place.DisplayName(),
		RainRateMMH:      rainRate,
		Accumulated48hMM: assessment.Soil.Accumulated48hMM,
		Terrain:          assessment.Terrain,
		CenterElevationM: assessment.ElevationM,
		Hydrology:        assessment.Hydrology,
		WindSpeedKMH:     windSpeed,
		Situation:        assessment.Situation.State,
	})

	return assessment
}

// lookupHistory runs the best-effort historical context search. The result
// is attached only if the originating acquisition is still current.
func (a *Assessor) lookupHistory(ctx context.Context, gen uint64, place domain.Place) {
	query := place.City
	if place.Region != "" {
		query += " " + place.Region
	}

	entries, err := a.providers.History.Search(ctx, query)
	if err != nil {
		a.metrics.HistoryLookups.WithLabelValues("error").Inc()
		a.logger.Warn("history lookup degraded", "error", err, "query", query)
		return
	}
	if len(entries) == 0 {
		a.metrics.HistoryLookups.WithLabelValues("empty").Inc()
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.installedGen != gen || a.current == nil {
		a.metrics.HistoryLookups.WithLabelValues("stale").Inc()
		return
	}
	a.current.History = entries
	a.metrics.HistoryLookups.WithLabelValues("success").Inc()
}

func (a *Assessor) publishAlerts(ctx context.Context, assessment Assessment) {
	if a.alerts == nil {
		return
	}
	var urgent []domain.NewsItem
	for _, item := range assessment.Narrative.News {
		if item.Type == domain.NewsWarning || item.Type == domain.NewsDanger {
			urgent = append(urgent, item)
		}
	}
	if len(urgent) == 0 {
		return
	}
	if err := a.alerts.PublishAlerts(ctx, assessment.Coordinate, urgent); err != nil {
		a.logger.Warn("alert publish failed", "error", err)
		return
	}
	a.metrics.AlertsPublished.Add(float64(len(urgent)))
}

// Current returns a copy of the most recent assessment, or false if none
// has been acquired yet.
func (a *Assessor) Current() (Assessment, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return Assessment{}, false
	}
	return *a.current, true
}

// ScoreRisk runs the flood scoring model against the current assessment.
// rateOverride, when non-nil, replaces the observed rainfall rate so
// hypothetical downpours can be simulated. durationHours at or below zero
// uses the configured default. The call takes at least the configured
// minimum latency so repeated scoring cannot hammer the model's consumers.
func (a *Assessor) ScoreRisk(ctx context.Context, rateOverride *float64, durationHours float64) (domain.RiskAssessment, error) {
	if durationHours <= 0 {
		durationHours = a.defaultHours
	}
	start := a.clock.Now()

	a.mu.Lock()
	gen := a.installedGen
	var in domain.RiskInput
	if a.current != nil && a.current.Conditions != nil {
		rate := a.current.Conditions.PrecipitationMMH
		if rateOverride != nil {
			rate = *rateOverride
		}
		in = domain.RiskInput{
			RainfallRateMMH: rate,
			DurationHours:   durationHours,
			Soil:            a.current.Soil,
			Terrain:         a.current.Terrain,
			Hydrology:       a.current.Hydrology,
			ElevationM:      a.current.ElevationM,
		}
	}
	a.mu.Unlock()

	result := domain.ScoreRisk(in)

	if remaining := a.minLatency - a.clock.Since(start); remaining > 0 {
		select {
		case <-a.clock.After(remaining):
		case <-ctx.Done():
			return domain.RiskAssessment{}, ctx.Err()
		}
	}

	a.mu.Lock()
	if a.current != nil && a.installedGen == gen {
		copied := result
		a.current.Risk = &copied
	}
	a.mu.Unlock()

	a.metrics.RiskScorings.WithLabelValues(string(result.Level)).Inc()
	a.metrics.ScoringDuration.Observe(a.clock.Since(start).Seconds())

	return result, nil
}

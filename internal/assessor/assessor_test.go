package assessor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksandaruwan/floodwatch/internal/domain"
	"github.com/ksandaruwan/floodwatch/internal/observability"
)

// --- provider mocks ---

type stubSamples struct {
	mu  sync.Mutex
	set domain.LocationSampleSet
	err error
}

func (s *stubSamples) FetchSamples(_ context.Context, _ domain.Coordinate) (domain.LocationSampleSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set, s.err
}

type stubHydrology struct {
	count int
	err   error
}

func (s *stubHydrology) NearbyWaterFeatures(_ context.Context, _ domain.Coordinate, _ int) (int, error) {
	return s.count, s.err
}

type stubGeocoder struct {
	place domain.Place
	err   error
}

func (s *stubGeocoder) ReverseGeocode(_ context.Context, _ domain.Coordinate) (domain.Place, error) {
	return s.place, s.err
}

type stubHistory struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	err     error
	started chan struct{}
	release chan struct{}
}

func (s *stubHistory) Search(_ context.Context, _ string) ([]domain.HistoryEntry, error) {
	s.mu.Lock()
	started, release := s.started, s.release
	entries, err := s.entries, s.err
	s.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	return entries, err
}

func (s *stubHistory) reset(started, release chan struct{}) {
	s.mu.Lock()
	s.started, s.release = started, release
	s.mu.Unlock()
}

type recordingAlerts struct {
	mu    sync.Mutex
	items []domain.NewsItem
	err   error
}

func (r *recordingAlerts) PublishAlerts(_ context.Context, _ domain.Coordinate, items []domain.NewsItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, items...)
	return r.err
}

func (r *recordingAlerts) published() []domain.NewsItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.NewsItem(nil), r.items...)
}

// --- fixtures ---

func valleySampleSet(hourlyTotal float64) domain.LocationSampleSet {
	hourly := make([]float64, 48)
	for i := range hourly {
		hourly[i] = hourlyTotal / 48
	}
	point := func(lat, lon, elev float64) domain.SamplePoint {
		return domain.SamplePoint{
			Coordinate: domain.Coordinate{Lat: lat, Lon: lon},
			ElevationM: elev,
			Current: domain.Conditions{
				TemperatureC:     28,
				PrecipitationMMH: 6,
				WeatherCode:      63,
				WindSpeedKMH:     14,
			},
			HourlyPrecipMM: hourly,
		}
	}
	return domain.LocationSampleSet{Points: []domain.SamplePoint{
		point(6.70, 80.38, 10),
		point(6.72, 80.38, 45),
		point(6.68, 80.38, 45),
		point(6.70, 80.40, 45),
		point(6.70, 80.36, 45),
	}}
}

func newTestAssessor(p Providers, opts Options) *Assessor {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetricsForTesting()
	}
	return New(p, opts)
}

// --- acquisition tests ---

func TestAcquire_FullyResolved(t *testing.T) {
	a := newTestAssessor(Providers{
		Samples:   &stubSamples{set: valleySampleSet(300)},
		Hydrology: &stubHydrology{count: 2},
		Geocoder:  &stubGeocoder{place: domain.Place{City: "Ratnapura", Region: "Sabaragamuwa"}},
	}, Options{})

	got, err := a.Acquire(context.Background(), domain.Coordinate{Lat: 6.70, Lon: 80.38})
	require.NoError(t, err)

	assert.Equal(t, "Ratnapura", got.Place.City)
	assert.Equal(t, domain.HydrologyDetected, got.Hydrology)
	assert.Equal(t, domain.TerrainValley, got.Terrain.Category)
	assert.Equal(t, "Basin / Valley", got.TerrainLabel)
	assert.Equal(t, 10.0, got.ElevationM)
	require.NotNil(t, got.Conditions)
	assert.Equal(t, 6.0, got.Conditions.PrecipitationMMH)
	assert.Equal(t, "Moderate Rain", got.Weather)
	assert.InDelta(t, 300, got.Soil.Accumulated48hMM, 1e-6)
	assert.Equal(t, domain.GroundFullySaturated, got.Soil.Condition)
	assert.Equal(t, domain.SituationSevereFlooding, got.Situation.State)
	assert.NotEmpty(t, got.Narrative.Brief)
	assert.NotEmpty(t, got.Narrative.News)
	assert.Nil(t, got.Risk, "risk is only computed by ScoreRisk")

	current, ok := a.Current()
	require.True(t, ok)
	assert.Equal(t, got.Place, current.Place)
	assert.NoError(t, a.CheckReadiness(context.Background()))
}

func TestAcquire_WeatherFailureDegradesToPlain(t *testing.T) {
	a := newTestAssessor(Providers{
		Samples:   &stubSamples{err: errors.New("open-meteo down")},
		Hydrology: &stubHydrology{count: 0},
		Geocoder:  &stubGeocoder{place: domain.Place{City: "Colombo"}},
	}, Options{})

	got, err := a.Acquire(context.Background(), domain.Coordinate{})
	require.NoError(t, err)

	assert.Nil(t, got.Conditions)
	assert.Equal(t, domain.TerrainPlain, got.Terrain.Category)
	assert.Equal(t, 50.0, got.Terrain.CatchmentFactor)
	assert.Equal(t, domain.HydrologyNone, got.Hydrology)
	assert.Equal(t, domain.SituationNormal, got.Situation.State)
	assert.NoError(t, a.CheckReadiness(context.Background()), "degraded acquisitions still count")
}

func TestAcquire_HydrologyFailureStaysUnresolved(t *testing.T) {
	a := newTestAssessor(Providers{
		Samples:   &stubSamples{set: valleySampleSet(150)},
		Hydrology: &stubHydrology{err: errors.New("overpass timeout")},
		Geocoder:  &stubGeocoder{place: domain.UnknownLocation()},
	}, Options{})

	got, err := a.Acquire(context.Background(), domain.Coordinate{})
	require.NoError(t, err)

	assert.Equal(t, domain.HydrologyUnresolved, got.Hydrology)
	// Unresolved hydrology never counts as water nearby.
	assert.NotEqual(t, domain.SituationRiverOverflow, got.Situation.State)
}

func TestAcquire_GeocodeFailureUsesUnknownLocation(t *testing.T) {
	history := &stubHistory{started: make(chan struct{})}
	a := newTestAssessor(Providers{
		Samples:   &stubSamples{set: valleySampleSet(0)},
		Hydrology: &stubHydrology{},
		Geocoder:  &stubGeocoder{err: errors.New("nominatim blocked")},
		History:   history,
	}, Options{})

	got, err := a.Acquire(context.Background(), domain.Coordinate{})
	require.NoError(t, err)

	assert.Equal(t, domain.UnknownPlace, got.Place.City)

	// Unknown places never trigger the history lookup.
	select {
	case <-history.started:
		t.Fatal("history lookup should not start for unknown place")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAcquire_HistoryAttachedAsynchronously(t *testing.T) {
	history := &stubHistory{entries: []domain.HistoryEntry{{Title: "2017 Sri Lanka floods"}}}
	a := newTestAssessor(Providers{
		Samples:   &stubSamples{set: valleySampleSet(100)},
		Hydrology: &stubHydrology{count: 1},
		Geocoder:  &stubGeocoder{place: domain.Place{City: "Ratnapura", Region: "Sabaragamuwa"}},
		History:   history,
	}, Options{})

	got, err := a.Acquire(context.Background(), domain.Coordinate{})
	require.NoError(t, err)
	assert.Empty(t, got.History, "acquisition does not wait for history")

	require.Eventually(t, func() bool {
		current, ok := a.Current()
		return ok && len(current.History) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAcquire_StaleHistoryDiscarded(t *testing.T) {
	history := &stubHistory{
		entries: []domain.HistoryEntry{{Title: "Old flood"}},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	samples := &stubSamples{set: valleySampleSet(100)}
	a := newTestAssessor(Providers{
		Samples:   samples,
		Hydrology: &stubHydrology{},
		Geocoder:  &stubGeocoder{place: domain.Place{City: "Kandy"}},
		History:   history,
	}, Options{})

	_, err := a.Acquire(context.Background(), domain.Coordinate{Lat: 1})
	require.NoError(t, err)
	<-history.started

	// A second acquisition supersedes the first while its history lookup is
	// still in flight.
	release := history.release
	history.reset(nil, nil)
	_, err = a.Acquire(context.Background(), domain.Coordinate{Lat: 2})
	require.NoError(t, err)

	// The second acquisition's own lookup may attach entries; the point is
	// the first lookup must not attach to the superseding assessment. Let
	// both lookups finish, then check the installed coordinate.
	close(release)

	require.Eventually(t, func() bool {
		current, ok := a.Current()
		return ok && current.Coordinate.Lat == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAcquire_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newTestAssessor(Providers{
		Samples:   &stubSamples{err: context.Canceled},
		Hydrology: &stubHydrology{err: context.Canceled},
		Geocoder:  &stubGeocoder{err: context.Canceled},
	}, Options{})

	_, err := a.Acquire(ctx, domain.Coordinate{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestAcquire_PublishesUrgentAlerts(t *testing.T) {
	alerts := &recordingAlerts{}
	a := newTestAssessor(Providers{
		Samples:   &stubSamples{set: valleySampleSet(300)},
		Hydrology: &stubHydrology{count: 3},
		Geocoder:  &stubGeocoder{place: domain.Place{City: "Kalutara"}},
	}, Options{Alerts: alerts})

	_, err := a.Acquire(context.Background(), domain.Coordinate{})
	require.NoError(t, err)

	published := alerts.published()
	require.NotEmpty(t, published)
	for _, item := range published {
		assert.NotEqual(t, domain.NewsInfo, item.Type)
	}
}

func TestAcquire_CalmConditionsPublishNothing(t *testing.T) {
	alerts := &recordingAlerts{}
	a := newTestAssessor(Providers{
		Samples:   &stubSamples{set: valleySampleSet(0)},
		Hydrology: &stubHydrology{},
		Geocoder:  &stubGeocoder{place: domain.Place{City: "Jaffna"}},
	}, Options{Alerts: alerts})

	_, err := a.Acquire(context.Background(), domain.Coordinate{})
	require.NoError(t, err)
	assert.Empty(t, alerts.published())
}

// --- scoring tests ---

func TestScoreRisk_BeforeAnyAcquisition(t *testing.T) {
	a := newTestAssessor(Providers{}, Options{})

	result, err := a.ScoreRisk(context.Background(), nil, 24)
	require.NoError(t, err)
	assert.Equal(t, domain.RiskSafe, result.Level)
	assert.Equal(t, 0.0, result.EstimatedRiseM)
}

func TestScoreRisk_UsesCurrentAssessment(t *testing.T) {
	a := newTestAssessor(Providers{
		Samples:   &stubSamples{set: valleySampleSet(300)},
		Hydrology: &stubHydrology{count: 2},
		Geocoder:  &stubGeocoder{place: domain.Place{City: "Ratnapura"}},
	}, Options{})

	_, err := a.Acquire(context.Background(), domain.Coordinate{})
	require.NoError(t, err)

	rate := 25.0
	result, err := a.ScoreRisk(context.Background(), &rate, 24)
	require.NoError(t, err)

	assert.Equal(t, domain.RiskExtreme, result.Level)
	assert.Positive(t, result.EstimatedRiseM)

	current, ok := a.Current()
	require.True(t, ok)
	require.NotNil(t, current.Risk)
	assert.Equal(t, result.Level, current.Risk.Level)
}

func TestScoreRisk_OverrideReplacesObservedRate(t *testing.T) {
	a := newTestAssessor(Providers{
		Samples:   &stubSamples{set: valleySampleSet(0)},
		Hydrology: &stubHydrology{},
		Geocoder:  &stubGeocoder{place: domain.UnknownLocation()},
	}, Options{})

	_, err := a.Acquire(context.Background(), domain.Coordinate{})
	require.NoError(t, err)

	zero := 0.0
	calm, err := a.ScoreRisk(context.Background(), &zero, 24)
	require.NoError(t, err)
	assert.Equal(t, domain.RiskSafe, calm.Level)

	deluge := 50.0
	severe, err := a.ScoreRisk(context.Background(), &deluge, 24)
	require.NoError(t, err)
	assert.True(t, severe.Level.AtLeast(domain.RiskDanger))
}

func TestScoreRisk_MinimumLatencyPacing(t *testing.T) {
	clk := clockwork.NewFakeClock()
	a := newTestAssessor(Providers{}, Options{
		Clock:             clk,
		MinScoringLatency: 1500 * time.Millisecond,
	})

	done := make(chan domain.RiskAssessment, 1)
	go func() {
		result, err := a.ScoreRisk(context.Background(), nil, 24)
		require.NoError(t, err)
		done <- result
	}()

	// The scorer must be parked on the pacing timer.
	clk.BlockUntil(1)
	select {
	case <-done:
		t.Fatal("scoring returned before the pacing delay elapsed")
	case <-time.After(50 * time.Millisecond):
	}

	clk.Advance(1500 * time.Millisecond)
	select {
	case result := <-done:
		assert.Equal(t, domain.RiskSafe, result.Level)
	case <-time.After(2 * time.Second):
		t.Fatal("scoring did not return after the pacing delay")
	}
}

func TestScoreRisk_CanceledDuringPacing(t *testing.T) {
	clk := clockwork.NewFakeClock()
	a := newTestAssessor(Providers{}, Options{
		Clock:             clk,
		MinScoringLatency: time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := a.ScoreRisk(ctx, nil, 24)
		errCh <- err
	}()

	clk.BlockUntil(1)
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scoring did not observe cancellation")
	}
}

func TestScoreRisk_DefaultDuration(t *testing.T) {
	a := newTestAssessor(Providers{
		Samples:   &stubSamples{set: valleySampleSet(0)},
		Hydrology: &stubHydrology{},
		Geocoder:  &stubGeocoder{place: domain.UnknownLocation()},
	}, Options{DefaultDurationHours: 12})

	_, err := a.Acquire(context.Background(), domain.Coordinate{})
	require.NoError(t, err)

	rate := 30.0
	explicit, err := a.ScoreRisk(context.Background(), &rate, 12)
	require.NoError(t, err)
	defaulted, err := a.ScoreRisk(context.Background(), &rate, 0)
	require.NoError(t, err)

	assert.Equal(t, explicit, defaulted)
}

func TestCheckReadiness_BeforeAcquisition(t *testing.T) {
	a := newTestAssessor(Providers{}, Options{})
	require.Error(t, a.CheckReadiness(context.Background()))
}

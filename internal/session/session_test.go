package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naturecast/naturecast-go/internal/errors"
	"github.com/naturecast/naturecast-go/internal/gbif"
	"github.com/naturecast/naturecast-go/internal/narration"
	"github.com/naturecast/naturecast-go/internal/species"
	"github.com/naturecast/naturecast-go/internal/taxonomy"
	"github.com/naturecast/naturecast-go/internal/weather"
)

type stubFetcher struct{}

func (stubFetcher) Fetch(context.Context, float64, float64, int, taxonomy.Class) ([]gbif.Species, error) {
	return nil, errors.NewStd("upstream unavailable")
}

type stubWeather struct {
	snapshot *weather.Snapshot
	err      error
}

func (s stubWeather) Current(context.Context, float64, float64) (*weather.Snapshot, error) {
	return s.snapshot, s.err
}

func newTestService(weatherSource WeatherSource) *Service {
	resolver := species.NewResolver(species.Config{}, stubFetcher{}, nil)
	svc := NewService(resolver, weatherSource, narration.NewTemplateGenerator())
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 7, 30, 0, 0, time.UTC) }
	return svc
}

func TestCreate_FullSession(t *testing.T) {
	snapshot := &weather.Snapshot{Description: "clear sky", TemperatureC: 18}
	svc := newTestService(stubWeather{snapshot: snapshot})

	sess, err := svc.Create(context.Background(), 47.6062, -122.3321, "birds")
	require.NoError(t, err)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "Pacific Northwest", sess.Ecoregion)
	assert.Equal(t, "bird", sess.Species.Type)
	assert.NotEmpty(t, sess.Species.Name)
	assert.NotEmpty(t, sess.Behavior)
	assert.NotEmpty(t, sess.MoonPhase.Name)
	assert.Same(t, snapshot, sess.Weather)
	assert.Contains(t, sess.Narration, sess.Species.Name)
	assert.Contains(t, sess.Narration, "clear sky")
}

func TestCreate_WeatherFailureDegradesGracefully(t *testing.T) {
	svc := newTestService(stubWeather{err: errors.NewStd("weather API down")})

	sess, err := svc.Create(context.Background(), 47.6062, -122.3321, "birds")
	require.NoError(t, err)
	assert.Nil(t, sess.Weather)
	assert.NotEmpty(t, sess.Narration, "narration survives a missing weather snapshot")
}

func TestCreate_NoWeatherNoNarrator(t *testing.T) {
	resolver := species.NewResolver(species.Config{}, stubFetcher{}, nil)
	svc := NewService(resolver, nil, nil)

	sess, err := svc.Create(context.Background(), 0, -160, "")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", sess.Ecoregion)
	assert.NotEmpty(t, sess.Species.Name)
	assert.Nil(t, sess.Weather)
	assert.Empty(t, sess.Narration)
}

func TestCreate_RejectsOutOfRangeCoordinates(t *testing.T) {
	svc := newTestService(nil)

	for _, tc := range []struct{ lat, lon float64 }{
		{91, 0}, {-91, 0}, {0, 181}, {0, -181},
	} {
		_, err := svc.Create(context.Background(), tc.lat, tc.lon, "birds")
		require.Error(t, err, "(%f, %f) must be rejected", tc.lat, tc.lon)
		assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
	}
}

func TestCreate_RejectsUnknownClassHint(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.Create(context.Background(), 47.6, -122.3, "dragons")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestCreate_UniqueSessionIDs(t *testing.T) {
	svc := newTestService(nil)

	seen := make(map[string]bool)
	for range 10 {
		sess, err := svc.Create(context.Background(), 47.6, -122.3, "birds")
		require.NoError(t, err)
		assert.False(t, seen[sess.ID])
		seen[sess.ID] = true
	}
}

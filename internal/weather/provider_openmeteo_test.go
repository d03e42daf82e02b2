package weather

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naturecast/naturecast-go/internal/conf"
)

const sampleCurrentPayload = `{
	"latitude": 47.6,
	"longitude": -122.33,
	"current": {
		"time": "2025-06-01T12:00",
		"temperature_2m": 17.4,
		"relative_humidity_2m": 62,
		"precipitation": 0.0,
		"weather_code": 2,
		"cloud_cover": 40,
		"wind_speed_10m": 3.7,
		"wind_direction_10m": 210
	}
}`

func newTestProvider(t *testing.T) *OpenMeteoProvider {
	t.Helper()
	p := NewOpenMeteoProvider("")
	httpmock.ActivateNonDefault(p.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return p
}

func TestFetchCurrent_MapsPayload(t *testing.T) {
	p := newTestProvider(t)

	httpmock.RegisterResponder(http.MethodGet, OpenMeteoBaseURL,
		func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			assert.Equal(t, "47.6062", q.Get("latitude"))
			assert.Equal(t, "-122.3321", q.Get("longitude"))
			assert.Contains(t, q.Get("current"), "temperature_2m")
			return httpmock.NewStringResponse(http.StatusOK, sampleCurrentPayload), nil
		})

	snapshot, err := p.FetchCurrent(context.Background(), 47.6062, -122.3321)
	require.NoError(t, err)

	assert.InDelta(t, 17.4, snapshot.TemperatureC, 0.001)
	assert.Equal(t, 62, snapshot.Humidity)
	assert.Equal(t, 40, snapshot.CloudCover)
	assert.Equal(t, 2, snapshot.Code)
	assert.Equal(t, "partly cloudy", snapshot.Description)
	assert.Equal(t, 2025, snapshot.Time.Year())
}

func TestFetchCurrent_RetriesServerErrors(t *testing.T) {
	p := newTestProvider(t)

	calls := 0
	httpmock.RegisterResponder(http.MethodGet, OpenMeteoBaseURL,
		func(*http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return httpmock.NewStringResponse(http.StatusServiceUnavailable, "maintenance"), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, sampleCurrentPayload), nil
		})

	snapshot, err := p.FetchCurrent(context.Background(), 47.6, -122.33)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.NotNil(t, snapshot)
}

func TestFetchCurrent_MalformedPayload(t *testing.T) {
	p := newTestProvider(t)

	httpmock.RegisterResponder(http.MethodGet, OpenMeteoBaseURL,
		httpmock.NewStringResponder(http.StatusOK, "<html>not json</html>"))

	_, err := p.FetchCurrent(context.Background(), 47.6, -122.33)
	require.Error(t, err)
}

func TestService_CachesSnapshots(t *testing.T) {
	settings := &conf.Settings{}
	settings.Weather.Provider = "openmeteo"
	settings.Weather.CacheMinutes = 30

	svc, err := NewService(settings)
	require.NoError(t, err)

	p, ok := svc.provider.(*OpenMeteoProvider)
	require.True(t, ok)
	httpmock.ActivateNonDefault(p.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder(http.MethodGet, OpenMeteoBaseURL,
		httpmock.NewStringResponder(http.StatusOK, sampleCurrentPayload))

	first, err := svc.Current(context.Background(), 47.611, -122.332)
	require.NoError(t, err)

	// Same rounded coordinate: served from cache
	second, err := svc.Current(context.Background(), 47.609, -122.328)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestNewService_RejectsUnknownProvider(t *testing.T) {
	settings := &conf.Settings{}
	settings.Weather.Provider = "weathertron"

	_, err := NewService(settings)
	require.Error(t, err)
}

func TestDescribeWeatherCode(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "clear sky"},
		{2, "partly cloudy"},
		{3, "overcast"},
		{48, "foggy"},
		{53, "drizzle"},
		{63, "rain"},
		{73, "snow"},
		{81, "rain showers"},
		{95, "thunderstorm"},
		{40, "changeable"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DescribeWeatherCode(tt.code), "code %d", tt.code)
	}
}

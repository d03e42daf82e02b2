// Package weather fetches current conditions for a coordinate. Conditions
// feed the narration prompt; a failed lookup never blocks a session.
package weather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/naturecast/naturecast-go/internal/conf"
	"github.com/naturecast/naturecast-go/internal/errors"
	"github.com/naturecast/naturecast-go/internal/logging"
)

// Package-level logger for weather service
var (
	weatherLogger   *slog.Logger
	weatherLevelVar = new(slog.LevelVar) // Dynamic level control
)

func init() {
	var err error
	initialLevel := slog.LevelDebug
	weatherLevelVar.Set(initialLevel)

	weatherLogger, _, err = logging.NewFileLogger("logs/weather.log", "weather", weatherLevelVar)
	if err != nil {
		logging.Error("Failed to initialize weather file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: weatherLevelVar})
		weatherLogger = slog.New(fbHandler).With("service", "weather")
	}
}

// Request tuning shared by providers
const (
	MaxRetries     = 3
	RetryDelay     = 2 * time.Second
	RequestTimeout = 10 * time.Second
	UserAgent      = "NatureCast/1.0 github.com/naturecast/naturecast-go"
)

// Provider fetches current conditions from one upstream source.
type Provider interface {
	FetchCurrent(ctx context.Context, lat, lon float64) (*Snapshot, error)
}

// Snapshot is the provider-independent view of current conditions.
type Snapshot struct {
	Time          time.Time `json:"time"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	TemperatureC  float64   `json:"temperatureC"`
	Humidity      int       `json:"humidity"`
	Precipitation float64   `json:"precipitation"`
	CloudCover    int       `json:"cloudCover"`
	WindSpeed     float64   `json:"windSpeed"`
	WindDirection int       `json:"windDirection"`
	Code          int       `json:"code"` // WMO weather interpretation code
	Description   string    `json:"description"`
}

// Service caches provider snapshots per rounded coordinate so repeated
// sessions at the same spot reuse one lookup.
type Service struct {
	provider Provider
	cache    *gocache.Cache
	ttl      time.Duration
}

// NewService creates a weather service for the configured provider. The
// "none" provider is handled by the caller; it never reaches here.
func NewService(settings *conf.Settings) (*Service, error) {
	var provider Provider

	switch settings.Weather.Provider {
	case "openmeteo":
		provider = NewOpenMeteoProvider(settings.Weather.Endpoint)
	default:
		return nil, errors.New(fmt.Errorf("invalid weather provider: %s", settings.Weather.Provider)).
			Component("weather").
			Category(errors.CategoryConfiguration).
			Context("provider", settings.Weather.Provider).
			Build()
	}

	ttl := time.Duration(settings.Weather.CacheMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &Service{
		provider: provider,
		cache:    gocache.New(ttl, ttl*2),
		ttl:      ttl,
	}, nil
}

// Current returns conditions for the coordinate, served from cache when a
// snapshot for the rounded location is still fresh.
func (s *Service) Current(ctx context.Context, lat, lon float64) (*Snapshot, error) {
	cacheKey := fmt.Sprintf("weather:%.2f:%.2f", lat, lon)

	if cached, found := s.cache.Get(cacheKey); found {
		if snapshot, ok := cached.(*Snapshot); ok {
			weatherLogger.Debug("weather cache hit", "cache_key", cacheKey)
			return snapshot, nil
		}
	}

	snapshot, err := s.provider.FetchCurrent(ctx, lat, lon)
	if err != nil {
		weatherLogger.Error("Failed to fetch weather data from provider", "error", err)
		return nil, err
	}

	s.cache.Set(cacheKey, snapshot, gocache.DefaultExpiration)

	weatherLogger.Info("Successfully fetched weather data",
		"temp_c", snapshot.TemperatureC,
		"wind_mps", snapshot.WindSpeed,
		"humidity_pct", snapshot.Humidity,
		"description", snapshot.Description)

	return snapshot, nil
}

// newWeatherError wraps a provider failure with standard context.
func newWeatherError(err error, category errors.ErrorCategory, operation, provider string) error {
	return errors.Wrap(err).
		Component("weather").
		Category(category).
		Context("operation", operation).
		Context("provider", provider).
		Build()
}

package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/naturecast/naturecast-go/internal/errors"
)

const (
	OpenMeteoBaseURL      = "https://api.open-meteo.com/v1/forecast"
	openMeteoProviderName = "openmeteo"
	maxBodyPreviewSize    = 200
)

// currentFields is the comma-joined list of current-conditions variables
// requested from the forecast API.
const currentFields = "temperature_2m,relative_humidity_2m,precipitation,weather_code,cloud_cover,wind_speed_10m,wind_direction_10m"

// OpenMeteoProvider fetches current conditions from the Open-Meteo forecast
// API. No API key is required.
type OpenMeteoProvider struct {
	endpoint   string
	httpClient *http.Client
}

// NewOpenMeteoProvider creates an Open-Meteo provider. An empty endpoint
// uses the public API.
func NewOpenMeteoProvider(endpoint string) *OpenMeteoProvider {
	if endpoint == "" {
		endpoint = OpenMeteoBaseURL
	}
	return &OpenMeteoProvider{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: RequestTimeout},
	}
}

// openMeteoResponse mirrors the subset of the forecast payload we consume.
type openMeteoResponse struct {
	Current struct {
		Time          string  `json:"time"`
		Temperature   float64 `json:"temperature_2m"`
		Humidity      int     `json:"relative_humidity_2m"`
		Precipitation float64 `json:"precipitation"`
		WeatherCode   int     `json:"weather_code"`
		CloudCover    int     `json:"cloud_cover"`
		WindSpeed     float64 `json:"wind_speed_10m"`
		WindDirection int     `json:"wind_direction_10m"`
	} `json:"current"`
}

// FetchCurrent implements the Provider interface for OpenMeteoProvider.
func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, lat, lon float64) (*Snapshot, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("current", currentFields)
	params.Set("timezone", "UTC")
	apiURL := p.endpoint + "?" + params.Encode()

	logger := weatherLogger.With("provider", openMeteoProviderName)
	logger.Debug("Fetching weather data", "url", apiURL)

	body, err := p.executeWithRetry(ctx, apiURL)
	if err != nil {
		return nil, err
	}

	var response openMeteoResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, newWeatherError(err, errors.CategoryResponseParse, "unmarshal_weather_data", openMeteoProviderName)
	}

	observedAt, err := time.Parse("2006-01-02T15:04", response.Current.Time)
	if err != nil {
		observedAt = time.Now().UTC()
	}

	snapshot := &Snapshot{
		Time:          observedAt,
		Latitude:      lat,
		Longitude:     lon,
		TemperatureC:  response.Current.Temperature,
		Humidity:      response.Current.Humidity,
		Precipitation: response.Current.Precipitation,
		CloudCover:    response.Current.CloudCover,
		WindSpeed:     response.Current.WindSpeed,
		WindDirection: response.Current.WindDirection,
		Code:          response.Current.WeatherCode,
		Description:   DescribeWeatherCode(response.Current.WeatherCode),
	}

	logger.Debug("Mapped API response to Snapshot",
		"time", snapshot.Time,
		"temp", snapshot.TemperatureC,
		"code", snapshot.Code)

	return snapshot, nil
}

// executeWithRetry performs the GET with bounded retries on transient
// failures.
func (p *OpenMeteoProvider) executeWithRetry(ctx context.Context, apiURL string) ([]byte, error) {
	logger := weatherLogger.With("provider", openMeteoProviderName)

	var lastErr error
	for i := range MaxRetries {
		isLastAttempt := i == MaxRetries-1
		attemptLogger := logger.With("attempt", i+1, "max_attempts", MaxRetries)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
		if err != nil {
			return nil, newWeatherError(err, errors.CategoryNetwork, "create_http_request", openMeteoProviderName)
		}
		req.Header.Set("User-Agent", UserAgent)

		resp, err := p.httpClient.Do(req)
		if err != nil {
			attemptLogger.Warn("HTTP request failed", "error", err)
			lastErr = newWeatherError(err, errors.CategoryNetwork, "weather_api_request", openMeteoProviderName)
			if isLastAttempt {
				return nil, lastErr
			}
			sleepOrCancel(ctx)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		if err := resp.Body.Close(); err != nil {
			attemptLogger.Debug("Failed to close response body", "error", err)
		}
		if readErr != nil {
			lastErr = newWeatherError(readErr, errors.CategoryNetwork, "read_response_body", openMeteoProviderName)
			if isLastAttempt {
				return nil, lastErr
			}
			sleepOrCancel(ctx)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			attemptLogger.Warn("Received non-OK status code",
				"status_code", resp.StatusCode,
				"response_body", truncateBodyPreview(string(body)))
			lastErr = newWeatherError(
				fmt.Errorf("received non-OK response (%d)", resp.StatusCode),
				errors.CategoryNetwork, "weather_api_response", openMeteoProviderName)
			if isLastAttempt {
				return nil, lastErr
			}
			sleepOrCancel(ctx)
			continue
		}

		return body, nil
	}

	return nil, lastErr
}

func sleepOrCancel(ctx context.Context) {
	select {
	case <-time.After(RetryDelay):
	case <-ctx.Done():
	}
}

// truncateBodyPreview truncates response body for logging
func truncateBodyPreview(body string) string {
	if len(body) > maxBodyPreviewSize {
		return body[:maxBodyPreviewSize] + "... (truncated)"
	}
	return body
}

// DescribeWeatherCode maps a WMO weather interpretation code to a short
// human phrase for narration.
func DescribeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code <= 2:
		return "partly cloudy"
	case code == 3:
		return "overcast"
	case code == 45 || code == 48:
		return "foggy"
	case code >= 51 && code <= 57:
		return "drizzle"
	case code >= 61 && code <= 67:
		return "rain"
	case code >= 71 && code <= 77:
		return "snow"
	case code >= 80 && code <= 82:
		return "rain showers"
	case code == 85 || code == 86:
		return "snow showers"
	case code >= 95:
		return "thunderstorm"
	default:
		return "changeable"
	}
}

// conf/validate.go settings validation
package conf

import (
	"fmt"
	"strconv"
)

// ValidateSettings checks the loaded settings for values that would break the
// resolution cascade at runtime. It returns the first problem found.
func ValidateSettings(settings *Settings) error {
	if err := validateResolverSettings(&settings.Resolver); err != nil {
		return err
	}
	if err := validateGBIFSettings(&settings.GBIF); err != nil {
		return err
	}
	if err := validateWebServerSettings(&settings.WebServer); err != nil {
		return err
	}
	switch settings.Weather.Provider {
	case "none", "openmeteo":
	default:
		return fmt.Errorf("invalid weather provider: %s", settings.Weather.Provider)
	}
	switch settings.Narration.Provider {
	case "template", "gemini":
	default:
		return fmt.Errorf("invalid narration provider: %s", settings.Narration.Provider)
	}
	return nil
}

func validateResolverSettings(r *ResolverSettings) error {
	if r.DesiredCount < 1 {
		return fmt.Errorf("resolver desired count must be at least 1, got %d", r.DesiredCount)
	}
	if r.NarrowRadiusKm < 1 {
		return fmt.Errorf("resolver narrow radius must be at least 1 km, got %d", r.NarrowRadiusKm)
	}
	if r.ExpandedRadiusKm < r.NarrowRadiusKm {
		return fmt.Errorf("resolver expanded radius (%d km) must not be smaller than narrow radius (%d km)",
			r.ExpandedRadiusKm, r.NarrowRadiusKm)
	}
	if r.CacheMaxPerClass < 1 {
		return fmt.Errorf("resolver cache bound must be at least 1, got %d", r.CacheMaxPerClass)
	}
	if r.CooldownHours < 0 {
		return fmt.Errorf("resolver cooldown must not be negative, got %d", r.CooldownHours)
	}
	return nil
}

func validateGBIFSettings(g *GBIFSettings) error {
	if g.Endpoint == "" {
		return fmt.Errorf("gbif endpoint must not be empty")
	}
	if g.TimeoutSeconds < 1 {
		return fmt.Errorf("gbif timeout must be at least 1 second, got %d", g.TimeoutSeconds)
	}
	if g.ResultLimit < 1 || g.ResultLimit > 300 {
		return fmt.Errorf("gbif result limit must be between 1 and 300, got %d", g.ResultLimit)
	}
	if g.MaxRetries < 1 {
		return fmt.Errorf("gbif max retries must be at least 1, got %d", g.MaxRetries)
	}
	if g.FailureThreshold < 1 {
		return fmt.Errorf("gbif breaker failure threshold must be at least 1, got %d", g.FailureThreshold)
	}
	if g.OpenSeconds < 1 {
		return fmt.Errorf("gbif breaker open window must be at least 1 second, got %d", g.OpenSeconds)
	}
	return nil
}

func validateWebServerSettings(w *WebServerSettings) error {
	if !w.Enabled {
		return nil
	}
	port, err := strconv.Atoi(w.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid web server port: %s", w.Port)
	}
	return nil
}

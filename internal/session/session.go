// Package session orchestrates one encounter: species resolution, scene
// context gathering, and narration. The species result is the only mandatory
// ingredient; every collaborator failure degrades the session instead of
// failing it.
package session

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/naturecast/naturecast-go/internal/behavior"
	"github.com/naturecast/naturecast-go/internal/ecoregion"
	"github.com/naturecast/naturecast-go/internal/errors"
	"github.com/naturecast/naturecast-go/internal/logging"
	"github.com/naturecast/naturecast-go/internal/moon"
	"github.com/naturecast/naturecast-go/internal/narration"
	"github.com/naturecast/naturecast-go/internal/species"
	"github.com/naturecast/naturecast-go/internal/weather"
)

var (
	logger   *slog.Logger
	levelVar = new(slog.LevelVar)
)

func init() {
	var err error
	levelVar.Set(slog.LevelInfo)

	logger, _, err = logging.NewFileLogger("logs/session.log", "session", levelVar)
	if err != nil {
		logging.Error("Failed to initialize session file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: levelVar})
		logger = slog.New(fbHandler).With("service", "session")
	}
}

// Session is one narrated encounter.
type Session struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"createdAt"`
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Ecoregion string            `json:"ecoregion"`
	Species   species.Candidate `json:"species"`
	Behavior  string            `json:"behavior"`
	MoonPhase moon.Phase        `json:"moonPhase"`
	Weather   *weather.Snapshot `json:"weather,omitempty"`
	Narration string            `json:"narration,omitempty"`
}

// WeatherSource is the weather surface the service depends on.
// *weather.Service satisfies it; nil disables weather entirely.
type WeatherSource interface {
	Current(ctx context.Context, lat, lon float64) (*weather.Snapshot, error)
}

// Service builds sessions from a coordinate and an optional class hint.
type Service struct {
	resolver *species.Resolver
	weather  WeatherSource
	moon     *moon.Calculator
	narrator narration.Generator

	now func() time.Time
}

// NewService creates a session service. weatherSource and narrator may be
// nil; the session simply omits what they would have provided.
func NewService(resolver *species.Resolver, weatherSource WeatherSource, narrator narration.Generator) *Service {
	return &Service{
		resolver: resolver,
		weather:  weatherSource,
		moon:     moon.NewCalculator(),
		narrator: narrator,
		now:      time.Now,
	}
}

// Create resolves a species for the coordinate and assembles the narrated
// session around it.
func (s *Service) Create(ctx context.Context, lat, lon float64, classHint string) (*Session, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, errors.Newf("coordinate out of range: (%f, %f)", lat, lon).
			Category(errors.CategoryValidation).
			Component("session").
			Build()
	}

	chosen, err := s.resolver.SelectSpecies(ctx, lat, lon, classHint)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	region := ecoregion.Classify(lat, lon)
	phase := s.moon.PhaseFor(now)
	activity := behavior.Describe(chosen.Type, chosen.Name, now.Hour())

	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Latitude:  lat,
		Longitude: lon,
		Ecoregion: region.Name,
		Species:   chosen,
		Behavior:  activity,
		MoonPhase: phase,
	}

	if s.weather != nil {
		snapshot, err := s.weather.Current(ctx, lat, lon)
		if err != nil {
			// Weather is flavor, not substance
			logger.Warn("weather lookup failed, session continues without it",
				"session_id", sess.ID, "error", err)
		} else {
			sess.Weather = snapshot
		}
	}

	if s.narrator != nil {
		scene := narration.Scene{
			SpeciesName:    chosen.Name,
			ScientificName: chosen.ScientificName,
			Taxon:          chosen.Type,
			Habitat:        chosen.Habitat,
			Behavior:       activity,
			MoonPhase:      phase.Name,
			Region:         region.Name,
			LocalHour:      now.Hour(),
		}
		if sess.Weather != nil {
			scene.Weather = sess.Weather.Description
			scene.TemperatureC = sess.Weather.TemperatureC
		}

		text, err := s.narrator.Narrate(ctx, scene)
		if err != nil {
			logger.Warn("narration failed, session continues without it",
				"session_id", sess.ID, "error", err)
		} else {
			sess.Narration = text
		}
	}

	logger.Info("session created",
		"session_id", sess.ID,
		"species", chosen.Name,
		"source", chosen.Source,
		"ecoregion", region.Code,
		"has_weather", sess.Weather != nil,
		"has_narration", sess.Narration != "")

	return sess, nil
}

// Package narration turns a resolved encounter into a short descriptive
// passage, either through a local template or a generative model.
package narration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/naturecast/naturecast-go/internal/conf"
	"github.com/naturecast/naturecast-go/internal/errors"
	"github.com/naturecast/naturecast-go/internal/logging"
)

var (
	logger   *slog.Logger
	levelVar = new(slog.LevelVar)
)

func init() {
	var err error
	levelVar.Set(slog.LevelInfo)

	logger, _, err = logging.NewFileLogger("logs/narration.log", "narration", levelVar)
	if err != nil {
		logging.Error("Failed to initialize narration file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: levelVar})
		logger = slog.New(fbHandler).With("service", "narration")
	}
}

// Scene carries everything the narrator may mention about one encounter.
type Scene struct {
	SpeciesName    string  // displayable species name
	ScientificName string  // clean binomial, may be empty
	Taxon          string  // singular taxon, e.g. "bird"
	Habitat        string  // coarse habitat hint, may be empty
	Behavior       string  // current activity phrase
	Weather        string  // short conditions phrase, may be empty
	TemperatureC   float64 // valid only when Weather is set
	MoonPhase      string  // lunar phase name
	Region         string  // ecoregion name, may be "Unknown"
	LocalHour      int     // 0..23
}

// Generator produces a narration for a scene.
type Generator interface {
	Narrate(ctx context.Context, scene Scene) (string, error)
}

// NewGenerator creates the configured generator. The template generator
// needs no credentials and is the default.
func NewGenerator(settings *conf.Settings) (Generator, error) {
	switch settings.Narration.Provider {
	case "", "template":
		return NewTemplateGenerator(), nil
	case "gemini":
		return NewGeminiGenerator(settings.Narration.APIKey, settings.Narration.Model)
	default:
		return nil, errors.Newf("invalid narration provider: %s", settings.Narration.Provider).
			Category(errors.CategoryConfiguration).
			Context("provider", settings.Narration.Provider).
			Component("narration").
			Build()
	}
}

// BuildPrompt assembles the generative-model prompt for a scene. Exported so
// tests and the template generator share one source of scene phrasing.
func BuildPrompt(scene Scene) string {
	var b strings.Builder

	b.WriteString("Write a short, vivid field-journal entry (2-3 sentences) about encountering a ")
	b.WriteString(scene.Taxon)
	b.WriteString(": ")
	b.WriteString(scene.SpeciesName)
	if scene.ScientificName != "" {
		fmt.Fprintf(&b, " (%s)", scene.ScientificName)
	}
	b.WriteString(".")

	if scene.Behavior != "" {
		fmt.Fprintf(&b, " It is %s.", scene.Behavior)
	}
	if scene.Habitat != "" {
		fmt.Fprintf(&b, " Typical habitat: %s.", scene.Habitat)
	}
	if scene.Weather != "" {
		fmt.Fprintf(&b, " Current conditions: %s, %.0f degrees Celsius.", scene.Weather, scene.TemperatureC)
	}
	if scene.MoonPhase != "" {
		fmt.Fprintf(&b, " The moon is a %s.", scene.MoonPhase)
	}
	if scene.Region != "" && scene.Region != "Unknown" {
		fmt.Fprintf(&b, " The setting is the %s.", scene.Region)
	}

	b.WriteString(" Do not invent facts beyond these details. Plain prose, no headings.")
	return b.String()
}

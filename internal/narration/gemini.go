package narration

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/naturecast/naturecast-go/internal/errors"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiGenerator produces narrations through the Gemini API. Any generation
// failure falls back to the local template so a session never loses its
// narration.
type GeminiGenerator struct {
	client   *genai.Client
	model    string
	fallback *TemplateGenerator
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.Newf("narration API key is required for the gemini provider").
			Category(errors.CategoryConfiguration).
			Component("narration").
			Build()
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, errors.Newf("failed to create narration client: %w", err).
			Category(errors.CategoryConfiguration).
			Component("narration").
			Build()
	}

	logger.Info("Gemini narration generator initialized", "model", model)

	return &GeminiGenerator{
		client:   client,
		model:    model,
		fallback: NewTemplateGenerator(),
	}, nil
}

// Narrate implements the Generator interface.
func (g *GeminiGenerator) Narrate(ctx context.Context, scene Scene) (string, error) {
	prompt := BuildPrompt(scene)

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		logger.Warn("Generation failed, using template fallback",
			"model", g.model,
			"species", scene.SpeciesName,
			"error", err)
		return g.fallback.Narrate(ctx, scene)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		logger.Warn("Generation returned empty text, using template fallback",
			"model", g.model,
			"species", scene.SpeciesName)
		return g.fallback.Narrate(ctx, scene)
	}

	logger.Debug("narration generated",
		"model", g.model,
		"species", scene.SpeciesName,
		"length", len(text))

	return text, nil
}

package narration

import (
	"context"
	"strings"
	"text/template"
)

// sceneTemplate renders a serviceable narration without any external model.
var sceneTemplate = template.Must(template.New("scene").Parse(
	`A {{.SpeciesName}}{{if .ScientificName}} ({{.ScientificName}}){{end}} is nearby` +
		`{{if .Behavior}}, {{.Behavior}}{{end}}.` +
		`{{if .Weather}} The sky offers {{.Weather}}.{{end}}` +
		`{{if .MoonPhase}} Overhead, a {{.MoonPhase}}.{{end}}`))

// TemplateGenerator renders narrations from a fixed template. It never
// fails on any well-formed scene and needs no network or credentials.
type TemplateGenerator struct{}

// NewTemplateGenerator creates the local template generator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

// Narrate implements the Generator interface.
func (g *TemplateGenerator) Narrate(_ context.Context, scene Scene) (string, error) {
	var b strings.Builder
	if err := sceneTemplate.Execute(&b, scene); err != nil {
		// The template is static and the scene is plain data; execution
		// cannot realistically fail, but the interface demands honesty.
		return "", err
	}
	return b.String(), nil
}

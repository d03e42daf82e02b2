// Package taxonomy holds the taxonomic class registry and name normalization
// for raw vernacular and scientific names pulled from upstream occurrence records.
package taxonomy

import (
	"math/rand/v2"
	"strings"
)

// Class identifies one of the coarse animal groups used to scope upstream queries.
type Class struct {
	Name        string // plural registry key, e.g. "birds"
	UpstreamKey int    // GBIF backbone class key
	DisplayName string // singular taxon shown to users, e.g. "bird"
}

// classes is the static registry, loaded once at startup. GBIF backbone keys:
// Aves 212, Mammalia 359, Actinopterygii 204, Reptilia 358, Amphibia 131.
var classes = []Class{
	{Name: "birds", UpstreamKey: 212, DisplayName: "bird"},
	{Name: "mammals", UpstreamKey: 359, DisplayName: "mammal"},
	{Name: "fish", UpstreamKey: 204, DisplayName: "fish"},
	{Name: "reptiles", UpstreamKey: 358, DisplayName: "reptile"},
	{Name: "amphibians", UpstreamKey: 131, DisplayName: "amphibian"},
}

// Classes returns a copy of the class registry.
func Classes() []Class {
	out := make([]Class, len(classes))
	copy(out, classes)
	return out
}

// ClassByName looks up a class by its registry key or display name,
// case-insensitively. Returns false if the name is not registered.
func ClassByName(name string) (Class, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, c := range classes {
		if c.Name == needle || c.DisplayName == needle {
			return c, true
		}
	}
	return Class{}, false
}

// RandomClass picks one taxonomic class uniformly at random. Used when a
// resolution request carries no class hint.
func RandomClass() Class {
	return classes[rand.IntN(len(classes))]
}

package species

import (
	"github.com/naturecast/naturecast-go/internal/taxonomy"
)

// fallbackEntry is one curated species row. Names here are already clean;
// they still pass through the formatter so the display guarantees hold even
// if a table row is edited carelessly later.
type fallbackEntry struct {
	common     string
	scientific string
	habitat    string
}

// globalFallbacks lists cosmopolitan species per taxonomic class. These
// tables alone guarantee the cascade's non-empty postcondition, so they must
// never be emptied.
var globalFallbacks = map[string][]fallbackEntry{
	"birds": {
		{"House Sparrow", "Passer domesticus", "urban"},
		{"Rock Pigeon", "Columba livia", "urban"},
		{"European Starling", "Sturnus vulgaris", "urban"},
		{"Mallard", "Anas platyrhynchos", "wetland"},
		{"Barn Swallow", "Hirundo rustica", "open country"},
	},
	"mammals": {
		{"House Mouse", "Mus musculus", "urban"},
		{"Brown Rat", "Rattus norvegicus", "urban"},
		{"Red Fox", "Vulpes vulpes", "woodland"},
		{"Raccoon", "Procyon lotor", "woodland"},
	},
	"fish": {
		{"Common Carp", "Cyprinus carpio", "freshwater"},
		{"Rainbow Trout", "Oncorhynchus mykiss", "freshwater"},
		{"Largemouth Bass", "Micropterus salmoides", "freshwater"},
	},
	"reptiles": {
		{"Red-eared Slider", "Trachemys scripta", "freshwater"},
		{"Mediterranean House Gecko", "Hemidactylus turcicus", "urban"},
		{"Common Garter Snake", "Thamnophis sirtalis", "grassland"},
	},
	"amphibians": {
		{"American Bullfrog", "Lithobates catesbeianus", "wetland"},
		{"Common Toad", "Bufo bufo", "woodland"},
		{"Northern Leopard Frog", "Lithobates pipiens", "wetland"},
	},
}

// regionalFallbacks holds hand-curated species for a few named regions,
// keyed by ecoregion tag, then class. Coordinates outside these regions skip
// straight to the global tier; the narrow coverage is intentional.
var regionalFallbacks = map[string]map[string][]fallbackEntry{
	"pacific-northwest": {
		"birds": {
			{"Steller's Jay", "Cyanocitta stelleri", "conifer forest"},
			{"Varied Thrush", "Ixoreus naevius", "conifer forest"},
			{"Bald Eagle", "Haliaeetus leucocephalus", "coastal"},
		},
		"mammals": {
			{"Black-tailed Deer", "Odocoileus hemionus", "forest edge"},
			{"Douglas Squirrel", "Tamiasciurus douglasii", "conifer forest"},
		},
		"fish": {
			{"Chinook Salmon", "Oncorhynchus tshawytscha", "river"},
			{"Coastal Cutthroat Trout", "Oncorhynchus clarkii", "stream"},
		},
		"reptiles": {
			{"Northern Alligator Lizard", "Elgaria coerulea", "forest edge"},
		},
		"amphibians": {
			{"Pacific Tree Frog", "Pseudacris regilla", "wetland"},
			{"Rough-skinned Newt", "Taricha granulosa", "pond"},
		},
	},
	"southwest": {
		"birds": {
			{"Greater Roadrunner", "Geococcyx californianus", "desert scrub"},
			{"Cactus Wren", "Campylorhynchus brunneicapillus", "desert scrub"},
			{"Gambel's Quail", "Callipepla gambelii", "desert scrub"},
		},
		"mammals": {
			{"Desert Cottontail", "Sylvilagus audubonii", "desert scrub"},
			{"Coyote", "Canis latrans", "open country"},
		},
		"fish": {
			{"Desert Pupfish", "Cyprinodon macularius", "desert spring"},
		},
		"reptiles": {
			{"Desert Tortoise", "Gopherus agassizii", "desert scrub"},
			{"Western Diamondback Rattlesnake", "Crotalus atrox", "desert scrub"},
		},
		"amphibians": {
			{"Couch's Spadefoot", "Scaphiopus couchii", "desert wash"},
			{"Red-spotted Toad", "Anaxyrus punctatus", "desert spring"},
		},
	},
	"southeast": {
		"birds": {
			{"Northern Mockingbird", "Mimus polyglottos", "suburban"},
			{"Carolina Wren", "Thryothorus ludovicianus", "woodland"},
			{"Brown Pelican", "Pelecanus occidentalis", "coastal"},
		},
		"mammals": {
			{"Nine-banded Armadillo", "Dasypus novemcinctus", "woodland"},
			{"Virginia Opossum", "Didelphis virginiana", "suburban"},
		},
		"fish": {
			{"Bluegill", "Lepomis macrochirus", "pond"},
			{"Florida Gar", "Lepisosteus platyrhincus", "swamp"},
		},
		"reptiles": {
			{"American Alligator", "Alligator mississippiensis", "swamp"},
			{"Green Anole", "Anolis carolinensis", "suburban"},
		},
		"amphibians": {
			{"Green Treefrog", "Hyla cinerea", "swamp"},
			{"Southern Leopard Frog", "Lithobates sphenocephalus", "wetland"},
		},
	},
}

// emergencyFallbacks is the hard-coded per-class sentinel used only when a
// global table is empty, which is a configuration bug rather than a runtime
// condition.
var emergencyFallbacks = map[string]fallbackEntry{
	"birds":      {"House Sparrow", "Passer domesticus", "urban"},
	"mammals":    {"House Mouse", "Mus musculus", "urban"},
	"fish":       {"Common Carp", "Cyprinus carpio", "freshwater"},
	"reptiles":   {"Common Garter Snake", "Thamnophis sirtalis", "grassland"},
	"amphibians": {"American Bullfrog", "Lithobates catesbeianus", "wetland"},
}

// GlobalFallback returns the cosmopolitan species table for a class.
func GlobalFallback(class taxonomy.Class) []Candidate {
	return buildCandidates(globalFallbacks[class.Name], class, SourceGlobalFallback)
}

// RegionalFallback returns the curated species for a region tag and class,
// or nil when the region has no table.
func RegionalFallback(regionTag string, class taxonomy.Class) []Candidate {
	region, ok := regionalFallbacks[regionTag]
	if !ok {
		return nil
	}
	return buildCandidates(region[class.Name], class, SourceRegionalFallback)
}

// EmergencyCandidate returns the hard-coded sentinel species for a class.
func EmergencyCandidate(class taxonomy.Class) Candidate {
	entry, ok := emergencyFallbacks[class.Name]
	if !ok {
		// No class-specific sentinel, fall back to the most cosmopolitan
		// species there is.
		entry = fallbackEntry{"House Sparrow", "Passer domesticus", "urban"}
	}
	return Candidate{
		Name:           taxonomy.FormatForDisplay(entry.common, entry.scientific),
		ScientificName: entry.scientific,
		Type:           class.DisplayName,
		Habitat:        entry.habitat,
		Source:         SourceEmergency,
	}
}

func buildCandidates(entries []fallbackEntry, class taxonomy.Class, source string) []Candidate {
	if len(entries) == 0 {
		return nil
	}
	candidates := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		name := taxonomy.FormatForDisplay(e.common, e.scientific)
		if name == taxonomy.UnknownSpecies {
			continue
		}
		candidates = append(candidates, Candidate{
			Name:           name,
			ScientificName: e.scientific,
			Type:           class.DisplayName,
			Habitat:        e.habitat,
			Source:         source,
		})
	}
	return candidates
}

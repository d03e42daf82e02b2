// Package behavior provides a small static table of plausible activity
// descriptions per taxon and time of day. Purely illustrative flavor for
// narration, never a biological claim.
package behavior

import (
	"hash/fnv"
)

// Period is a coarse time-of-day bucket.
type Period string

const (
	PeriodDawn  Period = "dawn"
	PeriodDay   Period = "day"
	PeriodDusk  Period = "dusk"
	PeriodNight Period = "night"
)

// PeriodForHour buckets a local hour into a Period.
func PeriodForHour(hour int) Period {
	switch {
	case hour >= 5 && hour < 9:
		return PeriodDawn
	case hour >= 9 && hour < 17:
		return PeriodDay
	case hour >= 17 && hour < 21:
		return PeriodDusk
	default:
		return PeriodNight
	}
}

// behaviors maps a taxon type and period to candidate activity phrases.
var behaviors = map[string]map[Period][]string{
	"bird": {
		PeriodDawn:  {"singing from an exposed perch", "foraging actively after first light", "joining the dawn chorus"},
		PeriodDay:   {"gleaning insects from foliage", "visiting a feeder", "preening in the sun"},
		PeriodDusk:  {"making a final foraging pass", "settling toward a roost", "calling softly as light fades"},
		PeriodNight: {"roosting quietly", "tucked into dense cover"},
	},
	"mammal": {
		PeriodDawn:  {"moving along a habitual trail", "browsing in the early light"},
		PeriodDay:   {"resting in shade", "foraging cautiously near cover"},
		PeriodDusk:  {"emerging to feed", "patrolling a territory edge"},
		PeriodNight: {"foraging under cover of darkness", "moving silently between shadows"},
	},
	"fish": {
		PeriodDawn:  {"feeding near the surface", "cruising a drop-off"},
		PeriodDay:   {"holding in deeper, cooler water", "sheltering among submerged structure"},
		PeriodDusk:  {"rising to feed in low light", "hunting along a weed edge"},
		PeriodNight: {"resting near the bottom", "drifting in slack water"},
	},
	"reptile": {
		PeriodDawn:  {"emerging to bask", "warming on a sunlit rock"},
		PeriodDay:   {"basking at full alert", "hunting from ambush"},
		PeriodDusk:  {"retreating toward a burrow", "making a last slow patrol"},
		PeriodNight: {"sheltering under cover", "hunting by scent in the dark"},
	},
	"amphibian": {
		PeriodDawn:  {"retreating to damp cover", "sitting at the water's edge"},
		PeriodDay:   {"hiding under leaf litter", "soaking in shallow water"},
		PeriodDusk:  {"beginning to call", "emerging as humidity rises"},
		PeriodNight: {"calling from the shallows", "hunting insects drawn to the water"},
	},
}

// genericBehaviors backs taxa without a dedicated table.
var genericBehaviors = map[Period][]string{
	PeriodDawn:  {"stirring with the first light"},
	PeriodDay:   {"going about its daily routine"},
	PeriodDusk:  {"winding down as the light fades"},
	PeriodNight: {"resting through the dark hours"},
}

// Describe returns an activity phrase for a taxon type at a local hour. The
// choice is deterministic for a given species name, so repeated narration of
// the same encounter stays consistent.
func Describe(taxonType, speciesName string, hour int) string {
	period := PeriodForHour(hour)

	options := behaviors[taxonType][period]
	if len(options) == 0 {
		options = genericBehaviors[period]
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(speciesName))
	return options[int(h.Sum32())%len(options)]
}

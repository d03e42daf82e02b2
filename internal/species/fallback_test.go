package species

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naturecast/naturecast-go/internal/taxonomy"
)

func TestGlobalFallback_EveryClassIsCovered(t *testing.T) {
	for _, class := range taxonomy.Classes() {
		candidates := GlobalFallback(class)
		require.NotEmpty(t, candidates, "global table for %s must never be empty", class.Name)
		for _, c := range candidates {
			assert.True(t, taxonomy.IsValidCommonName(c.Name), "global fallback %q must be displayable", c.Name)
			assert.NotEmpty(t, c.ScientificName)
			assert.Equal(t, SourceGlobalFallback, c.Source)
			assert.Equal(t, class.DisplayName, c.Type)
		}
	}
}

func TestRegionalFallback_KnownRegions(t *testing.T) {
	birds := mustClass(t, "birds")

	for _, tag := range []string{"pacific-northwest", "southwest", "southeast"} {
		candidates := RegionalFallback(tag, birds)
		assert.NotEmpty(t, candidates, "region %s must have a bird table", tag)
		for _, c := range candidates {
			assert.Equal(t, SourceRegionalFallback, c.Source)
		}
	}

	assert.Nil(t, RegionalFallback("", birds), "the unknown region has no table")
	assert.Nil(t, RegionalFallback("atlantis", birds))
}

func TestEmergencyCandidate(t *testing.T) {
	for _, class := range taxonomy.Classes() {
		c := EmergencyCandidate(class)
		assert.True(t, taxonomy.IsValidCommonName(c.Name))
		assert.Equal(t, SourceEmergency, c.Source)
	}

	// Even a class outside the registry yields a usable sentinel
	c := EmergencyCandidate(taxonomy.Class{Name: "cephalopods", DisplayName: "cephalopod"})
	assert.Equal(t, "House Sparrow", c.Name)
}

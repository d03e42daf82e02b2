package ecoregion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		code     string
	}{
		{"seattle_is_pacific_northwest", 47.6062, -122.3321, "PNW"},
		{"san_bernardino_is_southwest", 34.045225, -117.267289, "SW"},
		{"new_orleans_is_southeast", 29.9511, -90.0715, "SE"},
		{"fairbanks_is_boreal", 64.8378, -147.7164, "BOR"},
		{"manaus_is_neotropics", -3.1190, -60.0217, "NEO"},
		{"helsinki_is_western_palearctic", 60.1699, 24.9384, "WPA"},
		{"open_ocean_is_unknown", 0, -160, "UNK"},
		{"southern_ocean_is_unknown", -65, 140, "UNK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.lat, tt.lon)
			assert.Equal(t, tt.code, got.Code)
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// (55, -120) sits inside both the Pacific Northwest and boreal boxes;
	// ordering guarantees the PNW tag.
	got := Classify(55, -120)
	assert.Equal(t, "PNW", got.Code)
	assert.Equal(t, "pacific-northwest", got.RegionTag)
}

func TestClassify_UnknownHasNoRegionTag(t *testing.T) {
	got := Classify(0, -160)
	assert.Equal(t, Unknown, got)
	assert.Empty(t, got.RegionTag)
}

func TestClassify_IsDeterministic(t *testing.T) {
	first := Classify(34.045225, -117.267289)
	for range 10 {
		assert.Equal(t, first, Classify(34.045225, -117.267289))
	}
}

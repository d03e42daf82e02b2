package moon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseName(t *testing.T) {
	tests := []struct {
		day  float64
		want string
	}{
		{0, "new moon"},
		{0.9, "new moon"},
		{3, "waxing crescent"},
		{7, "first quarter"},
		{10, "waxing gibbous"},
		{14, "full moon"},
		{17, "waning gibbous"},
		{21, "last quarter"},
		{25, "waning crescent"},
		{27.5, "new moon"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, phaseName(tt.day), "day %.1f", tt.day)
	}
}

func TestPhaseFor_ReturnsConsistentValues(t *testing.T) {
	c := NewCalculator()
	date := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

	phase := c.PhaseFor(date)
	require.GreaterOrEqual(t, phase.Day, 0.0)
	require.Less(t, phase.Day, 28.5)
	assert.NotEmpty(t, phase.Name)
	assert.GreaterOrEqual(t, phase.Illumination, 0)
	assert.LessOrEqual(t, phase.Illumination, 100)

	// Cached result is identical
	assert.Equal(t, phase, c.PhaseFor(date))
}

func TestPhaseFor_DifferentDatesDiffer(t *testing.T) {
	c := NewCalculator()
	a := c.PhaseFor(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	b := c.PhaseFor(time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC))
	assert.NotEqual(t, a.Day, b.Day)
}

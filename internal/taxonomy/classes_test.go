package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassRegistry(t *testing.T) {
	all := Classes()
	require.Len(t, all, 5)

	seen := make(map[string]bool)
	for _, c := range all {
		assert.NotEmpty(t, c.Name)
		assert.NotEmpty(t, c.DisplayName)
		assert.Positive(t, c.UpstreamKey)
		assert.False(t, seen[c.Name], "duplicate class %s", c.Name)
		seen[c.Name] = true
	}
}

func TestClassByName(t *testing.T) {
	birds, ok := ClassByName("birds")
	require.True(t, ok)
	assert.Equal(t, 212, birds.UpstreamKey)
	assert.Equal(t, "bird", birds.DisplayName)

	// Display name and mixed case are accepted
	mammal, ok := ClassByName(" Mammal ")
	require.True(t, ok)
	assert.Equal(t, "mammals", mammal.Name)

	_, ok = ClassByName("dinosaurs")
	assert.False(t, ok)
}

func TestRandomClass(t *testing.T) {
	for range 50 {
		c := RandomClass()
		_, ok := ClassByName(c.Name)
		assert.True(t, ok, "random class %s must come from the registry", c.Name)
	}
}

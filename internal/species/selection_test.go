package species

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSelector(now time.Time) *Selector {
	s := NewSelector(48 * time.Hour)
	s.now = func() time.Time { return now }
	return s
}

func TestSelect_NeverUsedCandidatesAreEligible(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestSelector(now)
	s.pick = func(n int) int { return n - 1 } // deterministic: last eligible

	candidates := testCandidates("American Robin", "Bald Eagle", "Steller's Jay")
	idx, outcome := s.Select(candidates)
	assert.Equal(t, 2, idx)
	assert.Equal(t, outcomeEligible, outcome)
}

func TestSelect_CooldownExcludesRecentlyUsed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestSelector(now)
	s.pick = func(n int) int { return 0 }

	candidates := testCandidates("American Robin", "Bald Eagle", "Steller's Jay")
	candidates[0].LastUsedAt = now.Add(-time.Hour)      // in cooldown
	candidates[1].LastUsedAt = now.Add(-72 * time.Hour) // past the window
	// candidates[2] never used

	idx, outcome := s.Select(candidates)
	assert.Equal(t, 1, idx, "first eligible is the aged-out candidate")
	assert.Equal(t, outcomeEligible, outcome)
}

func TestSelect_AntiRepetition(t *testing.T) {
	// 3 eligible candidates, 2-day cooldown, time never advances: three
	// consecutive selections never repeat, the fourth degrades to LRU.
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestSelector(now)

	candidates := testCandidates("American Robin", "Bald Eagle", "Steller's Jay")

	picked := make(map[string]bool)
	var first int
	for i := range 3 {
		idx, outcome := s.Select(candidates)
		require.Equal(t, outcomeEligible, outcome)
		require.False(t, picked[candidates[idx].Name], "selection %d repeated %s", i+1, candidates[idx].Name)
		picked[candidates[idx].Name] = true

		// Stamp usage the way the resolver does; later stamps are newer
		candidates[idx].LastUsedAt = now.Add(time.Duration(i) * time.Minute)
		if i == 0 {
			first = idx
		}
	}

	idx, outcome := s.Select(candidates)
	assert.Equal(t, outcomeCooldownLRU, outcome)
	assert.Equal(t, first, idx, "with all candidates in cooldown the least recently used wins")
}

func TestSelect_SingleCandidateAlwaysWins(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestSelector(now)

	candidates := testCandidates("House Sparrow")
	candidates[0].LastUsedAt = now.Add(-time.Minute) // deep in cooldown

	idx, outcome := s.Select(candidates)
	assert.Equal(t, 0, idx)
	assert.Equal(t, outcomeCooldownLRU, outcome)
}

func TestNewSelector_DefaultCooldown(t *testing.T) {
	s := NewSelector(0)
	assert.Equal(t, 48*time.Hour, s.cooldown)
}

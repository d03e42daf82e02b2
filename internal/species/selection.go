package species

import (
	"math/rand/v2"
	"time"
)

// defaultCooldown is the no-repeat window applied when none is configured.
const defaultCooldown = 48 * time.Hour

// Selection outcome labels for metrics.
const (
	outcomeEligible    = "eligible"
	outcomeCooldownLRU = "cooldown_lru"
)

// Selector picks one candidate from a resolved list, honoring a no-repeat
// cooldown window and degrading to least-recently-used when every candidate
// is in cooldown.
type Selector struct {
	cooldown time.Duration

	// Injected for tests
	now  func() time.Time
	pick func(n int) int
}

// NewSelector creates a selector with the given cooldown window. Zero or
// negative means the default window.
func NewSelector(cooldown time.Duration) *Selector {
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &Selector{
		cooldown: cooldown,
		now:      time.Now,
		pick:     rand.IntN,
	}
}

// Select returns the index of the chosen candidate and the outcome label.
// Eligible candidates (never used, or used longer ago than the cooldown
// window) are chosen uniformly at random; when all candidates are in
// cooldown, the least recently used one wins. The candidates slice must be
// non-empty; the resolver guarantees that.
func (s *Selector) Select(candidates []Candidate) (int, string) {
	now := s.now()

	eligible := make([]int, 0, len(candidates))
	for i := range candidates {
		if candidates[i].LastUsedAt.IsZero() || now.Sub(candidates[i].LastUsedAt) >= s.cooldown {
			eligible = append(eligible, i)
		}
	}

	if len(eligible) > 0 {
		return eligible[s.pick(len(eligible))], outcomeEligible
	}

	// All in cooldown: deterministic LRU instead of an error.
	oldest := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].LastUsedAt.Before(candidates[oldest].LastUsedAt) {
			oldest = i
		}
	}
	return oldest, outcomeCooldownLRU
}

// Package moon calculates the lunar phase for a date. Phase names feed the
// narration prompt and the session response.
package moon

import (
	"math"
	"sync"
	"time"

	"github.com/sj14/astral/pkg/astral"
)

// Phase describes the moon on a given date. Day runs 0..28: 0 is new,
// 7 first quarter, 14 full, 21 last quarter.
type Phase struct {
	Day          float64 `json:"day"`
	Name         string  `json:"name"`
	Illumination int     `json:"illumination"` // percent of the disc lit, approximate
}

// cacheEntry holds the cached phase for a given date
type cacheEntry struct {
	phase Phase
	date  time.Time
}

// Calculator caches per-date phase calculations.
type Calculator struct {
	cache map[string]cacheEntry
	lock  sync.RWMutex
}

// NewCalculator creates a new Calculator instance
func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[string]cacheEntry),
	}
}

// PhaseFor returns the lunar phase for a date, using cache if available.
func (c *Calculator) PhaseFor(date time.Time) Phase {
	dateKey := date.Format("2006-01-02")

	c.lock.RLock()
	entry, exists := c.cache[dateKey]
	c.lock.RUnlock()

	if exists && entry.date.Equal(date) {
		return entry.phase
	}

	phase := calculatePhase(date)

	c.lock.Lock()
	c.cache[dateKey] = cacheEntry{phase: phase, date: date}
	c.lock.Unlock()

	return phase
}

// calculatePhase computes the phase day and derives name and illumination.
func calculatePhase(date time.Time) Phase {
	day := astral.MoonPhase(date)

	// Illumination follows the phase angle: 0% at new, 100% at full
	illumination := int(math.Round((1 - math.Cos(2*math.Pi*day/28)) / 2 * 100))

	return Phase{
		Day:          day,
		Name:         phaseName(day),
		Illumination: illumination,
	}
}

// phaseName maps a phase day to its common name.
func phaseName(day float64) string {
	switch {
	case day < 1:
		return "new moon"
	case day < 6:
		return "waxing crescent"
	case day < 8:
		return "first quarter"
	case day < 13:
		return "waxing gibbous"
	case day < 15:
		return "full moon"
	case day < 20:
		return "waning gibbous"
	case day < 22:
		return "last quarter"
	case day < 27:
		return "waning crescent"
	default:
		return "new moon"
	}
}

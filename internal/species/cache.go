package species

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/naturecast/naturecast-go/internal/observability/metrics"
	"github.com/naturecast/naturecast-go/internal/taxonomy"
)

// defaultMaxPerClass bounds the number of cache entries per taxonomic class.
const defaultMaxPerClass = 200

// Location is the coordinate a cache entry was seeded for.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CacheEntry holds the resolved candidate list for one location cluster and
// class. Entries never expire; they are replaced wholesale on re-seed and
// evicted in insertion order when the per-class bound is exceeded.
type CacheEntry struct {
	ClusterKey         string      `json:"clusterKey"`
	Species            []Candidate `json:"species"`
	CreatedAt          time.Time   `json:"createdAt"`
	Location           Location    `json:"location"`
	SeededFromUpstream bool        `json:"seededFromUpstream"`
}

// Cache is a bounded per-class store keyed by rounded coordinates, so nearby
// requests share one entry. Coordinates are rounded to two decimals, roughly
// one kilometer at the equator.
type Cache struct {
	mu          sync.Mutex
	maxPerClass int
	entries     map[string]*CacheEntry
	order       map[string][]string // class name -> cluster keys in insertion order
	metrics     *metrics.ResolverMetrics
	now         func() time.Time
}

// NewCache creates a cache bounded at maxPerClass entries per taxonomic
// class. Zero or negative means the default bound. The metrics collector may
// be nil.
func NewCache(maxPerClass int, m *metrics.ResolverMetrics) *Cache {
	if maxPerClass <= 0 {
		maxPerClass = defaultMaxPerClass
	}
	return &Cache{
		maxPerClass: maxPerClass,
		entries:     make(map[string]*CacheEntry),
		order:       make(map[string][]string),
		metrics:     m,
		now:         time.Now,
	}
}

// ClusterKey derives the cache key for a coordinate and class.
func ClusterKey(lat, lon float64, class taxonomy.Class) string {
	return fmt.Sprintf("%.2f:%.2f:%s", lat, lon, strings.ToLower(class.Name))
}

// Get returns a snapshot of the entry for the coordinate's cluster, or nil
// on a miss. The snapshot's candidate slice is a copy; mutations go through
// MarkUsed.
func (c *Cache) Get(lat, lon float64, class taxonomy.Class) *CacheEntry {
	key := ClusterKey(lat, lon, class)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		if c.metrics != nil {
			c.metrics.RecordCacheMiss(class.Name)
		}
		return nil
	}

	if c.metrics != nil {
		c.metrics.RecordCacheHit(class.Name)
	}

	snapshot := *entry
	snapshot.Species = make([]Candidate, len(entry.Species))
	copy(snapshot.Species, entry.Species)
	return &snapshot
}

// Put stores the candidate list for the coordinate's cluster, replacing any
// existing entry wholesale. Inserting a new cluster past the per-class bound
// evicts the oldest entry for that class only.
func (c *Cache) Put(lat, lon float64, class taxonomy.Class, candidates []Candidate, seededFromUpstream bool) {
	key := ClusterKey(lat, lon, class)

	stored := make([]Candidate, len(candidates))
	copy(stored, candidates)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &CacheEntry{
		ClusterKey:         key,
		Species:            stored,
		CreatedAt:          c.now(),
		Location:           Location{Latitude: lat, Longitude: lon},
		SeededFromUpstream: seededFromUpstream,
	}

	if _, exists := c.entries[key]; exists {
		// Re-seed of a known cluster keeps its insertion-order slot.
		c.entries[key] = entry
		return
	}

	if len(c.order[class.Name]) >= c.maxPerClass {
		oldest := c.order[class.Name][0]
		c.order[class.Name] = c.order[class.Name][1:]
		delete(c.entries, oldest)
		if c.metrics != nil {
			c.metrics.RecordCacheEviction(class.Name)
		}
		logger.Debug("species cache evicted oldest cluster",
			"class", class.Name,
			"evicted_key", oldest)
	}

	c.entries[key] = entry
	c.order[class.Name] = append(c.order[class.Name], key)

	if c.metrics != nil {
		c.metrics.UpdateCacheEntries(class.Name, len(c.order[class.Name]))
	}
}

// MarkUsed stamps lastUsedAt on the named candidate inside the stored entry.
// Insertion order is not affected. Unknown clusters or names are ignored.
func (c *Cache) MarkUsed(lat, lon float64, class taxonomy.Class, speciesName string, at time.Time) {
	key := ClusterKey(lat, lon, class)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return
	}
	for i := range entry.Species {
		if strings.EqualFold(entry.Species[i].Name, speciesName) {
			entry.Species[i].LastUsedAt = at
			return
		}
	}
}

// Len returns the number of entries stored for a class.
func (c *Cache) Len(class taxonomy.Class) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order[class.Name])
}

// Clear drops every entry. Manual clearing is the only form of invalidation;
// entries carry no TTL.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*CacheEntry)
	c.order = make(map[string][]string)

	if c.metrics != nil {
		for _, class := range taxonomy.Classes() {
			c.metrics.UpdateCacheEntries(class.Name, 0)
		}
	}

	logger.Info("species cache cleared")
}

package species

import (
	"context"
	"strings"
	"time"

	"github.com/naturecast/naturecast-go/internal/ecoregion"
	"github.com/naturecast/naturecast-go/internal/errors"
	"github.com/naturecast/naturecast-go/internal/gbif"
	"github.com/naturecast/naturecast-go/internal/observability/metrics"
	"github.com/naturecast/naturecast-go/internal/taxonomy"
)

// Config tunes the resolution cascade.
type Config struct {
	DesiredCount     int           // candidates to gather per resolution
	NarrowRadiusKm   int           // first upstream search radius
	ExpandedRadiusKm int           // second upstream search radius
	CacheMaxPerClass int           // cache entries per taxonomic class
	CooldownWindow   time.Duration // no-repeat window for selected species
}

// DefaultConfig returns the default cascade configuration.
func DefaultConfig() Config {
	return Config{
		DesiredCount:     8,
		NarrowRadiusKm:   50,
		ExpandedRadiusKm: 200,
		CacheMaxPerClass: defaultMaxPerClass,
		CooldownWindow:   defaultCooldown,
	}
}

// OccurrenceFetcher is the upstream surface the resolver depends on.
// *gbif.Client satisfies it.
type OccurrenceFetcher interface {
	Fetch(ctx context.Context, lat, lon float64, radiusKm int, class taxonomy.Class) ([]gbif.Species, error)
}

// Resolver runs the tiered fallback cascade: cache, narrow upstream fetch,
// expanded upstream fetch, regional static table, global static table. Every
// upstream failure is absorbed here; callers always receive a usable species.
type Resolver struct {
	config   Config
	fetcher  OccurrenceFetcher
	cache    *Cache
	selector *Selector
	metrics  *metrics.ResolverMetrics

	now func() time.Time
}

// NewResolver creates a resolver with its own cache and selector. The
// metrics collector may be nil.
func NewResolver(config Config, fetcher OccurrenceFetcher, m *metrics.ResolverMetrics) *Resolver {
	defaults := DefaultConfig()
	if config.DesiredCount <= 0 {
		config.DesiredCount = defaults.DesiredCount
	}
	if config.NarrowRadiusKm <= 0 {
		config.NarrowRadiusKm = defaults.NarrowRadiusKm
	}
	if config.ExpandedRadiusKm <= 0 {
		config.ExpandedRadiusKm = defaults.ExpandedRadiusKm
	}
	if config.CacheMaxPerClass <= 0 {
		config.CacheMaxPerClass = defaults.CacheMaxPerClass
	}
	if config.CooldownWindow <= 0 {
		config.CooldownWindow = defaults.CooldownWindow
	}

	r := &Resolver{
		config:   config,
		fetcher:  fetcher,
		cache:    NewCache(config.CacheMaxPerClass, m),
		selector: NewSelector(config.CooldownWindow),
		metrics:  m,
		now:      time.Now,
	}

	logger.Info("species resolver initialized",
		"desired_count", config.DesiredCount,
		"narrow_radius_km", config.NarrowRadiusKm,
		"expanded_radius_km", config.ExpandedRadiusKm,
		"cache_max_per_class", config.CacheMaxPerClass,
		"cooldown", config.CooldownWindow)

	return r
}

// SelectSpecies resolves the candidate list for a coordinate and class hint,
// then picks one species honoring the cooldown window and stamps its usage.
// An empty hint selects a taxonomic class uniformly at random. The only
// error condition is an unrecognized class hint.
func (r *Resolver) SelectSpecies(ctx context.Context, lat, lon float64, classHint string) (Candidate, error) {
	var class taxonomy.Class
	if strings.TrimSpace(classHint) == "" {
		class = taxonomy.RandomClass()
	} else {
		var ok bool
		class, ok = taxonomy.ClassByName(classHint)
		if !ok {
			return Candidate{}, errors.Newf("unknown taxonomic class: %q", classHint).
				Category(errors.CategoryValidation).
				Context("class_hint", classHint).
				Component("species").
				Build()
		}
	}

	candidates := r.Resolve(ctx, lat, lon, class)

	idx, outcome := r.selector.Select(candidates)
	chosen := candidates[idx]

	now := r.now()
	chosen.LastUsedAt = now
	r.cache.MarkUsed(lat, lon, class, chosen.Name, now)

	if r.metrics != nil {
		r.metrics.RecordSelection(class.Name, outcome)
	}

	logger.Info("species selected",
		"class", class.Name,
		"name", chosen.Name,
		"source", chosen.Source,
		"outcome", outcome)

	return chosen, nil
}

// Resolve returns the candidate list for a coordinate and class, guaranteed
// non-empty. A populated cache entry is authoritative; tiers run
// sequentially on a miss and each later tier runs only while the desired
// count has not been reached.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64, class taxonomy.Class) []Candidate {
	start := r.now()

	if entry := r.cache.Get(lat, lon, class); entry != nil {
		if r.metrics != nil {
			r.metrics.RecordTierResults("cache", len(entry.Species))
			r.metrics.RecordResolution(class.Name, "cache", r.now().Sub(start).Seconds())
		}
		return entry.Species
	}

	collected := make([]Candidate, 0, r.config.DesiredCount)
	seen := make(map[string]bool)
	addUnique := func(candidates []Candidate) int {
		added := 0
		for _, cand := range candidates {
			key := strings.ToLower(cand.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			collected = append(collected, cand)
			added++
		}
		return added
	}

	// Upstream tiers at increasing radii
	if len(collected) < r.config.DesiredCount {
		added := addUnique(r.fetchTier(ctx, lat, lon, r.config.NarrowRadiusKm, class))
		if r.metrics != nil {
			r.metrics.RecordTierResults("upstream-narrow", added)
		}
	}
	if len(collected) < r.config.DesiredCount {
		added := addUnique(r.fetchTier(ctx, lat, lon, r.config.ExpandedRadiusKm, class))
		if r.metrics != nil {
			r.metrics.RecordTierResults("upstream-expanded", added)
		}
	}

	seededFromUpstream := len(collected) > 0

	// Static tiers
	if len(collected) < r.config.DesiredCount {
		region := ecoregion.Classify(lat, lon)
		added := addUnique(RegionalFallback(region.RegionTag, class))
		if r.metrics != nil {
			r.metrics.RecordTierResults("regional-fallback", added)
		}
		if added > 0 {
			logger.Debug("regional fallback used",
				"class", class.Name,
				"region", region.Name,
				"added", added)
		}
	}
	if len(collected) < r.config.DesiredCount {
		added := addUnique(GlobalFallback(class))
		if r.metrics != nil {
			r.metrics.RecordTierResults("global-fallback", added)
		}
	}

	// Structurally unreachable unless a global table was emptied; that is a
	// configuration bug, answered with the hard-coded sentinel.
	if len(collected) == 0 {
		logger.Error("global fallback table empty, using emergency sentinel",
			"class", class.Name)
		collected = append(collected, EmergencyCandidate(class))
	}

	r.cache.Put(lat, lon, class, collected, seededFromUpstream)

	seededFrom := "fallback"
	if seededFromUpstream {
		seededFrom = "upstream"
	}
	if r.metrics != nil {
		r.metrics.RecordResolution(class.Name, seededFrom, r.now().Sub(start).Seconds())
	}

	logger.Debug("resolution complete",
		"class", class.Name,
		"candidates", len(collected),
		"seeded_from_upstream", seededFromUpstream)

	return collected
}

// fetchTier calls the upstream client and converts its records to
// candidates. Failures are absorbed: the tier simply contributes nothing.
func (r *Resolver) fetchTier(ctx context.Context, lat, lon float64, radiusKm int, class taxonomy.Class) []Candidate {
	if r.fetcher == nil {
		return nil
	}

	records, err := r.fetcher.Fetch(ctx, lat, lon, radiusKm, class)
	if err != nil {
		logger.Warn("upstream tier failed, cascading to next tier",
			"class", class.Name,
			"radius_km", radiusKm,
			"error", err)
		return nil
	}

	candidates := make([]Candidate, 0, len(records))
	for _, rec := range records {
		candidates = append(candidates, Candidate{
			Name:           rec.CommonName,
			ScientificName: rec.ScientificName,
			Type:           class.DisplayName,
			Source:         SourceUpstream,
		})
	}
	return candidates
}

// CacheSnapshot returns the cached entry for a coordinate and class, or nil.
// Used by the API layer for diagnostics.
func (r *Resolver) CacheSnapshot(lat, lon float64, class taxonomy.Class) *CacheEntry {
	return r.cache.Get(lat, lon, class)
}

// ClearCache drops every cached entry.
func (r *Resolver) ClearCache() {
	r.cache.Clear()
}

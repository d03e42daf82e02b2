package species

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naturecast/naturecast-go/internal/errors"
	"github.com/naturecast/naturecast-go/internal/gbif"
	"github.com/naturecast/naturecast-go/internal/taxonomy"
)

// fakeFetcher serves canned responses per radius and records every call.
type fakeFetcher struct {
	byRadius map[int][]gbif.Species
	err      error
	calls    []int
}

func (f *fakeFetcher) Fetch(_ context.Context, _, _ float64, radiusKm int, _ taxonomy.Class) ([]gbif.Species, error) {
	f.calls = append(f.calls, radiusKm)
	if f.err != nil {
		return nil, f.err
	}
	return f.byRadius[radiusKm], nil
}

func upstreamSpecies(names ...string) []gbif.Species {
	out := make([]gbif.Species, 0, len(names))
	for _, n := range names {
		out = append(out, gbif.Species{CommonName: n})
	}
	return out
}

func newTestResolver(fetcher OccurrenceFetcher) *Resolver {
	return NewResolver(Config{
		DesiredCount:     8,
		NarrowRadiusKm:   50,
		ExpandedRadiusKm: 200,
		CacheMaxPerClass: 200,
		CooldownWindow:   48 * time.Hour,
	}, fetcher, nil)
}

func TestResolve_UpstreamSatisfiesNarrowTier(t *testing.T) {
	// Scenario: upstream returns 8 distinct species within 50 km; the cache
	// entry is created from them and selection returns one of the 8.
	fetcher := &fakeFetcher{byRadius: map[int][]gbif.Species{
		50: upstreamSpecies(
			"Anna's Hummingbird", "California Scrub-Jay", "Western Bluebird",
			"Acorn Woodpecker", "Lesser Goldfinch", "Black Phoebe",
			"California Towhee", "Oak Titmouse"),
	}}
	r := newTestResolver(fetcher)
	birds := mustClass(t, "birds")

	candidates := r.Resolve(context.Background(), 34.045225, -117.267289, birds)
	require.Len(t, candidates, 8)
	for _, c := range candidates {
		assert.Equal(t, SourceUpstream, c.Source)
		assert.Equal(t, "bird", c.Type)
	}
	assert.Equal(t, []int{50}, fetcher.calls, "a satisfied narrow tier skips every later tier")

	entry := r.CacheSnapshot(34.045225, -117.267289, birds)
	require.NotNil(t, entry)
	assert.True(t, entry.SeededFromUpstream)
	assert.Len(t, entry.Species, 8)

	chosen, err := r.SelectSpecies(context.Background(), 34.045225, -117.267289, "birds")
	require.NoError(t, err)
	names := make([]string, 0, 8)
	for _, c := range candidates {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, chosen.Name)
	assert.False(t, chosen.LastUsedAt.IsZero())
}

func TestResolve_CacheHitSkipsUpstream(t *testing.T) {
	fetcher := &fakeFetcher{byRadius: map[int][]gbif.Species{
		50: upstreamSpecies("A", "B", "C", "D", "E", "F", "G", "H"),
	}}
	r := newTestResolver(fetcher)
	birds := mustClass(t, "birds")

	r.Resolve(context.Background(), 34.05, -117.27, birds)
	require.Len(t, fetcher.calls, 1)

	// Same cluster: the populated entry is authoritative, no re-validation
	r.Resolve(context.Background(), 34.051, -117.269, birds)
	assert.Len(t, fetcher.calls, 1)
}

func TestResolve_ExpandedTierRunsWhenNarrowUnderDelivers(t *testing.T) {
	fetcher := &fakeFetcher{byRadius: map[int][]gbif.Species{
		50:  upstreamSpecies("Anna's Hummingbird", "Black Phoebe"),
		200: upstreamSpecies("Black Phoebe", "California Condor", "Lesser Goldfinch"),
	}}
	r := newTestResolver(fetcher)
	birds := mustClass(t, "birds")

	candidates := r.Resolve(context.Background(), 34.045225, -117.267289, birds)
	assert.Equal(t, []int{50, 200}, fetcher.calls)

	names := make(map[string]int)
	for _, c := range candidates {
		names[c.Name]++
	}
	assert.Equal(t, 1, names["Black Phoebe"], "duplicates across tiers collapse")
	assert.Equal(t, 1, names["California Condor"])

	// Still under the desired count, so the southwest regional table and the
	// global table were concatenated too
	assert.Equal(t, 1, names["Greater Roadrunner"])
	assert.Equal(t, 1, names["House Sparrow"])
}

func TestResolve_UpstreamFailureFallsBackToGlobal(t *testing.T) {
	// Scenario: upstream rate-limited, coordinate matches no curated region;
	// the global bird table still delivers, tagged with its provenance.
	fetcher := &fakeFetcher{err: errors.Newf("occurrence API rate limited, backing off for 25s").
		Category(errors.CategoryRateLimit).
		Component("gbif").
		Build()}
	r := newTestResolver(fetcher)
	birds := mustClass(t, "birds")

	candidates := r.Resolve(context.Background(), 0, -160, birds)
	require.NotEmpty(t, candidates)

	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		assert.Equal(t, SourceGlobalFallback, c.Source)
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "House Sparrow")

	entry := r.CacheSnapshot(0, -160, birds)
	require.NotNil(t, entry)
	assert.False(t, entry.SeededFromUpstream)
}

func TestResolve_RegionalTierContributesInsideRegion(t *testing.T) {
	fetcher := &fakeFetcher{} // upstream yields nothing
	r := newTestResolver(fetcher)
	reptiles := mustClass(t, "reptiles")

	candidates := r.Resolve(context.Background(), 34.045225, -117.267289, reptiles)
	require.NotEmpty(t, candidates)

	sources := make(map[string]bool)
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		sources[c.Source] = true
		names = append(names, c.Name)
	}
	assert.True(t, sources[SourceRegionalFallback])
	assert.True(t, sources[SourceGlobalFallback])
	assert.Contains(t, names, "Desert Tortoise")
}

func TestResolve_OpenOceanAlwaysNonEmpty(t *testing.T) {
	// Scenario: no bounding box matches (0, -160); the regional tier
	// contributes nothing but the global tier still guarantees a result.
	fetcher := &fakeFetcher{}
	r := newTestResolver(fetcher)

	for _, class := range taxonomy.Classes() {
		candidates := r.Resolve(context.Background(), 0, -160, class)
		assert.NotEmpty(t, candidates, "class %s must never resolve empty", class.Name)
		for _, c := range candidates {
			assert.True(t, taxonomy.IsValidCommonName(c.Name) || taxonomy.ExtractBinomial(c.Name) != "",
				"candidate %q must be displayable", c.Name)
		}
	}
}

func TestSelectSpecies_RandomClassOnEmptyHint(t *testing.T) {
	fetcher := &fakeFetcher{}
	r := newTestResolver(fetcher)

	chosen, err := r.SelectSpecies(context.Background(), 0, -160, "")
	require.NoError(t, err)
	assert.NotEmpty(t, chosen.Name)
	assert.NotEmpty(t, chosen.Type)
}

func TestSelectSpecies_RejectsUnknownClassHint(t *testing.T) {
	r := newTestResolver(&fakeFetcher{})

	_, err := r.SelectSpecies(context.Background(), 0, -160, "dinosaurs")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestSelectSpecies_StampPersistsIntoCache(t *testing.T) {
	fetcher := &fakeFetcher{}
	r := newTestResolver(fetcher)
	birds := mustClass(t, "birds")

	chosen, err := r.SelectSpecies(context.Background(), 0, -160, "birds")
	require.NoError(t, err)

	entry := r.CacheSnapshot(0, -160, birds)
	require.NotNil(t, entry)

	var stamped bool
	for _, c := range entry.Species {
		if c.Name == chosen.Name {
			stamped = !c.LastUsedAt.IsZero()
		}
	}
	assert.True(t, stamped, "selection must persist the usage stamp into the cache entry")
}

func TestClearCache(t *testing.T) {
	fetcher := &fakeFetcher{byRadius: map[int][]gbif.Species{
		50: upstreamSpecies("A", "B", "C", "D", "E", "F", "G", "H"),
	}}
	r := newTestResolver(fetcher)
	birds := mustClass(t, "birds")

	r.Resolve(context.Background(), 34.05, -117.27, birds)
	r.ClearCache()

	r.Resolve(context.Background(), 34.05, -117.27, birds)
	assert.Len(t, fetcher.calls, 2, "clearing the cache forces a re-seed")
}

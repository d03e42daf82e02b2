// Package ecoregion maps geographic coordinates to named bio-geographic
// regions via an ordered list of axis-aligned bounding boxes. The result picks
// a curated regional fallback species table and provides diagnostic context;
// it is never a source of truth for biological accuracy.
package ecoregion

// Ecoregion describes one bio-geographic area.
type Ecoregion struct {
	Name      string // human-readable region name
	Code      string // short region code
	RegionTag string // key into the regional fallback tables
}

// Unknown is the sentinel region returned when no bounding box matches.
var Unknown = Ecoregion{
	Name:      "Unknown",
	Code:      "UNK",
	RegionTag: "",
}

// boundingBox is an axis-aligned lat/lon rectangle tagged with a region.
type boundingBox struct {
	minLat, maxLat float64
	minLon, maxLon float64
	region         Ecoregion
}

// regions is evaluated in order; the first match wins. Only the three North
// American regions carry fallback tables, the remaining boxes exist for
// diagnostic context.
var regions = []boundingBox{
	{
		minLat: 38.0, maxLat: 60.0, minLon: -130.0, maxLon: -114.0,
		region: Ecoregion{Name: "Pacific Northwest", Code: "PNW", RegionTag: "pacific-northwest"},
	},
	{
		minLat: 28.0, maxLat: 38.0, minLon: -125.0, maxLon: -103.0,
		region: Ecoregion{Name: "American Southwest", Code: "SW", RegionTag: "southwest"},
	},
	{
		minLat: 24.0, maxLat: 37.0, minLon: -95.0, maxLon: -75.0,
		region: Ecoregion{Name: "American Southeast", Code: "SE", RegionTag: "southeast"},
	},
	// Diagnostic-only regions below: no curated fallback table
	{
		minLat: 50.0, maxLat: 72.0, minLon: -170.0, maxLon: -50.0,
		region: Ecoregion{Name: "Boreal North America", Code: "BOR", RegionTag: ""},
	},
	{
		minLat: -24.0, maxLat: 24.0, minLon: -92.0, maxLon: -34.0,
		region: Ecoregion{Name: "Neotropics", Code: "NEO", RegionTag: ""},
	},
	{
		minLat: 35.0, maxLat: 71.0, minLon: -11.0, maxLon: 40.0,
		region: Ecoregion{Name: "Western Palearctic", Code: "WPA", RegionTag: ""},
	},
}

// Classify returns the first ecoregion whose bounding box contains the
// coordinate, or Unknown when none match. Pure and deterministic; there are
// no error conditions.
func Classify(lat, lon float64) Ecoregion {
	for _, box := range regions {
		if lat >= box.minLat && lat <= box.maxLat &&
			lon >= box.minLon && lon <= box.maxLon {
			return box.region
		}
	}
	return Unknown
}

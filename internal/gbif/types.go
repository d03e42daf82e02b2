package gbif

import "time"

// Config holds configuration for the occurrence API client.
type Config struct {
	Endpoint         string        // occurrence search endpoint
	Timeout          time.Duration // per-request timeout
	ResultLimit      int           // max records requested per call
	MaxRetries       int           // attempts for transient server failures
	FailureThreshold int           // consecutive failures before the breaker opens
	OpenWindow       time.Duration // breaker open window after repeated failures
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		Endpoint:         "https://api.gbif.org/v1/occurrence/search",
		Timeout:          10 * time.Second,
		ResultLimit:      100,
		MaxRetries:       3,
		FailureThreshold: 2,
		OpenWindow:       2 * time.Minute,
	}
}

// Species is one cleaned, deduplicated record from an occurrence search.
type Species struct {
	CommonName     string `json:"commonName"`
	ScientificName string `json:"scientificName"`
}

// vernacularName is a localized common name attached to an occurrence.
type vernacularName struct {
	Name     string `json:"vernacularName"`
	Language string `json:"language"`
}

// occurrenceRecord is a single result from the occurrence search API. Only
// the name fields matter here; everything else in the payload is ignored.
type occurrenceRecord struct {
	VernacularName  string           `json:"vernacularName"`
	VernacularNames []vernacularName `json:"vernacularNames"`
	Species         string           `json:"species"`
	ScientificName  string           `json:"scientificName"`
	TaxonRank       string           `json:"taxonRank"`
}

// occurrenceResponse is the paged envelope of the occurrence search API.
type occurrenceResponse struct {
	Offset       int                `json:"offset"`
	Limit        int                `json:"limit"`
	EndOfRecords bool               `json:"endOfRecords"`
	Count        int64              `json:"count"`
	Results      []occurrenceRecord `json:"results"`
}

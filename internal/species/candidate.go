// Package species implements the resolution cascade that turns a coordinate
// and a taxonomic class into a displayable species: a location-clustered
// bounded cache, curated fallback tables, a cooldown-aware selection policy,
// and the resolver that orchestrates them.
package species

import (
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/naturecast/naturecast-go/internal/logging"
)

// Package-level logger specific to the species service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar) // Dynamic level control
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "species.log")
	initialLevel := slog.LevelDebug
	serviceLevelVar.Set(initialLevel)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "species", serviceLevelVar)
	if err != nil {
		log.Printf("FATAL: Failed to initialize species file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "species")
		closeLogger = func() error { return nil }
	}
}

// Candidate provenance tags. The source tag is the only caller-visible
// signal of degraded data quality.
const (
	SourceUpstream         = "upstream"
	SourceRegionalFallback = "regional-fallback"
	SourceGlobalFallback   = "global-fallback"
	SourceEmergency        = "emergency"
)

// Candidate is one resolved species. Name is always displayable: never
// empty, never a digit-bearing string, never a placeholder token.
type Candidate struct {
	Name           string    `json:"name"`
	ScientificName string    `json:"scientificName,omitempty"`
	Type           string    `json:"type"`              // singular taxon, e.g. "bird"
	Habitat        string    `json:"habitat,omitempty"` // coarse habitat hint for narration
	Source         string    `json:"source"`            // provenance tag
	LastUsedAt     time.Time `json:"lastUsedAt,omitzero"`
}

// Package gbif implements the client for the GBIF occurrence search API,
// including the circuit breaker that protects the resolution cascade from a
// misbehaving upstream.
package gbif

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/naturecast/naturecast-go/internal/conf"
	"github.com/naturecast/naturecast-go/internal/errors"
	"github.com/naturecast/naturecast-go/internal/logging"
	"github.com/naturecast/naturecast-go/internal/observability/metrics"
	"github.com/naturecast/naturecast-go/internal/taxonomy"
)

// Package-level logger specific to the gbif service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar) // Dynamic level control
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "gbif.log")
	initialLevel := slog.LevelDebug
	serviceLevelVar.Set(initialLevel)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "gbif", serviceLevelVar)
	if err != nil {
		log.Printf("FATAL: Failed to initialize gbif file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "gbif")
		closeLogger = func() error { return nil }
	}
}

const (
	// rateLimitPadding is added on top of an upstream Retry-After hint so a
	// reopened breaker never races the upstream's own window.
	rateLimitPadding = 5 * time.Second

	// maxRateLimitOpen caps how long a Retry-After hint may hold the breaker
	// open.
	maxRateLimitOpen = 10 * time.Minute

	// initialBackoff is the base delay for server error retries.
	initialBackoff = 500 * time.Millisecond
)

// Client queries the occurrence search API for species observed near a
// coordinate. All name cleanup happens here so callers only ever see
// presentable names.
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *Breaker
	metrics    *metrics.GBIFMetrics
	debug      bool

	// Injected for tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a new occurrence API client. The metrics collector may be
// nil, in which case no metrics are recorded.
func NewClient(config Config, m *metrics.GBIFMetrics) (*Client, error) {
	if config.Endpoint == "" {
		config.Endpoint = DefaultConfig().Endpoint
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.ResultLimit == 0 {
		config.ResultLimit = DefaultConfig().ResultLimit
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultConfig().MaxRetries
	}
	if config.FailureThreshold == 0 {
		config.FailureThreshold = DefaultConfig().FailureThreshold
	}
	if config.OpenWindow == 0 {
		config.OpenWindow = DefaultConfig().OpenWindow
	}

	if _, err := url.Parse(config.Endpoint); err != nil {
		return nil, errors.Newf("invalid occurrence API endpoint: %w", err).
			Category(errors.CategoryConfiguration).
			Context("endpoint", config.Endpoint).
			Component("gbif").
			Build()
	}

	settings := conf.GetSettings()
	debug := settings != nil && (settings.Debug || settings.GBIF.Debug)

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		breaker: NewBreaker(config.FailureThreshold, config.OpenWindow),
		metrics: m,
		debug:   debug,
		now:     time.Now,
		sleep:   time.Sleep,
	}

	logger.Info("GBIF client initialized",
		"endpoint", config.Endpoint,
		"result_limit", config.ResultLimit,
		"failure_threshold", config.FailureThreshold,
		"open_window", config.OpenWindow,
		"debug", debug)

	return client, nil
}

// Close cleans up client resources.
func (c *Client) Close() {
	logger.Info("Closing GBIF client")
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing gbif logger: %v", err)
		}
	}
}

// BreakerState returns a snapshot of the circuit breaker for diagnostics.
func (c *Client) BreakerState() State {
	return c.breaker.Snapshot()
}

// Fetch returns species of the given taxonomic class observed within radiusKm
// of the coordinate. Names are sanitized and deduplicated; records with no
// usable name are dropped. When the circuit breaker is open the call fails
// immediately without network I/O.
func (c *Client) Fetch(ctx context.Context, lat, lon float64, radiusKm int, class taxonomy.Class) ([]Species, error) {
	if !c.breaker.Allow() {
		if c.metrics != nil {
			c.metrics.RecordShortCircuit()
		}
		state := c.breaker.Snapshot()
		logger.Debug("GBIF call short-circuited, breaker open",
			"open_until", state.OpenUntil,
			"reason", state.LastOpenReason)
		return nil, errors.Newf("occurrence API unavailable: circuit breaker open until %s", state.OpenUntil.Format(time.RFC3339)).
			Category(errors.CategoryState).
			Context("open_until", state.OpenUntil).
			Context("reason", state.LastOpenReason).
			Component("gbif").
			Build()
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	requestURL := c.buildSearchURL(lat, lon, radiusKm, class)

	var payload occurrenceResponse
	if err := c.doRequestWithRetry(reqCtx, requestURL, &payload); err != nil {
		return nil, err
	}

	c.breaker.RecordSuccess()
	if c.metrics != nil {
		c.metrics.RecordBreakerClose()
	}

	species := cleanResults(payload.Results)

	logger.Debug("GBIF fetch complete",
		"class", class.Name,
		"radius_km", radiusKm,
		"raw_records", len(payload.Results),
		"species", len(species))

	return species, nil
}

// buildSearchURL assembles the occurrence search query for a radial search
// around the coordinate.
func (c *Client) buildSearchURL(lat, lon float64, radiusKm int, class taxonomy.Class) string {
	params := url.Values{}
	params.Set("geoDistance", fmt.Sprintf("%f,%f,%dkm", lat, lon, radiusKm))
	params.Set("classKey", strconv.Itoa(class.UpstreamKey))
	params.Set("limit", strconv.Itoa(c.config.ResultLimit))
	params.Set("hasCoordinate", "true")
	return c.config.Endpoint + "?" + params.Encode()
}

// doRequestWithRetry performs the request, retrying server errors with
// exponential backoff. Rate limiting and malformed payloads are never
// retried; they feed the breaker instead.
func (c *Client) doRequestWithRetry(ctx context.Context, requestURL string, result *occurrenceResponse) error {
	var lastErr error

	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt)
			logger.Warn("GBIF request failed, retrying",
				"attempt", attempt+1,
				"max_retries", c.config.MaxRetries,
				"delay_ms", delay.Milliseconds(),
				"error", lastErr)
			select {
			case <-ctx.Done():
				return c.networkError(ctx.Err(), requestURL)
			default:
			}
			c.sleep(delay)
		}

		retryable, err := c.doRequest(ctx, requestURL, result)
		if err == nil {
			return nil
		}
		if !retryable {
			return err
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	// Retries exhausted on a transient failure; this counts as one failure
	// toward the breaker threshold.
	if opened := c.breaker.RecordFailure("server_error"); opened {
		c.noteBreakerOpen("server_error")
	}

	return lastErr
}

// doRequest performs a single HTTP GET. The first return value reports
// whether the failure is transient and worth retrying.
func (c *Client) doRequest(ctx context.Context, requestURL string, result *occurrenceResponse) (retryable bool, err error) {
	start := c.now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return false, c.networkError(err, requestURL)
	}
	req.Header.Set("Accept", "application/json")

	if c.debug {
		logger.Debug("GBIF API request", "url", requestURL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordError("network")
			c.metrics.RecordRequest("error", c.now().Sub(start).Seconds())
		}
		logger.Error("GBIF API request failed", "error", err, "url", requestURL)
		return true, c.networkError(err, requestURL)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordError("network")
			c.metrics.RecordRequest("error", c.now().Sub(start).Seconds())
		}
		return true, c.networkError(err, requestURL)
	}

	duration := c.now().Sub(start)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return false, c.handleRateLimit(resp, requestURL, duration)

	case resp.StatusCode >= 500:
		if c.metrics != nil {
			c.metrics.RecordError("server_error")
			c.metrics.RecordRequest("error", duration.Seconds())
		}
		logger.Warn("GBIF API server error",
			"status_code", resp.StatusCode,
			"url", requestURL)
		return true, errors.Newf("occurrence API server error (status %d)", resp.StatusCode).
			Category(errors.CategoryNetwork).
			Context("status_code", resp.StatusCode).
			Context("url", requestURL).
			Component("gbif").
			Build()

	case resp.StatusCode >= 400:
		if c.metrics != nil {
			c.metrics.RecordError("network")
			c.metrics.RecordRequest("error", duration.Seconds())
		}
		logger.Error("GBIF API client error",
			"status_code", resp.StatusCode,
			"url", requestURL,
			"response_body", truncate(string(bodyBytes), 500))
		return false, errors.Newf("occurrence API error (status %d): %s", resp.StatusCode, truncate(string(bodyBytes), 200)).
			Category(errors.CategoryNetwork).
			Context("status_code", resp.StatusCode).
			Context("url", requestURL).
			Component("gbif").
			Build()
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		return false, c.malformedError(requestURL, duration,
			fmt.Sprintf("non-JSON response (Content-Type: %s)", contentType),
			truncate(string(bodyBytes), 500))
	}

	if err := json.Unmarshal(bodyBytes, result); err != nil {
		return false, c.malformedError(requestURL, duration,
			fmt.Sprintf("failed to parse response: %v", err),
			truncate(string(bodyBytes), 500))
	}

	if c.metrics != nil {
		c.metrics.RecordRequest("success", duration.Seconds())
	}
	if c.debug {
		logger.Debug("GBIF API response",
			"url", requestURL,
			"duration_ms", duration.Milliseconds(),
			"records", len(result.Results))
	}

	return false, nil
}

// handleRateLimit trips the breaker for the upstream's requested window,
// padded, and capped at maxRateLimitOpen.
func (c *Client) handleRateLimit(resp *http.Response, requestURL string, duration time.Duration) error {
	retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"), c.now)

	openFor := retryAfter + rateLimitPadding
	if openFor > maxRateLimitOpen {
		openFor = maxRateLimitOpen
	}

	c.breaker.TripFor(openFor, "rate_limit")
	c.noteBreakerOpen("rate_limit")

	if c.metrics != nil {
		c.metrics.RecordError("rate_limit")
		c.metrics.RecordRequest("error", duration.Seconds())
	}

	logger.Warn("GBIF API rate limited, breaker opened",
		"retry_after", retryAfter,
		"open_for", openFor,
		"url", requestURL)

	return errors.Newf("occurrence API rate limited, backing off for %s", openFor).
		Category(errors.CategoryRateLimit).
		Context("retry_after", retryAfter.String()).
		Context("url", requestURL).
		Component("gbif").
		Build()
}

// malformedError records a payload that looked like success but could not be
// used. Malformed payloads count toward the breaker threshold and are never
// retried, since the upstream answered confidently and wrongly.
func (c *Client) malformedError(requestURL string, duration time.Duration, msg, preview string) error {
	if c.metrics != nil {
		c.metrics.RecordError("malformed_response")
		c.metrics.RecordRequest("error", duration.Seconds())
	}

	logger.Error("GBIF API returned malformed response",
		"url", requestURL,
		"detail", msg,
		"response_preview", preview)

	if opened := c.breaker.RecordFailure("malformed_response"); opened {
		c.noteBreakerOpen("malformed_response")
	}

	return errors.Newf("occurrence API %s", msg).
		Category(errors.CategoryResponseParse).
		Context("url", requestURL).
		Timing("occurrence-search", duration).
		Component("gbif").
		Build()
}

func (c *Client) networkError(err error, requestURL string) error {
	return errors.NetworkError(err, requestURL, c.config.Timeout)
}

func (c *Client) noteBreakerOpen(reason string) {
	if c.metrics != nil {
		c.metrics.RecordBreakerOpen(reason)
	}
	state := c.breaker.Snapshot()
	logger.Warn("GBIF circuit breaker opened",
		"reason", reason,
		"open_until", state.OpenUntil)
}

// parseRetryAfter handles both delta-seconds and HTTP-date forms of the
// Retry-After header. A missing or unparseable header yields zero.
func parseRetryAfter(value string, now func() time.Time) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := t.Sub(now()); d > 0 {
			return d
		}
	}
	return 0
}

// backoffDelay returns the exponential retry delay with jitter for the given
// attempt number (1-based for retries).
func backoffDelay(attempt int) time.Duration {
	base := initialBackoff << (attempt - 1)
	jitter := time.Duration(rand.Int64N(int64(base / 2)))
	return base + jitter
}

// cleanResults turns raw occurrence records into presentable, deduplicated
// species. The preferred common name is an English-tagged vernacular name,
// then an untagged one; records ranked above species level are skipped.
func cleanResults(records []occurrenceRecord) []Species {
	seen := make(map[string]bool, len(records))
	species := make([]Species, 0, len(records))

	for i := range records {
		rec := &records[i]

		if !rankIsSpeciesOrBelow(rec.TaxonRank) {
			continue
		}

		scientific := rec.Species
		if scientific == "" {
			scientific = rec.ScientificName
		}
		scientific = taxonomy.Sanitize(scientific)

		common := taxonomy.Sanitize(pickVernacular(rec))

		display := taxonomy.FormatForDisplay(common, scientific)
		if display == taxonomy.UnknownSpecies {
			continue
		}

		key := strings.ToLower(display)
		if seen[key] {
			continue
		}
		seen[key] = true

		if binomial := taxonomy.ExtractBinomial(scientific); binomial != "" {
			scientific = binomial
		}

		species = append(species, Species{
			CommonName:     display,
			ScientificName: scientific,
		})
	}

	return species
}

// pickVernacular prefers an English-tagged vernacular name, then an untagged
// one, then the record's flat vernacularName field.
func pickVernacular(rec *occurrenceRecord) string {
	var untagged string
	for _, v := range rec.VernacularNames {
		switch strings.ToLower(v.Language) {
		case "eng", "en":
			if taxonomy.IsValidCommonName(taxonomy.Sanitize(v.Name)) {
				return v.Name
			}
		case "":
			if untagged == "" {
				untagged = v.Name
			}
		}
	}
	if untagged != "" {
		return untagged
	}
	return rec.VernacularName
}

func rankIsSpeciesOrBelow(rank string) bool {
	switch strings.ToUpper(rank) {
	case "", "SPECIES", "SUBSPECIES", "VARIETY", "FORM":
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package gbif

import (
	"sync"
	"time"
)

// Breaker is a minimal circuit breaker guarding the occurrence API. It opens
// after a run of consecutive failures or immediately on an explicit trip
// (rate limiting), and closes by itself once the open window passes. There is
// no half-open probing; time alone re-admits traffic.
type Breaker struct {
	mu sync.Mutex

	failureThreshold int
	openWindow       time.Duration

	consecutiveFailures int
	openUntil           time.Time
	lastOpenReason      string

	now func() time.Time
}

// State is a point-in-time snapshot of the breaker.
type State struct {
	IsOpen              bool      `json:"isOpen"`
	OpenUntil           time.Time `json:"openUntil,omitzero"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastOpenReason      string    `json:"lastOpenReason,omitempty"`
}

// NewBreaker creates a closed breaker that opens for openWindow after
// failureThreshold consecutive failures.
func NewBreaker(failureThreshold int, openWindow time.Duration) *Breaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &Breaker{
		failureThreshold: failureThreshold,
		openWindow:       openWindow,
		now:              time.Now,
	}
}

// Allow reports whether a request may proceed. An expired open window closes
// the breaker and resets the failure count as a side effect.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.openUntil.IsZero() {
		return true
	}
	if b.now().Before(b.openUntil) {
		return false
	}

	// Open window elapsed, close and start fresh.
	b.openUntil = time.Time{}
	b.consecutiveFailures = 0
	b.lastOpenReason = ""
	return true
}

// RecordFailure counts one failed call and reports whether it tripped the
// breaker open.
func (b *Breaker) RecordFailure(reason string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++
	if b.consecutiveFailures < b.failureThreshold {
		return false
	}

	b.openUntil = b.now().Add(b.openWindow)
	b.lastOpenReason = reason
	return true
}

// TripFor opens the breaker immediately for the given duration, bypassing the
// failure threshold. Used when the upstream names its own backoff.
func (b *Breaker) TripFor(d time.Duration, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.openUntil = b.now().Add(d)
	b.lastOpenReason = reason
}

// RecordSuccess resets the consecutive failure count and clears the stored
// failure diagnostic.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0
	b.lastOpenReason = ""
}

// Snapshot returns the current breaker state.
func (b *Breaker) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	open := !b.openUntil.IsZero() && b.now().Before(b.openUntil)
	s := State{
		IsOpen:              open,
		ConsecutiveFailures: b.consecutiveFailures,
	}
	if open {
		s.OpenUntil = b.openUntil
		s.LastOpenReason = b.lastOpenReason
	}
	return s
}

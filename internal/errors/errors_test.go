package errors

import (
	"fmt"
	"testing"
	"time"
)

func TestBuildDefaults(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("test error")
	ee := New(err).Build()

	if ee.Err.Error() != "test error" {
		t.Errorf("Expected error message 'test error', got '%s'", ee.Err.Error())
	}

	if ee.Category != CategoryGeneric {
		t.Errorf("Expected category 'generic' for uncategorized error, got '%s'", ee.Category)
	}
}

func TestCategoryDetectionFromMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		message  string
		expected ErrorCategory
	}{
		{"rate limit exceeded for upstream", CategoryRateLimit},
		{"request timeout after 10s", CategoryTimeout},
		{"connection refused", CategoryNetwork},
		{"failed to unmarshal response body", CategoryResponseParse},
		{"invalid latitude value", CategoryValidation},
		{"species not found in table", CategoryNotFound},
		{"something odd happened", CategoryGeneric},
	}

	for _, tt := range tests {
		ee := Newf("%s", tt.message).Build()
		if ee.Category != tt.expected {
			t.Errorf("message %q: expected category %q, got %q", tt.message, tt.expected, ee.Category)
		}
	}
}

func TestExplicitCategoryWins(t *testing.T) {
	t.Parallel()

	ee := Newf("connection refused").Category(CategoryConfiguration).Build()
	if ee.Category != CategoryConfiguration {
		t.Errorf("explicit category should win, got '%s'", ee.Category)
	}
}

func TestContextCopyIsolation(t *testing.T) {
	t.Parallel()

	ee := Newf("boom").Context("radius_km", 50).Build()
	ctx := ee.GetContext()
	ctx["radius_km"] = 999

	if ee.GetContext()["radius_km"] != 50 {
		t.Error("GetContext must return a copy, internal state was mutated")
	}
}

func TestIsCategory(t *testing.T) {
	t.Parallel()

	ee := Newf("429 from upstream").Category(CategoryRateLimit).Build()
	wrapped := fmt.Errorf("fetch failed: %w", ee)

	if !IsRateLimited(wrapped) {
		t.Error("IsRateLimited should see through wrapping")
	}
	if IsCategory(wrapped, CategoryNotFound) {
		t.Error("IsCategory should be false for a non-matching category")
	}
}

func TestNetworkErrorHelper(t *testing.T) {
	t.Parallel()

	ee := NetworkError(NewStd("connection reset"), "https://api.gbif.org/v1/occurrence/search", 10*time.Second)
	if ee.Category != CategoryNetwork {
		t.Errorf("expected network category, got '%s'", ee.Category)
	}

	ctx := ee.GetContext()
	if ctx["url_category"] != "https-endpoint" {
		t.Errorf("expected URL reduced to 'https-endpoint', got '%v'", ctx["url_category"])
	}
	if ctx["timeout_seconds"] != 10.0 {
		t.Errorf("expected timeout_seconds 10, got '%v'", ctx["timeout_seconds"])
	}
}

func TestValidationErrorHelper(t *testing.T) {
	t.Parallel()

	ee := ValidationError("coordinate out of range")
	if !IsCategory(ee, CategoryValidation) {
		t.Errorf("expected validation category, got '%s'", ee.Category)
	}
}

func TestWrapPreservesChain(t *testing.T) {
	t.Parallel()

	base := NewStd("boom")
	ee := Wrap(base).Category(CategoryNetwork).Build()
	if !Is(ee, base) {
		t.Error("Wrap must keep the original error in the chain")
	}
}

func TestComponentExplicit(t *testing.T) {
	t.Parallel()

	ee := Newf("boom").Component("gbif").Build()
	if ee.GetComponent() != "gbif" {
		t.Errorf("expected component 'gbif', got '%s'", ee.GetComponent())
	}
}

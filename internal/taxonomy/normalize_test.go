package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "parenthetical_author_citation",
			raw:      "Lithobates catesbeianus, (Shaw, 1802)",
			expected: "Lithobates catesbeianus",
		},
		{
			name:     "trailing_author_year_citation",
			raw:      "Passer domesticus Linnaeus, 1758",
			expected: "Passer domesticus Linnaeus",
		},
		{
			name:     "comma_separated_author_year_citation",
			raw:      "Lithobates catesbeianus, Shaw, 1802",
			expected: "Lithobates catesbeianus",
		},
		{
			name:     "multi_author_citation",
			raw:      "Corvus corax, Smith & Jones, 1900",
			expected: "Corvus corax",
		},
		{
			name:     "author_without_year_kept",
			raw:      "Homo sapiens, Linnaeus",
			expected: "Homo sapiens, Linnaeus",
		},
		{
			name:     "shorthand_species_token",
			raw:      "Corvus sp.",
			expected: "Corvus",
		},
		{
			name:     "subspecies_and_variety_tokens",
			raw:      "Canis lupus subsp. familiaris var. alba",
			expected: "Canis lupus familiaris alba",
		},
		{
			name:     "digits_stripped",
			raw:      "Turdus migratorius 2021",
			expected: "Turdus migratorius",
		},
		{
			name:     "curly_quotes_normalized",
			raw:      "Anna’s Hummingbird",
			expected: "Anna's Hummingbird",
		},
		{
			name:     "whitespace_collapsed",
			raw:      "  American   Robin  ",
			expected: "American Robin",
		},
		{
			name:     "nothing_usable",
			raw:      "(1802), 1234",
			expected: "",
		},
		{
			name:     "empty_input",
			raw:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.raw)
			assert.Equal(t, tt.expected, got)

			// Sanitization must be idempotent
			assert.Equal(t, got, Sanitize(got), "Sanitize(Sanitize(x)) must equal Sanitize(x)")
		})
	}
}

func TestSanitize_NoDigitsOrParensSurvive(t *testing.T) {
	got := Sanitize("Lithobates catesbeianus, (Shaw, 1802)")
	assert.NotContains(t, got, "(")
	assert.NotContains(t, got, ")")
	for _, r := range got {
		assert.False(t, r >= '0' && r <= '9', "sanitized output must contain no digits, got %q", got)
	}
}

func TestIsValidCommonName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"placeholder_sp", "sp", false},
		{"placeholder_sp_dot", "sp.", false},
		{"placeholder_unidentified", "unidentified", false},
		{"placeholder_unknown", "Unknown", false},
		{"placeholder_indet", "indet", false},
		{"too_short", "a", false},
		{"two_chars", "ab", false},
		{"contains_digit", "Robin 2", false},
		{"valid_name", "American Robin", true},
		{"valid_short_name", "Owl", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidCommonName(tt.input))
		})
	}
}

func TestExtractBinomial(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "citation_noise_removed",
			raw:      "Lithobates catesbeianus, (Shaw, 1802)",
			expected: "Lithobates catesbeianus",
		},
		{
			name:     "comma_separated_citation_removed",
			raw:      "Lithobates catesbeianus, Shaw, 1802",
			expected: "Lithobates catesbeianus",
		},
		{
			name:     "plain_binomial",
			raw:      "Passer domesticus",
			expected: "Passer domesticus",
		},
		{
			name:     "case_normalized",
			raw:      "PASSER DOMESTICUS",
			expected: "Passer domesticus",
		},
		{
			name:     "single_word_rejected",
			raw:      "Passeriformes",
			expected: "",
		},
		{
			name:     "genus_with_sp_token_rejected",
			raw:      "Corvus sp.",
			expected: "",
		},
		{
			name:     "empty_rejected",
			raw:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractBinomial(tt.raw))
		})
	}
}

func TestFormatForDisplay(t *testing.T) {
	tests := []struct {
		name       string
		common     string
		scientific string
		expected   string
	}{
		{
			name:       "common_name_preferred",
			common:     "american robin",
			scientific: "Turdus migratorius",
			expected:   "American Robin",
		},
		{
			name:       "binomial_when_no_common",
			common:     "",
			scientific: "Turdus migratorius (Linnaeus, 1766)",
			expected:   "Turdus migratorius",
		},
		{
			name:       "binomial_survives_comma_separated_citation",
			common:     "",
			scientific: "Lithobates catesbeianus, Shaw, 1802",
			expected:   "Lithobates catesbeianus",
		},
		{
			name:       "placeholder_common_falls_to_binomial",
			common:     "unidentified",
			scientific: "Sciurus carolinensis",
			expected:   "Sciurus carolinensis",
		},
		{
			name:       "single_scientific_token_title_cased",
			common:     "",
			scientific: "passeriformes",
			expected:   "Passeriformes",
		},
		{
			name:       "nothing_usable_yields_sentinel",
			common:     "",
			scientific: "",
			expected:   UnknownSpecies,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatForDisplay(tt.common, tt.scientific))
		})
	}
}

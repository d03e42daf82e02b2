package taxonomy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnknownSpecies is the last-resort display name. It must never reach the
// selection policy: the global fallback tables guarantee a usable name first.
const UnknownSpecies = "Unknown Species"

var (
	// Parenthetical author/citation fragments, e.g. "(Shaw, 1802)"
	parentheticalRe = regexp.MustCompile(`\([^()]*\)`)
	// Trailing ", Author, 1869"-style citation segments: any run of year-free
	// comma segments is only stripped when a year-bearing segment ends the string
	citationTailRe = regexp.MustCompile(`(,[^,\d]*)*,[^,]*\d{4}[^,]*\s*$`)
	// Shorthand taxonomic tokens: "sp.", "cf.", "var.", "subsp." and friends
	shorthandRe  = regexp.MustCompile(`(?i)\b(sp|spp|cf|var|subsp|ssp|aff|indet)\.`)
	digitRe      = regexp.MustCompile(`[0-9]`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	quoteReplacer = strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
	)

	// Placeholder tokens that must never be shown as a species name
	placeholderNames = map[string]struct{}{
		"sp": {}, "sp.": {}, "spp": {}, "spp.": {},
		"species": {}, "unidentified": {}, "unknown": {},
		"indet": {}, "indet.": {}, "gen": {}, "gen.": {},
	}
)

// Sanitize cleans a raw taxonomic string pulled from an upstream record.
// It strips parenthetical citation fragments, trailing author/year citations,
// shorthand taxonomic tokens, all digits, and normalizes quotes and
// whitespace. Returns the empty string when nothing usable remains.
// Sanitize is idempotent.
func Sanitize(raw string) string {
	s := quoteReplacer.Replace(raw)

	// Nested parentheticals collapse one level per pass
	for parentheticalRe.MatchString(s) {
		s = parentheticalRe.ReplaceAllString(s, " ")
	}

	s = citationTailRe.ReplaceAllString(s, " ")
	s = shorthandRe.ReplaceAllString(s, " ")
	s = digitRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.Trim(s, " ,;:.")

	return s
}

// IsValidCommonName reports whether s is usable as a displayable common name.
// Rejects strings shorter than 3 characters, strings containing digits, and
// placeholder tokens such as "sp" or "unidentified".
func IsValidCommonName(s string) bool {
	trimmed := strings.TrimSpace(s)
	if len([]rune(trimmed)) < 3 {
		return false
	}
	for _, r := range trimmed {
		if unicode.IsDigit(r) {
			return false
		}
	}
	if _, placeholder := placeholderNames[strings.ToLower(trimmed)]; placeholder {
		return false
	}
	return true
}

// ExtractBinomial strips citation and parenthetical noise from a raw
// scientific name and returns the "Genus species" binomial. Returns the empty
// string for single-word or unparsable input; a lone genus or higher-rank
// token must never be presented as a binomial.
func ExtractBinomial(scientific string) string {
	clean := Sanitize(scientific)
	if clean == "" {
		return ""
	}

	tokens := strings.Fields(clean)
	if len(tokens) < 2 {
		return ""
	}

	genus, species := tokens[0], strings.ToLower(tokens[1])
	if !isNameToken(genus) || !isNameToken(species) {
		return ""
	}
	if _, placeholder := placeholderNames[species]; placeholder {
		return ""
	}

	return capitalize(strings.ToLower(genus)) + " " + species
}

// FormatForDisplay builds a single displayable name from a raw common name
// and a raw scientific name. Preference order: validated common name
// (title-cased), clean binomial, title-cased raw scientific token, and
// finally the UnknownSpecies sentinel.
func FormatForDisplay(commonName, scientificName string) string {
	if clean := Sanitize(commonName); IsValidCommonName(clean) {
		return titleCase(clean)
	}

	if binomial := ExtractBinomial(scientificName); binomial != "" {
		return binomial
	}

	if clean := Sanitize(scientificName); clean != "" {
		tokens := strings.Fields(clean)
		if len(tokens) > 0 && IsValidCommonName(tokens[0]) {
			return titleCase(tokens[0])
		}
	}

	return UnknownSpecies
}

// isNameToken reports whether tok looks like part of a latin binomial:
// letters and hyphens only.
func isNameToken(tok string) bool {
	for _, r := range tok {
		if !unicode.IsLetter(r) && r != '-' {
			return false
		}
	}
	return tok != ""
}

func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
